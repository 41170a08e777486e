package log

import (
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var (
	_ WithLogger   = &Binder{}
	_ LoggerBinder = &Binder{}
)

// WithLogger 由持有组件级 Logger 的类型实现。
type WithLogger interface {
	Logger() *MLogger
}

// LoggerBinder 由允许替换组件级 Logger 的类型实现。
type LoggerBinder interface {
	SetLogger(logger *MLogger)
}

// Binder 嵌入到组件中，保存该组件专用的 Logger。
type Binder struct {
	logger atomic.Pointer[MLogger]
}

// SetLogger 替换组件的 Logger。
func (w *Binder) SetLogger(logger *MLogger) {
	w.logger.Store(logger)
}

// BindComponent 绑定带 component 字段的 Logger 并返回它，便于继续设置限流分组。
func (w *Binder) BindComponent(component string, fields ...zap.Field) *MLogger {
	l := With(append([]zap.Field{FieldComponent(component)}, fields...)...)
	w.logger.Store(l)
	return l
}

// Logger 返回组件的 Logger，未绑定时返回全局 Logger。
func (w *Binder) Logger() *MLogger {
	if l := w.logger.Load(); l != nil {
		return l
	}
	return With()
}
