package log

import (
	"go.uber.org/zap"
)

const (
	FieldNameComponent     = "component"
	FieldNameKind          = "kind"
	FieldNameApiKey        = "api_key"
	FieldNameVersion       = "version"
	FieldNameCorrelationID = "correlation_id"
	FieldNameTraceID       = "trace_id"
)

// FieldComponent 返回一个包含组件名的 zap 字段。
func FieldComponent(component string) zap.Field {
	return zap.String(FieldNameComponent, component)
}

// FieldKind 返回一个包含资源类型标签的 zap 字段。
func FieldKind(label string) zap.Field {
	return zap.String(FieldNameKind, label)
}

// FieldApiKey 返回一个包含 api key 的 zap 字段。
func FieldApiKey(apiKey uint16) zap.Field {
	return zap.Uint16(FieldNameApiKey, apiKey)
}

// FieldVersion 返回一个包含协议版本号的 zap 字段。
func FieldVersion(version int16) zap.Field {
	return zap.Int16(FieldNameVersion, version)
}

func FieldCorrelationID(id int32) zap.Field {
	return zap.Int32(FieldNameCorrelationID, id)
}

func FieldTraceID(traceID string) zap.Field {
	return zap.String(FieldNameTraceID, traceID)
}
