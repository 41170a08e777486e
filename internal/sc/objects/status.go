package objects

import (
	"math"

	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

// Status 为 Create、Delete 的响应。
//
// 线路格式：[name string][error_code i16][error_message optional string]
type Status struct {
	Name         string  `json:"name"`
	ErrorCode    int16   `json:"error_code"`
	ErrorMessage *string `json:"error_message,omitempty"`
}

// NewStatusOk 返回成功的响应。
func NewStatusOk(name string) *Status {
	return &Status{Name: name}
}

// NewStatusError 根据 err 的错误码构造失败响应，err 为 nil 时等价于 NewStatusOk。
func NewStatusError(name string, err error) *Status {
	if err == nil {
		return NewStatusOk(name)
	}
	code := merr.Code(err)
	if code > math.MaxInt16 || code < math.MinInt16 {
		code = math.MaxInt16
	}
	msg := merr.Message(err)
	return &Status{Name: name, ErrorCode: int16(code), ErrorMessage: &msg}
}

func (s *Status) IsOk() bool {
	return s.ErrorCode == 0
}

// AsError 将失败响应还原为 error，成功时返回 nil。
func (s *Status) AsError() error {
	if s.IsOk() {
		return nil
	}
	msg := ""
	if s.ErrorMessage != nil {
		msg = *s.ErrorMessage
	}
	return merr.Error(int32(s.ErrorCode), msg)
}

func (s *Status) fields() []codec.Field {
	return []codec.Field{
		{Name: "name", Value: codec.String(&s.Name)},
		{Name: "error_code", Value: codec.Int(&s.ErrorCode)},
		{Name: "error_message", Value: codec.Optional(&s.ErrorMessage, codec.String)},
	}
}

func (s *Status) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, s.fields()...)
}

func (s *Status) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, s.fields()...)
}

func (s *Status) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, s.fields()...)
}
