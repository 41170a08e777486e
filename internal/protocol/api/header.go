package api

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/log"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

// RequestHeader 为每个请求的消息头。
//
// 线路格式：[api_key u16][api_version i16][correlation_id i32][client_id string]
type RequestHeader struct {
	ApiKey        uint16
	ApiVersion    codec.Version
	CorrelationID int32
	ClientID      string
}

// NewRequestHeader 按请求的默认版本构造消息头。
func NewRequestHeader(r Request, correlationID int32, clientID string) RequestHeader {
	return RequestHeader{
		ApiKey:        r.ApiKey(),
		ApiVersion:    r.DefaultApiVersion(),
		CorrelationID: correlationID,
		ClientID:      clientID,
	}
}

func (h *RequestHeader) fields() []codec.Field {
	return []codec.Field{
		{Name: "api_key", Value: codec.Int(&h.ApiKey)},
		{Name: "api_version", Value: codec.Int(&h.ApiVersion)},
		{Name: "correlation_id", Value: codec.Int(&h.CorrelationID)},
		{Name: "client_id", Value: codec.String(&h.ClientID)},
	}
}

// 消息头与协议版本无关，version 参数被忽略。
func (h *RequestHeader) WriteSize(codec.Version) int {
	return codec.SizeFields(0, h.fields()...)
}

func (h *RequestHeader) Encode(dst *codec.Buffer, _ codec.Version) error {
	return codec.WriteFields(dst, 0, h.fields()...)
}

func (h *RequestHeader) Decode(src *codec.Cursor, _ codec.Version) error {
	return codec.ReadFields(src, 0, h.fields()...)
}

func (h RequestHeader) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint16("api_key", h.ApiKey)
	enc.AddInt16("api_version", int16(h.ApiVersion))
	enc.AddInt32("correlation_id", h.CorrelationID)
	enc.AddString("client_id", h.ClientID)
	return nil
}

// RequestMessage 为带消息头的请求，请求体按消息头中的版本编码。
type RequestMessage[R Request] struct {
	Header  RequestHeader
	Request R
}

// NewRequestMessage 使用请求的默认版本构造消息。
func NewRequestMessage[R Request](req R, correlationID int32, clientID string) *RequestMessage[R] {
	return &RequestMessage[R]{
		Header:  NewRequestHeader(req, correlationID, clientID),
		Request: req,
	}
}

// WithVersion 将请求体编码版本改为 version。
func (m *RequestMessage[R]) WithVersion(version codec.Version) *RequestMessage[R] {
	m.Header.ApiVersion = version
	return m
}

func (m *RequestMessage[R]) WriteSize(codec.Version) int {
	return m.Header.WriteSize(0) + m.Request.WriteSize(m.Header.ApiVersion)
}

func (m *RequestMessage[R]) Encode(dst *codec.Buffer, _ codec.Version) error {
	if m.Header.ApiKey != m.Request.ApiKey() {
		return merr.WrapErrEncode("request", merr.WrapErrApiKeyMismatch(m.Request.ApiKey(), m.Header.ApiKey))
	}
	if err := m.Header.Encode(dst, 0); err != nil {
		return err
	}
	return m.Request.Encode(dst, m.Header.ApiVersion)
}

// Decode 先解码消息头，再按消息头中的版本将请求体解码到 m.Request。
func (m *RequestMessage[R]) Decode(src *codec.Cursor, _ codec.Version) error {
	if err := m.Header.Decode(src, 0); err != nil {
		return err
	}
	if m.Header.ApiKey != m.Request.ApiKey() {
		return merr.WrapErrApiKeyMismatch(m.Request.ApiKey(), m.Header.ApiKey)
	}
	return DecodeRequestBody(src, m.Header, m.Request)
}

// DecodeRequestBody 在消息头已解码的前提下，校验版本后解码请求体。
func DecodeRequestBody(src *codec.Cursor, header RequestHeader, req Request) error {
	if err := Describe(req).Check(header.ApiVersion); err != nil {
		return err
	}
	if err := req.Decode(src, header.ApiVersion); err != nil {
		return merr.WrapErrDecodeCause("request", err)
	}
	return nil
}

// ResponseMessage 为带关联 ID 的响应。
//
// 线路格式：[correlation_id i32][response]
type ResponseMessage struct {
	CorrelationID int32
	Response      codec.Value
}

func (m *ResponseMessage) WriteSize(version codec.Version) int {
	return 4 + m.Response.WriteSize(version)
}

func (m *ResponseMessage) Encode(dst *codec.Buffer, version codec.Version) error {
	if err := codec.Int(&m.CorrelationID).Encode(dst, version); err != nil {
		return err
	}
	return m.Response.Encode(dst, version)
}

func (m *ResponseMessage) Decode(src *codec.Cursor, version codec.Version) error {
	if err := codec.Int(&m.CorrelationID).Decode(src, version); err != nil {
		return err
	}
	if err := m.Response.Decode(src, version); err != nil {
		return merr.WrapErrDecodeCause("response", err)
	}
	return nil
}

// Fields 返回附加到请求上下文 Logger 的消息头字段。
func (h RequestHeader) Fields() []zap.Field {
	return []zap.Field{
		log.FieldApiKey(h.ApiKey),
		log.FieldVersion(int16(h.ApiVersion)),
		log.FieldCorrelationID(h.CorrelationID),
		zap.String("client_id", h.ClientID),
	}
}
