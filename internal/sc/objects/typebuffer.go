package objects

import (
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

// TypeBuffer 是带资源类型标签的不透明字节容器，内容按内嵌的版本编码。
//
// 线路格式：[version i16][tag string][payload bytes]
type TypeBuffer struct {
	version codec.Version
	tag     string
	buf     []byte
}

// EncodeTypeBuffer 以 value 的资源类型标签为 tag，在 version 下编码 value。
func EncodeTypeBuffer(value Payload, version codec.Version) (TypeBuffer, error) {
	data, err := codec.Marshal(value, version)
	if err != nil {
		return TypeBuffer{}, err
	}
	return TypeBuffer{version: version, tag: value.KindLabel(), buf: data}, nil
}

func (t *TypeBuffer) Tag() string {
	return t.tag
}

func (t *TypeBuffer) Version() codec.Version {
	return t.version
}

// Payload 返回编码后的内容，调用方不得修改。
func (t *TypeBuffer) Payload() []byte {
	return t.buf
}

// IsKind 判断 TypeBuffer 是否属于标签为 label 的资源类型。
func (t *TypeBuffer) IsKind(label string) bool {
	return t.tag == label
}

func (t *TypeBuffer) fields() []codec.Field {
	return []codec.Field{
		{Name: "version", Value: codec.Int(&t.version)},
		{Name: "tag", Value: codec.String(&t.tag)},
		{Name: "payload", Value: codec.Bytes(&t.buf)},
	}
}

// TypeBuffer 自带版本，外层版本不影响其布局。
func (t *TypeBuffer) WriteSize(codec.Version) int {
	return codec.SizeFields(0, t.fields()...)
}

func (t *TypeBuffer) Encode(dst *codec.Buffer, _ codec.Version) error {
	return codec.WriteFields(dst, 0, t.fields()...)
}

func (t *TypeBuffer) Decode(src *codec.Cursor, _ codec.Version) error {
	return codec.ReadFields(src, 0, t.fields()...)
}

// downcast 在标签为 label 时按内嵌版本将内容解码到 target。
//
// 标签不匹配返回 (false, nil)，表示“不是这种类型”，调用方应继续尝试下一个类型；
// 标签匹配但解码失败返回 (true, err)，err 同时匹配 ErrDecode 与底层原因。
func (t *TypeBuffer) downcast(label string, target codec.Decoder) (bool, error) {
	if !t.IsKind(label) {
		return false, nil
	}
	if err := codec.UnmarshalExact(t.buf, target, t.version); err != nil {
		return true, merr.Combine(merr.WrapErrDecode(label, "payload does not match its tag"), err)
	}
	return true, nil
}

// Downcast 尝试将 tb 解释为 T 类型的请求或响应。
//
// 标签不匹配时返回 (nil, false, nil)；匹配但内容损坏时返回 (nil, true, err)，不会返回半解码的值。
func Downcast[T any, PT interface {
	*T
	Payload
}](tb *TypeBuffer) (*T, bool, error) {
	out := PT(new(T))
	ok, err := tb.downcast(out.KindLabel(), out)
	if !ok || err != nil {
		return nil, ok, err
	}
	return (*T)(out), true, nil
}
