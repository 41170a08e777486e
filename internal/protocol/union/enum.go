package union

import (
	"fmt"

	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
	"github.com/lk2023060901/streamplane-go/pkg/util/typeutil"
)

// Enum 描述以单字节编码的封闭整数枚举。
type Enum[T ~uint8] struct {
	name   string
	values typeutil.Set[T]
}

// NewEnum 创建枚举，values 为全部合法取值。
func NewEnum[T ~uint8](name string, values ...T) *Enum[T] {
	return &Enum[T]{
		name:   name,
		values: typeutil.NewSet(values...),
	}
}

// Contains 判断 v 是否为合法取值。
func (e *Enum[T]) Contains(v T) bool {
	return e.values.Contain(v)
}

// Value 返回指向 p 的编解码器。
func (e *Enum[T]) Value(p *T) codec.Value {
	return enumValue[T]{enum: e, p: p}
}

type enumValue[T ~uint8] struct {
	enum *Enum[T]
	p    *T
}

func (v enumValue[T]) WriteSize(codec.Version) int {
	return 1
}

func (v enumValue[T]) Encode(dst *codec.Buffer, version codec.Version) error {
	if !v.enum.Contains(*v.p) {
		return merr.WrapErrEncode(v.enum.name, merr.WrapErrUnknownVariant(*v.p, v.enum.name))
	}
	return codec.Int(v.p).Encode(dst, version)
}

func (v enumValue[T]) Decode(src *codec.Cursor, version codec.Version) error {
	var raw T
	if err := codec.Int(&raw).Decode(src, version); err != nil {
		return err
	}
	if !v.enum.Contains(raw) {
		return merr.WrapErrUnknownVariant(fmt.Sprintf("%d", raw), v.enum.name)
	}
	*v.p = raw
	return nil
}
