// Package union 实现带判别标签的和类型编码。
//
// 线路格式为 [tag][payload]：先用二进制编解码写出分支标签，再写出分支自身的内容。
// 标签是稳定的字符串（或 8 位整数），与分支的声明顺序无关。
package union

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/log"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

// Discriminator 为分支标签允许的类型。
type Discriminator interface {
	~string | ~uint8
}

// Variant 是和类型中的一个分支，Tag 返回该分支固定的判别标签。
type Variant[D Discriminator] interface {
	codec.Value
	Tag() D
}

// Case 描述一个分支：标签及其构造函数。
type Case[D Discriminator, V Variant[D]] struct {
	Tag D
	New func() V
}

// Cases 是某个和类型的封闭分支集合。
//
// Cases 构造完成后只读，可以被并发使用。
type Cases[D Discriminator, V Variant[D]] struct {
	name     string
	tagValue func(*D) codec.Value
	def      func() V
	order    []D
	ctors    map[D]func() V
}

func newCases[D Discriminator, V Variant[D]](name string, tagValue func(*D) codec.Value, def func() V, cases []Case[D, V]) *Cases[D, V] {
	if def == nil {
		panic(fmt.Sprintf("union %s: default variant is required", name))
	}
	c := &Cases[D, V]{
		name:     name,
		tagValue: tagValue,
		def:      def,
		order:    make([]D, 0, len(cases)),
		ctors:    make(map[D]func() V, len(cases)),
	}
	for _, item := range cases {
		if _, ok := c.ctors[item.Tag]; ok {
			panic(fmt.Sprintf("union %s: duplicate tag %v", name, item.Tag))
		}
		c.order = append(c.order, item.Tag)
		c.ctors[item.Tag] = item.New
	}
	if _, ok := c.ctors[def().Tag()]; !ok {
		panic(fmt.Sprintf("union %s: default variant %v is not a registered case", name, def().Tag()))
	}
	return c
}

// NewCases 创建以字符串为标签的分支集合，def 为显式的默认分支。
func NewCases[V Variant[string]](name string, def func() V, cases ...Case[string, V]) *Cases[string, V] {
	return newCases[string, V](name, codec.String, def, cases)
}

// NewTagged8 创建以 uint8 为标签的分支集合，def 为显式的默认分支。
func NewTagged8[V Variant[uint8]](name string, def func() V, cases ...Case[uint8, V]) *Cases[uint8, V] {
	return newCases[uint8, V](name, codec.Int[uint8], def, cases)
}

// Name 返回和类型的名称。
func (c *Cases[D, V]) Name() string {
	return c.name
}

// Tags 按声明顺序返回全部标签。
func (c *Cases[D, V]) Tags() []D {
	out := make([]D, len(c.order))
	copy(out, c.order)
	return out
}

// Default 返回一个新的默认分支。
func (c *Cases[D, V]) Default() V {
	return c.def()
}

// New 根据标签构造一个新的分支。
func (c *Cases[D, V]) New(tag D) (V, error) {
	ctor, ok := c.ctors[tag]
	if !ok {
		var zero V
		return zero, merr.WrapErrUnknownVariant(tag, c.name)
	}
	return ctor(), nil
}

// WriteSize 返回 v 编码后的长度（标签 + 内容）。
func (c *Cases[D, V]) WriteSize(v V, version codec.Version) int {
	tag := v.Tag()
	return c.tagValue(&tag).WriteSize(version) + v.WriteSize(version)
}

// Encode 写出 v 的标签和内容。标签未注册时返回 UnknownVariant。
func (c *Cases[D, V]) Encode(dst *codec.Buffer, v V, version codec.Version) error {
	tag := v.Tag()
	if _, ok := c.ctors[tag]; !ok {
		return merr.WrapErrEncode(c.name, merr.WrapErrUnknownVariant(tag, c.name))
	}
	if err := c.tagValue(&tag).Encode(dst, version); err != nil {
		return err
	}
	return v.Encode(dst, version)
}

// Decode 读取标签，构造对应分支并解码内容，成功后才赋值给 target。
//
// 标签未知或内容解码失败时 target 保持不变，不会出现半解码的分支。
func (c *Cases[D, V]) Decode(src *codec.Cursor, target *V, version codec.Version) error {
	var tag D
	if err := c.tagValue(&tag).Decode(src, version); err != nil {
		return err
	}
	log.Debug("decoded variant tag", zap.String("type", c.name), zap.Any("tag", tag))

	fresh, err := c.New(tag)
	if err != nil {
		return err
	}
	if err := fresh.Decode(src, version); err != nil {
		return merr.WrapErrDecodeCause(fmt.Sprintf("%s.%v", c.name, tag), err)
	}
	*target = fresh
	return nil
}
