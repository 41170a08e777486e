package core

import (
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
)

// Name 为按名称寻址的删除键，线路上就是一个字符串。
type Name string

// NewName 返回指向 name 的删除键。
func NewName(name string) *Name {
	n := Name(name)
	return &n
}

func (n *Name) String() string {
	return string(*n)
}

func (n *Name) WriteSize(version codec.Version) int {
	return codec.String((*string)(n)).WriteSize(version)
}

func (n *Name) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.String((*string)(n)).Encode(dst, version)
}

func (n *Name) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.String((*string)(n)).Decode(src, version)
}
