package core

import (
	"fmt"
	"strings"

	"github.com/lk2023060901/streamplane-go/pkg/util/typeutil"
)

// Capability 为资源类型可选的能力。
type Capability string

const (
	CapabilityRemovable     Capability = "removable"
	CapabilityCreatable     Capability = "creatable"
	CapabilityDiscriminated Capability = "discriminated"
)

// Kind 是资源类型的描述，汇总标签、父类型、对象类型标记以及能力集合。
type Kind struct {
	Label        string
	OwnerLabel   string
	ObjectType   ObjectType
	Capabilities typeutil.Set[Capability]
}

// Describe 通过接口探测构造 spec 所属类型的 Kind。
func Describe(spec Spec) Kind {
	kind := Kind{
		Label:        spec.Label(),
		OwnerLabel:   spec.OwnerLabel(),
		Capabilities: typeutil.NewSet[Capability](),
	}
	if _, ok := spec.(Deletable); ok {
		kind.Capabilities.Insert(CapabilityRemovable)
	}
	if _, ok := spec.(Creatable); ok {
		kind.Capabilities.Insert(CapabilityCreatable)
	}
	if d, ok := spec.(Discriminated); ok {
		kind.Capabilities.Insert(CapabilityDiscriminated)
		kind.ObjectType = d.ObjectType()
	}
	return kind
}

// DescribeType 返回 S 类型的 Kind。
func DescribeType[S any, P SpecPtr[S]]() Kind {
	var s S
	return Describe(P(&s))
}

// Has 判断 Kind 是否具备能力 c。
func (k Kind) Has(c Capability) bool {
	return k.Capabilities.Contain(c)
}

// Owned 判断该类型是否有父类型。
func (k Kind) Owned() bool {
	return k.OwnerLabel != ""
}

func (k Kind) String() string {
	caps := typeutil.SortedCollect(k.Capabilities)
	names := make([]string, 0, len(caps))
	for _, c := range caps {
		names = append(names, string(c))
	}
	return fmt.Sprintf("%s{owner=%s, type=%s, caps=[%s]}", k.Label, k.OwnerLabel, k.ObjectType, strings.Join(names, ","))
}
