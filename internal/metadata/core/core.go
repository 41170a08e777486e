// Package core 定义每种资源类型都要满足的元数据模型：Spec、Status、Owner 以及可选能力。
//
// 能力（Removable、Creatable、Discriminated）是相互独立、可以任意组合的接口，
// 不构成继承层次。Owner 是类型级别的反向引用，只记录父类型的标签，
// 具体的父实例通过 store 按 key 查找，不在实例中嵌入指针。
package core

import (
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
)

// Spec 描述一种资源类型的声明式定义。
//
// Label 和 OwnerLabel 必须由零值回答，且 Label 在所有已注册类型中全局唯一、跨版本不变。
type Spec interface {
	codec.Value
	Label() string
	// OwnerLabel 返回父类型的标签，没有父类型时返回空字符串。
	OwnerLabel() string
	// NewStatus 返回该类型对应的、带默认值的 Status。
	NewStatus() Status
}

// SpecPtr 约束 P 为 *S 且实现 Spec，使泛型代码可以通过 S 的零值构造可解码的实例。
type SpecPtr[S any] interface {
	*S
	Spec
}

// Status 为与资源实例一一对应的运行时状态，独立于 Spec 变化，本身不可被删除寻址。
type Status interface {
	codec.Value
	IsStatus()
}

// Removable 表示资源类型可以被删除，K 为删除时使用的键类型。
type Removable[K codec.Value] interface {
	Deletable
	// NewDeleteKey 返回带默认值的删除键，用于原地解码。
	NewDeleteKey() K
}

// Deletable 为 Removable 的非泛型形式，用于能力探测。
type Deletable interface {
	NewDeleteKeyValue() codec.Value
}

// RemovablePtr 约束 P 为 *S，且 S 可以用键类型 K 删除。
type RemovablePtr[S any, K codec.Value] interface {
	*S
	Spec
	Removable[K]
}

// Creatable 表示资源类型支持以默认参数创建。
type Creatable interface {
	CreatableSpec()
}

// CreatablePtr 约束 P 为 *S 且 S 可创建。
type CreatablePtr[S any] interface {
	*S
	Spec
	Creatable
}

// Discriminated 表示资源类型携带进程内唯一的对象类型标记。
type Discriminated interface {
	ObjectType() ObjectType
}

// ObjectType 为进程内唯一的对象类型标记。
type ObjectType uint8

const (
	ObjectTypeUnknown ObjectType = iota
	ObjectTypeSpu
	ObjectTypeCustomSpu
	ObjectTypeSpuGroup
	ObjectTypeTopic
	ObjectTypePartition
)

func (t ObjectType) String() string {
	switch t {
	case ObjectTypeSpu:
		return "Spu"
	case ObjectTypeCustomSpu:
		return "CustomSpu"
	case ObjectTypeSpuGroup:
		return "SpuGroup"
	case ObjectTypeTopic:
		return "Topic"
	case ObjectTypePartition:
		return "Partition"
	default:
		return "Unknown"
	}
}

// Label 返回 S 类型的标签。
func Label[S any, P SpecPtr[S]]() string {
	var s S
	return P(&s).Label()
}
