package partition

import (
	"slices"

	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
)

const PartitionLabel = "Partition"

// PartitionSpec 为分区的副本布局，由 Topic 协调生成，不能单独创建或删除。
type PartitionSpec struct {
	Leader   int32
	Replicas []int32
}

var (
	_ core.Spec          = (*PartitionSpec)(nil)
	_ core.Discriminated = PartitionSpec{}
)

func (PartitionSpec) Label() string               { return PartitionLabel }
func (PartitionSpec) OwnerLabel() string          { return "Topic" }
func (PartitionSpec) NewStatus() core.Status      { return &PartitionStatus{} }
func (PartitionSpec) ObjectType() core.ObjectType { return core.ObjectTypePartition }

// NewPartitionSpec 以第一个副本作为 leader。
func NewPartitionSpec(replicas ...int32) *PartitionSpec {
	spec := &PartitionSpec{Leader: -1, Replicas: replicas}
	if len(replicas) > 0 {
		spec.Leader = replicas[0]
	}
	return spec
}

func (s *PartitionSpec) fields() []codec.Field {
	return []codec.Field{
		{Name: "leader", Value: codec.Int(&s.Leader)},
		{Name: "replicas", Value: codec.Slice(&s.Replicas, codec.Int[int32])},
	}
}

func (s *PartitionSpec) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, s.fields()...)
}

func (s *PartitionSpec) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, s.fields()...)
}

func (s *PartitionSpec) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, s.fields()...)
}

// Followers 返回除 leader 外的副本。
func (s *PartitionSpec) Followers() []int32 {
	return slices.DeleteFunc(slices.Clone(s.Replicas), func(id int32) bool { return id == s.Leader })
}
