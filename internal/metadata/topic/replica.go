package topic

import (
	"github.com/lk2023060901/streamplane-go/internal/json"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/internal/protocol/union"
)

const (
	replicaTagAssigned uint8 = 0
	replicaTagComputed uint8 = 1
)

// ReplicaSpec 描述 Topic 的副本分配方式：由控制面计算，或由用户显式指定。
//
// 线路格式：[tag u8][payload]，0 为 Assigned，1 为 Computed。零值等价于 Computed 的默认参数。
type ReplicaSpec struct {
	variant replicaVariant
}

type replicaVariant interface {
	union.Variant[uint8]
}

// ReplicaParam 为控制面计算副本分配时使用的参数。
type ReplicaParam struct {
	Partitions           uint32
	ReplicationFactor    uint32
	IgnoreRackAssignment bool
}

func (p *ReplicaParam) Tag() uint8 { return replicaTagComputed }

func (p *ReplicaParam) fields() []codec.Field {
	return []codec.Field{
		{Name: "partitions", Value: codec.Int(&p.Partitions)},
		{Name: "replication_factor", Value: codec.Int(&p.ReplicationFactor)},
		{Name: "ignore_rack_assignment", Value: codec.Bool(&p.IgnoreRackAssignment)},
	}
}

func (p *ReplicaParam) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, p.fields()...)
}

func (p *ReplicaParam) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, p.fields()...)
}

func (p *ReplicaParam) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, p.fields()...)
}

// PartitionMap 为单个分区的副本所在 SPU，第一个为 leader。
type PartitionMap struct {
	ID       uint32
	Replicas []int32
}

func (m *PartitionMap) fields() []codec.Field {
	return []codec.Field{
		{Name: "id", Value: codec.Int(&m.ID)},
		{Name: "replicas", Value: codec.Slice(&m.Replicas, codec.Int[int32])},
	}
}

func (m *PartitionMap) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, m.fields()...)
}

func (m *PartitionMap) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, m.fields()...)
}

func (m *PartitionMap) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, m.fields()...)
}

// PartitionMaps 为显式指定的副本分配。
type PartitionMaps struct {
	Maps []PartitionMap
}

func (m *PartitionMaps) Tag() uint8 { return replicaTagAssigned }

func (m *PartitionMaps) value() codec.Value {
	return codec.Slice(&m.Maps, partitionMapValue)
}

func (m *PartitionMaps) WriteSize(version codec.Version) int {
	return m.value().WriteSize(version)
}

func (m *PartitionMaps) Encode(dst *codec.Buffer, version codec.Version) error {
	return m.value().Encode(dst, version)
}

func (m *PartitionMaps) Decode(src *codec.Cursor, version codec.Version) error {
	return m.value().Decode(src, version)
}

func partitionMapValue(m *PartitionMap) codec.Value {
	return m
}

var replicaCases = union.NewTagged8[replicaVariant]("ReplicaSpec",
	func() replicaVariant { return &ReplicaParam{} },
	union.Case[uint8, replicaVariant]{Tag: replicaTagAssigned, New: func() replicaVariant { return &PartitionMaps{} }},
	union.Case[uint8, replicaVariant]{Tag: replicaTagComputed, New: func() replicaVariant { return &ReplicaParam{} }},
)

// NewComputedReplicas 返回由控制面计算的副本分配。
func NewComputedReplicas(partitions, replicationFactor uint32, ignoreRack bool) ReplicaSpec {
	return ReplicaSpec{variant: &ReplicaParam{
		Partitions:           partitions,
		ReplicationFactor:    replicationFactor,
		IgnoreRackAssignment: ignoreRack,
	}}
}

// NewAssignedReplicas 返回显式指定的副本分配。
func NewAssignedReplicas(maps ...PartitionMap) ReplicaSpec {
	return ReplicaSpec{variant: &PartitionMaps{Maps: maps}}
}

func (r *ReplicaSpec) current() replicaVariant {
	if r.variant == nil {
		return replicaCases.Default()
	}
	return r.variant
}

// Computed 返回计算参数，显式分配时返回 false。
func (r *ReplicaSpec) Computed() (*ReplicaParam, bool) {
	p, ok := r.current().(*ReplicaParam)
	return p, ok
}

// Assigned 返回显式分配，计算分配时返回 false。
func (r *ReplicaSpec) Assigned() (*PartitionMaps, bool) {
	m, ok := r.current().(*PartitionMaps)
	return m, ok
}

// Partitions 返回分区数量。
func (r *ReplicaSpec) Partitions() uint32 {
	switch v := r.current().(type) {
	case *ReplicaParam:
		return v.Partitions
	case *PartitionMaps:
		return uint32(len(v.Maps))
	}
	return 0
}

func (r *ReplicaSpec) WriteSize(version codec.Version) int {
	return replicaCases.WriteSize(r.current(), version)
}

func (r *ReplicaSpec) Encode(dst *codec.Buffer, version codec.Version) error {
	return replicaCases.Encode(dst, r.current(), version)
}

func (r *ReplicaSpec) Decode(src *codec.Cursor, version codec.Version) error {
	return replicaCases.Decode(src, &r.variant, version)
}

// MarshalJSON 以分支名为键输出当前分配方式。
func (r *ReplicaSpec) MarshalJSON() ([]byte, error) {
	switch v := r.current().(type) {
	case *PartitionMaps:
		return json.Marshal(map[string]any{"assigned": v.Maps})
	default:
		return json.Marshal(map[string]any{"computed": v})
	}
}
