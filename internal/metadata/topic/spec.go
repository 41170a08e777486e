package topic

import (
	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/internal/protocol/union"
)

const TopicLabel = "Topic"

// CompressionAlgorithm 为 Topic 存储使用的压缩算法。
type CompressionAlgorithm uint8

const (
	CompressionAny CompressionAlgorithm = iota
	CompressionNone
	CompressionGzip
	CompressionSnappy
	CompressionLz4
	CompressionZstd
)

var compressionEnum = union.NewEnum("CompressionAlgorithm",
	CompressionAny, CompressionNone, CompressionGzip, CompressionSnappy, CompressionLz4, CompressionZstd)

func (c CompressionAlgorithm) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionSnappy:
		return "snappy"
	case CompressionLz4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return "any"
	}
}

// TopicSpec 为 Topic 的声明式定义。
type TopicSpec struct {
	Replicas ReplicaSpec
	// RetentionSecs 自版本 3 起出现在线路上。
	RetentionSecs *uint32
	// Compression 自版本 6 起出现在线路上。
	Compression CompressionAlgorithm
}

var (
	_ core.Spec                  = (*TopicSpec)(nil)
	_ core.Removable[*core.Name] = TopicSpec{}
	_ core.Creatable             = TopicSpec{}
	_ core.Discriminated         = TopicSpec{}
)

func (TopicSpec) Label() string                  { return TopicLabel }
func (TopicSpec) OwnerLabel() string             { return "" }
func (TopicSpec) NewStatus() core.Status         { return &TopicStatus{} }
func (TopicSpec) ObjectType() core.ObjectType    { return core.ObjectTypeTopic }
func (TopicSpec) CreatableSpec()                 {}
func (TopicSpec) NewDeleteKey() *core.Name       { return core.NewName("") }
func (TopicSpec) NewDeleteKeyValue() codec.Value { return core.NewName("") }

// NewTopicSpec 返回由控制面计算副本分配的 TopicSpec。
func NewTopicSpec(partitions, replicationFactor uint32) *TopicSpec {
	return &TopicSpec{Replicas: NewComputedReplicas(partitions, replicationFactor, false)}
}

func (s *TopicSpec) fields() []codec.Field {
	return []codec.Field{
		{Name: "replicas", Value: &s.Replicas},
		{
			Name:       "retention_secs",
			MinVersion: 3,
			Value:      codec.Optional(&s.RetentionSecs, codec.Int[uint32]),
			Default:    func() { s.RetentionSecs = nil },
		},
		{
			Name:       "compression",
			MinVersion: 6,
			Value:      compressionEnum.Value(&s.Compression),
			Default:    func() { s.Compression = CompressionAny },
		},
	}
}

func (s *TopicSpec) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, s.fields()...)
}

func (s *TopicSpec) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, s.fields()...)
}

func (s *TopicSpec) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, s.fields()...)
}
