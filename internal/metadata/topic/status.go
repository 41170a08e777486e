package topic

import (
	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/internal/protocol/union"
)

// TopicResolution 为 Topic 的协调结果。
type TopicResolution uint8

const (
	TopicInit TopicResolution = iota
	TopicPending
	TopicInsufficientResources
	TopicInvalidConfig
	TopicProvisioned
	TopicDeleting
)

var resolutionEnum = union.NewEnum("TopicResolution",
	TopicInit, TopicPending, TopicInsufficientResources, TopicInvalidConfig, TopicProvisioned, TopicDeleting)

func (r TopicResolution) String() string {
	switch r {
	case TopicPending:
		return "Pending"
	case TopicInsufficientResources:
		return "InsufficientResources"
	case TopicInvalidConfig:
		return "InvalidConfig"
	case TopicProvisioned:
		return "Provisioned"
	case TopicDeleting:
		return "Deleting"
	default:
		return "Init"
	}
}

type TopicStatus struct {
	Resolution TopicResolution
	ReplicaMap []PartitionMap
	Reason     string
}

var _ core.Status = (*TopicStatus)(nil)

func (s *TopicStatus) IsStatus() {}

func (s *TopicStatus) fields() []codec.Field {
	return []codec.Field{
		{Name: "resolution", Value: resolutionEnum.Value(&s.Resolution)},
		{Name: "replica_map", Value: codec.Slice(&s.ReplicaMap, partitionMapValue)},
		{Name: "reason", Value: codec.String(&s.Reason)},
	}
}

func (s *TopicStatus) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, s.fields()...)
}

func (s *TopicStatus) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, s.fields()...)
}

func (s *TopicStatus) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, s.fields()...)
}

func (s *TopicStatus) IsProvisioned() bool {
	return s.Resolution == TopicProvisioned
}

// SetProvisioned 记录最终的副本分配。
func (s *TopicStatus) SetProvisioned(maps []PartitionMap) {
	s.Resolution = TopicProvisioned
	s.ReplicaMap = maps
	s.Reason = ""
}
