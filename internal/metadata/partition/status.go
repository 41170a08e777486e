package partition

import (
	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/internal/protocol/union"
)

type PartitionResolution uint8

const (
	PartitionOffline PartitionResolution = iota
	PartitionOnline
	PartitionLeaderOffline
	PartitionElectionLeaderFound
)

var resolutionEnum = union.NewEnum("PartitionResolution",
	PartitionOffline, PartitionOnline, PartitionLeaderOffline, PartitionElectionLeaderFound)

func (r PartitionResolution) String() string {
	switch r {
	case PartitionOnline:
		return "Online"
	case PartitionLeaderOffline:
		return "LeaderOffline"
	case PartitionElectionLeaderFound:
		return "ElectionLeaderFound"
	default:
		return "Offline"
	}
}

// ReplicaStatus 为单个副本的复制进度。
type ReplicaStatus struct {
	Spu int32
	HW  int64
	LEO int64
}

func (r *ReplicaStatus) fields() []codec.Field {
	return []codec.Field{
		{Name: "spu", Value: codec.Int(&r.Spu)},
		{Name: "hw", Value: codec.Int(&r.HW)},
		{Name: "leo", Value: codec.Int(&r.LEO)},
	}
}

func (r *ReplicaStatus) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, r.fields()...)
}

func (r *ReplicaStatus) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, r.fields()...)
}

func (r *ReplicaStatus) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, r.fields()...)
}

// PartitionStatus 为分区的运行时状态。Size 自版本 5 起出现在线路上，之前的版本解码为 -1（未知）。
type PartitionStatus struct {
	Resolution PartitionResolution
	Leader     ReplicaStatus
	Replicas   []ReplicaStatus
	Size       int64
}

// UnknownSize 表示分区大小未知。
const UnknownSize int64 = -1

var _ core.Status = (*PartitionStatus)(nil)

func (s *PartitionStatus) IsStatus() {}

func (s *PartitionStatus) fields() []codec.Field {
	return []codec.Field{
		{Name: "resolution", Value: resolutionEnum.Value(&s.Resolution)},
		{Name: "leader", Value: &s.Leader},
		{Name: "replicas", Value: codec.Slice(&s.Replicas, func(r *ReplicaStatus) codec.Value { return r })},
		{Name: "size", MinVersion: 5, Value: codec.Int(&s.Size), Default: func() { s.Size = UnknownSize }},
	}
}

func (s *PartitionStatus) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, s.fields()...)
}

func (s *PartitionStatus) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, s.fields()...)
}

func (s *PartitionStatus) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, s.fields()...)
}

func (s *PartitionStatus) IsOnline() bool {
	return s.Resolution == PartitionOnline
}

// Lag 返回 leader 与最慢副本之间的 LEO 差距。
func (s *PartitionStatus) Lag() int64 {
	var lag int64
	for _, r := range s.Replicas {
		lag = max(lag, s.Leader.LEO-r.LEO)
	}
	return lag
}
