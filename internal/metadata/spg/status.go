package spg

import (
	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/internal/protocol/union"
)

// SpuGroupResolution 为 SpuGroup 的协调结果。
type SpuGroupResolution uint8

const (
	SpuGroupInit SpuGroupResolution = iota
	SpuGroupInvalid
	SpuGroupReserved
)

var resolutionEnum = union.NewEnum("SpuGroupResolution", SpuGroupInit, SpuGroupInvalid, SpuGroupReserved)

func (r SpuGroupResolution) String() string {
	switch r {
	case SpuGroupInvalid:
		return "Invalid"
	case SpuGroupReserved:
		return "Reserved"
	default:
		return "Init"
	}
}

type SpuGroupStatus struct {
	Resolution SpuGroupResolution
	Reason     *string
}

var _ core.Status = (*SpuGroupStatus)(nil)

func (s *SpuGroupStatus) IsStatus() {}

func (s *SpuGroupStatus) fields() []codec.Field {
	return []codec.Field{
		{Name: "resolution", Value: resolutionEnum.Value(&s.Resolution)},
		{Name: "reason", Value: codec.Optional(&s.Reason, codec.String)},
	}
}

func (s *SpuGroupStatus) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, s.fields()...)
}

func (s *SpuGroupStatus) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, s.fields()...)
}

func (s *SpuGroupStatus) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, s.fields()...)
}

// SetInvalid 将状态标记为无效并记录原因。
func (s *SpuGroupStatus) SetInvalid(reason string) {
	s.Resolution = SpuGroupInvalid
	s.Reason = &reason
}

// SetReserved 表示该组的 ID 区间已经预留成功。
func (s *SpuGroupStatus) SetReserved() {
	s.Resolution = SpuGroupReserved
	s.Reason = nil
}

func (s *SpuGroupStatus) IsReserved() bool {
	return s.Resolution == SpuGroupReserved
}
