package spu

import (
	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/internal/protocol/union"
)

// SpuStatusResolution 为 SPU 的在线状态。
type SpuStatusResolution uint8

const (
	SpuStatusInit SpuStatusResolution = iota
	SpuStatusOnline
	SpuStatusOffline
)

var resolutionEnum = union.NewEnum("SpuStatusResolution", SpuStatusInit, SpuStatusOnline, SpuStatusOffline)

func (r SpuStatusResolution) String() string {
	switch r {
	case SpuStatusOnline:
		return "Online"
	case SpuStatusOffline:
		return "Offline"
	default:
		return "Init"
	}
}

// SpuStatus 为 SPU 与 CustomSpu 共用的运行时状态。
type SpuStatus struct {
	Resolution SpuStatusResolution
}

var _ core.Status = (*SpuStatus)(nil)

func (s *SpuStatus) IsStatus() {}

func (s *SpuStatus) WriteSize(version codec.Version) int {
	return resolutionEnum.Value(&s.Resolution).WriteSize(version)
}

func (s *SpuStatus) Encode(dst *codec.Buffer, version codec.Version) error {
	return resolutionEnum.Value(&s.Resolution).Encode(dst, version)
}

func (s *SpuStatus) Decode(src *codec.Cursor, version codec.Version) error {
	return resolutionEnum.Value(&s.Resolution).Decode(src, version)
}

func (s *SpuStatus) IsOnline() bool {
	return s.Resolution == SpuStatusOnline
}

func (s *SpuStatus) SetOnline() {
	s.Resolution = SpuStatusOnline
}

func (s *SpuStatus) SetOffline() {
	s.Resolution = SpuStatusOffline
}
