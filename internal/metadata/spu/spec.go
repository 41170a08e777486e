package spu

import (
	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/internal/protocol/union"
)

const (
	SpuLabel       = "SPU"
	CustomSpuLabel = "CustomSpu"
)

// SpuType 区分由 SpuGroup 管理的 SPU 与手工注册的 SPU。
type SpuType uint8

const (
	SpuTypeManaged SpuType = iota
	SpuTypeCustom
)

var spuTypeEnum = union.NewEnum("SpuType", SpuTypeManaged, SpuTypeCustom)

// SpuSpec 为流处理单元的声明式定义，归属于 SpuGroup。
type SpuSpec struct {
	ID                  int32
	SpuType             SpuType
	PublicEndpoint      IngressPort
	PrivateEndpoint     Endpoint
	Rack                *string
	PublicEndpointLocal *Endpoint
}

var (
	_ core.Spec          = (*SpuSpec)(nil)
	_ core.Discriminated = SpuSpec{}
)

func (SpuSpec) Label() string               { return SpuLabel }
func (SpuSpec) OwnerLabel() string          { return "SpuGroup" }
func (SpuSpec) NewStatus() core.Status      { return &SpuStatus{} }
func (SpuSpec) ObjectType() core.ObjectType { return core.ObjectTypeSpu }

func (s *SpuSpec) fields() []codec.Field {
	return []codec.Field{
		{Name: "id", Value: codec.Int(&s.ID)},
		{Name: "spu_type", Value: spuTypeEnum.Value(&s.SpuType)},
		{Name: "public_endpoint", Value: &s.PublicEndpoint},
		{Name: "private_endpoint", Value: &s.PrivateEndpoint},
		{Name: "rack", Value: codec.Optional(&s.Rack, codec.String)},
		{Name: "public_endpoint_local", MinVersion: 1, Value: codec.Optional(&s.PublicEndpointLocal, endpointValue), Default: func() { s.PublicEndpointLocal = nil }},
	}
}

func (s *SpuSpec) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, s.fields()...)
}

func (s *SpuSpec) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, s.fields()...)
}

func (s *SpuSpec) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, s.fields()...)
}

func (s *SpuSpec) IsCustom() bool {
	return s.SpuType == SpuTypeCustom
}

func endpointValue(e *Endpoint) codec.Value {
	return e
}

// CustomSpuSpec 为手工注册 SPU 时使用的参数，不是真正存储的 Spec，归属于 SPU。
type CustomSpuSpec struct {
	ID                  int32
	PublicEndpoint      IngressPort
	PrivateEndpoint     Endpoint
	Rack                *string
	PublicEndpointLocal *Endpoint
}

var (
	_ core.Spec                     = (*CustomSpuSpec)(nil)
	_ core.Removable[*CustomSpuKey] = CustomSpuSpec{}
	_ core.Creatable                = CustomSpuSpec{}
	_ core.Discriminated            = CustomSpuSpec{}
)

func (CustomSpuSpec) Label() string                  { return CustomSpuLabel }
func (CustomSpuSpec) OwnerLabel() string             { return SpuLabel }
func (CustomSpuSpec) NewStatus() core.Status         { return &SpuStatus{} }
func (CustomSpuSpec) ObjectType() core.ObjectType    { return core.ObjectTypeCustomSpu }
func (CustomSpuSpec) CreatableSpec()                 {}
func (CustomSpuSpec) NewDeleteKey() *CustomSpuKey    { return &CustomSpuKey{} }
func (CustomSpuSpec) NewDeleteKeyValue() codec.Value { return &CustomSpuKey{} }

func (s *CustomSpuSpec) fields() []codec.Field {
	return []codec.Field{
		{Name: "id", Value: codec.Int(&s.ID)},
		{Name: "public_endpoint", Value: &s.PublicEndpoint},
		{Name: "private_endpoint", Value: &s.PrivateEndpoint},
		{Name: "rack", Value: codec.Optional(&s.Rack, codec.String)},
		{Name: "public_endpoint_local", MinVersion: 1, Value: codec.Optional(&s.PublicEndpointLocal, endpointValue), Default: func() { s.PublicEndpointLocal = nil }},
	}
}

func (s *CustomSpuSpec) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, s.fields()...)
}

func (s *CustomSpuSpec) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, s.fields()...)
}

func (s *CustomSpuSpec) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, s.fields()...)
}

// IntoSpuSpec 将注册参数转换为存储使用的 SpuSpec。
func (s CustomSpuSpec) IntoSpuSpec() SpuSpec {
	return SpuSpec{
		ID:                  s.ID,
		SpuType:             SpuTypeCustom,
		PublicEndpoint:      s.PublicEndpoint,
		PrivateEndpoint:     s.PrivateEndpoint,
		Rack:                s.Rack,
		PublicEndpointLocal: s.PublicEndpointLocal,
	}
}
