package spg

import (
	"math"

	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

const SpuGroupLabel = "SpuGroup"

// SpuGroupSpec 描述一组由控制面托管的 SPU，按 MinID 起连续分配 Replicas 个 ID。
type SpuGroupSpec struct {
	Replicas  uint16
	MinID     int32
	SpuConfig SpuConfig
}

var (
	_ core.Spec                  = (*SpuGroupSpec)(nil)
	_ core.Removable[*core.Name] = SpuGroupSpec{}
	_ core.Creatable             = SpuGroupSpec{}
	_ core.Discriminated         = SpuGroupSpec{}
)

func (SpuGroupSpec) Label() string                  { return SpuGroupLabel }
func (SpuGroupSpec) OwnerLabel() string             { return "" }
func (SpuGroupSpec) NewStatus() core.Status         { return &SpuGroupStatus{} }
func (SpuGroupSpec) ObjectType() core.ObjectType    { return core.ObjectTypeSpuGroup }
func (SpuGroupSpec) CreatableSpec()                 {}
func (SpuGroupSpec) NewDeleteKey() *core.Name       { return core.NewName("") }
func (SpuGroupSpec) NewDeleteKeyValue() codec.Value { return core.NewName("") }

func (s *SpuGroupSpec) fields() []codec.Field {
	return []codec.Field{
		{Name: "replicas", Value: codec.Int(&s.Replicas)},
		{Name: "min_id", Value: codec.Int(&s.MinID)},
		{Name: "spu_config", Value: &s.SpuConfig},
	}
}

func (s *SpuGroupSpec) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, s.fields()...)
}

func (s *SpuGroupSpec) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, s.fields()...)
}

func (s *SpuGroupSpec) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, s.fields()...)
}

// ValidateIDRange 检查 [MinID, MinID+Replicas) 落在非负的 int32 范围内。
func (s *SpuGroupSpec) ValidateIDRange() error {
	if s.MinID < 0 {
		return merr.WrapErrParameterInvalidMsg("spu group min id %d is negative", s.MinID)
	}
	if last := int64(s.MinID) + int64(s.Replicas) - 1; last > math.MaxInt32 {
		return merr.WrapErrParameterInvalidMsg("spu group ids [%d, %d] overflow int32", s.MinID, last)
	}
	return nil
}

// SpuIDs 返回该组分配的全部 SPU ID，调用前需通过 ValidateIDRange。
func (s *SpuGroupSpec) SpuIDs() []int32 {
	ids := make([]int32, 0, s.Replicas)
	for i := int32(0); i < int32(s.Replicas); i++ {
		ids = append(ids, s.MinID+i)
	}
	return ids
}

// SpuConfig 为组内每个 SPU 共用的配置。
type SpuConfig struct {
	Rack    *string
	Storage *StorageConfig
	Env     []EnvVar
}

func (c *SpuConfig) fields() []codec.Field {
	return []codec.Field{
		{Name: "rack", Value: codec.Optional(&c.Rack, codec.String)},
		{Name: "storage", Value: codec.Optional(&c.Storage, func(s *StorageConfig) codec.Value { return s })},
		{Name: "env", Value: codec.Slice(&c.Env, func(e *EnvVar) codec.Value { return e })},
	}
}

func (c *SpuConfig) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, c.fields()...)
}

func (c *SpuConfig) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, c.fields()...)
}

func (c *SpuConfig) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, c.fields()...)
}

// StorageConfig 为 SPU 的日志存储配置。
type StorageConfig struct {
	LogDir *string
	Size   *string
}

func (c *StorageConfig) fields() []codec.Field {
	return []codec.Field{
		{Name: "log_dir", Value: codec.Optional(&c.LogDir, codec.String)},
		{Name: "size", Value: codec.Optional(&c.Size, codec.String)},
	}
}

func (c *StorageConfig) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, c.fields()...)
}

func (c *StorageConfig) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, c.fields()...)
}

func (c *StorageConfig) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, c.fields()...)
}

type EnvVar struct {
	Name  string
	Value string
}

func (e *EnvVar) WriteSize(version codec.Version) int {
	return codec.String(&e.Name).WriteSize(version) + codec.String(&e.Value).WriteSize(version)
}

func (e *EnvVar) Encode(dst *codec.Buffer, version codec.Version) error {
	if err := codec.String(&e.Name).Encode(dst, version); err != nil {
		return err
	}
	return codec.String(&e.Value).Encode(dst, version)
}

func (e *EnvVar) Decode(src *codec.Cursor, version codec.Version) error {
	if err := codec.String(&e.Name).Decode(src, version); err != nil {
		return err
	}
	return codec.String(&e.Value).Decode(src, version)
}
