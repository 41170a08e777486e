package objects

import (
	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spg"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spu"
	"github.com/lk2023060901/streamplane-go/internal/metadata/topic"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
)

// CommonCreateRequest 为各类创建请求共用的参数。
type CommonCreateRequest struct {
	Name   string `json:"name"`
	DryRun bool   `json:"dry_run"`
	// Timeout 为等待对象就绪的毫秒数，自版本 7 起出现在线路上。
	Timeout *uint32 `json:"timeout,omitempty"`
}

func (c *CommonCreateRequest) fields() []codec.Field {
	return []codec.Field{
		{Name: "name", Value: codec.String(&c.Name)},
		{Name: "dry_run", Value: codec.Bool(&c.DryRun)},
		{Name: "timeout", MinVersion: 7, Value: codec.Optional(&c.Timeout, codec.Int[uint32]), Default: func() { c.Timeout = nil }},
	}
}

func (c *CommonCreateRequest) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, c.fields()...)
}

func (c *CommonCreateRequest) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, c.fields()...)
}

func (c *CommonCreateRequest) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, c.fields()...)
}

// CreateRequest 为创建 S 类型对象的请求。
type CreateRequest[S any, P core.CreatablePtr[S]] struct {
	Common CommonCreateRequest `json:"common"`
	Spec   S                   `json:"spec"`
}

type (
	TopicCreateRequest     = CreateRequest[topic.TopicSpec, *topic.TopicSpec]
	SpuGroupCreateRequest  = CreateRequest[spg.SpuGroupSpec, *spg.SpuGroupSpec]
	CustomSpuCreateRequest = CreateRequest[spu.CustomSpuSpec, *spu.CustomSpuSpec]
)

// NewCreateRequest 返回以 name 创建 spec 的请求。
func NewCreateRequest[S any, P core.CreatablePtr[S]](name string, spec S) *CreateRequest[S, P] {
	return &CreateRequest[S, P]{Common: CommonCreateRequest{Name: name}, Spec: spec}
}

func (r *CreateRequest[S, P]) KindLabel() string {
	return core.Label[S, P]()
}

func (r *CreateRequest[S, P]) Shape() Shape {
	return ShapeCreate
}

// SpecValue 返回指向 Spec 的指针。
func (r *CreateRequest[S, P]) SpecValue() any {
	return &r.Spec
}

func (r *CreateRequest[S, P]) fields() []codec.Field {
	return []codec.Field{
		{Name: "common", Value: &r.Common},
		{Name: "spec", Value: P(&r.Spec)},
	}
}

func (r *CreateRequest[S, P]) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, r.fields()...)
}

func (r *CreateRequest[S, P]) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, r.fields()...)
}

func (r *CreateRequest[S, P]) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, r.fields()...)
}

// ObjectApiCreateRequest 为与资源类型无关的创建请求。
type ObjectApiCreateRequest struct {
	objectApi
}

var createShape = shapeInfo{shape: ShapeCreate, apiKey: uint16(Create), classic: decodeClassicCreate}

// NewObjectApiCreateRequest 在 version 下将创建请求装入 ObjectApiCreateRequest。
func NewObjectApiCreateRequest(req Payload, version codec.Version) (*ObjectApiCreateRequest, error) {
	out := &ObjectApiCreateRequest{}
	if err := out.wrap(&createShape, req, version); err != nil {
		return nil, err
	}
	return out, nil
}

func (*ObjectApiCreateRequest) ApiKey() uint16                   { return uint16(Create) }
func (*ObjectApiCreateRequest) MinApiVersion() codec.Version     { return MinApiVersion }
func (*ObjectApiCreateRequest) DefaultApiVersion() codec.Version { return CommonVersion }
func (*ObjectApiCreateRequest) NewResponse() codec.Value         { return &Status{} }

func (r *ObjectApiCreateRequest) WriteSize(version codec.Version) int {
	return r.size(&createShape, version)
}

func (r *ObjectApiCreateRequest) Encode(dst *codec.Buffer, version codec.Version) error {
	return r.encode(dst, &createShape, version)
}

func (r *ObjectApiCreateRequest) Decode(src *codec.Cursor, version codec.Version) error {
	return r.decode(src, &createShape, version)
}
