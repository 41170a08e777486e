package objects

import (
	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/metadata/store"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
)

// ListRequest 为列出 S 类型对象的请求，NameFilters 为空时列出全部。
type ListRequest[S any, P core.SpecPtr[S]] struct {
	NameFilters []string `json:"name_filters"`
	// Summary 自版本 10 起出现在线路上。
	Summary bool `json:"summary"`
}

// NewListRequest 返回按名称过滤的列表请求。
func NewListRequest[S any, P core.SpecPtr[S]](summary bool, names ...string) *ListRequest[S, P] {
	return &ListRequest[S, P]{NameFilters: names, Summary: summary}
}

func (r *ListRequest[S, P]) KindLabel() string {
	return core.Label[S, P]()
}

func (r *ListRequest[S, P]) Shape() Shape {
	return ShapeList
}

func (r *ListRequest[S, P]) fields() []codec.Field {
	return []codec.Field{
		{Name: "name_filters", Value: codec.Strings(&r.NameFilters)},
		{Name: "summary", MinVersion: 10, Value: codec.Bool(&r.Summary), Default: func() { r.Summary = false }},
	}
}

func (r *ListRequest[S, P]) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, r.fields()...)
}

func (r *ListRequest[S, P]) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, r.fields()...)
}

func (r *ListRequest[S, P]) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, r.fields()...)
}

// ListResponse 为列表请求的响应。
type ListResponse[S any, P core.SpecPtr[S]] struct {
	Objects []Metadata[S, P] `json:"objects"`
}

// NewListResponse 由存储对象构造响应。
func NewListResponse[S any, P core.SpecPtr[S]](objs []*store.MetadataStoreObject[S]) *ListResponse[S, P] {
	out := &ListResponse[S, P]{}
	for _, obj := range objs {
		out.Objects = append(out.Objects, MetadataFromStore[S, P](obj))
	}
	return out
}

func (r *ListResponse[S, P]) KindLabel() string {
	return core.Label[S, P]()
}

func (r *ListResponse[S, P]) Shape() Shape {
	return ShapeListResponse
}

func (r *ListResponse[S, P]) WriteSize(version codec.Version) int {
	return codec.Slice(&r.Objects, metadataValue[S, P]).WriteSize(version)
}

func (r *ListResponse[S, P]) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.Slice(&r.Objects, metadataValue[S, P]).Encode(dst, version)
}

func (r *ListResponse[S, P]) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.Slice(&r.Objects, metadataValue[S, P]).Decode(src, version)
}

// ObjectApiListRequest 为与资源类型无关的列表请求。
type ObjectApiListRequest struct {
	objectApi
}

var listShape = shapeInfo{shape: ShapeList, apiKey: uint16(List), classic: decodeClassicList}

// NewObjectApiListRequest 在 version 下将列表请求装入 ObjectApiListRequest。
func NewObjectApiListRequest(req Payload, version codec.Version) (*ObjectApiListRequest, error) {
	out := &ObjectApiListRequest{}
	if err := out.wrap(&listShape, req, version); err != nil {
		return nil, err
	}
	return out, nil
}

func (*ObjectApiListRequest) ApiKey() uint16                   { return uint16(List) }
func (*ObjectApiListRequest) MinApiVersion() codec.Version     { return MinApiVersion }
func (*ObjectApiListRequest) DefaultApiVersion() codec.Version { return CommonVersion }
func (*ObjectApiListRequest) NewResponse() codec.Value         { return &ObjectApiListResponse{} }

func (r *ObjectApiListRequest) WriteSize(version codec.Version) int {
	return r.size(&listShape, version)
}

func (r *ObjectApiListRequest) Encode(dst *codec.Buffer, version codec.Version) error {
	return r.encode(dst, &listShape, version)
}

func (r *ObjectApiListRequest) Decode(src *codec.Cursor, version codec.Version) error {
	return r.decode(src, &listShape, version)
}

// ObjectApiListResponse 为与资源类型无关的列表响应。
type ObjectApiListResponse struct {
	objectApi
}

var listResponseShape = shapeInfo{shape: ShapeListResponse, apiKey: uint16(List), classic: decodeClassicListResponse}

// NewObjectApiListResponse 在 version 下将列表响应装入 ObjectApiListResponse。
func NewObjectApiListResponse(resp Payload, version codec.Version) (*ObjectApiListResponse, error) {
	out := &ObjectApiListResponse{}
	if err := out.wrap(&listResponseShape, resp, version); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ObjectApiListResponse) WriteSize(version codec.Version) int {
	return r.size(&listResponseShape, version)
}

func (r *ObjectApiListResponse) Encode(dst *codec.Buffer, version codec.Version) error {
	return r.encode(dst, &listResponseShape, version)
}

func (r *ObjectApiListResponse) Decode(src *codec.Cursor, version codec.Version) error {
	return r.decode(src, &listResponseShape, version)
}
