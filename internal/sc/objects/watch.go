package objects

import (
	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/metadata/store"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
)

// WatchRequest 为订阅 S 类型对象变化的请求，Epoch 为调用方已经同步到的位置。
type WatchRequest[S any, P core.SpecPtr[S]] struct {
	Epoch int64 `json:"epoch"`
	// Summary 自版本 10 起出现在线路上。
	Summary bool `json:"summary"`
}

func NewWatchRequest[S any, P core.SpecPtr[S]](epoch int64, summary bool) *WatchRequest[S, P] {
	return &WatchRequest[S, P]{Epoch: epoch, Summary: summary}
}

func (r *WatchRequest[S, P]) KindLabel() string {
	return core.Label[S, P]()
}

func (r *WatchRequest[S, P]) Shape() Shape {
	return ShapeWatch
}

func (r *WatchRequest[S, P]) fields() []codec.Field {
	return []codec.Field{
		{Name: "epoch", Value: codec.Int(&r.Epoch)},
		{Name: "summary", MinVersion: 10, Value: codec.Bool(&r.Summary), Default: func() { r.Summary = false }},
	}
}

func (r *WatchRequest[S, P]) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, r.fields()...)
}

func (r *WatchRequest[S, P]) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, r.fields()...)
}

func (r *WatchRequest[S, P]) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, r.fields()...)
}

// WatchResponse 为订阅请求的响应。
type WatchResponse[S any, P core.SpecPtr[S]] struct {
	Inner MetadataUpdate[S, P] `json:"inner"`
}

// NewWatchResponse 由存储的增量构造响应。
func NewWatchResponse[S any, P core.SpecPtr[S]](changes store.Changes[S]) *WatchResponse[S, P] {
	return &WatchResponse[S, P]{Inner: UpdateFromStore[S, P](changes)}
}

func (r *WatchResponse[S, P]) KindLabel() string {
	return core.Label[S, P]()
}

func (r *WatchResponse[S, P]) Shape() Shape {
	return ShapeWatchResponse
}

func (r *WatchResponse[S, P]) WriteSize(version codec.Version) int {
	return r.Inner.WriteSize(version)
}

func (r *WatchResponse[S, P]) Encode(dst *codec.Buffer, version codec.Version) error {
	return r.Inner.Encode(dst, version)
}

func (r *WatchResponse[S, P]) Decode(src *codec.Cursor, version codec.Version) error {
	return r.Inner.Decode(src, version)
}

// ObjectApiWatchRequest 为与资源类型无关的订阅请求。
type ObjectApiWatchRequest struct {
	objectApi
}

var watchShape = shapeInfo{shape: ShapeWatch, apiKey: uint16(Watch), classic: decodeClassicWatch}

// NewObjectApiWatchRequest 在 version 下将订阅请求装入 ObjectApiWatchRequest。
func NewObjectApiWatchRequest(req Payload, version codec.Version) (*ObjectApiWatchRequest, error) {
	out := &ObjectApiWatchRequest{}
	if err := out.wrap(&watchShape, req, version); err != nil {
		return nil, err
	}
	return out, nil
}

func (*ObjectApiWatchRequest) ApiKey() uint16                   { return uint16(Watch) }
func (*ObjectApiWatchRequest) MinApiVersion() codec.Version     { return MinApiVersion }
func (*ObjectApiWatchRequest) DefaultApiVersion() codec.Version { return CommonVersion }
func (*ObjectApiWatchRequest) NewResponse() codec.Value         { return &ObjectApiWatchResponse{} }

func (r *ObjectApiWatchRequest) WriteSize(version codec.Version) int {
	return r.size(&watchShape, version)
}

func (r *ObjectApiWatchRequest) Encode(dst *codec.Buffer, version codec.Version) error {
	return r.encode(dst, &watchShape, version)
}

func (r *ObjectApiWatchRequest) Decode(src *codec.Cursor, version codec.Version) error {
	return r.decode(src, &watchShape, version)
}

// ObjectApiWatchResponse 为与资源类型无关的订阅响应。
type ObjectApiWatchResponse struct {
	objectApi
}

var watchResponseShape = shapeInfo{shape: ShapeWatchResponse, apiKey: uint16(Watch), classic: decodeClassicWatchResponse}

// NewObjectApiWatchResponse 在 version 下将订阅响应装入 ObjectApiWatchResponse。
func NewObjectApiWatchResponse(resp Payload, version codec.Version) (*ObjectApiWatchResponse, error) {
	out := &ObjectApiWatchResponse{}
	if err := out.wrap(&watchResponseShape, resp, version); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ObjectApiWatchResponse) WriteSize(version codec.Version) int {
	return r.size(&watchResponseShape, version)
}

func (r *ObjectApiWatchResponse) Encode(dst *codec.Buffer, version codec.Version) error {
	return r.encode(dst, &watchResponseShape, version)
}

func (r *ObjectApiWatchResponse) Decode(src *codec.Cursor, version codec.Version) error {
	return r.decode(src, &watchResponseShape, version)
}
