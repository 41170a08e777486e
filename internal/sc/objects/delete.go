package objects

import (
	"fmt"

	"github.com/lk2023060901/streamplane-go/internal/json"
	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spg"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spu"
	"github.com/lk2023060901/streamplane-go/internal/metadata/topic"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
)

// DeleteRequest 为按删除键删除 S 类型对象的请求。
//
// 线路格式：版本 >= 13 为 [key][force u8]，更低的版本只有 [key]。
type DeleteRequest[S any, P core.RemovablePtr[S, K], K codec.Value] struct {
	key    K
	hasKey bool
	force  bool
}

type (
	TopicDeleteRequest     = DeleteRequest[topic.TopicSpec, *topic.TopicSpec, *core.Name]
	SpuGroupDeleteRequest  = DeleteRequest[spg.SpuGroupSpec, *spg.SpuGroupSpec, *core.Name]
	CustomSpuDeleteRequest = DeleteRequest[spu.CustomSpuSpec, *spu.CustomSpuSpec, *spu.CustomSpuKey]
)

// NewDeleteRequest 返回 force 为 false 的删除请求。
func NewDeleteRequest[S any, P core.RemovablePtr[S, K], K codec.Value](key K) *DeleteRequest[S, P, K] {
	return &DeleteRequest[S, P, K]{key: key, hasKey: true}
}

// NewDeleteRequestWith 返回指定 force 的删除请求。
func NewDeleteRequestWith[S any, P core.RemovablePtr[S, K], K codec.Value](key K, force bool) *DeleteRequest[S, P, K] {
	return &DeleteRequest[S, P, K]{key: key, hasKey: true, force: force}
}

// Key 返回删除键。
func (r *DeleteRequest[S, P, K]) Key() K {
	return r.ensureKey()
}

// IsForce 判断是否强制删除。
func (r *DeleteRequest[S, P, K]) IsForce() bool {
	return r.force
}

func (r *DeleteRequest[S, P, K]) KindLabel() string {
	return core.Label[S, P]()
}

func (r *DeleteRequest[S, P, K]) Shape() Shape {
	return ShapeDelete
}

// KeyString 返回删除键的文本形式。
func (r *DeleteRequest[S, P, K]) KeyString() string {
	if s, ok := any(r.ensureKey()).(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", r.ensureKey())
}

// ensureKey 在解码前为删除键准备默认值。
func (r *DeleteRequest[S, P, K]) ensureKey() K {
	if !r.hasKey {
		var spec S
		r.key = P(&spec).NewDeleteKey()
		r.hasKey = true
	}
	return r.key
}

func (r *DeleteRequest[S, P, K]) fields() []codec.Field {
	return []codec.Field{
		{Name: "key", Value: r.ensureKey()},
		{Name: "force", MinVersion: 13, Value: codec.Bool(&r.force), Default: func() { r.force = false }},
	}
}

func (r *DeleteRequest[S, P, K]) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, r.fields()...)
}

func (r *DeleteRequest[S, P, K]) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, r.fields()...)
}

func (r *DeleteRequest[S, P, K]) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, r.fields()...)
}

func (r *DeleteRequest[S, P, K]) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"key":   r.KeyString(),
		"force": r.force,
	})
}

// ObjectApiDeleteRequest 为与资源类型无关的删除请求。
type ObjectApiDeleteRequest struct {
	objectApi
}

var deleteShape = shapeInfo{shape: ShapeDelete, apiKey: uint16(Delete), classic: decodeClassicDelete}

// NewObjectApiDeleteRequest 在 version 下将删除请求装入 ObjectApiDeleteRequest。
func NewObjectApiDeleteRequest(req Payload, version codec.Version) (*ObjectApiDeleteRequest, error) {
	out := &ObjectApiDeleteRequest{}
	if err := out.wrap(&deleteShape, req, version); err != nil {
		return nil, err
	}
	return out, nil
}

func (*ObjectApiDeleteRequest) ApiKey() uint16                   { return uint16(Delete) }
func (*ObjectApiDeleteRequest) MinApiVersion() codec.Version     { return MinApiVersion }
func (*ObjectApiDeleteRequest) DefaultApiVersion() codec.Version { return CommonVersion }
func (*ObjectApiDeleteRequest) NewResponse() codec.Value         { return &Status{} }

func (r *ObjectApiDeleteRequest) WriteSize(version codec.Version) int {
	return r.size(&deleteShape, version)
}

func (r *ObjectApiDeleteRequest) Encode(dst *codec.Buffer, version codec.Version) error {
	return r.encode(dst, &deleteShape, version)
}

func (r *ObjectApiDeleteRequest) Decode(src *codec.Cursor, version codec.Version) error {
	return r.decode(src, &deleteShape, version)
}
