package objects

import (
	"github.com/lk2023060901/streamplane-go/internal/metadata/partition"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spg"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spu"
	"github.com/lk2023060901/streamplane-go/internal/metadata/topic"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

// classicKind 为旧布局中的一个资源类型。
type classicKind struct {
	label  string
	decode classicDecoder
}

func classicKindOf[T any, PT interface {
	*T
	Payload
}]() classicKind {
	var zero T
	return classicKind{label: PT(&zero).KindLabel(), decode: classicRewrap[T, PT]}
}

// classicRewrap 按请求版本解码 T，再以同一版本重新装入 TypeBuffer。
// 旧布局的内容没有长度前缀，只有完整解码才能知道内容在哪里结束。
func classicRewrap[T any, PT interface {
	*T
	Payload
}](src *codec.Cursor, version codec.Version) (TypeBuffer, error) {
	v := PT(new(T))
	if err := v.Decode(src, version); err != nil {
		return TypeBuffer{}, merr.WrapErrDecodeCause(v.KindLabel(), err)
	}
	return EncodeTypeBuffer(v, version)
}

func decodeClassic(kinds []classicKind, shape Shape, src *codec.Cursor, version codec.Version) (TypeBuffer, error) {
	var label string
	if err := codec.String(&label).Decode(src, version); err != nil {
		return TypeBuffer{}, err
	}
	for _, k := range kinds {
		if k.label == label {
			return k.decode(src, version)
		}
	}
	return TypeBuffer{}, merr.WrapErrUnknownResourceKind(label, "classic "+shape.String())
}

// 旧布局各形态支持的资源类型，按顺序匹配。
var (
	classicCreateKinds = []classicKind{
		classicKindOf[TopicCreateRequest](),
		classicKindOf[CustomSpuCreateRequest](),
		classicKindOf[SpuGroupCreateRequest](),
	}
	classicDeleteKinds = []classicKind{
		classicKindOf[TopicDeleteRequest](),
		classicKindOf[CustomSpuDeleteRequest](),
		classicKindOf[SpuGroupDeleteRequest](),
	}
	classicListKinds = []classicKind{
		classicKindOf[ListRequest[topic.TopicSpec, *topic.TopicSpec]](),
		classicKindOf[ListRequest[spu.SpuSpec, *spu.SpuSpec]](),
		classicKindOf[ListRequest[spu.CustomSpuSpec, *spu.CustomSpuSpec]](),
		classicKindOf[ListRequest[spg.SpuGroupSpec, *spg.SpuGroupSpec]](),
		classicKindOf[ListRequest[partition.PartitionSpec, *partition.PartitionSpec]](),
	}
	classicWatchKinds = []classicKind{
		classicKindOf[WatchRequest[topic.TopicSpec, *topic.TopicSpec]](),
		classicKindOf[WatchRequest[spu.SpuSpec, *spu.SpuSpec]](),
		classicKindOf[WatchRequest[spu.CustomSpuSpec, *spu.CustomSpuSpec]](),
		classicKindOf[WatchRequest[spg.SpuGroupSpec, *spg.SpuGroupSpec]](),
		classicKindOf[WatchRequest[partition.PartitionSpec, *partition.PartitionSpec]](),
	}
	classicListResponseKinds = []classicKind{
		classicKindOf[ListResponse[topic.TopicSpec, *topic.TopicSpec]](),
		classicKindOf[ListResponse[spu.SpuSpec, *spu.SpuSpec]](),
		classicKindOf[ListResponse[spu.CustomSpuSpec, *spu.CustomSpuSpec]](),
		classicKindOf[ListResponse[spg.SpuGroupSpec, *spg.SpuGroupSpec]](),
		classicKindOf[ListResponse[partition.PartitionSpec, *partition.PartitionSpec]](),
	}
	classicWatchResponseKinds = []classicKind{
		classicKindOf[WatchResponse[topic.TopicSpec, *topic.TopicSpec]](),
		classicKindOf[WatchResponse[spu.SpuSpec, *spu.SpuSpec]](),
		classicKindOf[WatchResponse[spu.CustomSpuSpec, *spu.CustomSpuSpec]](),
		classicKindOf[WatchResponse[spg.SpuGroupSpec, *spg.SpuGroupSpec]](),
		classicKindOf[WatchResponse[partition.PartitionSpec, *partition.PartitionSpec]](),
	}
)

func decodeClassicCreate(src *codec.Cursor, version codec.Version) (TypeBuffer, error) {
	return decodeClassic(classicCreateKinds, ShapeCreate, src, version)
}

func decodeClassicDelete(src *codec.Cursor, version codec.Version) (TypeBuffer, error) {
	return decodeClassic(classicDeleteKinds, ShapeDelete, src, version)
}

func decodeClassicList(src *codec.Cursor, version codec.Version) (TypeBuffer, error) {
	return decodeClassic(classicListKinds, ShapeList, src, version)
}

func decodeClassicWatch(src *codec.Cursor, version codec.Version) (TypeBuffer, error) {
	return decodeClassic(classicWatchKinds, ShapeWatch, src, version)
}

func decodeClassicListResponse(src *codec.Cursor, version codec.Version) (TypeBuffer, error) {
	return decodeClassic(classicListResponseKinds, ShapeListResponse, src, version)
}

func decodeClassicWatchResponse(src *codec.Cursor, version codec.Version) (TypeBuffer, error) {
	return decodeClassic(classicWatchResponseKinds, ShapeWatchResponse, src, version)
}
