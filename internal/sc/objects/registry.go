package objects

import (
	"strconv"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/metadata/partition"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spg"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spu"
	"github.com/lk2023060901/streamplane-go/internal/metadata/topic"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/log"
	"github.com/lk2023060901/streamplane-go/pkg/metrics"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
	"github.com/lk2023060901/streamplane-go/pkg/util/typeutil"
)

// tryFunc 尝试将 TypeBuffer 解释为某个资源类型上的某种形态。
type tryFunc func(tb *TypeBuffer) (Payload, bool, error)

func tryAs[T any, PT interface {
	*T
	Payload
}](tb *TypeBuffer) (Payload, bool, error) {
	v, ok, err := Downcast[T, PT](tb)
	if !ok || err != nil {
		return nil, ok, err
	}
	return PT(v), true, nil
}

// Entry 为注册表中的一个资源类型，记录它支持的请求形态。
type Entry struct {
	kind   core.Kind
	shapes map[Shape]tryFunc
}

// KindEntry 返回支持 List、Watch 的资源类型。
func KindEntry[S any, P core.SpecPtr[S]]() *Entry {
	return &Entry{
		kind: core.DescribeType[S, P](),
		shapes: map[Shape]tryFunc{
			ShapeList:          tryAs[ListRequest[S, P]],
			ShapeWatch:         tryAs[WatchRequest[S, P]],
			ShapeListResponse:  tryAs[ListResponse[S, P]],
			ShapeWatchResponse: tryAs[WatchResponse[S, P]],
		},
	}
}

// WithDelete 为 Removable 的资源类型登记删除请求。
func WithDelete[S any, P core.RemovablePtr[S, K], K codec.Value](e *Entry) *Entry {
	e.shapes[ShapeDelete] = tryAs[DeleteRequest[S, P, K]]
	return e
}

// WithCreate 为 Creatable 的资源类型登记创建请求。
func WithCreate[S any, P core.CreatablePtr[S]](e *Entry) *Entry {
	e.shapes[ShapeCreate] = tryAs[CreateRequest[S, P]]
	return e
}

func (e *Entry) Kind() core.Kind {
	return e.kind
}

// Supports 判断资源类型是否支持 shape。
func (e *Entry) Supports(shape Shape) bool {
	_, ok := e.shapes[shape]
	return ok
}

// DefaultKinds 返回内置的资源类型，顺序固定为：Topic、SPU、CustomSpu、SpuGroup、Partition。
//
// 解析 TypeBuffer 时按此顺序尝试，第一个标签匹配的类型决定结果。
func DefaultKinds() []*Entry {
	return []*Entry{
		WithCreate[topic.TopicSpec](WithDelete[topic.TopicSpec, *topic.TopicSpec, *core.Name](KindEntry[topic.TopicSpec]())),
		KindEntry[spu.SpuSpec](),
		WithCreate[spu.CustomSpuSpec](WithDelete[spu.CustomSpuSpec, *spu.CustomSpuSpec, *spu.CustomSpuKey](KindEntry[spu.CustomSpuSpec]())),
		WithCreate[spg.SpuGroupSpec](WithDelete[spg.SpuGroupSpec, *spg.SpuGroupSpec, *core.Name](KindEntry[spg.SpuGroupSpec]())),
		KindEntry[partition.PartitionSpec](),
	}
}

// Registry 为封闭、有序的资源类型表，构造完成后只读。
type Registry struct {
	entries []*Entry
	byLabel map[string]*Entry
}

// NewRegistry 按给定顺序创建注册表，标签或对象类型标记重复时返回 KindRegistered。
func NewRegistry(entries ...*Entry) (*Registry, error) {
	r := &Registry{
		entries: make([]*Entry, 0, len(entries)),
		byLabel: make(map[string]*Entry, len(entries)),
	}
	objectTypes := typeutil.NewSet[core.ObjectType]()
	for _, e := range entries {
		label := e.kind.Label
		if _, ok := r.byLabel[label]; ok {
			return nil, merr.WrapErrKindRegistered(label)
		}
		if e.kind.Has(core.CapabilityDiscriminated) && !objectTypes.TryInsert(e.kind.ObjectType) {
			return nil, merr.WrapErrKindRegistered(label, "duplicate object type "+e.kind.ObjectType.String())
		}
		r.entries = append(r.entries, e)
		r.byLabel[label] = e
	}
	return r, nil
}

var defaultRegistry = lo.Must(NewRegistry(DefaultKinds()...))

// DefaultRegistry 返回由 DefaultKinds 构成的注册表。
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Kinds 按注册顺序返回全部资源类型。
func (r *Registry) Kinds() []core.Kind {
	return lo.Map(r.entries, func(e *Entry, _ int) core.Kind { return e.kind })
}

// Lookup 按标签查找资源类型。
func (r *Registry) Lookup(label string) (*Entry, bool) {
	e, ok := r.byLabel[label]
	return e, ok
}

// Resolve 按注册顺序逐个尝试资源类型，返回第一个标签匹配的结果（成功或失败）。
//
// 所有类型都不匹配时返回 UnknownResourceKind；标签属于已注册类型但该类型不支持 shape 时，
// 删除返回 KindNotRemovable，创建返回 KindNotCreatable。
func (r *Registry) Resolve(apiKey AdminPublicApiKey, shape Shape, tb *TypeBuffer) (Payload, error) {
	apiLabel := strconv.Itoa(int(apiKey))
	for _, e := range r.entries {
		try, ok := e.shapes[shape]
		if !ok {
			continue
		}
		v, matched, err := try(tb)
		if !matched {
			continue
		}
		if err != nil {
			metrics.DispatchTotal.WithLabelValues(apiLabel, e.kind.Label, metrics.FailLabel).Inc()
			log.Warn("decode object payload failed",
				log.FieldApiKey(uint16(apiKey)),
				log.FieldKind(e.kind.Label),
				log.FieldVersion(int16(tb.Version())),
				zap.Error(err))
			return nil, err
		}
		metrics.DispatchTotal.WithLabelValues(apiLabel, e.kind.Label, metrics.SuccessLabel).Inc()
		log.Debug("object payload resolved", log.FieldApiKey(uint16(apiKey)), log.FieldKind(e.kind.Label))
		return v, nil
	}

	metrics.DispatchTotal.WithLabelValues(apiLabel, metrics.UnknownKindLabel, metrics.FailLabel).Inc()
	if _, ok := r.byLabel[tb.Tag()]; ok {
		switch shape {
		case ShapeDelete:
			return nil, merr.WrapErrKindNotRemovable(tb.Tag())
		case ShapeCreate:
			return nil, merr.WrapErrKindNotCreatable(tb.Tag())
		}
	}
	return nil, merr.WrapErrUnknownResourceKind(tb.Tag())
}

// ResolveCreate 解析创建请求。
func (r *Registry) ResolveCreate(req *ObjectApiCreateRequest) (Payload, error) {
	return r.Resolve(Create, ShapeCreate, req.Buffer())
}

// ResolveDelete 解析删除请求。
func (r *Registry) ResolveDelete(req *ObjectApiDeleteRequest) (Payload, error) {
	return r.Resolve(Delete, ShapeDelete, req.Buffer())
}

// ResolveList 解析列表请求。
func (r *Registry) ResolveList(req *ObjectApiListRequest) (Payload, error) {
	return r.Resolve(List, ShapeList, req.Buffer())
}

// ResolveWatch 解析订阅请求。
func (r *Registry) ResolveWatch(req *ObjectApiWatchRequest) (Payload, error) {
	return r.Resolve(Watch, ShapeWatch, req.Buffer())
}
