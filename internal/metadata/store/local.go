package store

import (
	"slices"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/pkg/log"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

type entry[S any] struct {
	obj   *MetadataStoreObject[S]
	epoch int64
}

// LocalStore 为单一资源类型的本地存储。
//
// 每次写入或删除都会推进 epoch，Watch 使用 epoch 计算增量。
type LocalStore[S any, P core.SpecPtr[S]] struct {
	log.Binder

	mu      sync.RWMutex
	epoch   int64
	objects map[string]entry[S]
	deletes map[string]int64
}

// NewLocalStore 创建空的 LocalStore。
func NewLocalStore[S any, P core.SpecPtr[S]]() *LocalStore[S, P] {
	return &LocalStore[S, P]{
		objects: make(map[string]entry[S]),
		deletes: make(map[string]int64),
	}
}

// Label 返回存储的资源类型标签。
func (s *LocalStore[S, P]) Label() string {
	return core.Label[S, P]()
}

// Epoch 返回当前 epoch。
func (s *LocalStore[S, P]) Epoch() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Apply 写入对象并返回新的 epoch，对象的 Revision 在已有值的基础上加一。
func (s *LocalStore[S, P]) Apply(obj *MetadataStoreObject[S]) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := obj.clone()
	next := uint64(1)
	if old, ok := s.objects[obj.Key]; ok {
		next = old.obj.Ctx.Revision + 1
	}
	stored.Ctx.Revision = max(stored.Ctx.Revision, next)
	if stored.Status == nil {
		var spec S
		stored.Status = P(&spec).NewStatus()
	}
	s.epoch++
	s.objects[obj.Key] = entry[S]{obj: stored, epoch: s.epoch}
	delete(s.deletes, obj.Key)

	s.Logger().Debug("apply object",
		log.FieldKind(s.Label()),
		zap.String("key", obj.Key),
		zap.Uint64("revision", stored.Ctx.Revision),
		zap.Int64("epoch", s.epoch))
	return s.epoch
}

// Delete 删除对象，对象不存在时返回 ObjectNotFound。
func (s *LocalStore[S, P]) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; !ok {
		return merr.WrapErrObjectNotFound(s.Label(), key)
	}
	s.epoch++
	delete(s.objects, key)
	s.deletes[key] = s.epoch

	s.Logger().Debug("delete object", log.FieldKind(s.Label()), zap.String("key", key), zap.Int64("epoch", s.epoch))
	return nil
}

// Get 返回对象的副本。
func (s *LocalStore[S, P]) Get(key string) (*MetadataStoreObject[S], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.objects[key]
	if !ok {
		return nil, false
	}
	return e.obj.clone(), true
}

// List 按 key 排序返回对象副本，names 非空时只返回名称在其中的对象。
func (s *LocalStore[S, P]) List(names ...string) []*MetadataStoreObject[S] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := lo.Keys(s.objects)
	if len(names) > 0 {
		keys = lo.Filter(keys, func(key string, _ int) bool { return lo.Contains(names, key) })
	}
	slices.Sort(keys)
	return lo.Map(keys, func(key string, _ int) *MetadataStoreObject[S] {
		return s.objects[key].obj.clone()
	})
}

// Changes 为自某个 epoch 之后的增量。
type Changes[S any] struct {
	Epoch   int64
	Updates []*MetadataStoreObject[S]
	Deletes []string
	// All 为 true 时 Updates 为全量，调用方应替换本地缓存。
	All bool
}

// ChangesSince 返回 epoch 之后的增量；epoch 不大于 0 或超前于存储时返回全量。
func (s *LocalStore[S, P]) ChangesSince(epoch int64) Changes[S] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := lo.Keys(s.objects)
	slices.Sort(keys)
	if epoch <= 0 || epoch > s.epoch {
		return Changes[S]{
			Epoch: s.epoch,
			All:   true,
			Updates: lo.Map(keys, func(key string, _ int) *MetadataStoreObject[S] {
				return s.objects[key].obj.clone()
			}),
		}
	}

	changes := Changes[S]{Epoch: s.epoch}
	for _, key := range keys {
		if e := s.objects[key]; e.epoch > epoch {
			changes.Updates = append(changes.Updates, e.obj.clone())
		}
	}
	deleted := lo.Keys(s.deletes)
	slices.Sort(deleted)
	for _, key := range deleted {
		if s.deletes[key] > epoch {
			changes.Deletes = append(changes.Deletes, key)
		}
	}
	return changes
}

// Len 返回对象数量。
func (s *LocalStore[S, P]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// OwnerOf 在 owners 中查找 child 的父对象。
//
// child 所属类型声明的父类型必须与 owners 的类型一致，child 没有父对象 key 时返回 ObjectNotFound。
func OwnerOf[C any, CP core.SpecPtr[C], O any, OP core.SpecPtr[O]](child *MetadataStoreObject[C], owners *LocalStore[O, OP]) (*MetadataStoreObject[O], error) {
	var spec C
	ownerLabel := CP(&spec).OwnerLabel()
	if ownerLabel != owners.Label() {
		return nil, merr.WrapErrParameterInvalid(ownerLabel, owners.Label(), "owner kind mismatch")
	}
	if !child.IsOwned() {
		return nil, merr.WrapErrObjectNotFound(ownerLabel, child.Key, "object has no owner")
	}
	owner, ok := owners.Get(child.Ctx.OwnerKey)
	if !ok {
		return nil, merr.WrapErrObjectNotFound(ownerLabel, child.Ctx.OwnerKey)
	}
	return owner, nil
}
