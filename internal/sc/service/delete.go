package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spu"
	"github.com/lk2023060901/streamplane-go/internal/metadata/store"
	"github.com/lk2023060901/streamplane-go/internal/protocol/api"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/internal/sc/objects"
	"github.com/lk2023060901/streamplane-go/pkg/log"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
	"github.com/lk2023060901/streamplane-go/pkg/util/typeutil"
)

// handleDelete 处理删除请求。force 为 true 时删除不存在的对象也视为成功。
func (s *Service) handleDelete(ctx context.Context, header api.RequestHeader, req api.Request) (codec.Value, error) {
	payload, err := s.registry.ResolveDelete(req.(*objects.ObjectApiDeleteRequest))
	if err != nil {
		return objects.NewStatusError("", err), nil
	}

	var (
		name  string
		force bool
	)
	s.mu.Lock()
	switch r := payload.(type) {
	case *objects.TopicDeleteRequest:
		name, force = r.KeyString(), r.IsForce()
		err = s.deleteTopic(name)
	case *objects.SpuGroupDeleteRequest:
		name, force = r.KeyString(), r.IsForce()
		err = s.deleteSpuGroup(name)
	case *objects.CustomSpuDeleteRequest:
		name, force = r.KeyString(), r.IsForce()
		err = s.deleteCustomSpu(r.Key())
	default:
		err = merr.WrapErrKindNotRemovable(payload.KindLabel())
	}
	s.mu.Unlock()
	if force && merr.Code(err) == merr.Code(merr.ErrObjectNotFound) {
		err = nil
	}

	logger := log.Ctx(ctx).With(log.FieldKind(payload.KindLabel()), zap.String("name", name), zap.Bool("force", force))
	if err != nil {
		logger.Warn("delete object failed", zap.Error(err))
		return objects.NewStatusError(name, err), nil
	}
	logger.Info("object deleted")
	return objects.NewStatusOk(name), nil
}

// deleteTopic 删除 Topic 及其全部分区。
func (s *Service) deleteTopic(name string) error {
	if err := s.topics.Delete(name); err != nil {
		return err
	}
	return deleteOwned(s.partitions, name)
}

// deleteSpuGroup 删除 SpuGroup 及其托管的 SPU。
func (s *Service) deleteSpuGroup(name string) error {
	if err := s.spgs.Delete(name); err != nil {
		return err
	}
	return deleteOwned(s.spus, name)
}

func (s *Service) deleteCustomSpu(key *spu.CustomSpuKey) error {
	name, ok := key.Name()
	if !ok {
		id, _ := key.ID()
		obj, found := s.findCustomSpu(id)
		if !found {
			return merr.WrapErrObjectNotFound(spu.CustomSpuLabel, key.String())
		}
		name = obj.Key
	}
	if _, ok := s.customSpus.Get(name); !ok {
		return merr.WrapErrObjectNotFound(spu.CustomSpuLabel, name)
	}
	// 先删 SPU：失败时两个存储都保持原样。
	if err := s.spus.Delete(name); err != nil {
		return err
	}
	return s.customSpus.Delete(name)
}

func (s *Service) findCustomSpu(id int32) (*store.MetadataStoreObject[spu.CustomSpuSpec], bool) {
	for _, obj := range s.customSpus.List() {
		if obj.Spec.ID == id {
			return obj, true
		}
	}
	return nil, false
}

// spuIDs 返回已经占用的 SPU ID。
func (s *Service) spuIDs() typeutil.Set[int32] {
	ids := typeutil.NewSet[int32]()
	for _, obj := range s.spus.List() {
		ids.Insert(obj.Spec.ID)
	}
	return ids
}

// deleteOwned 删除 owner 名下的全部对象。
func deleteOwned[S any, P core.SpecPtr[S]](objs *store.LocalStore[S, P], owner string) error {
	for _, obj := range objs.List() {
		if obj.Ctx.OwnerKey != owner {
			continue
		}
		if err := objs.Delete(obj.Key); err != nil {
			return err
		}
	}
	return nil
}
