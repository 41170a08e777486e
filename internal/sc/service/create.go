package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/lk2023060901/streamplane-go/internal/metadata/partition"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spg"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spu"
	"github.com/lk2023060901/streamplane-go/internal/metadata/store"
	"github.com/lk2023060901/streamplane-go/internal/metadata/topic"
	"github.com/lk2023060901/streamplane-go/internal/protocol/api"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/internal/sc/objects"
	"github.com/lk2023060901/streamplane-go/pkg/log"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

// handleCreate 处理创建请求，业务失败写入 Status，只有无法识别的请求才返回 error。
func (s *Service) handleCreate(ctx context.Context, header api.RequestHeader, req api.Request) (codec.Value, error) {
	payload, err := s.registry.ResolveCreate(req.(*objects.ObjectApiCreateRequest))
	if err != nil {
		return objects.NewStatusError("", err), nil
	}

	var name string
	s.mu.Lock()
	switch r := payload.(type) {
	case *objects.TopicCreateRequest:
		name, err = r.Common.Name, s.createTopic(r)
	case *objects.SpuGroupCreateRequest:
		name, err = r.Common.Name, s.createSpuGroup(r)
	case *objects.CustomSpuCreateRequest:
		name, err = r.Common.Name, s.createCustomSpu(r)
	default:
		err = merr.WrapErrKindNotCreatable(payload.KindLabel())
	}
	s.mu.Unlock()

	logger := log.Ctx(ctx).With(log.FieldKind(payload.KindLabel()), zap.String("name", name))
	if err != nil {
		logger.Warn("create object failed", zap.Error(err))
		return objects.NewStatusError(name, err), nil
	}
	logger.Info("object created")
	return objects.NewStatusOk(name), nil
}

func (s *Service) createTopic(r *objects.TopicCreateRequest) error {
	name := r.Common.Name
	if name == "" {
		return merr.WrapErrParameterMissing("name")
	}
	if _, ok := s.topics.Get(name); ok {
		return merr.WrapErrObjectExists(topic.TopicLabel, name)
	}

	status := &topic.TopicStatus{}
	maps, err := s.assignReplicas(&r.Spec.Replicas)
	switch {
	case errors.Is(err, merr.ErrParameterInvalid):
		return err
	case err != nil:
		status.Resolution = topic.TopicInsufficientResources
		status.Reason = err.Error()
	default:
		status.SetProvisioned(maps)
	}
	if r.Common.DryRun {
		return nil
	}

	obj := store.NewObject[topic.TopicSpec](name, r.Spec)
	obj.Status = status
	s.topics.Apply(obj)
	for _, m := range status.ReplicaMap {
		key := partition.ReplicaKey{Topic: name, Partition: m.ID}
		s.partitions.Apply(store.NewObject[partition.PartitionSpec](key.String(), *partition.NewPartitionSpec(m.Replicas...)).WithOwner(name))
	}
	return nil
}

// assignReplicas 为 Topic 计算副本分配。
//
// Assigned 直接使用给定的分配；Computed 按 SPU ID 升序轮转分配，SPU 不足时返回错误。
func (s *Service) assignReplicas(replicas *topic.ReplicaSpec) ([]topic.PartitionMap, error) {
	if assigned, ok := replicas.Assigned(); ok {
		if uint32(len(assigned.Maps)) > s.maxPartitions {
			return nil, merr.WrapErrParameterInvalidMsg("%d partitions exceed limit %d", len(assigned.Maps), s.maxPartitions)
		}
		for _, m := range assigned.Maps {
			if len(m.Replicas) == 0 || len(lo.Uniq(m.Replicas)) != len(m.Replicas) {
				return nil, merr.WrapErrParameterInvalidMsg("invalid replicas %v for partition %d", m.Replicas, m.ID)
			}
		}
		return assigned.Maps, nil
	}

	param, _ := replicas.Computed()
	if param.Partitions == 0 || param.ReplicationFactor == 0 {
		return nil, merr.WrapErrParameterInvalidMsg("partitions and replication factor must be positive")
	}
	if param.Partitions > s.maxPartitions {
		return nil, merr.WrapErrParameterInvalidMsg("%d partitions exceed limit %d", param.Partitions, s.maxPartitions)
	}
	ids := lo.Map(s.spus.List(), func(obj *store.MetadataStoreObject[spu.SpuSpec], _ int) int32 { return obj.Spec.ID })
	slices.Sort(ids)
	if uint32(len(ids)) < param.ReplicationFactor {
		return nil, errors.Newf("replication factor %d exceeds %d available spus", param.ReplicationFactor, len(ids))
	}

	maps := make([]topic.PartitionMap, 0, param.Partitions)
	for p := uint32(0); p < param.Partitions; p++ {
		m := topic.PartitionMap{ID: p}
		for i := uint32(0); i < param.ReplicationFactor; i++ {
			m.Replicas = append(m.Replicas, ids[(p+i)%uint32(len(ids))])
		}
		maps = append(maps, m)
	}
	return maps, nil
}

func (s *Service) createSpuGroup(r *objects.SpuGroupCreateRequest) error {
	name := r.Common.Name
	if name == "" {
		return merr.WrapErrParameterMissing("name")
	}
	if _, ok := s.spgs.Get(name); ok {
		return merr.WrapErrObjectExists(spg.SpuGroupLabel, name)
	}
	if r.Spec.Replicas == 0 {
		return merr.WrapErrParameterInvalidMsg("spu group %s has no replicas", name)
	}
	if err := r.Spec.ValidateIDRange(); err != nil {
		return err
	}

	status := &spg.SpuGroupStatus{}
	taken := s.spuIDs()
	if conflicts := lo.Filter(r.Spec.SpuIDs(), func(id int32, _ int) bool { return taken.Contain(id) }); len(conflicts) > 0 {
		status.SetInvalid(fmt.Sprintf("spu ids %v already in use", conflicts))
	} else {
		status.SetReserved()
	}
	if r.Common.DryRun {
		return nil
	}

	obj := store.NewObject[spg.SpuGroupSpec](name, r.Spec)
	obj.Status = status
	s.spgs.Apply(obj)
	if !status.IsReserved() {
		return nil
	}
	for i, id := range r.Spec.SpuIDs() {
		spec := spu.SpuSpec{ID: id, SpuType: spu.SpuTypeManaged, Rack: r.Spec.SpuConfig.Rack}
		s.spus.Apply(store.NewObject[spu.SpuSpec](fmt.Sprintf("%s-%d", name, i), spec).WithOwner(name))
	}
	return nil
}

func (s *Service) createCustomSpu(r *objects.CustomSpuCreateRequest) error {
	name := r.Common.Name
	if name == "" {
		return merr.WrapErrParameterMissing("name")
	}
	if _, ok := s.spus.Get(name); ok {
		return merr.WrapErrObjectExists(spu.SpuLabel, name)
	}
	if s.spuIDs().Contain(r.Spec.ID) {
		return merr.WrapErrObjectExists(spu.SpuLabel, r.Spec.ID)
	}
	if r.Common.DryRun {
		return nil
	}

	s.spus.Apply(store.NewObject[spu.SpuSpec](name, r.Spec.IntoSpuSpec()))
	s.customSpus.Apply(store.NewObject[spu.CustomSpuSpec](name, r.Spec).WithOwner(name))
	return nil
}
