package service

import (
	"context"

	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
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

// handleList 处理列表请求，响应按请求版本装入 TypeBuffer。
func (s *Service) handleList(ctx context.Context, header api.RequestHeader, req api.Request) (codec.Value, error) {
	payload, err := s.registry.ResolveList(req.(*objects.ObjectApiListRequest))
	if err != nil {
		return nil, err
	}

	var resp objects.Payload
	switch r := payload.(type) {
	case *objects.ListRequest[topic.TopicSpec, *topic.TopicSpec]:
		resp = listOf(s.topics, r)
	case *objects.ListRequest[spu.SpuSpec, *spu.SpuSpec]:
		resp = listOf(s.spus, r)
	case *objects.ListRequest[spu.CustomSpuSpec, *spu.CustomSpuSpec]:
		resp = listOf(s.customSpus, r)
	case *objects.ListRequest[spg.SpuGroupSpec, *spg.SpuGroupSpec]:
		resp = listOf(s.spgs, r)
	case *objects.ListRequest[partition.PartitionSpec, *partition.PartitionSpec]:
		resp = listOf(s.partitions, r)
	default:
		return nil, merr.WrapErrUnknownResourceKind(payload.KindLabel(), "list")
	}
	log.Ctx(ctx).Debug("list objects", log.FieldKind(payload.KindLabel()))
	return objects.NewObjectApiListResponse(resp, header.ApiVersion)
}

// handleWatch 处理订阅请求，返回请求 epoch 之后的增量。
func (s *Service) handleWatch(ctx context.Context, header api.RequestHeader, req api.Request) (codec.Value, error) {
	payload, err := s.registry.ResolveWatch(req.(*objects.ObjectApiWatchRequest))
	if err != nil {
		return nil, err
	}

	var resp objects.Payload
	switch r := payload.(type) {
	case *objects.WatchRequest[topic.TopicSpec, *topic.TopicSpec]:
		resp = watchOf(s.topics, r)
	case *objects.WatchRequest[spu.SpuSpec, *spu.SpuSpec]:
		resp = watchOf(s.spus, r)
	case *objects.WatchRequest[spu.CustomSpuSpec, *spu.CustomSpuSpec]:
		resp = watchOf(s.customSpus, r)
	case *objects.WatchRequest[spg.SpuGroupSpec, *spg.SpuGroupSpec]:
		resp = watchOf(s.spgs, r)
	case *objects.WatchRequest[partition.PartitionSpec, *partition.PartitionSpec]:
		resp = watchOf(s.partitions, r)
	default:
		return nil, merr.WrapErrUnknownResourceKind(payload.KindLabel(), "watch")
	}
	log.Ctx(ctx).Debug("watch objects", log.FieldKind(payload.KindLabel()))
	return objects.NewObjectApiWatchResponse(resp, header.ApiVersion)
}

func listOf[S any, P core.SpecPtr[S]](objs *store.LocalStore[S, P], req *objects.ListRequest[S, P]) objects.Payload {
	return objects.NewListResponse[S, P](objs.List(req.NameFilters...))
}

func watchOf[S any, P core.SpecPtr[S]](objs *store.LocalStore[S, P], req *objects.WatchRequest[S, P]) objects.Payload {
	return objects.NewWatchResponse[S, P](objs.ChangesSince(req.Epoch))
}

// OwnerOfPartition 返回分区所属的 Topic。
func (s *Service) OwnerOfPartition(obj *store.MetadataStoreObject[partition.PartitionSpec]) (*store.MetadataStoreObject[topic.TopicSpec], error) {
	return store.OwnerOf(obj, s.topics)
}
