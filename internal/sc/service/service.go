// Package service 将管理请求接入 Router，并在本地存储上执行 Create、Delete、List、Watch。
package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/lk2023060901/streamplane-go/internal/metadata/partition"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spg"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spu"
	"github.com/lk2023060901/streamplane-go/internal/metadata/store"
	"github.com/lk2023060901/streamplane-go/internal/metadata/topic"
	"github.com/lk2023060901/streamplane-go/internal/protocol/api"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/internal/protocol/router"
	"github.com/lk2023060901/streamplane-go/internal/sc/objects"
	"github.com/lk2023060901/streamplane-go/pkg/log"
)

// DefaultMaxPartitions 为单个 Topic 允许的默认分区数上限，与 sc.max-partitions 的默认值一致。
const DefaultMaxPartitions uint32 = 10000

// Option 为 Service 的可选配置。
type Option func(*Service)

// WithMaxPartitions 设置单个 Topic 的分区数上限，0 保持默认值。
func WithMaxPartitions(n uint32) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPartitions = n
		}
	}
}

// Service 为控制面的对象管理服务，每种资源类型一个 LocalStore。
type Service struct {
	log.Binder

	platform      string
	registry      *objects.Registry
	router        router.Router
	maxPartitions uint32

	// mu 串行化 Create 与 Delete，检查与写入之间不允许其他写请求插入。
	mu sync.Mutex

	topics     *store.LocalStore[topic.TopicSpec, *topic.TopicSpec]
	spus       *store.LocalStore[spu.SpuSpec, *spu.SpuSpec]
	customSpus *store.LocalStore[spu.CustomSpuSpec, *spu.CustomSpuSpec]
	spgs       *store.LocalStore[spg.SpuGroupSpec, *spg.SpuGroupSpec]
	partitions *store.LocalStore[partition.PartitionSpec, *partition.PartitionSpec]
}

// New 创建 Service 并在 r 上注册 ApiVersions 与全部管理请求。
func New(platform string, registry *objects.Registry, r router.Router, opts ...Option) (*Service, error) {
	s := &Service{
		platform:      platform,
		registry:      registry,
		router:        r,
		maxPartitions: DefaultMaxPartitions,
		topics:        store.NewLocalStore[topic.TopicSpec](),
		spus:          store.NewLocalStore[spu.SpuSpec](),
		customSpus:    store.NewLocalStore[spu.CustomSpuSpec](),
		spgs:          store.NewLocalStore[spg.SpuGroupSpec](),
		partitions:    store.NewLocalStore[partition.PartitionSpec](),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.BindComponent("sc")

	routes := []router.Route{
		{NewRequest: func() api.Request { return &api.ApiVersionsRequest{} }, Handler: s.handleApiVersions},
		{NewRequest: func() api.Request { return &objects.ObjectApiCreateRequest{} }, Handler: s.handleCreate},
		{NewRequest: func() api.Request { return &objects.ObjectApiDeleteRequest{} }, Handler: s.handleDelete},
		{NewRequest: func() api.Request { return &objects.ObjectApiListRequest{} }, Handler: s.handleList},
		{NewRequest: func() api.Request { return &objects.ObjectApiWatchRequest{} }, Handler: s.handleWatch},
	}
	for _, route := range routes {
		if err := r.Register(route); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Service) Topics() *store.LocalStore[topic.TopicSpec, *topic.TopicSpec] {
	return s.topics
}

func (s *Service) Spus() *store.LocalStore[spu.SpuSpec, *spu.SpuSpec] {
	return s.spus
}

func (s *Service) CustomSpus() *store.LocalStore[spu.CustomSpuSpec, *spu.CustomSpuSpec] {
	return s.customSpus
}

func (s *Service) SpuGroups() *store.LocalStore[spg.SpuGroupSpec, *spg.SpuGroupSpec] {
	return s.spgs
}

func (s *Service) Partitions() *store.LocalStore[partition.PartitionSpec, *partition.PartitionSpec] {
	return s.partitions
}

func (s *Service) handleApiVersions(ctx context.Context, header api.RequestHeader, req api.Request) (codec.Value, error) {
	r := req.(*api.ApiVersionsRequest)
	log.Ctx(ctx).Debug("api versions requested",
		zap.String("clientVersion", r.ClientVersion),
		zap.String("clientOS", r.ClientOS),
		zap.String("clientArch", r.ClientArch))
	return api.NewApiVersionsResponse(s.platform, s.router.Descriptors()...)
}
