package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/metadata/partition"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spg"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spu"
	"github.com/lk2023060901/streamplane-go/internal/metadata/topic"
	"github.com/lk2023060901/streamplane-go/internal/protocol/api"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/internal/protocol/router"
	"github.com/lk2023060901/streamplane-go/internal/sc/objects"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

type ServiceSuite struct {
	suite.Suite

	router router.Router
	svc    *Service
}

func (s *ServiceSuite) SetupTest() {
	s.router = router.New(2)
	svc, err := New("0.11.2", objects.DefaultRegistry(), s.router)
	s.Require().NoError(err)
	s.svc = svc
}

func (s *ServiceSuite) call(req api.Request, version codec.Version) codec.Value {
	data, err := codec.Marshal(api.NewRequestMessage(req, 1, "test").WithVersion(version), 0)
	s.Require().NoError(err)
	out, err := s.router.Handle(context.Background(), data)
	s.Require().NoError(err)

	resp := &api.ResponseMessage{Response: req.NewResponse()}
	s.Require().NoError(codec.UnmarshalExact(out, resp, version))
	return resp.Response
}

func (s *ServiceSuite) create(p objects.Payload, version codec.Version) *objects.Status {
	req, err := objects.NewObjectApiCreateRequest(p, version)
	s.Require().NoError(err)
	return s.call(req, version).(*objects.Status)
}

func (s *ServiceSuite) delete(p objects.Payload, version codec.Version) *objects.Status {
	req, err := objects.NewObjectApiDeleteRequest(p, version)
	s.Require().NoError(err)
	return s.call(req, version).(*objects.Status)
}

func (s *ServiceSuite) customSpu(name string, id int32) {
	st := s.create(objects.NewCreateRequest[spu.CustomSpuSpec](name, spu.CustomSpuSpec{ID: id}), objects.CommonVersion)
	s.Require().True(st.IsOk(), st.AsError())
}

func (s *ServiceSuite) TestApiVersions() {
	resp := s.call(&api.ApiVersionsRequest{ClientVersion: "0.11.2", ClientOS: "linux"}, 1).(*api.ApiVersionsResponse)
	s.Equal("0.11.2", resp.PlatformVersion)
	s.Len(resp.ApiKeys, 5)

	k, ok := resp.Lookup(uint16(objects.Delete))
	s.Require().True(ok)
	s.Equal(objects.MinApiVersion, k.MinVersion)
	s.Equal(objects.CommonVersion, k.MaxVersion)
}

func (s *ServiceSuite) TestCreateTopicComputed() {
	s.customSpu("spu-1", 5001)
	s.customSpu("spu-2", 5002)

	st := s.create(objects.NewCreateRequest[topic.TopicSpec]("t", *topic.NewTopicSpec(3, 2)), objects.CommonVersion)
	s.Require().True(st.IsOk(), st.AsError())
	s.Equal("t", st.Name)

	obj, ok := s.svc.Topics().Get("t")
	s.Require().True(ok)
	status := obj.Status.(*topic.TopicStatus)
	s.True(status.IsProvisioned())
	s.Len(status.ReplicaMap, 3)

	parts := s.svc.Partitions().List()
	s.Require().Len(parts, 3)
	s.Equal("t-0", parts[0].Key)
	s.Equal([]int32{5001, 5002}, parts[0].Spec.Replicas)
	s.Equal([]int32{5002, 5001}, parts[1].Spec.Replicas)
	s.Equal(int32(5002), parts[1].Spec.Leader)
	s.Equal("t", parts[2].Ctx.OwnerKey)

	owner, err := s.svc.OwnerOfPartition(parts[2])
	s.Require().NoError(err)
	s.Equal("t", owner.Key)

	st = s.create(objects.NewCreateRequest[topic.TopicSpec]("t", *topic.NewTopicSpec(1, 1)), objects.CommonVersion)
	s.ErrorIs(st.AsError(), merr.ErrObjectExists)
}

func (s *ServiceSuite) TestCreateTopicInsufficientSpus() {
	s.customSpu("spu-1", 5001)

	st := s.create(objects.NewCreateRequest[topic.TopicSpec]("t", *topic.NewTopicSpec(1, 3)), objects.CommonVersion)
	s.Require().True(st.IsOk())

	obj, ok := s.svc.Topics().Get("t")
	s.Require().True(ok)
	status := obj.Status.(*topic.TopicStatus)
	s.Equal(topic.TopicInsufficientResources, status.Resolution)
	s.NotEmpty(status.Reason)
	s.Zero(s.svc.Partitions().Len())
}

func (s *ServiceSuite) TestCreateTopicAssignedClassic() {
	spec := topic.TopicSpec{Replicas: topic.NewAssignedReplicas(topic.PartitionMap{ID: 0, Replicas: []int32{1, 2}})}
	st := s.create(objects.NewCreateRequest[topic.TopicSpec]("assigned", spec), 9)
	s.Require().True(st.IsOk(), st.AsError())

	part, ok := s.svc.Partitions().Get("assigned-0")
	s.Require().True(ok)
	s.Equal(int32(1), part.Spec.Leader)

	bad := topic.TopicSpec{Replicas: topic.NewAssignedReplicas(topic.PartitionMap{ID: 0, Replicas: []int32{1, 1}})}
	st = s.create(objects.NewCreateRequest[topic.TopicSpec]("bad", bad), objects.CommonVersion)
	s.ErrorIs(st.AsError(), merr.ErrParameterInvalid)
}

func (s *ServiceSuite) TestCreateDryRun() {
	req := objects.NewCreateRequest[topic.TopicSpec]("dry", *topic.NewTopicSpec(1, 1))
	req.Common.DryRun = true
	st := s.create(req, objects.CommonVersion)
	s.True(st.IsOk())
	s.Zero(s.svc.Topics().Len())

	st = s.create(objects.NewCreateRequest[topic.TopicSpec]("", *topic.NewTopicSpec(1, 1)), objects.CommonVersion)
	s.ErrorIs(st.AsError(), merr.ErrParameterMissing)
}

func (s *ServiceSuite) TestSpuGroup() {
	st := s.create(objects.NewCreateRequest[spg.SpuGroupSpec]("group", spg.SpuGroupSpec{Replicas: 2, MinID: 100}), objects.CommonVersion)
	s.Require().True(st.IsOk(), st.AsError())
	s.Equal(2, s.svc.Spus().Len())

	managed, ok := s.svc.Spus().Get("group-1")
	s.Require().True(ok)
	s.Equal(int32(101), managed.Spec.ID)
	s.Equal(spu.SpuTypeManaged, managed.Spec.SpuType)

	// ID 区间与已有 SPU 冲突时仍然保存，但状态为 Invalid。
	st = s.create(objects.NewCreateRequest[spg.SpuGroupSpec]("overlap", spg.SpuGroupSpec{Replicas: 2, MinID: 101}), objects.CommonVersion)
	s.Require().True(st.IsOk())
	obj, ok := s.svc.SpuGroups().Get("overlap")
	s.Require().True(ok)
	s.Equal(spg.SpuGroupInvalid, obj.Status.(*spg.SpuGroupStatus).Resolution)
	s.Equal(2, s.svc.Spus().Len())

	st = s.delete(objects.NewDeleteRequest[spg.SpuGroupSpec](core.NewName("group")), objects.CommonVersion)
	s.Require().True(st.IsOk(), st.AsError())
	s.Zero(s.svc.Spus().Len())
}

func (s *ServiceSuite) TestDeleteTopic() {
	s.customSpu("spu-1", 5001)
	s.Require().True(s.create(objects.NewCreateRequest[topic.TopicSpec]("t", *topic.NewTopicSpec(2, 1)), objects.CommonVersion).IsOk())
	s.Equal(2, s.svc.Partitions().Len())

	// 版本 10 使用旧布局。
	st := s.delete(objects.NewDeleteRequest[topic.TopicSpec](core.NewName("t")), 10)
	s.Require().True(st.IsOk(), st.AsError())
	s.Zero(s.svc.Topics().Len())
	s.Zero(s.svc.Partitions().Len())

	st = s.delete(objects.NewDeleteRequest[topic.TopicSpec](core.NewName("t")), objects.CommonVersion)
	s.ErrorIs(st.AsError(), merr.ErrObjectNotFound)
	s.Equal("t", st.Name)

	st = s.delete(objects.NewDeleteRequestWith[topic.TopicSpec](core.NewName("t"), true), objects.CommonVersion)
	s.True(st.IsOk())
}

func (s *ServiceSuite) TestDeleteCustomSpu() {
	s.customSpu("spu-1", 5001)
	s.customSpu("spu-2", 5002)

	st := s.create(objects.NewCreateRequest[spu.CustomSpuSpec]("spu-3", spu.CustomSpuSpec{ID: 5001}), objects.CommonVersion)
	s.ErrorIs(st.AsError(), merr.ErrObjectExists)

	st = s.delete(objects.NewDeleteRequest[spu.CustomSpuSpec](spu.CustomSpuKeyID(5002)), objects.CommonVersion)
	s.Require().True(st.IsOk(), st.AsError())
	st = s.delete(objects.NewDeleteRequest[spu.CustomSpuSpec](spu.CustomSpuKeyName("spu-1")), 5)
	s.Require().True(st.IsOk(), st.AsError())
	s.Zero(s.svc.Spus().Len())
	s.Zero(s.svc.CustomSpus().Len())

	st = s.delete(objects.NewDeleteRequest[spu.CustomSpuSpec](spu.CustomSpuKeyID(7)), objects.CommonVersion)
	s.ErrorIs(st.AsError(), merr.ErrObjectNotFound)
}

func (s *ServiceSuite) TestList() {
	s.customSpu("spu-1", 5001)
	s.Require().True(s.create(objects.NewCreateRequest[topic.TopicSpec]("t", *topic.NewTopicSpec(2, 1)), objects.CommonVersion).IsOk())

	for _, version := range []codec.Version{objects.CommonVersion, 4} {
		req, err := objects.NewObjectApiListRequest(objects.NewListRequest[partition.PartitionSpec](false, "t-1"), version)
		s.Require().NoError(err)
		resp := s.call(req, version).(*objects.ObjectApiListResponse)

		typed, ok, err := objects.Downcast[objects.ListResponse[partition.PartitionSpec, *partition.PartitionSpec]](resp.Buffer())
		s.Require().NoError(err)
		s.Require().True(ok)
		s.Require().Len(typed.Objects, 1)
		s.Equal("t-1", typed.Objects[0].Name)
		s.Equal(version, resp.Buffer().Version())
	}

	req, err := objects.NewObjectApiListRequest(objects.NewListRequest[spu.SpuSpec](false), objects.CommonVersion)
	s.Require().NoError(err)
	resp := s.call(req, objects.CommonVersion).(*objects.ObjectApiListResponse)
	typed, ok, err := objects.Downcast[objects.ListResponse[spu.SpuSpec, *spu.SpuSpec]](resp.Buffer())
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Require().Len(typed.Objects, 1)
	s.True(typed.Objects[0].Spec.IsCustom())
}

func (s *ServiceSuite) TestWatch() {
	watch := func(epoch int64) *objects.WatchResponse[topic.TopicSpec, *topic.TopicSpec] {
		req, err := objects.NewObjectApiWatchRequest(objects.NewWatchRequest[topic.TopicSpec](epoch, false), objects.CommonVersion)
		s.Require().NoError(err)
		resp := s.call(req, objects.CommonVersion).(*objects.ObjectApiWatchResponse)
		typed, ok, err := objects.Downcast[objects.WatchResponse[topic.TopicSpec, *topic.TopicSpec]](resp.Buffer())
		s.Require().NoError(err)
		s.Require().True(ok)
		return typed
	}

	s.Require().True(s.create(objects.NewCreateRequest[topic.TopicSpec]("a", *topic.NewTopicSpec(1, 1)), objects.CommonVersion).IsOk())
	full := watch(0)
	s.True(full.Inner.IsSyncAll())
	s.Require().Len(full.Inner.All, 1)
	s.Equal(topic.TopicInsufficientResources, full.Inner.All[0].Status.(*topic.TopicStatus).Resolution)

	s.Require().True(s.create(objects.NewCreateRequest[topic.TopicSpec]("b", *topic.NewTopicSpec(1, 1)), objects.CommonVersion).IsOk())
	s.Require().True(s.delete(objects.NewDeleteRequest[topic.TopicSpec](core.NewName("a")), objects.CommonVersion).IsOk())

	delta := watch(full.Inner.Epoch)
	s.False(delta.Inner.IsSyncAll())
	s.Require().Len(delta.Inner.Changes, 1)
	s.Equal("b", delta.Inner.Changes[0].Name)
	s.Equal([]string{"a"}, delta.Inner.Deletes)
}

func (s *ServiceSuite) TestPartitionLimit() {
	s.customSpu("spu-1", 5001)

	st := s.create(objects.NewCreateRequest[topic.TopicSpec]("huge", *topic.NewTopicSpec(math.MaxUint32, 1)), objects.CommonVersion)
	s.ErrorIs(st.AsError(), merr.ErrParameterInvalid)
	s.Zero(s.svc.Topics().Len())
	s.Zero(s.svc.Partitions().Len())

	r := router.New(1)
	svc, err := New("0.11.2", objects.DefaultRegistry(), r, WithMaxPartitions(4))
	s.Require().NoError(err)
	s.router, s.svc = r, svc
	s.customSpu("spu-1", 5001)

	st = s.create(objects.NewCreateRequest[topic.TopicSpec]("five", *topic.NewTopicSpec(5, 1)), objects.CommonVersion)
	s.ErrorIs(st.AsError(), merr.ErrParameterInvalid)

	maps := make([]topic.PartitionMap, 5)
	for i := range maps {
		maps[i] = topic.PartitionMap{ID: uint32(i), Replicas: []int32{5001}}
	}
	st = s.create(objects.NewCreateRequest[topic.TopicSpec]("assigned", topic.TopicSpec{Replicas: topic.NewAssignedReplicas(maps...)}), objects.CommonVersion)
	s.ErrorIs(st.AsError(), merr.ErrParameterInvalid)

	st = s.create(objects.NewCreateRequest[topic.TopicSpec]("four", *topic.NewTopicSpec(4, 1)), objects.CommonVersion)
	s.Require().True(st.IsOk(), st.AsError())
	s.Equal(1, s.svc.Topics().Len())
	s.Equal(4, s.svc.Partitions().Len())
}

func (s *ServiceSuite) TestSpuGroupIDOverflow() {
	st := s.create(objects.NewCreateRequest[spg.SpuGroupSpec]("edge", spg.SpuGroupSpec{Replicas: 3, MinID: math.MaxInt32 - 1}), objects.CommonVersion)
	s.ErrorIs(st.AsError(), merr.ErrParameterInvalid)
	s.Zero(s.svc.SpuGroups().Len())
	s.Zero(s.svc.Spus().Len())
}

func (s *ServiceSuite) TestConcurrentDuplicateCreates() {
	var frames [][]byte
	for i := 0; i < 32; i++ {
		for _, p := range []objects.Payload{
			objects.NewCreateRequest[spu.CustomSpuSpec]("dup", spu.CustomSpuSpec{ID: 5001}),
			objects.NewCreateRequest[spu.CustomSpuSpec](fmt.Sprintf("same-id-%d", i), spu.CustomSpuSpec{ID: 6001}),
			objects.NewCreateRequest[topic.TopicSpec]("t", *topic.NewTopicSpec(1, 1)),
		} {
			req, err := objects.NewObjectApiCreateRequest(p, objects.CommonVersion)
			s.Require().NoError(err)
			data, err := codec.Marshal(api.NewRequestMessage(req, int32(len(frames)), "test").WithVersion(objects.CommonVersion), 0)
			s.Require().NoError(err)
			frames = append(frames, data)
		}
	}

	ok := 0
	for _, res := range s.router.HandleBatch(context.Background(), frames) {
		s.Require().NoError(res.Err)
		resp := &api.ResponseMessage{Response: &objects.Status{}}
		s.Require().NoError(codec.UnmarshalExact(res.Response, resp, objects.CommonVersion))
		if st := resp.Response.(*objects.Status); st.IsOk() {
			ok++
		} else {
			s.ErrorIs(st.AsError(), merr.ErrObjectExists)
		}
	}
	s.Equal(3, ok)
	s.Equal(2, s.svc.Spus().Len())
	s.Equal(2, s.svc.CustomSpus().Len())
	s.Equal(1, s.svc.Topics().Len())
}

func (s *ServiceSuite) TestDeleteCustomSpuKeepsStoresAligned() {
	s.customSpu("spu-1", 5001)
	s.Require().NoError(s.svc.Spus().Delete("spu-1"))

	st := s.delete(objects.NewDeleteRequest[spu.CustomSpuSpec](spu.CustomSpuKeyName("spu-1")), objects.CommonVersion)
	s.ErrorIs(st.AsError(), merr.ErrObjectNotFound)
	s.Equal(1, s.svc.CustomSpus().Len())
}

func TestService(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}
