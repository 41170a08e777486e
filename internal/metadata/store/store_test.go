package store

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/streamplane-go/internal/metadata/partition"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spu"
	"github.com/lk2023060901/streamplane-go/internal/metadata/topic"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

type LocalStoreSuite struct {
	suite.Suite

	topics     *LocalStore[topic.TopicSpec, *topic.TopicSpec]
	partitions *LocalStore[partition.PartitionSpec, *partition.PartitionSpec]
}

func (s *LocalStoreSuite) SetupTest() {
	s.topics = NewLocalStore[topic.TopicSpec]()
	s.partitions = NewLocalStore[partition.PartitionSpec]()
}

func (s *LocalStoreSuite) TestApplyAndGet() {
	s.Equal(topic.TopicLabel, s.topics.Label())

	epoch := s.topics.Apply(NewObject[topic.TopicSpec]("topic-a", *topic.NewTopicSpec(2, 1)))
	s.Equal(int64(1), epoch)

	obj, ok := s.topics.Get("topic-a")
	s.Require().True(ok)
	s.Equal(uint64(1), obj.Ctx.Revision)
	s.IsType(&topic.TopicStatus{}, obj.Status)
	s.Equal(uint32(2), obj.Spec.Replicas.Partitions())

	obj.Ctx.Labels = map[string]string{"mutated": "yes"}
	again, _ := s.topics.Get("topic-a")
	s.Nil(again.Ctx.Labels)

	s.topics.Apply(obj)
	again, _ = s.topics.Get("topic-a")
	s.Equal(uint64(2), again.Ctx.Revision)
	s.Equal(int64(2), s.topics.Epoch())

	_, ok = s.topics.Get("missing")
	s.False(ok)
}

func (s *LocalStoreSuite) TestApplyFillsStatus() {
	s.topics.Apply(&MetadataStoreObject[topic.TopicSpec]{Key: "topic-b"})
	obj, ok := s.topics.Get("topic-b")
	s.Require().True(ok)
	s.NotNil(obj.Status)
}

func (s *LocalStoreSuite) TestListAndDelete() {
	for _, name := range []string{"c", "a", "b"} {
		s.topics.Apply(NewObject[topic.TopicSpec](name, *topic.NewTopicSpec(1, 1)))
	}
	keys := func(objs []*MetadataStoreObject[topic.TopicSpec]) []string {
		out := make([]string, 0, len(objs))
		for _, o := range objs {
			out = append(out, o.Key)
		}
		return out
	}
	s.Equal([]string{"a", "b", "c"}, keys(s.topics.List()))
	s.Equal([]string{"a", "c"}, keys(s.topics.List("c", "a", "zzz")))

	s.NoError(s.topics.Delete("b"))
	s.ErrorIs(s.topics.Delete("b"), merr.ErrObjectNotFound)
	s.Equal(2, s.topics.Len())
}

func (s *LocalStoreSuite) TestChangesSince() {
	s.topics.Apply(NewObject[topic.TopicSpec]("a", *topic.NewTopicSpec(1, 1)))
	s.topics.Apply(NewObject[topic.TopicSpec]("b", *topic.NewTopicSpec(1, 1)))
	mark := s.topics.Epoch()

	s.topics.Apply(NewObject[topic.TopicSpec]("c", *topic.NewTopicSpec(1, 1)))
	s.NoError(s.topics.Delete("a"))

	changes := s.topics.ChangesSince(mark)
	s.False(changes.All)
	s.Equal(int64(4), changes.Epoch)
	s.Require().Len(changes.Updates, 1)
	s.Equal("c", changes.Updates[0].Key)
	s.Equal([]string{"a"}, changes.Deletes)

	all := s.topics.ChangesSince(0)
	s.True(all.All)
	s.Len(all.Updates, 2)
	s.Empty(all.Deletes)
}

func (s *LocalStoreSuite) TestOwnerOf() {
	s.topics.Apply(NewObject[topic.TopicSpec]("topic-a", *topic.NewTopicSpec(1, 1)))
	child := NewObject[partition.PartitionSpec]("topic-a-0", *partition.NewPartitionSpec(5001)).WithOwner("topic-a")
	s.partitions.Apply(child)

	owner, err := OwnerOf(child, s.topics)
	s.Require().NoError(err)
	s.Equal("topic-a", owner.Key)

	orphan := NewObject[partition.PartitionSpec]("topic-x-0", *partition.NewPartitionSpec(5001)).WithOwner("topic-x")
	_, err = OwnerOf(orphan, s.topics)
	s.ErrorIs(err, merr.ErrObjectNotFound)

	_, err = OwnerOf(NewObject[partition.PartitionSpec]("p", partition.PartitionSpec{}), s.topics)
	s.ErrorIs(err, merr.ErrObjectNotFound)

	spus := NewLocalStore[spu.SpuSpec]()
	_, err = OwnerOf(child, spus)
	s.ErrorIs(err, merr.ErrParameterInvalid)
}

func (s *LocalStoreSuite) TestLabels() {
	obj := NewObject[topic.TopicSpec]("a", *topic.NewTopicSpec(1, 1)).WithLabels(map[string]string{"team": "ingest"})
	s.topics.Apply(obj)
	got, _ := s.topics.Get("a")
	s.Equal("ingest", got.Ctx.Labels["team"])
	s.False(got.IsOwned())
}

func TestLocalStore(t *testing.T) {
	suite.Run(t, new(LocalStoreSuite))
}
