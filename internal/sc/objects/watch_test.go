package objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/streamplane-go/internal/metadata/partition"
	"github.com/lk2023060901/streamplane-go/internal/metadata/store"
	"github.com/lk2023060901/streamplane-go/internal/metadata/topic"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
)

func TestListResponseFromStore(t *testing.T) {
	topics := store.NewLocalStore[topic.TopicSpec]()
	topics.Apply(store.NewObject[topic.TopicSpec]("topic-b", *topic.NewTopicSpec(1, 1)))
	topics.Apply(store.NewObject[topic.TopicSpec]("topic-a", *topic.NewTopicSpec(4, 3)))

	resp, err := NewObjectApiListResponse(NewListResponse[topic.TopicSpec](topics.List()), CommonVersion)
	require.NoError(t, err)
	data, err := codec.Marshal(resp, CommonVersion)
	require.NoError(t, err)

	decoded := &ObjectApiListResponse{}
	require.NoError(t, codec.UnmarshalExact(data, decoded, CommonVersion))
	typed, ok, err := Downcast[ListResponse[topic.TopicSpec, *topic.TopicSpec]](decoded.Buffer())
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, typed.Objects, 2)
	assert.Equal(t, "topic-a", typed.Objects[0].Name)
	assert.Equal(t, uint32(4), typed.Objects[0].Spec.Replicas.Partitions())
	assert.IsType(t, &topic.TopicStatus{}, typed.Objects[0].Status)
	assert.Equal(t, "topic-b", typed.Objects[1].Name)
}

func TestListResponseClassic(t *testing.T) {
	partitions := store.NewLocalStore[partition.PartitionSpec]()
	partitions.Apply(store.NewObject[partition.PartitionSpec]("topic-a-0", *partition.NewPartitionSpec(5001, 5002)))

	resp, err := NewObjectApiListResponse(NewListResponse[partition.PartitionSpec](partitions.List()), 4)
	require.NoError(t, err)
	data, err := codec.Marshal(resp, 4)
	require.NoError(t, err)

	decoded := &ObjectApiListResponse{}
	require.NoError(t, codec.UnmarshalExact(data, decoded, 4))
	assert.Equal(t, partition.PartitionLabel, decoded.Buffer().Tag())

	typed, ok, err := Downcast[ListResponse[partition.PartitionSpec, *partition.PartitionSpec]](decoded.Buffer())
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, typed.Objects, 1)
	assert.Equal(t, int32(5001), typed.Objects[0].Spec.Leader)
	// 版本 5 之前不传 Size。
	status, ok := typed.Objects[0].Status.(*partition.PartitionStatus)
	require.True(t, ok)
	assert.Equal(t, partition.UnknownSize, status.Size)
}

func TestWatchResponseFromStore(t *testing.T) {
	topics := store.NewLocalStore[topic.TopicSpec]()
	topics.Apply(store.NewObject[topic.TopicSpec]("topic-a", *topic.NewTopicSpec(1, 1)))
	topics.Apply(store.NewObject[topic.TopicSpec]("topic-b", *topic.NewTopicSpec(1, 1)))

	roundTrip := func(changes store.Changes[topic.TopicSpec]) *WatchResponse[topic.TopicSpec, *topic.TopicSpec] {
		resp, err := NewObjectApiWatchResponse(NewWatchResponse[topic.TopicSpec](changes), CommonVersion)
		require.NoError(t, err)
		data, err := codec.Marshal(resp, CommonVersion)
		require.NoError(t, err)
		decoded := &ObjectApiWatchResponse{}
		require.NoError(t, codec.UnmarshalExact(data, decoded, CommonVersion))
		typed, ok, err := Downcast[WatchResponse[topic.TopicSpec, *topic.TopicSpec]](decoded.Buffer())
		require.NoError(t, err)
		require.True(t, ok)
		return typed
	}

	// 首次订阅为全量同步。
	full := roundTrip(topics.ChangesSince(0))
	assert.True(t, full.Inner.IsSyncAll())
	assert.Equal(t, int64(2), full.Inner.Epoch)
	assert.Len(t, full.Inner.All, 2)
	assert.Nil(t, full.Inner.Changes)

	topics.Apply(store.NewObject[topic.TopicSpec]("topic-c", *topic.NewTopicSpec(2, 1)))
	require.NoError(t, topics.Delete("topic-a"))

	delta := roundTrip(topics.ChangesSince(full.Inner.Epoch))
	assert.False(t, delta.Inner.IsSyncAll())
	assert.Equal(t, int64(4), delta.Inner.Epoch)
	require.Len(t, delta.Inner.Changes, 1)
	assert.Equal(t, "topic-c", delta.Inner.Changes[0].Name)
	assert.Equal(t, []string{"topic-a"}, delta.Inner.Deletes)

	// 没有新的变化。
	idle := roundTrip(topics.ChangesSince(delta.Inner.Epoch))
	assert.Nil(t, idle.Inner.Changes)
	assert.Nil(t, idle.Inner.Deletes)
	assert.False(t, idle.Inner.IsSyncAll())
}
