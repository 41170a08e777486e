package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

func TestTopicSpecRoundTrip(t *testing.T) {
	retention := uint32(3600)
	cases := []struct {
		name string
		spec *TopicSpec
	}{
		{"computed", &TopicSpec{Replicas: NewComputedReplicas(3, 2, true), RetentionSecs: &retention, Compression: CompressionZstd}},
		{"assigned", &TopicSpec{Replicas: NewAssignedReplicas(
			PartitionMap{ID: 0, Replicas: []int32{5001, 5002}},
			PartitionMap{ID: 1, Replicas: []int32{5002, 5003}},
		), Compression: CompressionLz4}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data, err := codec.Marshal(c.spec, 14)
			require.NoError(t, err)
			got := &TopicSpec{}
			require.NoError(t, codec.UnmarshalExact(data, got, 14))
			assert.Equal(t, c.spec, got)
		})
	}
}

func TestTopicSpecVersionGating(t *testing.T) {
	retention := uint32(60)
	in := &TopicSpec{Replicas: NewComputedReplicas(1, 1, false), RetentionSecs: &retention, Compression: CompressionGzip}

	// 版本 2：两个字段都不出现。
	data, err := codec.Marshal(in, 2)
	require.NoError(t, err)
	assert.Len(t, data, 1+4+4+1)
	got := &TopicSpec{RetentionSecs: &retention, Compression: CompressionSnappy}
	require.NoError(t, codec.UnmarshalExact(data, got, 2))
	assert.Nil(t, got.RetentionSecs)
	assert.Equal(t, CompressionAny, got.Compression)

	// 版本 5：只有 retention_secs。
	data, err = codec.Marshal(in, 5)
	require.NoError(t, err)
	got = &TopicSpec{}
	require.NoError(t, codec.UnmarshalExact(data, got, 5))
	require.NotNil(t, got.RetentionSecs)
	assert.Equal(t, uint32(60), *got.RetentionSecs)
	assert.Equal(t, CompressionAny, got.Compression)

	// 以更低版本解码高版本数据不会出错，多余字节由调用方决定是否校验。
	data, err = codec.Marshal(in, 14)
	require.NoError(t, err)
	got = &TopicSpec{}
	require.NoError(t, codec.Unmarshal(data, got, 2))
	assert.Nil(t, got.RetentionSecs)
}

func TestReplicaSpec(t *testing.T) {
	var zero ReplicaSpec
	param, ok := zero.Computed()
	require.True(t, ok)
	assert.Equal(t, uint32(0), param.Partitions)

	assigned := NewAssignedReplicas(PartitionMap{ID: 0, Replicas: []int32{1}})
	assert.Equal(t, uint32(1), assigned.Partitions())
	_, ok = assigned.Computed()
	assert.False(t, ok)

	data, err := codec.Marshal(&assigned, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(0), data[0])

	// 未知标签：目标保持原分支。
	data[0] = 7
	computed := NewComputedReplicas(4, 1, false)
	err = codec.Unmarshal(data, &computed, 0)
	assert.ErrorIs(t, err, merr.ErrUnknownVariant)
	assert.Equal(t, uint32(4), computed.Partitions())
}

func TestTopicStatus(t *testing.T) {
	s := &TopicStatus{}
	s.SetProvisioned([]PartitionMap{{ID: 0, Replicas: []int32{5001}}})
	data, err := codec.Marshal(s, 0)
	require.NoError(t, err)

	got := &TopicStatus{}
	require.NoError(t, codec.UnmarshalExact(data, got, 0))
	assert.True(t, got.IsProvisioned())
	assert.Equal(t, s, got)
	assert.Equal(t, "Provisioned", got.Resolution.String())
}

func TestTopicKind(t *testing.T) {
	kind := core.DescribeType[TopicSpec]()
	assert.Equal(t, TopicLabel, kind.Label)
	assert.True(t, kind.Has(core.CapabilityRemovable))
	assert.True(t, kind.Has(core.CapabilityCreatable))
	assert.Equal(t, core.ObjectTypeTopic, kind.ObjectType)
	assert.Equal(t, uint32(6), NewTopicSpec(6, 3).Replicas.Partitions())
}

func TestReplicaSpecJSON(t *testing.T) {
	computed := NewComputedReplicas(2, 1, false)
	data, err := computed.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"computed":{"Partitions":2,"ReplicationFactor":1,"IgnoreRackAssignment":false}}`, string(data))

	assigned := NewAssignedReplicas(PartitionMap{ID: 0, Replicas: []int32{1, 2}})
	data, err = assigned.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"assigned":[{"ID":0,"Replicas":[1,2]}]}`, string(data))
}
