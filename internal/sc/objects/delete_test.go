package objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/streamplane-go/internal/json"
	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spu"
	"github.com/lk2023060901/streamplane-go/internal/metadata/topic"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

func TestDeleteRequestForceAtVersion13(t *testing.T) {
	req := NewDeleteRequest[topic.TopicSpec](core.NewName("topic-a"))
	data, err := codec.Marshal(req, 13)
	require.NoError(t, err)

	got := &TopicDeleteRequest{}
	require.NoError(t, codec.UnmarshalExact(data, got, 13))
	assert.False(t, got.IsForce())
	assert.Equal(t, "topic-a", got.Key().String())
}

func TestDeleteRequestWithoutForceBeforeVersion13(t *testing.T) {
	req := NewDeleteRequestWith[topic.TopicSpec](core.NewName("topic-a"), true)

	v13, err := codec.Marshal(req, 13)
	require.NoError(t, err)
	v10, err := codec.Marshal(req, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 7, 't', 'o', 'p', 'i', 'c', '-', 'a'}, v10)
	assert.Equal(t, append(v10, 1), v13)

	got := &TopicDeleteRequest{}
	require.NoError(t, codec.UnmarshalExact(v10, got, 10))
	assert.False(t, got.IsForce())
	assert.Equal(t, "topic-a", got.KeyString())

	got = &TopicDeleteRequest{}
	err = codec.Unmarshal(v10, got, 13)
	assert.ErrorIs(t, err, merr.ErrBufferUnderflow)
}

func TestDeleteRequestDefaultKey(t *testing.T) {
	var req CustomSpuDeleteRequest
	id, ok := req.Key().ID()
	assert.True(t, ok)
	assert.Equal(t, int32(0), id)

	var named TopicDeleteRequest
	assert.Equal(t, "", named.KeyString())
	assert.Equal(t, topic.TopicLabel, named.KindLabel())
	assert.Equal(t, ShapeDelete, named.Shape())
}

func TestCustomSpuDeleteRequest(t *testing.T) {
	req := NewDeleteRequestWith[spu.CustomSpuSpec](spu.CustomSpuKeyID(42), true)
	data, err := codec.Marshal(req, CommonVersion)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 2, 'I', 'd', 0, 0, 0, 42, 1}, data)

	got := &CustomSpuDeleteRequest{}
	require.NoError(t, codec.UnmarshalExact(data, got, CommonVersion))
	assert.True(t, got.IsForce())
	assert.Equal(t, "42", got.KeyString())

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"42","force":true}`, string(out))
}

func TestObjectApiDeleteRequestDescriptor(t *testing.T) {
	req := &ObjectApiDeleteRequest{}
	assert.Equal(t, uint16(1002), req.ApiKey())
	assert.Equal(t, codec.Version(1), req.MinApiVersion())
	assert.Equal(t, codec.Version(14), req.DefaultApiVersion())
	assert.IsType(t, &Status{}, req.NewResponse())

	_, err := NewObjectApiDeleteRequest(NewListRequest[topic.TopicSpec](false), CommonVersion)
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)
}
