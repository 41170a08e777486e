package objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/metadata/spu"
	"github.com/lk2023060901/streamplane-go/internal/metadata/topic"
	"github.com/lk2023060901/streamplane-go/internal/protocol/api"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

func TestObjectApiDeleteEnvelope(t *testing.T) {
	req, err := NewObjectApiDeleteRequest(NewDeleteRequest[topic.TopicSpec](core.NewName("topic-a")), CommonVersion)
	require.NoError(t, err)

	data, err := codec.Marshal(req, CommonVersion)
	require.NoError(t, err)
	// [api_key][version][tag][payload]
	assert.Equal(t, []byte{0x03, 0xea, 0, 14, 0, 5, 'T', 'o', 'p', 'i', 'c'}, data[:11])

	got := &ObjectApiDeleteRequest{}
	require.NoError(t, codec.UnmarshalExact(data, got, CommonVersion))
	assert.Equal(t, req.Buffer(), got.Buffer())

	// 不是 CustomSpu。
	_, ok, err := Downcast[CustomSpuDeleteRequest](got.Buffer())
	assert.False(t, ok)
	assert.NoError(t, err)

	// 是 Topic，键与 force 保持不变。
	typed, ok, err := Downcast[TopicDeleteRequest](got.Buffer())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "topic-a", typed.Key().String())
	assert.False(t, typed.IsForce())
}

func TestObjectApiApiKeyMismatch(t *testing.T) {
	req, err := NewObjectApiListRequest(NewListRequest[topic.TopicSpec](false), CommonVersion)
	require.NoError(t, err)
	data, err := codec.Marshal(req, CommonVersion)
	require.NoError(t, err)

	err = codec.Unmarshal(data, &ObjectApiDeleteRequest{}, CommonVersion)
	assert.ErrorIs(t, err, merr.ErrApiKeyMismatch)

	// Topic 的 List 不能按 SPU 取出。
	_, ok, err := Downcast[ListRequest[spu.SpuSpec, *spu.SpuSpec]](req.Buffer())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestObjectApiInRequestMessage(t *testing.T) {
	inner := NewDeleteRequestWith[spu.CustomSpuSpec](spu.CustomSpuKeyName("spu-7"), true)
	req, err := NewObjectApiDeleteRequest(inner, CommonVersion)
	require.NoError(t, err)

	msg := api.NewRequestMessage(req, 7, "admin")
	data, err := codec.Marshal(msg, 0)
	require.NoError(t, err)

	decoded := &api.RequestMessage[*ObjectApiDeleteRequest]{Request: &ObjectApiDeleteRequest{}}
	require.NoError(t, codec.UnmarshalExact(data, decoded, 0))
	assert.Equal(t, int32(7), decoded.Header.CorrelationID)
	assert.Equal(t, CommonVersion, decoded.Header.ApiVersion)

	typed, ok, err := Downcast[CustomSpuDeleteRequest](decoded.Request.Buffer())
	require.NoError(t, err)
	require.True(t, ok)
	name, _ := typed.Key().Name()
	assert.Equal(t, "spu-7", name)
	assert.True(t, typed.IsForce())
}

func TestObjectApiVersionOutOfRange(t *testing.T) {
	req, err := NewObjectApiDeleteRequest(NewDeleteRequest[topic.TopicSpec](core.NewName("a")), CommonVersion)
	require.NoError(t, err)
	data, err := codec.Marshal(api.NewRequestMessage(req, 1, "admin").WithVersion(CommonVersion), 0)
	require.NoError(t, err)
	// 将消息头中的版本改为 15。
	data[3] = 15

	decoded := &api.RequestMessage[*ObjectApiDeleteRequest]{Request: &ObjectApiDeleteRequest{}}
	err = codec.Unmarshal(data, decoded, 0)
	assert.ErrorIs(t, err, merr.ErrVersionUnsupported)
}
