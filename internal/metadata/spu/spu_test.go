package spu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

func TestCustomSpuKeyID(t *testing.T) {
	for _, version := range []codec.Version{0, 7, 10, 13, 14} {
		data, err := codec.Marshal(CustomSpuKeyID(42), version)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 2, 'I', 'd', 0, 0, 0, 42}, data)

		got := &CustomSpuKey{}
		require.NoError(t, codec.UnmarshalExact(data, got, version))
		assert.Equal(t, "Id", got.TypeString())
		id, ok := got.ID()
		assert.True(t, ok)
		assert.Equal(t, int32(42), id)
		assert.Equal(t, "42", got.String())
	}
}

func TestCustomSpuKeyName(t *testing.T) {
	data, err := codec.Marshal(CustomSpuKeyName("spu-5001"), 13)
	require.NoError(t, err)

	got := &CustomSpuKey{}
	require.NoError(t, codec.UnmarshalExact(data, got, 13))
	name, ok := got.Name()
	assert.True(t, ok)
	assert.Equal(t, "spu-5001", name)
	_, ok = got.ID()
	assert.False(t, ok)
}

func TestCustomSpuKeyDefault(t *testing.T) {
	key := CustomSpuSpec{}.NewDeleteKey()
	assert.Equal(t, "Id", key.TypeString())
	id, ok := key.ID()
	assert.True(t, ok)
	assert.Equal(t, int32(0), id)
}

func TestCustomSpuKeyBogus(t *testing.T) {
	tag := "Bogus"
	buf := codec.NewBuffer()
	defer buf.Release()
	require.NoError(t, codec.String(&tag).Encode(buf, 0))
	id := int32(42)
	require.NoError(t, codec.Int(&id).Encode(buf, 0))

	got := CustomSpuKeyName("keep")
	err := codec.Unmarshal(buf.Bytes(), got, 13)
	assert.ErrorIs(t, err, merr.ErrUnknownVariant)
	assert.Contains(t, err.Error(), "Bogus")
	assert.Contains(t, err.Error(), "CustomSpuKey")

	name, ok := got.Name()
	assert.True(t, ok)
	assert.Equal(t, "keep", name)
}

func TestSpuSpecVersions(t *testing.T) {
	rack := "rack-a"
	host := "spu-0.public"
	in := &SpuSpec{
		ID:      5001,
		SpuType: SpuTypeCustom,
		PublicEndpoint: IngressPort{
			Port:    9005,
			Ingress: []IngressAddr{{Hostname: &host}},
		},
		PrivateEndpoint:     Endpoint{Port: 9006, Host: "spu-0.private", Encryption: EncryptionSSL},
		Rack:                &rack,
		PublicEndpointLocal: &Endpoint{Port: 9010, Host: "localhost"},
	}

	data, err := codec.Marshal(in, 1)
	require.NoError(t, err)
	got := &SpuSpec{}
	require.NoError(t, codec.UnmarshalExact(data, got, 1))
	assert.Equal(t, in, got)
	assert.True(t, got.IsCustom())
	assert.Equal(t, "spu-0.public", got.PublicEndpoint.Host())
	assert.Equal(t, "spu-0.private:9006", got.PrivateEndpoint.String())

	data, err = codec.Marshal(in, 0)
	require.NoError(t, err)
	got = &SpuSpec{PublicEndpointLocal: &Endpoint{}}
	require.NoError(t, codec.UnmarshalExact(data, got, 0))
	assert.Nil(t, got.PublicEndpointLocal)
	assert.Equal(t, in.PrivateEndpoint, got.PrivateEndpoint)
}

func TestSpuStatus(t *testing.T) {
	s := &SpuStatus{}
	s.SetOnline()
	data, err := codec.Marshal(s, 0)
	require.NoError(t, err)

	got := &SpuStatus{}
	require.NoError(t, codec.UnmarshalExact(data, got, 0))
	assert.True(t, got.IsOnline())
	assert.Equal(t, "Online", got.Resolution.String())

	err = codec.Unmarshal([]byte{9}, got, 0)
	assert.ErrorIs(t, err, merr.ErrUnknownVariant)
}

func TestKinds(t *testing.T) {
	kind := core.DescribeType[SpuSpec]()
	assert.Equal(t, SpuLabel, kind.Label)
	assert.Equal(t, "SpuGroup", kind.OwnerLabel)
	assert.Equal(t, core.ObjectTypeSpu, kind.ObjectType)
	assert.False(t, kind.Has(core.CapabilityRemovable))
	assert.False(t, kind.Has(core.CapabilityCreatable))

	kind = core.DescribeType[CustomSpuSpec]()
	assert.Equal(t, CustomSpuLabel, kind.Label)
	assert.Equal(t, SpuLabel, kind.OwnerLabel)
	assert.True(t, kind.Has(core.CapabilityRemovable))
	assert.True(t, kind.Has(core.CapabilityCreatable))
	assert.True(t, kind.Has(core.CapabilityDiscriminated))

	spec := CustomSpuSpec{ID: 7, PrivateEndpoint: NewEndpoint("h", 1)}.IntoSpuSpec()
	assert.True(t, spec.IsCustom())
	assert.Equal(t, int32(7), spec.ID)
}
