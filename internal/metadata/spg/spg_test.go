package spg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/streamplane-go/internal/metadata/core"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

func TestSpuGroupSpecRoundTrip(t *testing.T) {
	rack := "rack-b"
	dir := "/var/lib/streamplane"
	in := &SpuGroupSpec{
		Replicas: 3,
		MinID:    5000,
		SpuConfig: SpuConfig{
			Rack:    &rack,
			Storage: &StorageConfig{LogDir: &dir},
			Env:     []EnvVar{{Name: "RUST_LOG", Value: "info"}},
		},
	}
	for _, version := range []codec.Version{0, 10, 14} {
		data, err := codec.Marshal(in, version)
		require.NoError(t, err)

		got := &SpuGroupSpec{}
		require.NoError(t, codec.UnmarshalExact(data, got, version))
		assert.Equal(t, in, got)
	}
	assert.Equal(t, []int32{5000, 5001, 5002}, in.SpuIDs())
}

func TestSpuGroupStatus(t *testing.T) {
	s := &SpuGroupStatus{}
	s.SetInvalid("min id conflict")
	data, err := codec.Marshal(s, 0)
	require.NoError(t, err)

	got := &SpuGroupStatus{}
	require.NoError(t, codec.UnmarshalExact(data, got, 0))
	assert.Equal(t, SpuGroupInvalid, got.Resolution)
	require.NotNil(t, got.Reason)
	assert.Equal(t, "min id conflict", *got.Reason)

	got.SetReserved()
	assert.True(t, got.IsReserved())
	assert.Nil(t, got.Reason)
}

func TestSpuGroupKind(t *testing.T) {
	kind := core.DescribeType[SpuGroupSpec]()
	assert.Equal(t, SpuGroupLabel, kind.Label)
	assert.False(t, kind.Owned())
	assert.True(t, kind.Has(core.CapabilityRemovable))
	assert.True(t, kind.Has(core.CapabilityCreatable))
	assert.Equal(t, core.ObjectTypeSpuGroup, kind.ObjectType)
	assert.Equal(t, "", SpuGroupSpec{}.NewDeleteKey().String())
}

func TestSpuGroupIDRange(t *testing.T) {
	ok := &SpuGroupSpec{Replicas: 2, MinID: math.MaxInt32 - 1}
	require.NoError(t, ok.ValidateIDRange())
	assert.Equal(t, []int32{math.MaxInt32 - 1, math.MaxInt32}, ok.SpuIDs())

	overflow := &SpuGroupSpec{Replicas: 3, MinID: math.MaxInt32 - 1}
	assert.ErrorIs(t, overflow.ValidateIDRange(), merr.ErrParameterInvalid)

	negative := &SpuGroupSpec{Replicas: 1, MinID: -1}
	assert.ErrorIs(t, negative.ValidateIDRange(), merr.ErrParameterInvalid)
}
