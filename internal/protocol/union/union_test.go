package union

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

type key interface {
	Variant[string]
}

type byName struct{ name string }

func (k *byName) Tag() string                                   { return "Name" }
func (k *byName) WriteSize(v codec.Version) int                 { return codec.String(&k.name).WriteSize(v) }
func (k *byName) Encode(d *codec.Buffer, v codec.Version) error { return codec.String(&k.name).Encode(d, v) }
func (k *byName) Decode(s *codec.Cursor, v codec.Version) error { return codec.String(&k.name).Decode(s, v) }

type byID struct{ id int32 }

func (k *byID) Tag() string                                   { return "Id" }
func (k *byID) WriteSize(v codec.Version) int                 { return codec.Int(&k.id).WriteSize(v) }
func (k *byID) Encode(d *codec.Buffer, v codec.Version) error { return codec.Int(&k.id).Encode(d, v) }
func (k *byID) Decode(s *codec.Cursor, v codec.Version) error { return codec.Int(&k.id).Decode(s, v) }

var keyCases = NewCases[key]("TestKey",
	func() key { return &byID{} },
	Case[string, key]{Tag: "Name", New: func() key { return &byName{} }},
	Case[string, key]{Tag: "Id", New: func() key { return &byID{} }},
)

func encodeKey(t *testing.T, k key, version codec.Version) []byte {
	buf := codec.NewBuffer()
	defer buf.Release()
	require.NoError(t, keyCases.Encode(buf, k, version))
	assert.Equal(t, keyCases.WriteSize(k, version), buf.Len())
	return buf.Copy()
}

func TestCasesRoundTrip(t *testing.T) {
	data := encodeKey(t, &byID{id: 42}, 0)
	assert.Equal(t, []byte{0, 2, 'I', 'd', 0, 0, 0, 42}, data)

	var got key = keyCases.Default()
	require.NoError(t, keyCases.Decode(codec.NewCursor(data), &got, 0))
	assert.Equal(t, &byID{id: 42}, got)

	data = encodeKey(t, &byName{name: "topic-a"}, 0)
	require.NoError(t, keyCases.Decode(codec.NewCursor(data), &got, 0))
	assert.Equal(t, &byName{name: "topic-a"}, got)
}

func TestCasesUnknownTag(t *testing.T) {
	buf := codec.NewBuffer()
	defer buf.Release()
	tag := "Bogus"
	require.NoError(t, codec.String(&tag).Encode(buf, 0))
	buf.Write([]byte{0, 0, 0, 1})

	var got key = &byName{name: "keep"}
	err := keyCases.Decode(codec.NewCursor(buf.Bytes()), &got, 0)
	assert.ErrorIs(t, err, merr.ErrUnknownVariant)
	assert.Contains(t, err.Error(), "tag=Bogus")
	assert.Contains(t, err.Error(), "type=TestKey")
	assert.Equal(t, &byName{name: "keep"}, got)
}

func TestCasesTruncatedPayload(t *testing.T) {
	data := encodeKey(t, &byID{id: 7}, 0)

	var got key = keyCases.Default()
	err := keyCases.Decode(codec.NewCursor(data[:len(data)-1]), &got, 0)
	assert.ErrorIs(t, err, merr.ErrBufferUnderflow)
	assert.Equal(t, &byID{}, got)
}

func TestCasesEncodeUnregistered(t *testing.T) {
	cases := NewCases[key]("OnlyId",
		func() key { return &byID{} },
		Case[string, key]{Tag: "Id", New: func() key { return &byID{} }},
	)
	buf := codec.NewBuffer()
	defer buf.Release()
	err := cases.Encode(buf, &byName{name: "x"}, 0)
	assert.ErrorIs(t, err, merr.ErrUnknownVariant)
	assert.Equal(t, 0, buf.Len())
}

func TestCasesConstruction(t *testing.T) {
	assert.Equal(t, []string{"Name", "Id"}, keyCases.Tags())
	assert.Equal(t, "TestKey", keyCases.Name())

	assert.Panics(t, func() {
		NewCases[key]("Dup",
			func() key { return &byID{} },
			Case[string, key]{Tag: "Id", New: func() key { return &byID{} }},
			Case[string, key]{Tag: "Id", New: func() key { return &byID{} }},
		)
	})
	assert.Panics(t, func() {
		NewCases[key]("NoDefault", func() key { return &byName{} },
			Case[string, key]{Tag: "Id", New: func() key { return &byID{} }},
		)
	})
}

type small interface {
	Variant[uint8]
}

type zero struct{}

func (zero) Tag() uint8                                 { return 0 }
func (zero) WriteSize(codec.Version) int                { return 0 }
func (zero) Encode(*codec.Buffer, codec.Version) error  { return nil }
func (*zero) Decode(*codec.Cursor, codec.Version) error { return nil }

type count struct{ n uint32 }

func (c *count) Tag() uint8                                    { return 1 }
func (c *count) WriteSize(v codec.Version) int                 { return codec.Int(&c.n).WriteSize(v) }
func (c *count) Encode(d *codec.Buffer, v codec.Version) error { return codec.Int(&c.n).Encode(d, v) }
func (c *count) Decode(s *codec.Cursor, v codec.Version) error { return codec.Int(&c.n).Decode(s, v) }

func TestTagged8(t *testing.T) {
	cases := NewTagged8[small]("Small",
		func() small { return &zero{} },
		Case[uint8, small]{Tag: 0, New: func() small { return &zero{} }},
		Case[uint8, small]{Tag: 1, New: func() small { return &count{} }},
	)
	buf := codec.NewBuffer()
	defer buf.Release()
	require.NoError(t, cases.Encode(buf, &count{n: 3}, 0))
	assert.Equal(t, []byte{1, 0, 0, 0, 3}, buf.Bytes())

	var got small = cases.Default()
	require.NoError(t, cases.Decode(codec.NewCursor(buf.Bytes()), &got, 0))
	assert.Equal(t, &count{n: 3}, got)

	err := cases.Decode(codec.NewCursor([]byte{9}), &got, 0)
	assert.ErrorIs(t, err, merr.ErrUnknownVariant)
}

type color uint8

func TestEnum(t *testing.T) {
	e := NewEnum[color]("Color", 0, 1, 2)
	c := color(2)
	data, err := codec.Marshal(e.Value(&c), 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, data)

	var got color
	require.NoError(t, codec.Unmarshal(data, e.Value(&got), 0))
	assert.Equal(t, c, got)

	err = codec.Unmarshal([]byte{5}, e.Value(&got), 0)
	assert.ErrorIs(t, err, merr.ErrUnknownVariant)
	assert.Equal(t, c, got)

	bad := color(9)
	_, err = codec.Marshal(e.Value(&bad), 0)
	assert.ErrorIs(t, err, merr.ErrUnknownVariant)
}
