package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

type sample struct {
	id      int32
	name    string
	force   bool
	labels  []string
	timeout *uint32
}

func (s *sample) fields() []Field {
	return []Field{
		{Name: "id", Value: Int(&s.id)},
		{Name: "name", Value: String(&s.name)},
		{Name: "force", MinVersion: 13, Value: Bool(&s.force), Default: func() { s.force = false }},
		{Name: "labels", MinVersion: 5, MaxVersion: 9, Value: Strings(&s.labels)},
		{Name: "timeout", MinVersion: 7, Value: Optional(&s.timeout, Int[uint32])},
	}
}

func (s *sample) WriteSize(version Version) int {
	return SizeFields(version, s.fields()...)
}

func (s *sample) Encode(dst *Buffer, version Version) error {
	return WriteFields(dst, version, s.fields()...)
}

func (s *sample) Decode(src *Cursor, version Version) error {
	return ReadFields(src, version, s.fields()...)
}

type objectType uint8

func TestIntegers(t *testing.T) {
	var (
		i8  int8   = -3
		i16 int16  = -300
		i32 int32  = -70000
		i64 int64  = -1 << 40
		u16 uint16 = 65000
		u32 uint32 = 4000000000
		ot         = objectType(7)
	)
	cases := []struct {
		value Value
		size  int
	}{
		{Int(&i8), 1},
		{Int(&i16), 2},
		{Int(&i32), 4},
		{Int(&i64), 8},
		{Int(&u16), 2},
		{Int(&u32), 4},
		{Int(&ot), 1},
	}
	for _, c := range cases {
		data, err := Marshal(c.value, 0)
		require.NoError(t, err)
		assert.Len(t, data, c.size)
	}

	data, err := Marshal(Int(&i32), 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xfe, 0xee, 0x90}, data)

	var got int32
	require.NoError(t, UnmarshalExact(data, Int(&got), 0))
	assert.Equal(t, i32, got)

	data, err = Marshal(Int(&i64), 0)
	require.NoError(t, err)
	var got64 int64
	require.NoError(t, UnmarshalExact(data, Int(&got64), 0))
	assert.Equal(t, i64, got64)

	var gotOt objectType
	require.NoError(t, Unmarshal([]byte{7}, Int(&gotOt), 0))
	assert.Equal(t, ot, gotOt)
}

func TestBool(t *testing.T) {
	var b bool
	require.NoError(t, Unmarshal([]byte{1}, Bool(&b), 0))
	assert.True(t, b)

	err := Unmarshal([]byte{7}, Bool(&b), 0)
	assert.ErrorIs(t, err, merr.ErrDecode)
	assert.True(t, b)

	err = Unmarshal(nil, Bool(&b), 0)
	assert.ErrorIs(t, err, merr.ErrBufferUnderflow)
}

func TestString(t *testing.T) {
	s := "topic-a"
	data, err := Marshal(String(&s), 0)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0, 7}, "topic-a"...), data)

	var got string
	require.NoError(t, UnmarshalExact(data, String(&got), 0))
	assert.Equal(t, s, got)

	// 内容不足时不推进游标。
	src := NewCursor(data[:5])
	err = String(&got).Decode(src, 0)
	assert.ErrorIs(t, err, merr.ErrBufferUnderflow)
	assert.Equal(t, 0, src.Offset())

	err = Unmarshal([]byte{0xff, 0xff}, String(&got), 0)
	assert.ErrorIs(t, err, merr.ErrDecode)
}

func TestBytes(t *testing.T) {
	payload := []byte{1, 2, 3}
	data, err := Marshal(Bytes(&payload), 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 3, 1, 2, 3}, data)

	var got []byte
	require.NoError(t, UnmarshalExact(data, Bytes(&got), 0))
	assert.Equal(t, payload, got)

	// 解码结果不与源数据共享内存。
	data[4] = 9
	assert.Equal(t, byte(1), got[0])
}

func TestFieldGating(t *testing.T) {
	timeout := uint32(1500)
	in := &sample{id: 1, name: "a", force: true, labels: []string{"x", "y"}, timeout: &timeout}

	for version := Version(0); version <= 14; version++ {
		data, err := Marshal(in, version)
		require.NoError(t, err)
		assert.Equal(t, in.WriteSize(version), len(data))

		out := &sample{}
		require.NoError(t, UnmarshalExact(data, out, version), "version %d", version)
		assert.Equal(t, in.id, out.id)
		assert.Equal(t, in.name, out.name)
		assert.Equal(t, version >= 13, out.force)
		if version >= 5 && version <= 9 {
			assert.Equal(t, in.labels, out.labels)
		} else {
			assert.Nil(t, out.labels)
		}
		if version >= 7 {
			require.NotNil(t, out.timeout)
			assert.Equal(t, timeout, *out.timeout)
		} else {
			assert.Nil(t, out.timeout)
		}
	}
}

func TestFieldGatingUnderflow(t *testing.T) {
	in := &sample{id: 1, name: "a", force: true}
	data, err := Marshal(in, 12)
	require.NoError(t, err)

	out := &sample{}
	err = Unmarshal(data, out, 13)
	assert.ErrorIs(t, err, merr.ErrBufferUnderflow)
	assert.Contains(t, err.Error(), "force")
}

func TestSliceAndMap(t *testing.T) {
	in := map[string]int32{"b": 2, "a": 1, "c": 3}
	first, err := Marshal(Map(&in, Int[int32]), 0)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Marshal(Map(&in, Int[int32]), 0)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	var out map[string]int32
	require.NoError(t, UnmarshalExact(first, Map(&out, Int[int32]), 0))
	assert.Equal(t, in, out)

	items := []int16{1, -1, 300}
	data, err := Marshal(Slice(&items, Int[int16]), 0)
	require.NoError(t, err)
	var gotItems []int16
	require.NoError(t, UnmarshalExact(data, Slice(&gotItems, Int[int16]), 0))
	assert.Equal(t, items, gotItems)

	err = Unmarshal([]byte{0xff, 0xff, 0xff, 0xff}, Slice(&gotItems, Int[int16]), 0)
	assert.ErrorIs(t, err, merr.ErrDecode)

	// 声明 100 个元素但只有 1 个，失败且不修改目标。
	err = Unmarshal([]byte{0, 0, 0, 100, 0, 1}, Slice(&gotItems, Int[int16]), 0)
	assert.ErrorIs(t, err, merr.ErrBufferUnderflow)
	assert.Equal(t, items, gotItems)
}

func TestUnmarshalExact(t *testing.T) {
	var v int16
	err := UnmarshalExact([]byte{0, 1, 2}, Int(&v), 0)
	assert.ErrorIs(t, err, merr.ErrDecode)
	require.NoError(t, Unmarshal([]byte{0, 1, 2}, Int(&v), 0))
	assert.Equal(t, int16(1), v)
}

func TestBuffer(t *testing.T) {
	buf := NewBuffer()
	s := "x"
	require.NoError(t, String(&s).Encode(buf, 0))
	assert.Equal(t, 3, buf.Len())
	out := buf.Copy()
	buf.Reset()
	assert.Equal(t, 0, buf.Len())
	buf.Release()
	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, []byte{0, 1, 'x'}, out)
}
