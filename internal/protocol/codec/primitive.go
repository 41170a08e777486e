package codec

import (
	"encoding/binary"
	"fmt"
	"maps"
	"math"
	"slices"
	"unsafe"

	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

// Fixed 为定长整数类型约束。int/uint 的宽度依赖平台，不在其中。
type Fixed interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func sizeOf[T Fixed]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

type integer[T Fixed] struct {
	p *T
}

// Int 返回指向定长整数的编解码器。
func Int[T Fixed](p *T) Value {
	return integer[T]{p: p}
}

func (v integer[T]) WriteSize(Version) int {
	return sizeOf[T]()
}

func (v integer[T]) Encode(dst *Buffer, _ Version) error {
	switch sizeOf[T]() {
	case 1:
		return dst.WriteByte(byte(*v.p))
	case 2:
		dst.putUint16(uint16(*v.p))
	case 4:
		dst.putUint32(uint32(*v.p))
	default:
		dst.putUint64(uint64(*v.p))
	}
	return nil
}

func (v integer[T]) Decode(src *Cursor, _ Version) error {
	n := sizeOf[T]()
	b, err := src.Next(fmt.Sprintf("int%d", n*8), n)
	if err != nil {
		return err
	}
	switch n {
	case 1:
		*v.p = T(b[0])
	case 2:
		*v.p = T(binary.BigEndian.Uint16(b))
	case 4:
		*v.p = T(binary.BigEndian.Uint32(b))
	default:
		*v.p = T(binary.BigEndian.Uint64(b))
	}
	return nil
}

type boolean struct {
	p *bool
}

// Bool 返回 bool 编解码器，线路上为 1 字节 0/1，其他取值解码失败。
func Bool(p *bool) Value {
	return boolean{p: p}
}

func (v boolean) WriteSize(Version) int {
	return 1
}

func (v boolean) Encode(dst *Buffer, _ Version) error {
	if *v.p {
		return dst.WriteByte(1)
	}
	return dst.WriteByte(0)
}

func (v boolean) Decode(src *Cursor, _ Version) error {
	b, err := src.Next("bool", 1)
	if err != nil {
		return err
	}
	switch b[0] {
	case 0:
		*v.p = false
	case 1:
		*v.p = true
	default:
		return merr.WrapErrDecode("bool", fmt.Sprintf("invalid bool value %d", b[0]))
	}
	return nil
}

type str struct {
	p *string
}

// String 返回字符串编解码器：int16 长度前缀 + UTF-8 字节。
func String(p *string) Value {
	return str{p: p}
}

func (v str) WriteSize(Version) int {
	return 2 + len(*v.p)
}

func (v str) Encode(dst *Buffer, _ Version) error {
	if len(*v.p) > math.MaxInt16 {
		return merr.WrapErrEncode("string", merr.WrapErrParameterInvalidMsg("string length %d exceeds %d", len(*v.p), math.MaxInt16))
	}
	dst.putUint16(uint16(len(*v.p)))
	_, err := dst.WriteString(*v.p)
	return err
}

func (v str) Decode(src *Cursor, _ Version) error {
	var n int16
	if err := Int(&n).Decode(src, 0); err != nil {
		return err
	}
	if n < 0 {
		return merr.WrapErrDecode("string", fmt.Sprintf("invalid string length %d", n))
	}
	b, err := src.Next("string", int(n))
	if err != nil {
		// 长度已读取但内容不足，回退游标保持“失败不推进”。
		src.off -= 2
		return err
	}
	*v.p = string(b)
	return nil
}

type byteSlice struct {
	p *[]byte
}

// Bytes 返回字节串编解码器：int32 长度前缀 + 原始字节。
func Bytes(p *[]byte) Value {
	return byteSlice{p: p}
}

func (v byteSlice) WriteSize(Version) int {
	return 4 + len(*v.p)
}

func (v byteSlice) Encode(dst *Buffer, _ Version) error {
	if len(*v.p) > math.MaxInt32 {
		return merr.WrapErrEncode("bytes", merr.WrapErrParameterInvalidMsg("bytes length %d exceeds %d", len(*v.p), math.MaxInt32))
	}
	dst.putUint32(uint32(len(*v.p)))
	_, err := dst.Write(*v.p)
	return err
}

func (v byteSlice) Decode(src *Cursor, _ Version) error {
	var n int32
	if err := Int(&n).Decode(src, 0); err != nil {
		return err
	}
	if n < 0 {
		return merr.WrapErrDecode("bytes", fmt.Sprintf("invalid bytes length %d", n))
	}
	b, err := src.Next("bytes", int(n))
	if err != nil {
		src.off -= 4
		return err
	}
	out := make([]byte, len(b))
	copy(out, b)
	*v.p = out
	return nil
}

type optional[T any] struct {
	p    **T
	elem func(*T) Value
}

// Optional 返回可选值编解码器：1 字节存在标记，存在时紧跟元素本身。
func Optional[T any](p **T, elem func(*T) Value) Value {
	return optional[T]{p: p, elem: elem}
}

func (v optional[T]) WriteSize(version Version) int {
	if *v.p == nil {
		return 1
	}
	return 1 + v.elem(*v.p).WriteSize(version)
}

func (v optional[T]) Encode(dst *Buffer, version Version) error {
	if *v.p == nil {
		return dst.WriteByte(0)
	}
	if err := dst.WriteByte(1); err != nil {
		return err
	}
	return v.elem(*v.p).Encode(dst, version)
}

func (v optional[T]) Decode(src *Cursor, version Version) error {
	var present bool
	if err := Bool(&present).Decode(src, version); err != nil {
		return err
	}
	if !present {
		*v.p = nil
		return nil
	}
	item := new(T)
	if err := v.elem(item).Decode(src, version); err != nil {
		return err
	}
	*v.p = item
	return nil
}

type slice[T any] struct {
	p    *[]T
	elem func(*T) Value
}

// Slice 返回切片编解码器：int32 元素个数 + 逐个元素。空切片解码为 nil。
func Slice[T any](p *[]T, elem func(*T) Value) Value {
	return slice[T]{p: p, elem: elem}
}

// Strings 返回字符串切片编解码器。
func Strings(p *[]string) Value {
	return Slice(p, String)
}

func (v slice[T]) WriteSize(version Version) int {
	size := 4
	for i := range *v.p {
		size += v.elem(&(*v.p)[i]).WriteSize(version)
	}
	return size
}

func (v slice[T]) Encode(dst *Buffer, version Version) error {
	if len(*v.p) > math.MaxInt32 {
		return merr.WrapErrEncode("slice", merr.WrapErrParameterInvalidMsg("slice length %d exceeds %d", len(*v.p), math.MaxInt32))
	}
	dst.putUint32(uint32(len(*v.p)))
	for i := range *v.p {
		if err := v.elem(&(*v.p)[i]).Encode(dst, version); err != nil {
			return err
		}
	}
	return nil
}

func (v slice[T]) Decode(src *Cursor, version Version) error {
	var n int32
	if err := Int(&n).Decode(src, version); err != nil {
		return err
	}
	if n < 0 {
		return merr.WrapErrDecode("slice", fmt.Sprintf("invalid slice length %d", n))
	}
	if n == 0 {
		*v.p = nil
		return nil
	}
	// 每个元素至少 1 字节，按剩余字节数限制预分配，避免恶意长度导致大内存分配。
	out := make([]T, 0, min(int(n), src.Remaining()))
	for i := 0; i < int(n); i++ {
		var item T
		if err := v.elem(&item).Decode(src, version); err != nil {
			return err
		}
		out = append(out, item)
	}
	*v.p = out
	return nil
}

type stringMap[V any] struct {
	p    *map[string]V
	elem func(*V) Value
}

// Map 返回以字符串为键的 map 编解码器：uint16 元素个数 + 按键排序的 (key, value)。
// 空 map 解码为 nil。
func Map[V any](p *map[string]V, elem func(*V) Value) Value {
	return stringMap[V]{p: p, elem: elem}
}

func (v stringMap[V]) WriteSize(version Version) int {
	size := 2
	for key, val := range *v.p {
		size += String(&key).WriteSize(version) + v.elem(&val).WriteSize(version)
	}
	return size
}

func (v stringMap[V]) Encode(dst *Buffer, version Version) error {
	if len(*v.p) > math.MaxUint16 {
		return merr.WrapErrEncode("map", merr.WrapErrParameterInvalidMsg("map length %d exceeds %d", len(*v.p), math.MaxUint16))
	}
	dst.putUint16(uint16(len(*v.p)))
	for _, key := range slices.Sorted(maps.Keys(*v.p)) {
		val := (*v.p)[key]
		if err := String(&key).Encode(dst, version); err != nil {
			return err
		}
		if err := v.elem(&val).Encode(dst, version); err != nil {
			return err
		}
	}
	return nil
}

func (v stringMap[V]) Decode(src *Cursor, version Version) error {
	var n uint16
	if err := Int(&n).Decode(src, version); err != nil {
		return err
	}
	if n == 0 {
		*v.p = nil
		return nil
	}
	out := make(map[string]V, min(int(n), src.Remaining()))
	for i := 0; i < int(n); i++ {
		var (
			key string
			val V
		)
		if err := String(&key).Decode(src, version); err != nil {
			return err
		}
		if err := v.elem(&val).Decode(src, version); err != nil {
			return err
		}
		out[key] = val
	}
	*v.p = out
	return nil
}
