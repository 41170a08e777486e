package codec

import (
	"encoding/binary"

	"github.com/valyala/bytebufferpool"
)

// Buffer 是只追加的编码目标，底层字节来自 bytebufferpool。
//
// Buffer 不是并发安全的；用完后调用 Release 归还底层内存，
// 归还之后 Bytes 返回的切片不再有效。
type Buffer struct {
	bb *bytebufferpool.ByteBuffer
}

// NewBuffer 从对象池中获取一个空 Buffer。
func NewBuffer() *Buffer {
	return &Buffer{bb: bytebufferpool.Get()}
}

// Release 将底层内存归还对象池。
func (b *Buffer) Release() {
	if b.bb == nil {
		return
	}
	bytebufferpool.Put(b.bb)
	b.bb = nil
}

func (b *Buffer) buffer() *bytebufferpool.ByteBuffer {
	if b.bb == nil {
		b.bb = bytebufferpool.Get()
	}
	return b.bb
}

// Len 返回已写入的字节数。
func (b *Buffer) Len() int {
	if b.bb == nil {
		return 0
	}
	return b.bb.Len()
}

// Bytes 返回已写入的字节，不拷贝。
func (b *Buffer) Bytes() []byte {
	if b.bb == nil {
		return nil
	}
	return b.bb.B
}

// Copy 返回已写入字节的独立副本。
func (b *Buffer) Copy() []byte {
	out := make([]byte, b.Len())
	copy(out, b.Bytes())
	return out
}

// Reset 清空已写入内容，保留底层内存。
func (b *Buffer) Reset() {
	if b.bb != nil {
		b.bb.Reset()
	}
}

func (b *Buffer) Write(p []byte) (int, error) {
	return b.buffer().Write(p)
}

func (b *Buffer) WriteByte(c byte) error {
	return b.buffer().WriteByte(c)
}

func (b *Buffer) WriteString(s string) (int, error) {
	return b.buffer().WriteString(s)
}

func (b *Buffer) putUint16(v uint16) {
	bb := b.buffer()
	bb.B = binary.BigEndian.AppendUint16(bb.B, v)
}

func (b *Buffer) putUint32(v uint32) {
	bb := b.buffer()
	bb.B = binary.BigEndian.AppendUint32(bb.B, v)
}

func (b *Buffer) putUint64(v uint64) {
	bb := b.buffer()
	bb.B = binary.BigEndian.AppendUint64(bb.B, v)
}
