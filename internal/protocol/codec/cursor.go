package codec

import (
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

// Cursor 是解码时的只读消费游标。
//
// 所有读取在字节不足时返回 BufferUnderflow，且不会推进游标。
type Cursor struct {
	data []byte
	off  int
}

func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Remaining 返回尚未消费的字节数。
func (c *Cursor) Remaining() int {
	return len(c.data) - c.off
}

// Offset 返回已消费的字节数。
func (c *Cursor) Offset() int {
	return c.off
}

// Rest 返回尚未消费的字节，不推进游标。
func (c *Cursor) Rest() []byte {
	return c.data[c.off:]
}

// Next 消费 n 个字节并返回，返回的切片与底层数据共享内存。
func (c *Cursor) Next(field string, n int) ([]byte, error) {
	if n < 0 {
		return nil, merr.WrapErrDecode(field, "negative length")
	}
	if c.Remaining() < n {
		return nil, merr.WrapErrBufferUnderflow(field, n, c.Remaining())
	}
	out := c.data[c.off : c.off+n]
	c.off += n
	return out, nil
}

// Skip 丢弃 n 个字节。
func (c *Cursor) Skip(field string, n int) error {
	_, err := c.Next(field, n)
	return err
}
