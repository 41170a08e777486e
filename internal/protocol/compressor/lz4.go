package compressor

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4/v4"
)

// Lz4Compressor 基于 github.com/pierrec/lz4/v4 帧格式的压缩实现。
//
// 每次调用都创建独立的 Writer/Reader，可以被并发使用。
type Lz4Compressor struct {
	level      lz4.CompressionLevel
	maxDecoded uint64
}

var _ Compressor = (*Lz4Compressor)(nil)

// NewLz4Compressor 创建一个 Lz4Compressor，level 为 0 时使用 lz4.Fast，
// maxDecoded 为 0 时解压不设上限。
func NewLz4Compressor(level lz4.CompressionLevel, maxDecoded uint64) *Lz4Compressor {
	if level == 0 {
		level = lz4.Fast
	}
	return &Lz4Compressor{level: level, maxDecoded: maxDecoded}
}

func (c *Lz4Compressor) Kind() Kind {
	return Lz4
}

func (c *Lz4Compressor) Compress(dst, src []byte) ([]byte, error) {
	out := bytes.NewBuffer(dst[:0])
	w := lz4.NewWriter(out)
	if err := w.Apply(lz4.CompressionLevelOption(c.level)); err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (c *Lz4Compressor) Decompress(dst, src []byte) ([]byte, error) {
	out := bytes.NewBuffer(dst[:0])
	var r io.Reader = lz4.NewReader(bytes.NewReader(src))
	if c.maxDecoded > 0 {
		r = io.LimitReader(r, int64(c.maxDecoded)+1)
	}
	n, err := io.Copy(out, r)
	if err != nil {
		return nil, err
	}
	if c.maxDecoded > 0 && uint64(n) > c.maxDecoded {
		return nil, errors.Wrapf(ErrSizeExceeded, "lz4 output exceeds %d bytes", c.maxDecoded)
	}
	return out.Bytes(), nil
}
