package compressor

import (
	"math/bits"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
)

// ZstdCompressor 基于 github.com/klauspost/compress/zstd 的压缩实现。
//
// 它持有独立的 encoder/decoder 实例，不使用全局单例，生命周期由调用方决定。
type ZstdCompressor struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// 编译期断言：确保 ZstdCompressor 实现了 Compressor 接口。
var _ Compressor = (*ZstdCompressor)(nil)

// NewZstdCompressor 创建一个 ZstdCompressor，默认并发度为 GOMAXPROCS，解压不设上限。
func NewZstdCompressor() (*ZstdCompressor, error) {
	return NewZstdCompressorWithLimit(0, 0)
}

// NewZstdCompressorWithLimit 创建一个 ZstdCompressor，并允许显式指定 zstd 的并发数与解压上限。
//
// concurrency <= 0 时使用 GOMAXPROCS；maxDecoded 为 0 时使用 zstd 的默认上限。
// 编码端的窗口取严格大于内容长度的 2 的幂，解码端的实际上限同样取整到严格大于 maxDecoded 的 2 的幂。
func NewZstdCompressorWithLimit(concurrency int, maxDecoded uint64) (*ZstdCompressor, error) {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	decOpts := []zstd.DOption{zstd.WithDecoderConcurrency(concurrency)}
	if maxDecoded > 0 {
		limit := max(uint64(1)<<bits.Len64(maxDecoded), zstd.MinWindowSize)
		decOpts = append(decOpts, zstd.WithDecoderMaxMemory(limit))
	}

	enc, err := zstd.NewWriter(nil,
		zstd.WithZeroFrames(true),
		zstd.WithEncoderConcurrency(concurrency),
	)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil, decOpts...)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &ZstdCompressor{
		enc: enc,
		dec: dec,
	}, nil
}

func (c *ZstdCompressor) Kind() Kind {
	return Zstd
}

// Compress 实现 Compressor 接口。
func (c *ZstdCompressor) Compress(dst, src []byte) ([]byte, error) {
	if c == nil || c.enc == nil {
		return nil, zstd.ErrEncoderClosed
	}
	return c.enc.EncodeAll(src, dst[:0]), nil
}

// Decompress 实现 Compressor 接口。
func (c *ZstdCompressor) Decompress(dst, src []byte) ([]byte, error) {
	if c == nil || c.dec == nil {
		return nil, zstd.ErrDecoderClosed
	}
	plain, err := c.dec.DecodeAll(src, dst[:0])
	if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
		return nil, errors.Wrap(ErrSizeExceeded, err.Error())
	}
	return plain, err
}

// Close 释放内部 encoder/decoder 持有的资源。
//
// 再次使用已关闭实例将返回 ErrEncoderClosed/ErrDecoderClosed。
func (c *ZstdCompressor) Close() {
	if c == nil {
		return
	}
	if c.enc != nil {
		_ = c.enc.Close()
		c.enc = nil
	}
	if c.dec != nil {
		c.dec.Close()
		c.dec = nil
	}
}
