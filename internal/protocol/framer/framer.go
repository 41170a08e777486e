package framer

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/streamplane-go/internal/protocol/compressor"
	"github.com/lk2023060901/streamplane-go/pkg/metrics"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

// Framer 抽象了基于长度前缀的分帧能力。
//
// 约定：
//   - 未开启压缩时，一帧数据的格式为：4 字节大端有符号整型长度 + 消息体。
//   - 开启压缩时，长度之后紧跟 1 字节 flags（compressor.Kind），长度包含该字节。
//
// 读写双方必须使用相同的压缩开关。
type Framer interface {
	// WriteFrame 将 body 打包为一帧并写入到 w 中。
	WriteFrame(w io.Writer, body []byte) error

	// ReadFrame 从 r 中读取一帧数据，返回解压后的消息体。
	ReadFrame(r io.Reader) ([]byte, error)
}

const defaultMaxFrameSize uint32 = 16 * 1024 * 1024 // 16MB

// Options 为 LengthPrefixedFramer 的构造参数。
type Options struct {
	// MaxFrameSize 为允许的最大帧大小（长度字段的取值），单位字节。
	// 为 0 时使用默认值 defaultMaxFrameSize。
	MaxFrameSize uint32
	// Compression 为写出时使用的压缩算法，None 表示不写 flags 字节。
	Compression compressor.Kind
	// MinCompressSize 为触发压缩的最小消息体长度，更短的消息体不压缩。
	MinCompressSize int
}

// LengthPrefixedFramer 使用长度前缀（4 字节大端）作为帧边界。
// 适用于基于流的连接（如 TCP）以及落盘的抓包文件。
type LengthPrefixedFramer struct {
	maxFrameSize    uint32
	compression     compressor.Kind
	minCompressSize int
	compressors     map[compressor.Kind]compressor.Compressor
}

var _ Framer = (*LengthPrefixedFramer)(nil)

// NewLengthPrefixedFramer 创建一个长度前缀帧编解码器。
func NewLengthPrefixedFramer(opts Options) (*LengthPrefixedFramer, error) {
	f := &LengthPrefixedFramer{
		maxFrameSize:    opts.MaxFrameSize,
		compression:     opts.Compression,
		minCompressSize: opts.MinCompressSize,
	}
	if f.maxFrameSize == 0 {
		f.maxFrameSize = defaultMaxFrameSize
	}
	if f.maxFrameSize > math.MaxInt32 {
		return nil, merr.WrapErrParameterInvalidMsg("max frame size %d exceeds %d", f.maxFrameSize, math.MaxInt32)
	}
	if f.compression == compressor.None {
		return f, nil
	}

	// 开启压缩时，读取端需要能识别任意一种 flags。
	f.compressors = make(map[compressor.Kind]compressor.Compressor)
	for _, kind := range []compressor.Kind{compressor.None, compressor.Zstd, compressor.Lz4} {
		c, err := compressor.New(kind, uint64(f.maxFrameSize))
		if err != nil {
			return nil, err
		}
		f.compressors[kind] = c
	}
	if _, ok := f.compressors[f.compression]; !ok {
		return nil, merr.WrapErrParameterInvalid("none|zstd|lz4", f.compression.String(), "unknown compression")
	}
	return f, nil
}

// Compressed 判断帧是否携带 flags 字节。
func (f *LengthPrefixedFramer) Compressed() bool {
	return f.compression != compressor.None
}

// WriteFrame 将 body 编码为长度前缀帧并写入。
func (f *LengthPrefixedFramer) WriteFrame(w io.Writer, body []byte) error {
	// 解压后的长度同样受上限约束，否则读取端会拒绝该帧。
	if uint64(len(body)) > uint64(f.maxFrameSize) {
		return merr.WrapErrFrameTooLarge(uint64(len(body)), uint64(f.maxFrameSize))
	}

	var prefix []byte
	if f.Compressed() {
		kind := compressor.None
		if len(body) >= f.minCompressSize {
			packet, err := f.compressors[f.compression].Compress(nil, body)
			if err != nil {
				return errors.Wrap(err, "framer: compress failed")
			}
			// 压缩后反而变大时保留原文。
			if len(packet) < len(body) {
				kind = f.compression
				body = packet
				metrics.FrameCompressedBytes.WithLabelValues(kind.String()).Add(float64(len(packet)))
			}
		}
		prefix = []byte{byte(kind)}
	}

	length := uint64(len(prefix) + len(body))
	if length > uint64(f.maxFrameSize) {
		return merr.WrapErrFrameTooLarge(length, uint64(f.maxFrameSize))
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(length))
	if _, err := w.Write(header[:]); err != nil {
		return errors.Wrap(err, "framer: write header failed")
	}
	if len(prefix) > 0 {
		if _, err := w.Write(prefix); err != nil {
			return errors.Wrap(err, "framer: write flags failed")
		}
	}
	if len(body) > 0 {
		if _, err := w.Write(body); err != nil {
			return errors.Wrap(err, "framer: write body failed")
		}
	}
	return nil
}

// ReadFrame 从流中读取一帧数据。流在帧边界处结束时返回 io.EOF。
func (f *LengthPrefixedFramer) ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, merr.WrapErrFrameCorrupted(err.Error(), "read header")
	}

	length := int32(binary.BigEndian.Uint32(header[:]))
	if length < 0 {
		return nil, merr.WrapErrFrameCorrupted("negative frame length")
	}
	if uint32(length) > f.maxFrameSize {
		return nil, merr.WrapErrFrameTooLarge(uint64(length), uint64(f.maxFrameSize))
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, merr.WrapErrFrameCorrupted(err.Error(), "read body")
	}
	if !f.Compressed() {
		return body, nil
	}

	if len(body) == 0 {
		return nil, merr.WrapErrFrameCorrupted("missing flags byte")
	}
	kind := compressor.Kind(body[0])
	c, ok := f.compressors[kind]
	if !ok {
		return nil, merr.WrapErrFrameCorrupted("unknown compression flags", kind.String())
	}
	plain, err := c.Decompress(nil, body[1:])
	if errors.Is(err, compressor.ErrSizeExceeded) {
		return nil, merr.WrapErrFrameInflated(kind.String(), uint64(len(body)), uint64(f.maxFrameSize))
	}
	if err != nil {
		return nil, merr.WrapErrFrameCorrupted(err.Error(), "decompress "+kind.String())
	}
	if uint64(len(plain)) > uint64(f.maxFrameSize) {
		return nil, merr.WrapErrFrameTooLarge(uint64(len(plain)), uint64(f.maxFrameSize))
	}
	return plain, nil
}
