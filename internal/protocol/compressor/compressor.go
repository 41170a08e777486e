package compressor

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

// Kind 标识帧使用的压缩算法，作为帧的 flags 字节写在线路上。
type Kind uint8

const (
	None Kind = 0
	Zstd Kind = 1
	Lz4  Kind = 2
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Zstd:
		return "zstd"
	case Lz4:
		return "lz4"
	default:
		return "unknown"
	}
}

// ParseKind 将配置中的算法名称解析为 Kind，空字符串视为 none。
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return None, nil
	case "zstd":
		return Zstd, nil
	case "lz4":
		return Lz4, nil
	default:
		return None, merr.WrapErrParameterInvalid("none|zstd|lz4", name, "unknown compression")
	}
}

// ErrSizeExceeded 表示解压结果超过了压缩器的解压上限。
var ErrSizeExceeded = errors.New("compressor: decompressed size exceeds limit")

// Compressor 抽象了“单次压缩/解压”能力。
//
// 面向单个网络帧，而不是文件之类的流式场景。实现必须可以被并发使用。
type Compressor interface {
	// Compress 将 src 压缩到 dst。
	//
	// dst 一般可以传入一个可复用的缓冲区（长度可为 0），实现可选择复用其底层容量；
	// 返回值 packet 为压缩后的完整数据。
	Compress(dst, src []byte) (packet []byte, err error)

	// Decompress 将压缩数据 src 解压到 dst。
	//
	// 行为约定与 Compress 对称：src 必须是 Compress 的输出。
	// 解压结果超过上限时返回 ErrSizeExceeded，此时不会继续分配内存。
	Decompress(dst, src []byte) (plain []byte, err error)

	Kind() Kind
}

// NopCompressor 是一个空实现：不做任何压缩/解压，直接返回输入内容。
type NopCompressor struct{}

func (NopCompressor) Compress(_ []byte, src []byte) ([]byte, error) {
	return src, nil
}

func (NopCompressor) Decompress(_ []byte, src []byte) ([]byte, error) {
	return src, nil
}

func (NopCompressor) Kind() Kind {
	return None
}

// 编译期断言：确保 NopCompressor 实现了 Compressor 接口。
var _ Compressor = NopCompressor{}

// New 根据 kind 创建对应的压缩器，maxDecoded 为单次解压的字节上限，0 表示不限制。
func New(kind Kind, maxDecoded uint64) (Compressor, error) {
	switch kind {
	case None:
		return NopCompressor{}, nil
	case Zstd:
		return NewZstdCompressorWithLimit(0, maxDecoded)
	case Lz4:
		return NewLz4Compressor(0, maxDecoded), nil
	default:
		return nil, merr.WrapErrParameterInvalid("none|zstd|lz4", kind.String(), "unknown compression")
	}
}
