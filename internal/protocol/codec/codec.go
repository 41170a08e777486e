// Package codec 实现控制面协议使用的二进制编解码约定。
//
// 所有多字节整数均为大端序。每个值在给定协议版本下：
//   - WriteSize 返回精确的编码字节数；
//   - Encode 向目标 Buffer 追加恰好 WriteSize 个字节；
//   - Decode 从 Cursor 消费恰好同样多的字节，并原地修改目标值。
//
// Decode 修改已有值而不是构造新值，因此调用方必须先准备好一个带默认值的目标。
package codec

import (
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

// Version 为协议版本号，在线路上以 int16 表示。
type Version int16

// Encoder 描述可以按版本编码的值。
type Encoder interface {
	WriteSize(version Version) int
	Encode(dst *Buffer, version Version) error
}

// Decoder 描述可以按版本原地解码的值，通常由指针类型实现。
type Decoder interface {
	Decode(src *Cursor, version Version) error
}

// Value 同时支持编码与解码。
type Value interface {
	Encoder
	Decoder
}

// Marshal 在 version 下编码 v，返回独立的字节切片。
func Marshal(v Encoder, version Version) ([]byte, error) {
	buf := NewBuffer()
	defer buf.Release()

	if err := v.Encode(buf, version); err != nil {
		return nil, err
	}
	if size := v.WriteSize(version); size != buf.Len() {
		return nil, merr.WrapErrEncode("value", merr.WrapErrParameterInvalid(size, buf.Len(), "write size mismatch"))
	}
	return buf.Copy(), nil
}

// Unmarshal 在 version 下将 data 解码到 v 中。
// data 尾部未消费的字节会被忽略，需要严格校验时请使用 UnmarshalExact。
func Unmarshal(data []byte, v Decoder, version Version) error {
	return v.Decode(NewCursor(data), version)
}

// UnmarshalExact 与 Unmarshal 相同，但要求 data 被完全消费。
func UnmarshalExact(data []byte, v Decoder, version Version) error {
	src := NewCursor(data)
	if err := v.Decode(src, version); err != nil {
		return err
	}
	if src.Remaining() != 0 {
		return merr.WrapErrDecode("value", "trailing bytes after value")
	}
	return nil
}
