// Package json 为项目统一的 JSON 编解码入口，底层使用 bytedance/sonic 的标准兼容配置。
package json

import (
	gojson "encoding/json"
	"io"

	"github.com/bytedance/sonic"
)

var (
	json = sonic.ConfigStd

	Marshal       = json.Marshal
	Unmarshal     = json.Unmarshal
	MarshalIndent = json.MarshalIndent
	Valid         = json.Valid
	Indent        = gojson.Indent
	Compact       = gojson.Compact
)

type (
	Marshaler   = gojson.Marshaler
	Unmarshaler = gojson.Unmarshaler
	RawMessage  = gojson.RawMessage
	Number      = gojson.Number
)

// NewEncoder 返回写入 w 的编码器。
func NewEncoder(w io.Writer) sonic.Encoder {
	return json.NewEncoder(w)
}

// NewDecoder 返回从 r 读取的解码器。
func NewDecoder(r io.Reader) sonic.Decoder {
	return json.NewDecoder(r)
}
