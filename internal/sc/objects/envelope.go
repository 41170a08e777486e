package objects

import (
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

// classicDecoder 按旧布局解码一帧，并将结果重新装入 TypeBuffer。
type classicDecoder func(src *codec.Cursor, version codec.Version) (TypeBuffer, error)

// shapeInfo 描述一种 ObjectApi* 请求或响应的线路身份。
type shapeInfo struct {
	shape   Shape
	apiKey  uint16
	classic classicDecoder
}

// objectApi 为 ObjectApi* 的公共部分。
//
// 线路格式：
//   - 版本 >= DynamicObjectVersion：[api_key u16][TypeBuffer]
//   - 更低的版本：[api_key u16][tag string][payload]，payload 按请求版本编码且没有长度前缀。
//
// 一帧要么完全按 TypeBuffer 布局解码，要么完全按旧布局解码，由版本一次性决定。
type objectApi struct {
	buf TypeBuffer
}

// Buffer 返回内部的 TypeBuffer。
func (o *objectApi) Buffer() *TypeBuffer {
	return &o.buf
}

func (o *objectApi) wrap(info *shapeInfo, p Payload, version codec.Version) error {
	if p.Shape() != info.shape {
		return merr.WrapErrParameterInvalid(info.shape.String(), p.Shape().String(), "payload shape mismatch")
	}
	tb, err := EncodeTypeBuffer(p, version)
	if err != nil {
		return err
	}
	o.buf = tb
	return nil
}

func (o *objectApi) size(info *shapeInfo, version codec.Version) int {
	apiKey := info.apiKey
	size := codec.Int(&apiKey).WriteSize(version)
	if version >= DynamicObjectVersion {
		return size + o.buf.WriteSize(version)
	}
	return size + codec.String(&o.buf.tag).WriteSize(version) + len(o.buf.buf)
}

func (o *objectApi) encode(dst *codec.Buffer, info *shapeInfo, version codec.Version) error {
	apiKey := info.apiKey
	if err := codec.Int(&apiKey).Encode(dst, version); err != nil {
		return err
	}
	if version >= DynamicObjectVersion {
		return o.buf.Encode(dst, version)
	}
	// 旧布局没有内嵌版本，内容必须就是按请求版本编码的。
	if o.buf.version != version {
		return merr.WrapErrEncode(o.buf.tag,
			merr.WrapErrParameterInvalid(version, o.buf.version, "classic layout requires payload encoded at request version"))
	}
	if err := codec.String(&o.buf.tag).Encode(dst, version); err != nil {
		return err
	}
	_, err := dst.Write(o.buf.buf)
	return err
}

func (o *objectApi) decode(src *codec.Cursor, info *shapeInfo, version codec.Version) error {
	var apiKey uint16
	if err := codec.Int(&apiKey).Decode(src, version); err != nil {
		return err
	}
	if apiKey != info.apiKey {
		return merr.WrapErrApiKeyMismatch(info.apiKey, apiKey)
	}

	var (
		fresh TypeBuffer
		err   error
	)
	if version >= DynamicObjectVersion {
		err = fresh.Decode(src, version)
	} else {
		fresh, err = info.classic(src, version)
	}
	if err != nil {
		return err
	}
	o.buf = fresh
	return nil
}
