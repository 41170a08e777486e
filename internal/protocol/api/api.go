// Package api 定义请求/响应的 API 身份、版本范围以及消息头。
package api

import (
	"fmt"

	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

// Request 描述一种可在线路上传输的请求。
//
// 传输层只依赖 API 身份和版本范围完成路由与版本协商，不需要理解请求内容。
type Request interface {
	codec.Value
	ApiKey() uint16
	MinApiVersion() codec.Version
	DefaultApiVersion() codec.Version
	// NewResponse 返回一个带默认值的响应，用于原地解码。
	NewResponse() codec.Value
}

// Descriptor 汇总一种请求的 API 身份与版本范围。
type Descriptor struct {
	Name           string
	ApiKey         uint16
	MinVersion     codec.Version
	DefaultVersion codec.Version
}

// Describe 根据请求构造 Descriptor，名称取请求的 Go 类型名。
func Describe(r Request) Descriptor {
	return Descriptor{
		Name:           fmt.Sprintf("%T", r),
		ApiKey:         r.ApiKey(),
		MinVersion:     r.MinApiVersion(),
		DefaultVersion: r.DefaultApiVersion(),
	}
}

// Supports 判断 version 是否在 [MinVersion, DefaultVersion] 内。
func (d Descriptor) Supports(version codec.Version) bool {
	return version >= d.MinVersion && version <= d.DefaultVersion
}

// Check 在 version 不受支持时返回 VersionUnsupported。
func (d Descriptor) Check(version codec.Version) error {
	if !d.Supports(version) {
		return merr.WrapErrVersionUnsupported(d.ApiKey, int16(version), int16(d.MinVersion), int16(d.DefaultVersion))
	}
	return nil
}

// Negotiate 根据对端声明的 [peerMin, peerMax] 选出双方都支持的最高版本。
func (d Descriptor) Negotiate(peerMin, peerMax codec.Version) (codec.Version, error) {
	version := min(d.DefaultVersion, peerMax)
	if version < max(d.MinVersion, peerMin) {
		return 0, merr.WrapErrVersionUnsupported(d.ApiKey, int16(peerMax), int16(d.MinVersion), int16(d.DefaultVersion))
	}
	return version, nil
}
