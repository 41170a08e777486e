// Package objects 定义对资源对象的管理请求（Create、Delete、List、Watch）。
//
// 具体资源类型的请求先被编码为 TypeBuffer，再装入与资源类型无关的 ObjectApi* 请求中传输。
// 接收方按 Registry 中固定的顺序逐个尝试资源类型，直到某个类型的标签与 TypeBuffer 匹配。
package objects

import (
	"github.com/lk2023060901/streamplane-go/internal/protocol/api"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
)

// AdminPublicApiKey 为管理接口的 API 身份。
type AdminPublicApiKey uint16

const (
	ApiVersion AdminPublicApiKey = AdminPublicApiKey(api.ApiVersionsKey)
	Create     AdminPublicApiKey = 1001
	Delete     AdminPublicApiKey = 1002
	List       AdminPublicApiKey = 1003
	Watch      AdminPublicApiKey = 1004
)

func (k AdminPublicApiKey) String() string {
	switch k {
	case ApiVersion:
		return "ApiVersion"
	case Create:
		return "Create"
	case Delete:
		return "Delete"
	case List:
		return "List"
	case Watch:
		return "Watch"
	default:
		return "Unknown"
	}
}

const (
	// CommonVersion 为管理请求的默认版本。
	CommonVersion codec.Version = 14
	// MinApiVersion 为管理请求支持的最低版本。
	MinApiVersion codec.Version = 1
	// DynamicObjectVersion 为首个使用 TypeBuffer 布局的版本，更低的版本使用按资源类型区分的旧布局。
	DynamicObjectVersion codec.Version = 11
)

// Shape 为请求或响应的形态。
type Shape uint8

const (
	ShapeCreate Shape = iota + 1
	ShapeDelete
	ShapeList
	ShapeWatch
	ShapeListResponse
	ShapeWatchResponse
)

func (s Shape) String() string {
	switch s {
	case ShapeCreate:
		return "create"
	case ShapeDelete:
		return "delete"
	case ShapeList:
		return "list"
	case ShapeWatch:
		return "watch"
	case ShapeListResponse:
		return "list_response"
	case ShapeWatchResponse:
		return "watch_response"
	default:
		return "unknown"
	}
}

// Payload 为某个资源类型上的具体请求或响应，可以装入 TypeBuffer。
type Payload interface {
	codec.Value
	// KindLabel 返回资源类型标签，由零值回答。
	KindLabel() string
	Shape() Shape
}
