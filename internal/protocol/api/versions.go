package api

import (
	"github.com/blang/semver/v4"

	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

const (
	// ApiVersionsKey 为查询对端 API 版本范围的请求。
	ApiVersionsKey uint16 = 18

	apiVersionsMinVersion     codec.Version = 0
	apiVersionsDefaultVersion codec.Version = 1
)

// ApiVersionKey 描述一个 API 支持的版本范围。
type ApiVersionKey struct {
	ApiKey     uint16
	MinVersion codec.Version
	MaxVersion codec.Version
}

func (k *ApiVersionKey) fields() []codec.Field {
	return []codec.Field{
		{Name: "api_key", Value: codec.Int(&k.ApiKey)},
		{Name: "min_version", Value: codec.Int(&k.MinVersion)},
		{Name: "max_version", Value: codec.Int(&k.MaxVersion)},
	}
}

func (k *ApiVersionKey) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, k.fields()...)
}

func (k *ApiVersionKey) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, k.fields()...)
}

func (k *ApiVersionKey) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, k.fields()...)
}

// ApiVersionsRequest 由客户端在建立会话时发送，携带客户端版本信息。
type ApiVersionsRequest struct {
	ClientVersion string
	ClientOS      string
	ClientArch    string
}

var _ Request = (*ApiVersionsRequest)(nil)

func (r *ApiVersionsRequest) fields() []codec.Field {
	return []codec.Field{
		{Name: "client_version", MinVersion: 1, Value: codec.String(&r.ClientVersion)},
		{Name: "client_os", MinVersion: 1, Value: codec.String(&r.ClientOS)},
		{Name: "client_arch", MinVersion: 1, Value: codec.String(&r.ClientArch)},
	}
}

func (r *ApiVersionsRequest) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, r.fields()...)
}

func (r *ApiVersionsRequest) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, r.fields()...)
}

func (r *ApiVersionsRequest) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, r.fields()...)
}

func (r *ApiVersionsRequest) ApiKey() uint16                   { return ApiVersionsKey }
func (r *ApiVersionsRequest) MinApiVersion() codec.Version     { return apiVersionsMinVersion }
func (r *ApiVersionsRequest) DefaultApiVersion() codec.Version { return apiVersionsDefaultVersion }
func (r *ApiVersionsRequest) NewResponse() codec.Value         { return &ApiVersionsResponse{} }

// ApiVersionsResponse 列出服务端支持的全部 API 以及平台版本。
type ApiVersionsResponse struct {
	ErrorCode       int16
	ApiKeys         []ApiVersionKey
	PlatformVersion string
}

// NewApiVersionsResponse 根据 Descriptor 列表构造响应，platform 必须是合法的语义化版本。
func NewApiVersionsResponse(platform string, descs ...Descriptor) (*ApiVersionsResponse, error) {
	if _, err := semver.Parse(platform); err != nil {
		return nil, merr.WrapErrParameterInvalidMsg("invalid platform version %q: %s", platform, err.Error())
	}
	resp := &ApiVersionsResponse{
		ApiKeys:         make([]ApiVersionKey, 0, len(descs)),
		PlatformVersion: platform,
	}
	for _, d := range descs {
		resp.ApiKeys = append(resp.ApiKeys, ApiVersionKey{
			ApiKey:     d.ApiKey,
			MinVersion: d.MinVersion,
			MaxVersion: d.DefaultVersion,
		})
	}
	return resp, nil
}

func (r *ApiVersionsResponse) fields() []codec.Field {
	return []codec.Field{
		{Name: "error_code", Value: codec.Int(&r.ErrorCode)},
		{Name: "api_keys", Value: codec.Slice(&r.ApiKeys, func(k *ApiVersionKey) codec.Value { return k })},
		{Name: "platform_version", MinVersion: 1, Value: codec.String(&r.PlatformVersion), Default: func() { r.PlatformVersion = "" }},
	}
}

func (r *ApiVersionsResponse) WriteSize(version codec.Version) int {
	return codec.SizeFields(version, r.fields()...)
}

func (r *ApiVersionsResponse) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.WriteFields(dst, version, r.fields()...)
}

func (r *ApiVersionsResponse) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.ReadFields(src, version, r.fields()...)
}

// Platform 解析平台版本。
func (r *ApiVersionsResponse) Platform() (semver.Version, error) {
	v, err := semver.Parse(r.PlatformVersion)
	if err != nil {
		return semver.Version{}, merr.WrapErrDecode("platform_version", err.Error())
	}
	return v, nil
}

// Lookup 查找 apiKey 对应的版本范围。
func (r *ApiVersionsResponse) Lookup(apiKey uint16) (ApiVersionKey, bool) {
	for _, k := range r.ApiKeys {
		if k.ApiKey == apiKey {
			return k, true
		}
	}
	return ApiVersionKey{}, false
}

// Negotiate 根据服务端的版本范围为 d 选出双方都支持的最高版本。
func (r *ApiVersionsResponse) Negotiate(d Descriptor) (codec.Version, error) {
	k, ok := r.Lookup(d.ApiKey)
	if !ok {
		return 0, merr.WrapErrServiceUnimplemented(d.ApiKey, "peer does not support api")
	}
	return d.Negotiate(k.MinVersion, k.MaxVersion)
}

// AtLeast 判断对端平台版本是否不低于 required。
func (r *ApiVersionsResponse) AtLeast(required string) (bool, error) {
	need, err := semver.Parse(required)
	if err != nil {
		return false, merr.WrapErrParameterInvalidMsg("invalid required version %q: %s", required, err.Error())
	}
	have, err := r.Platform()
	if err != nil {
		return false, err
	}
	return have.GTE(need), nil
}
