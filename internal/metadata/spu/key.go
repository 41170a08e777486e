package spu

import (
	"strconv"

	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/internal/protocol/union"
)

// CustomSpuKey 为删除 CustomSpu 时使用的键，可以按名称或按 ID 寻址。
//
// 线路格式：[type string "Name"|"Id"][payload string | int32]。
// 零值等价于 Id(0)。
type CustomSpuKey struct {
	variant customSpuKeyVariant
}

type customSpuKeyVariant interface {
	union.Variant[string]
	String() string
}

type nameKey struct {
	name string
}

func (k *nameKey) Tag() string    { return "Name" }
func (k *nameKey) String() string { return k.name }

func (k *nameKey) WriteSize(version codec.Version) int {
	return codec.String(&k.name).WriteSize(version)
}

func (k *nameKey) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.String(&k.name).Encode(dst, version)
}

func (k *nameKey) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.String(&k.name).Decode(src, version)
}

type idKey struct {
	id int32
}

func (k *idKey) Tag() string    { return "Id" }
func (k *idKey) String() string { return strconv.FormatInt(int64(k.id), 10) }

func (k *idKey) WriteSize(version codec.Version) int {
	return codec.Int(&k.id).WriteSize(version)
}

func (k *idKey) Encode(dst *codec.Buffer, version codec.Version) error {
	return codec.Int(&k.id).Encode(dst, version)
}

func (k *idKey) Decode(src *codec.Cursor, version codec.Version) error {
	return codec.Int(&k.id).Decode(src, version)
}

var customSpuKeyCases = union.NewCases[customSpuKeyVariant]("CustomSpuKey",
	func() customSpuKeyVariant { return &idKey{} },
	union.Case[string, customSpuKeyVariant]{Tag: "Name", New: func() customSpuKeyVariant { return &nameKey{} }},
	union.Case[string, customSpuKeyVariant]{Tag: "Id", New: func() customSpuKeyVariant { return &idKey{} }},
)

// CustomSpuKeyName 返回按名称寻址的键。
func CustomSpuKeyName(name string) *CustomSpuKey {
	return &CustomSpuKey{variant: &nameKey{name: name}}
}

// CustomSpuKeyID 返回按 ID 寻址的键。
func CustomSpuKeyID(id int32) *CustomSpuKey {
	return &CustomSpuKey{variant: &idKey{id: id}}
}

func (k *CustomSpuKey) current() customSpuKeyVariant {
	if k.variant == nil {
		return customSpuKeyCases.Default()
	}
	return k.variant
}

// TypeString 返回线路上的分支标签。
func (k *CustomSpuKey) TypeString() string {
	return k.current().Tag()
}

// Name 返回按名称寻址时的名称。
func (k *CustomSpuKey) Name() (string, bool) {
	if v, ok := k.current().(*nameKey); ok {
		return v.name, true
	}
	return "", false
}

// ID 返回按 ID 寻址时的 ID。
func (k *CustomSpuKey) ID() (int32, bool) {
	if v, ok := k.current().(*idKey); ok {
		return v.id, true
	}
	return 0, false
}

// String 返回名称或十进制 ID。
func (k *CustomSpuKey) String() string {
	return k.current().String()
}

func (k *CustomSpuKey) WriteSize(version codec.Version) int {
	return customSpuKeyCases.WriteSize(k.current(), version)
}

func (k *CustomSpuKey) Encode(dst *codec.Buffer, version codec.Version) error {
	return customSpuKeyCases.Encode(dst, k.current(), version)
}

// Decode 读取分支标签并原地替换当前分支；标签未知时返回 UnknownVariant，键保持不变。
func (k *CustomSpuKey) Decode(src *codec.Cursor, version codec.Version) error {
	return customSpuKeyCases.Decode(src, &k.variant, version)
}
