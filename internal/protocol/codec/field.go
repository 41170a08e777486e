package codec

import (
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

// Field 描述结构体中的一个按版本生效的字段。
//
// 字段仅在 [MinVersion, MaxVersion] 内出现在线路上；MaxVersion 为 0 表示没有上界。
// 版本不在范围内时，编码不写出任何字节（不是写零值），
// 解码不推进游标，并调用 Default 将字段复位；Default 为 nil 时保持原值不变。
type Field struct {
	Name       string
	MinVersion Version
	MaxVersion Version
	Value      Value
	Default    func()
}

// Active 判断字段在 version 下是否出现在线路上。
func (f Field) Active(version Version) bool {
	if version < f.MinVersion {
		return false
	}
	return f.MaxVersion == 0 || version <= f.MaxVersion
}

// SizeFields 返回 fields 在 version 下的编码长度。
func SizeFields(version Version, fields ...Field) int {
	size := 0
	for _, f := range fields {
		if f.Active(version) {
			size += f.Value.WriteSize(version)
		}
	}
	return size
}

// WriteFields 依次编码在 version 下生效的字段。
func WriteFields(dst *Buffer, version Version, fields ...Field) error {
	for _, f := range fields {
		if !f.Active(version) {
			continue
		}
		if err := f.Value.Encode(dst, version); err != nil {
			return merr.WrapErrEncode(f.Name, err)
		}
	}
	return nil
}

// ReadFields 依次解码在 version 下生效的字段，未生效的字段复位为默认值。
func ReadFields(src *Cursor, version Version, fields ...Field) error {
	for _, f := range fields {
		if !f.Active(version) {
			if f.Default != nil {
				f.Default()
			}
			continue
		}
		if err := f.Value.Decode(src, version); err != nil {
			return merr.WrapErrDecodeCause(f.Name, err)
		}
	}
	return nil
}
