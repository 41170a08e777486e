// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package merr

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/lk2023060901/streamplane-go/pkg/log"
)

// Code 返回给定错误对应的错误码。
// nil 返回 0；无法识别的错误统一返回 errUnexpected 的错误码。
func Code(err error) int32 {
	if err == nil {
		return 0
	}

	cause := errors.Cause(err)
	switch specificErr := cause.(type) {
	case planeError:
		return specificErr.code()

	default:
		if errors.Is(specificErr, context.Canceled) {
			return CanceledCode
		} else if errors.Is(specificErr, context.DeadlineExceeded) {
			return TimeoutCode
		} else {
			return errUnexpected.code()
		}
	}
}

func IsRetryableErr(err error) bool {
	if err, ok := err.(planeError); ok {
		return err.retriable
	}

	return false
}

func IsCanceledOrTimeout(err error) bool {
	return errors.IsAny(err, context.Canceled, context.DeadlineExceeded)
}

// Error 根据响应中的错误码与错误信息还原出 error。
// code 为 0 时表示成功，返回 nil。
func Error(code int32, msg string) error {
	if code == 0 {
		return nil
	}
	return newPlaneError(msg, code, false)
}

// Message 返回适合写入响应的错误描述（去掉外层包装，只保留最接近根因的一层）。
func Message(err error) string {
	if err == nil {
		return ""
	}
	return previousLastError(err).Error()
}

func previousLastError(err error) error {
	lastErr := err
	for {
		nextErr := errors.Unwrap(err)
		if nextErr == nil {
			break
		}
		lastErr = err
		err = nextErr
	}
	return lastErr
}

func WrapErrAsInputError(err error) error {
	if merr, ok := err.(planeError); ok {
		WithErrorType(InputError)(&merr)
		return merr
	}
	return err
}

func WrapErrAsInputErrorWhen(err error, targets ...planeError) error {
	if merr, ok := err.(planeError); ok {
		for _, target := range targets {
			if target.errCode == merr.errCode {
				log.Info("mark error as input error", zap.Error(err))
				WithErrorType(InputError)(&merr)
				return merr
			}
		}
	}
	return err
}

func GetErrorType(err error) ErrorType {
	if merr, ok := err.(planeError); ok {
		return merr.errType
	}

	return SystemError
}

// Service 相关错误封装。
func WrapErrServiceInternal(reason string, msg ...string) error {
	err := wrapFieldsWithDesc(ErrServiceInternal, reason)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrServiceUnimplemented(apiKey any, msg ...string) error {
	err := wrapFields(ErrServiceUnimplemented, value("api", apiKey))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// Codec 相关错误封装。

// WrapErrBufferUnderflow 表示读取 field 时剩余字节不足 need 个。
func WrapErrBufferUnderflow(field string, need, remaining int) error {
	return wrapFields(ErrBufferUnderflow,
		value("field", field),
		value("need", need),
		value("remaining", remaining),
	)
}

// WrapErrDecode 构造 DecodeError：reason 说明失败原因，field 说明出错字段的上下文。
func WrapErrDecode(field string, reason string, msg ...string) error {
	err := wrapFieldsWithDesc(ErrDecode, reason, value("field", field))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// WrapErrDecodeCause 将底层错误 cause 归类为 DecodeError，同时保留 cause 的错误码以便 errors.Is 匹配。
func WrapErrDecodeCause(field string, cause error) error {
	if cause == nil {
		return nil
	}
	if errors.IsAny(cause, ErrBufferUnderflow, ErrUnknownVariant, ErrDecode) {
		return errors.Wrapf(cause, "decode %s", field)
	}
	return wrapFieldsWithDesc(ErrDecode, cause.Error(), value("field", field))
}

func WrapErrEncode(field string, cause error) error {
	if cause == nil {
		return nil
	}
	if errors.Is(cause, ErrEncode) {
		return errors.Wrapf(cause, "encode %s", field)
	}
	return wrapFieldsWithDesc(ErrEncode, cause.Error(), value("field", field))
}

// WrapErrUnknownVariant 表示 tag 不属于 sumType 的任何已知分支。
func WrapErrUnknownVariant(tag any, sumType string) error {
	return wrapFields(ErrUnknownVariant, value("tag", tag), value("type", sumType))
}

// 资源类型相关错误封装。
func WrapErrUnknownResourceKind(tag string, msg ...string) error {
	err := wrapFields(ErrUnknownResourceKind, value("tag", tag))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrKindRegistered(label string, msg ...string) error {
	err := wrapFields(ErrKindRegistered, value("kind", label))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrKindNotRemovable(label string) error {
	return wrapFields(ErrKindNotRemovable, value("kind", label))
}

func WrapErrKindNotCreatable(label string) error {
	return wrapFields(ErrKindNotCreatable, value("kind", label))
}

// Api 相关错误封装。
func WrapErrApiKeyMismatch(expected, actual uint16) error {
	return wrapFields(ErrApiKeyMismatch, value("expected", expected), value("actual", actual))
}

func WrapErrVersionUnsupported(apiKey uint16, version, lower, upper int16) error {
	return wrapFields(ErrVersionUnsupported,
		value("api", apiKey),
		bound("version", version, lower, upper),
	)
}

func WrapErrRouteNotFound(apiKey uint16) error {
	return wrapFields(ErrRouteNotFound, value("api", apiKey))
}

func WrapErrRouteRegistered(apiKey uint16) error {
	return wrapFields(ErrRouteRegistered, value("api", apiKey))
}

// Frame 相关错误封装。
func WrapErrFrameTooLarge(size, limit uint64) error {
	return wrapFields(ErrFrameTooLarge, value("size", size), value("max", limit))
}

// WrapErrFrameInflated 表示压缩帧解压后超过上限，size 为压缩后的长度。
func WrapErrFrameInflated(compression string, size, limit uint64) error {
	return wrapFields(ErrFrameTooLarge, value("compression", compression), value("compressed", size), value("max", limit))
}

func WrapErrFrameCorrupted(reason string, msg ...string) error {
	err := wrapFieldsWithDesc(ErrFrameCorrupted, reason)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// Metadata 相关错误封装。
func WrapErrConversion(kind string, name string, reason string) error {
	return wrapFieldsWithDesc(ErrConversion, reason, value("kind", kind), value("name", name))
}

func WrapErrObjectNotFound(kind string, key any, msg ...string) error {
	err := wrapFields(ErrObjectNotFound, value("kind", kind), value("key", key))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrObjectExists(kind string, key any) error {
	return wrapFields(ErrObjectExists, value("kind", kind), value("key", key))
}

// 参数相关错误封装。
func WrapErrParameterInvalid[T any](expected, actual T, msg ...string) error {
	err := wrapFields(ErrParameterInvalid,
		value("expected", expected),
		value("actual", actual),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrParameterInvalidMsg(fmt string, args ...any) error {
	return errors.Wrapf(ErrParameterInvalid, fmt, args...)
}

func WrapErrParameterMissing[T any](param T, msg ...string) error {
	err := wrapFields(ErrParameterMissing,
		value("missing_param", param),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func wrapFields(err planeError, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	err.detail = err.msg
	return err
}

func wrapFieldsWithDesc(err planeError, desc string, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	err.msg += ": " + desc
	err.detail = err.msg
	return err
}

type errorField interface {
	String() string
}

type valueField struct {
	name  string
	value any
}

func value(name string, value any) valueField {
	return valueField{
		name,
		value,
	}
}

func (f valueField) String() string {
	return fmt.Sprintf("%s=%v", f.name, f.value)
}

type boundField struct {
	name  string
	value any
	lower any
	upper any
}

func bound(name string, value, lower, upper any) boundField {
	return boundField{
		name,
		value,
		lower,
		upper,
	}
}

func (f boundField) String() string {
	return fmt.Sprintf("%v out of range %v <= %s <= %v", f.value, f.lower, f.name, f.upper)
}
