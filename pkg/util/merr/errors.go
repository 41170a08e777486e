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
	"math"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

const (
	CanceledCode int32 = 10000
	TimeoutCode  int32 = 10001
)

type ErrorType int32

const (
	SystemError ErrorType = 0
	InputError  ErrorType = 1
)

var ErrorTypeName = map[ErrorType]string{
	SystemError: "system_error",
	InputError:  "input_error",
}

func (err ErrorType) String() string {
	return ErrorTypeName[err]
}

// Define leaf errors here,
// WARN: take care to add new error,
// check whether you can use the errors below before adding a new one.
// Name: Err + related prefix + error name
//
// 错误码会以 int16 写入响应 Status，新增错误码必须小于 math.MaxInt16。
var (
	// Service related
	ErrServiceInternal      = newPlaneError("service internal error", 5, false)
	ErrServiceUnimplemented = newPlaneError("service unimplemented", 10, false)

	// Codec related
	ErrBufferUnderflow = newPlaneError("buffer underflow", 100, false)
	ErrDecode          = newPlaneError("decode failed", 101, false)
	ErrEncode          = newPlaneError("encode failed", 102, false)
	ErrUnknownVariant  = newPlaneError("unknown variant", 103, false)

	// Resource kind related
	ErrUnknownResourceKind = newPlaneError("unknown resource kind", 200, false)
	ErrKindRegistered      = newPlaneError("resource kind already registered", 201, false)
	ErrKindNotRemovable    = newPlaneError("resource kind not removable", 202, false)
	ErrKindNotCreatable    = newPlaneError("resource kind not creatable", 203, false)

	// Api related
	ErrApiKeyMismatch     = newPlaneError("api key mismatch", 300, false)
	ErrVersionUnsupported = newPlaneError("api version unsupported", 301, false)
	ErrRouteNotFound      = newPlaneError("route not found", 302, false)
	ErrRouteRegistered    = newPlaneError("route already registered", 303, false)

	// Frame related
	ErrFrameTooLarge  = newPlaneError("frame too large", 400, false)
	ErrFrameCorrupted = newPlaneError("frame corrupted", 401, false)

	// Metadata related
	ErrConversion     = newPlaneError("object conversion failed", 500, false)
	ErrObjectNotFound = newPlaneError("object not found", 501, false)
	ErrObjectExists   = newPlaneError("object already exists", 502, false)

	// Parameter related
	ErrParameterInvalid = newPlaneError("invalid parameter", 1100, false)
	ErrParameterMissing = newPlaneError("missing parameter", 1101, false)

	// Do NOT export this,
	// never allow programmer using this, keep only for converting unknown error to planeError
	errUnexpected = newPlaneError("unexpected error", math.MaxInt16, false)
)

type errorOption func(*planeError)

func WithDetail(detail string) errorOption {
	return func(err *planeError) {
		err.detail = detail
	}
}

func WithErrorType(etype ErrorType) errorOption {
	return func(err *planeError) {
		err.errType = etype
	}
}

type planeError struct {
	msg       string
	detail    string
	retriable bool
	errCode   int32
	errType   ErrorType
}

func newPlaneError(msg string, code int32, retriable bool, options ...errorOption) planeError {
	err := planeError{
		msg:       msg,
		detail:    msg,
		retriable: retriable,
		errCode:   code,
	}

	for _, option := range options {
		option(&err)
	}
	return err
}

func (e planeError) code() int32 {
	return e.errCode
}

func (e planeError) Error() string {
	return e.msg
}

func (e planeError) Detail() string {
	return e.detail
}

func (e planeError) Is(err error) bool {
	cause := errors.Cause(err)
	if cause, ok := cause.(planeError); ok {
		return e.errCode == cause.errCode
	}
	return false
}

type multiErrors struct {
	errs []error
}

func (e multiErrors) Unwrap() error {
	if len(e.errs) <= 1 {
		return nil
	}
	// To make merr work for multi errors,
	// we need cause of multi errors, which defined as the last error
	if len(e.errs) == 2 {
		return e.errs[1]
	}

	return multiErrors{
		errs: e.errs[1:],
	}
}

func (e multiErrors) Error() string {
	final := e.errs[0]
	for i := 1; i < len(e.errs); i++ {
		final = errors.Wrap(e.errs[i], final.Error())
	}
	return final.Error()
}

func (e multiErrors) Is(err error) bool {
	for _, item := range e.errs {
		if errors.Is(item, err) {
			return true
		}
	}
	return false
}

func Combine(errs ...error) error {
	errs = lo.Filter(errs, func(err error, _ int) bool { return err != nil })
	if len(errs) == 0 {
		return nil
	}
	return multiErrors{
		errs,
	}
}
