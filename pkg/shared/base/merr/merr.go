// 指示: miu200521358
// Package merr はエラーIDを持つ共通エラー型を提供する。
package merr

import (
	"errors"
	"fmt"
)

// ErrorKind はエラー分類を表す。
type ErrorKind string

const (
	// ErrorKindValidate は入力検証エラーを表す。
	ErrorKindValidate ErrorKind = "validate"
	// ErrorKindNotFound は対象不在エラーを表す。
	ErrorKindNotFound ErrorKind = "not_found"
	// ErrorKindExternal は外部入力起因のエラーを表す。
	ErrorKindExternal ErrorKind = "external"
	// ErrorKindInternal は内部処理エラーを表す。
	ErrorKindInternal ErrorKind = "internal"
)

// MError はエラーIDと原因を保持するエラーを表す。
type MError struct {
	id      string
	kind    ErrorKind
	message string
	cause   error
}

// NewMError はMErrorを生成する。
func NewMError(id string, kind ErrorKind, format string, cause error, params ...any) *MError {
	message := format
	if len(params) > 0 {
		message = fmt.Sprintf(format, params...)
	}
	return &MError{id: id, kind: kind, message: message, cause: cause}
}

// Error はエラーメッセージを返す。
func (e *MError) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.id, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.id, e.message)
}

// Unwrap は原因エラーを返す。
func (e *MError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// ErrorID はエラーIDを返す。
func (e *MError) ErrorID() string {
	if e == nil {
		return ""
	}
	return e.id
}

// Kind はエラー分類を返す。
func (e *MError) Kind() ErrorKind {
	if e == nil {
		return ""
	}
	return e.kind
}

// Message は原因を含まないメッセージを返す。
func (e *MError) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Is は同一エラーIDを同値とみなす。
func (e *MError) Is(target error) bool {
	var other *MError
	if !errors.As(target, &other) || e == nil || other == nil {
		return false
	}
	return e.id == other.id
}

// ExtractErrorID はエラー連鎖から最初に見つかったエラーIDを返す。
func ExtractErrorID(err error) string {
	var m *MError
	if errors.As(err, &m) {
		return m.id
	}
	return ""
}

// ExtractErrorKind はエラー連鎖から最初に見つかったエラー分類を返す。
func ExtractErrorKind(err error) ErrorKind {
	var m *MError
	if errors.As(err, &m) {
		return m.kind
	}
	return ""
}
