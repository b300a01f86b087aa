// Package errors provides the error taxonomy of an import run.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies an import failure.
type Code string

const (
	CodeMissingConfig Code = "MISSING_CONFIG"
	CodeMalformedRow  Code = "MALFORMED_ROW"
	CodeTransport     Code = "TRANSPORT"
	CodeBackend       Code = "BACKEND"
	CodeResolve       Code = "RESOLVE"
)

// ImportError is a classified failure. Only CodeMissingConfig is fatal to a run;
// every other code fails a single row.
type ImportError struct {
	Code    Code
	Message string
	Err     error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Is matches another *ImportError by code, so callers can test against the sentinels below.
func (e *ImportError) Is(target error) bool {
	t, ok := target.(*ImportError)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

// Sentinels for errors.Is.
var (
	ErrMissingConfig = &ImportError{Code: CodeMissingConfig}
	ErrMalformedRow  = &ImportError{Code: CodeMalformedRow}
	ErrTransport     = &ImportError{Code: CodeTransport}
	ErrBackend       = &ImportError{Code: CodeBackend}
	ErrResolve       = &ImportError{Code: CodeResolve}
)

// MissingConfig reports a required configuration key that is not set.
func MissingConfig(key string) *ImportError {
	return &ImportError{
		Code:    CodeMissingConfig,
		Message: fmt.Sprintf("错误: 请设置 %s 环境变量 (可在 .env 文件中设置)", key),
	}
}

// MalformedRow reports a CSV row that cannot be imported.
func MalformedRow(line int, message string) *ImportError {
	return &ImportError{
		Code:    CodeMalformedRow,
		Message: fmt.Sprintf("line %d: %s", line, message),
	}
}

// Backend reports a non-success response from the backend.
func Backend(status int, body string) *ImportError {
	return &ImportError{
		Code:    CodeBackend,
		Message: fmt.Sprintf("backend returned status %d: %s", status, body),
	}
}

// Transport reports a request that never produced a backend response.
func Transport(err error) *ImportError {
	return &ImportError{
		Code:    CodeTransport,
		Message: "request failed",
		Err:     err,
	}
}

// Resolve reports an entity whose id could not be determined.
func Resolve(entity, name string) *ImportError {
	return &ImportError{
		Code:    CodeResolve,
		Message: fmt.Sprintf("%s处理失败: %s", entity, name),
	}
}

// CodeOf returns the code of the first ImportError in err's chain, or "" if none.
func CodeOf(err error) Code {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}
