// Package errors defines the coded errors netdraw returns from its domain
// packages.
//
// Every error a caller can act on carries a [Code]. Codes group into a few
// [Kind]s, which is what the server maps to HTTP statuses and what the CLI
// reports:
//
//   - [KindInvalid]: the document, pattern, field or option is malformed
//   - [KindNotFound]: a node, session or document id does not resolve
//   - [KindConflict]: a view operation hit a node in the wrong state, such as
//     expanding something that is not an aggregate
//   - [KindUnsupported] and [KindInternal]
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPartition, "partition %d out of range", p)
//	if errors.Is(err, errors.ErrCodeInvalidPartition) {
//	    // ...
//	}
//
//	err = errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode %s", path)
//	switch errors.KindOf(err) {
//	case errors.KindInvalid:
//	    // ...
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidDocument  Code = "INVALID_DOCUMENT"
	ErrCodeInvalidPattern   Code = "INVALID_PATTERN"
	ErrCodeInvalidField     Code = "INVALID_FIELD"
	ErrCodeInvalidPartition Code = "INVALID_PARTITION"
	ErrCodeInvalidColorMode Code = "INVALID_COLOR_MODE"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"

	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeNodeNotFound     Code = "NODE_NOT_FOUND"
	ErrCodeSessionNotFound  Code = "SESSION_NOT_FOUND"
	ErrCodeDocumentNotFound Code = "DOCUMENT_NOT_FOUND"

	ErrCodeNotAggregate Code = "NOT_AGGREGATE"
	ErrCodeNotExpanded  Code = "NOT_EXPANDED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Kind is the category of a Code.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindConflict
	KindUnsupported
)

var kinds = map[Code]Kind{
	ErrCodeInvalidInput:     KindInvalid,
	ErrCodeInvalidDocument:  KindInvalid,
	ErrCodeInvalidPattern:   KindInvalid,
	ErrCodeInvalidField:     KindInvalid,
	ErrCodeInvalidPartition: KindInvalid,
	ErrCodeInvalidColorMode: KindInvalid,
	ErrCodeInvalidFormat:    KindInvalid,
	ErrCodeNotFound:         KindNotFound,
	ErrCodeNodeNotFound:     KindNotFound,
	ErrCodeSessionNotFound:  KindNotFound,
	ErrCodeDocumentNotFound: KindNotFound,
	ErrCodeNotAggregate:     KindConflict,
	ErrCodeNotExpanded:      KindConflict,
	ErrCodeUnsupported:      KindUnsupported,
}

// Kind returns the category of c. Unknown codes are internal.
func (c Code) Kind() Kind {
	return kinds[c]
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// KindOf returns the category of err. Errors without a code are internal.
func KindOf(err error) Kind {
	return GetCode(err).Kind()
}

// UserMessage returns the message of the outermost *Error without its code,
// or err.Error() for uncoded errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
