package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeCyclicBOM         Code = "CYCLIC_BOM"
	CodeStorage           Code = "STORAGE_ERROR"
	CodeAlreadyRunning    Code = "ALREADY_RUNNING"
	CodeCanceled          Code = "CANCELED"
	CodeConfig            Code = "CONFIG_ERROR"
	CodeInternalInvariant Code = "INTERNAL_INVARIANT"
	CodeNotFound          Code = "NOT_FOUND"
	CodeInternal          Code = "INTERNAL_ERROR"
)

type Metadata struct {
	Retryable     bool
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeCyclicBOM: {
		Retryable:     false,
		PublicMessage: "bill of materials contains a cycle",
	},
	CodeStorage: {
		Retryable:     true,
		PublicMessage: "storage adapter failure",
	},
	CodeAlreadyRunning: {
		Retryable:     true,
		PublicMessage: "a planning run is already in progress",
	},
	CodeCanceled: {
		Retryable:     true,
		PublicMessage: "planning run canceled",
	},
	CodeConfig: {
		Retryable:     false,
		PublicMessage: "invalid planning option",
	},
	CodeInternalInvariant: {
		Retryable:     false,
		PublicMessage: "planning invariant violated",
	},
	CodeNotFound: {
		Retryable:     false,
		PublicMessage: "resource not found",
	},
	CodeInternal: {
		Retryable:     true,
		PublicMessage: "internal error",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts a typed *Error from anywhere in the chain, or nil.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether err carries the given engine error code.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

// CyclicBOM reports that level assignment did not reach a fixed point.
// The witness is the last part whose low-level code was still growing.
func CyclicBOM(witness string) *Error {
	return New(CodeCyclicBOM, fmt.Sprintf("level assignment did not terminate; witness part %q", witness)).
		WithDetails(map[string]string{"part": witness})
}

// Storage wraps a storage adapter failure.
func Storage(err error, operation string) *Error {
	return Wrap(CodeStorage, err, fmt.Sprintf("storage adapter: %s", operation))
}

// AlreadyRunning reports that another planning run holds the lock.
func AlreadyRunning() *Error {
	return New(CodeAlreadyRunning, "another planning run is in progress")
}

// Canceled wraps a context cancellation or deadline error.
func Canceled(cause error) *Error {
	return Wrap(CodeCanceled, cause, "planning run canceled")
}

// Config reports an invalid run option.
func Config(field, reason string) *Error {
	return New(CodeConfig, fmt.Sprintf("option %s: %s", field, reason)).
		WithDetails(map[string]string{"field": field, "reason": reason})
}

// Invariant reports an internal planning invariant violation. It usually
// indicates a bug in the engine; a BOM cycle detached from every top-level
// assembly also surfaces this way, at explosion time.
func Invariant(what string) *Error {
	return New(CodeInternalInvariant, what)
}
