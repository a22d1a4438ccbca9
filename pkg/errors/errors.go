package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation             Code = "VALIDATION_ERROR"
	CodeInvalidItemName        Code = "INVALID_ITEM_NAME"
	CodeInvalidTransactionKind Code = "INVALID_TRANSACTION_KIND"
	CodeNotFound               Code = "NOT_FOUND"
	CodePersistence            Code = "PERSISTENCE_ERROR"
	CodeLockTimeout            Code = "LOCK_TIMEOUT"
	CodeInternal               Code = "INTERNAL_ERROR"
)

// Metadata describes how callers are expected to treat a code.
// Fatal codes indicate a programming error and are never folded into a
// per-item status by batch workflows.
type Metadata struct {
	Fatal         bool
	Retryable     bool
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		PublicMessage: "validation failed",
	},
	CodeInvalidItemName: {
		PublicMessage: "Invalid item name",
	},
	CodeInvalidTransactionKind: {
		Fatal:         true,
		PublicMessage: "invalid transaction kind",
	},
	CodeNotFound: {
		PublicMessage: "Not found",
	},
	CodePersistence: {
		Retryable:     true,
		PublicMessage: "ledger store unavailable",
	},
	CodeLockTimeout: {
		Retryable:     true,
		PublicMessage: "item is busy",
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
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

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

// CodeOf returns the code carried by err, or CodeInternal for untyped errors.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}

// IsCode reports whether err carries the provided code anywhere in its chain.
func IsCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// IsFatal reports whether err must be escalated instead of being recorded as
// a per-item failure.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return MetadataFor(CodeOf(err)).Fatal
}
