// internal/pkg/apperror/errors.go
package apperror

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code identifies a failure outcome
type Code string

const (
	CodeCartEmpty              Code = "CART_EMPTY"
	CodeProductMissing         Code = "PRODUCT_MISSING"
	CodeInvalidSKU             Code = "INVALID_SKU"
	CodeInsufficientStock      Code = "INSUFFICIENT_STOCK"
	CodeInvalidCoupon          Code = "INVALID_COUPON"
	CodeCouponExpired          Code = "COUPON_EXPIRED"
	CodeMinCartValueNotMet     Code = "MIN_CART_VALUE_NOT_MET"
	CodeMissingShippingAddress Code = "MISSING_SHIPPING_ADDRESS"
	CodeInvalidSignature       Code = "INVALID_SIGNATURE"
	CodeAmountMismatch         Code = "PAYMENT_AMOUNT_MISMATCH"
	CodePaymentSessionNotFound Code = "PAYMENT_SESSION_NOT_FOUND"
	CodeValidation             Code = "VALIDATION_ERROR"

	CodeUserNotFound Code = "USER_NOT_FOUND"
	CodeNotFound     Code = "NOT_FOUND"

	CodeStateConflict Code = "STATE_CONFLICT"
	CodeUnauthorized  Code = "UNAUTHORIZED"

	CodeInternal   Code = "INTERNAL_ERROR"
	CodeDependency Code = "DEPENDENCY_ERROR"
)

// Class groups codes by how callers must treat them
type Class int

const (
	ClassSystem Class = iota
	ClassValidation
	ClassNotFound
)

// Metadata describes transport behaviour for a code
type Metadata struct {
	HTTPStatus    int
	Class         Class
	PublicMessage string
}

var validation = Metadata{HTTPStatus: http.StatusBadRequest, Class: ClassValidation, PublicMessage: "validation failed"}

var metadataByCode = map[Code]Metadata{
	CodeCartEmpty:              validation,
	CodeProductMissing:         validation,
	CodeInvalidSKU:             validation,
	CodeInsufficientStock:      validation,
	CodeInvalidCoupon:          validation,
	CodeCouponExpired:          validation,
	CodeMinCartValueNotMet:     validation,
	CodeMissingShippingAddress: validation,
	CodeInvalidSignature:       validation,
	CodeAmountMismatch:         validation,
	CodePaymentSessionNotFound: validation,
	CodeValidation:             validation,
	CodeUserNotFound: {
		HTTPStatus:    http.StatusNotFound,
		Class:         ClassNotFound,
		PublicMessage: "user not found",
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		Class:         ClassNotFound,
		PublicMessage: "resource not found",
	},
	CodeStateConflict: {
		HTTPStatus:    http.StatusConflict,
		Class:         ClassValidation,
		PublicMessage: "state transition disallowed",
	},
	CodeUnauthorized: {
		HTTPStatus:    http.StatusUnauthorized,
		Class:         ClassValidation,
		PublicMessage: "authentication required",
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Class:         ClassSystem,
		PublicMessage: "Internal server error",
	},
	CodeDependency: {
		HTTPStatus:    http.StatusServiceUnavailable,
		Class:         ClassSystem,
		PublicMessage: "Service temporarily unavailable",
	},
}

// MetadataFor returns the metadata for code, defaulting to internal
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is a typed application error
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
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
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts an *Error from the chain
func As(err error) (*Error, bool) {
	var target *Error
	if stdErrors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// CodeOf returns the code carried by err, or CodeInternal
func CodeOf(err error) Code {
	if typed, ok := As(err); ok {
		return typed.Code()
	}
	return CodeInternal
}

// Is reports whether err carries code
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// IsUserFacing reports whether err is an expected outcome whose message may be shown verbatim
func IsUserFacing(err error) bool {
	typed, ok := As(err)
	if !ok {
		return false
	}
	return MetadataFor(typed.Code()).Class != ClassSystem
}
