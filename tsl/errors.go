// Package tsl provides the in-memory model of an ETSI TS 119 612 Trusted List,
// the version-aware value rules for its extensions and criteria, and the
// engine that evaluates certificates against the criteria a list declares.
// This file contains the error types shared by the model, the builders and
// the checkers.
package tsl

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind int

const (
	// KindArgument is a missing or empty required input.
	KindArgument Kind = iota + 1
	// KindMalformed is a structural or semantic checker failure.
	KindMalformed
	// KindParsing is a failure translating XML into the model.
	KindParsing
	// KindCertificateValidation is a failure decoding a certificate while matching.
	KindCertificateValidation
	// KindEncoding is a failure translating the model into XML.
	KindEncoding
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindArgument:
		return "argument error"
	case KindMalformed:
		return "malformed trusted list"
	case KindParsing:
		return "parsing error"
	case KindCertificateValidation:
		return "certificate validation error"
	case KindEncoding:
		return "encoding error"
	default:
		return fmt.Sprintf("unknown error kind (%d)", int(k))
	}
}

// Sentinel errors, one per Kind. An *Error matches the sentinel of its kind
// through errors.Is.
var (
	ErrArgument              = errors.New("argument error")
	ErrMalformed             = errors.New("malformed trusted list")
	ErrParsing               = errors.New("trusted list parsing error")
	ErrCertificateValidation = errors.New("certificate validation error")
	ErrEncoding              = errors.New("trusted list encoding error")
)

// Code is a stable, machine-readable diagnostic code. Codes double as the
// message catalog key for localized rendering.
type Code string

// Diagnostic codes.
const (
	CodeEmptySpecification   Code = "TSL-ARG-001"
	CodeNilValue             Code = "TSL-ARG-002"
	CodeNoBuilder            Code = "TSL-ARG-003"
	CodeNilCertificate       Code = "TSL-ARG-004"
	CodeEmptyStream          Code = "TSL-ARG-005"
	CodeXMLSyntax            Code = "TSL-PRS-001"
	CodeInvalidURI           Code = "TSL-PRS-002"
	CodeInvalidDate          Code = "TSL-PRS-003"
	CodeInvalidCertificate   Code = "TSL-PRS-004"
	CodeInvalidKeyValue      Code = "TSL-PRS-005"
	CodeInvalidBase64        Code = "TSL-PRS-006"
	CodeEmptyExtension       Code = "TSL-PRS-007"
	CodeMissingElement       Code = "TSL-MAL-001"
	CodeInvalidValue         Code = "TSL-MAL-002"
	CodeExtensionPlacement   Code = "TSL-MAL-010"
	CodeExtensionServiceType Code = "TSL-MAL-011"
	CodeExtensionCritical    Code = "TSL-MAL-012"
	CodeAdditionalInfoURI    Code = "TSL-MAL-013"
	CodeRootCAQCServiceType  Code = "TSL-MAL-014"
	CodeEmptyQualifications  Code = "TSL-MAL-015"
	CodeInvalidQualifier     Code = "TSL-MAL-016"
	CodeUnknownCritical      Code = "TSL-MAL-017"
	CodeEmptyCriteria        Code = "TSL-MAL-020"
	CodeInvalidAssert        Code = "TSL-MAL-021"
	CodeInvalidOID           Code = "TSL-MAL-022"
	CodeHistoryOrder         Code = "TSL-MAL-030"
	CodeSignatureMissing     Code = "TSL-MAL-040"
	CodeSignatureInvalid     Code = "TSL-MAL-041"
	CodeSubjectDecoding      Code = "TSL-CRT-001"
	CodeEKUDecoding          Code = "TSL-CRT-002"
	CodePolicyDecoding       Code = "TSL-CRT-003"
	CodeUnhandledVariant     Code = "TSL-INT-001"
	CodeXMLMarshal           Code = "TSL-ENC-001"
)

// Error is the error type returned by every operation of the trusted list core.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of this error's kind, or an *Error
// of the same kind and code.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrArgument:
		return e.Kind == KindArgument
	case ErrMalformed:
		return e.Kind == KindMalformed
	case ErrParsing:
		return e.Kind == KindParsing
	case ErrCertificateValidation:
		return e.Kind == KindCertificateValidation
	case ErrEncoding:
		return e.Kind == KindEncoding
	}
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind && other.Code == e.Code
	}
	return false
}

// NewArgumentError creates an error for a missing or empty required input.
func NewArgumentError(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindArgument, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewMalformedError creates a checker failure.
func NewMalformedError(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindMalformed, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewParsingError creates an XML to model translation failure wrapping cause.
func NewParsingError(code Code, cause error, format string, args ...any) *Error {
	return &Error{Kind: KindParsing, Code: code, Message: fmt.Sprintf(format, args...), Err: cause}
}

// NewCertificateValidationError creates a certificate decoding failure wrapping cause.
func NewCertificateValidationError(code Code, cause error, format string, args ...any) *Error {
	return &Error{Kind: KindCertificateValidation, Code: code, Message: fmt.Sprintf(format, args...), Err: cause}
}

// NewEncodingError creates a model to XML translation failure wrapping cause.
func NewEncodingError(code Code, cause error, format string, args ...any) *Error {
	return &Error{Kind: KindEncoding, Code: code, Message: fmt.Sprintf(format, args...), Err: cause}
}

// CodeOf returns the diagnostic code carried by err, or "" if err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
