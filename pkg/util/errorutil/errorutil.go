package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure. The set is closed; every fault crossing a
// component boundary carries exactly one of these.
type Kind string

const (
	KindBadRequest         Kind = "BAD_REQUEST"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindForbidden          Kind = "FORBIDDEN"
	KindItemNotFound       Kind = "ITEM_NOT_FOUND"
	KindConflict           Kind = "CONFLICT"
	KindServiceUnavailable Kind = "SERVICE_UNAVAILABLE"
	KindInternal           Kind = "INTERNAL_FAULT"

	// KindUnsupportedMediaType is raised by the transport only, for bodies
	// it cannot decode at all.
	KindUnsupportedMediaType Kind = "UNSUPPORTED_MEDIA_TYPE"
)

var kindStatus = map[Kind]int{
	KindBadRequest:         http.StatusBadRequest,
	KindUnauthorized:       http.StatusUnauthorized,
	KindForbidden:          http.StatusForbidden,
	KindItemNotFound:       http.StatusNotFound,
	KindConflict:           http.StatusConflict,
	KindServiceUnavailable: http.StatusServiceUnavailable,
	KindInternal:           http.StatusInternalServerError,

	KindUnsupportedMediaType: http.StatusUnsupportedMediaType,
}

// Status returns the caller-facing response code for the kind.
func (k Kind) Status() int {
	if status, ok := kindStatus[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainError standardizes application errors.
type DomainError struct {
	Kind       Kind
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Wrap attaches an internal cause without changing the caller-facing message.
func (e *DomainError) Wrap(err error) *DomainError {
	e.Err = err
	return e
}

// NewDomainError constructs a DomainError of the given kind.
func NewDomainError(kind Kind, code, message string, details map[string]any) *DomainError {
	return &DomainError{
		Kind:       kind,
		Code:       code,
		Message:    message,
		HTTPStatus: kind.Status(),
		Details:    details,
	}
}

func NewBadRequest(message string, details map[string]any) *DomainError {
	return NewDomainError(KindBadRequest, "badRequest", message, details)
}

func NewUnauthorized(message string) *DomainError {
	return NewDomainError(KindUnauthorized, "unauthorized", message, nil)
}

func NewForbidden(message string) *DomainError {
	return NewDomainError(KindForbidden, "forbidden", message, nil)
}

func NewNotFound(resource string, details map[string]any) *DomainError {
	if details == nil {
		details = map[string]any{}
	}
	return NewDomainError(KindItemNotFound, "itemNotFound", fmt.Sprintf("%s not found", resource), details)
}

func NewConflict(code, message string, details map[string]any) *DomainError {
	if code == "" {
		code = "conflict"
	}
	return NewDomainError(KindConflict, code, message, details)
}

func NewServiceUnavailable(err error) *DomainError {
	return NewDomainError(KindServiceUnavailable, "serviceUnavailable", "service unavailable", nil).Wrap(err)
}

func NewUnsupportedMediaType(contentType string) *DomainError {
	return NewDomainError(KindUnsupportedMediaType, "unsupportedMediaType", "unsupported content type", map[string]any{"content_type": contentType})
}

// NewInternalError hides err behind a generic message; err is kept for logs only.
func NewInternalError(err error) *DomainError {
	return NewDomainError(KindInternal, "identityFault", "internal server error", nil).Wrap(err)
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return NewInternalError(err)
}

// MapError is ToDomainError typed as error, for return statements.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// KindOf reports the kind of err, or "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Kind
}

func IsBadRequest(err error) bool   { return KindOf(err) == KindBadRequest }
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }
func IsForbidden(err error) bool    { return KindOf(err) == KindForbidden }
func IsNotFound(err error) bool     { return KindOf(err) == KindItemNotFound }
func IsConflict(err error) bool     { return KindOf(err) == KindConflict }
