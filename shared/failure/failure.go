package failure

import (
	"errors"
	"net/http"
)

// Kind classifies a Failure beyond its HTTP code so callers can tell apart
// outcomes that share a status code (e.g. a decision race vs. a slot race).
type Kind string

const (
	KindValidation         Kind = "validation"
	KindNotFound           Kind = "not_found"
	KindAlreadyProcessed   Kind = "already_processed"
	KindConflictAtApproval Kind = "conflict_at_approval"
	KindInvalidTransition  Kind = "invalid_transition"
	KindTransient          Kind = "transient"
	KindSyncConflict       Kind = "sync_conflict"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindInternal           Kind = "internal"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message"`
}

var InvalidPageParam = &Failure{Code: http.StatusBadRequest, Kind: KindValidation, Message: "invalid page parameter"}
var InvalidLimitParam = &Failure{Code: http.StatusBadRequest, Kind: KindValidation, Message: "invalid limit parameter"}
var ForbiddenError = &Failure{Code: http.StatusForbidden, Kind: KindForbidden, Message: "You don't have the required permissions"}
var ResourceRestrictedError = &Failure{Code: http.StatusForbidden, Kind: KindForbidden, Message: "You don't have permission to access this resource"}

// Error returns the failure message.
func (e *Failure) Error() string {
	return e.Message
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Kind:    KindValidation,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Message: msg,
	}
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Kind:    KindUnauthorized,
		Message: msg,
	}
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Kind:    KindInternal,
			Message: err.Error(),
		}
	}

	return nil
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: entityName,
	}
}

// Conflict returns a new Failure with code for conflict situations.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindConflictAtApproval,
		Message: message,
	}
}

// AlreadyProcessed signals a decision arriving for a request that is no
// longer pending. Distinct from Conflict: the operator should refresh the
// list, not pick another slot.
func AlreadyProcessed(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindAlreadyProcessed,
		Message: message,
	}
}

// InvalidTransition signals an illegal state machine transition.
func InvalidTransition(message string) error {
	return &Failure{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindInvalidTransition,
		Message: message,
	}
}

// Transient marks a network/timeout-class store failure eligible for bounded retry.
func Transient(err error) error {
	if err == nil {
		return nil
	}

	return &Failure{
		Code:    http.StatusServiceUnavailable,
		Kind:    KindTransient,
		Message: err.Error(),
	}
}

// SyncConflict marks an offline queue entry rejected on replay due to a real conflict.
func SyncConflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindSyncConflict,
		Message: message,
	}
}

// Unimplemented returns a new Failure with code for unimplemented operations.
func Unimplemented(msg string) error {
	return &Failure{
		Code:    http.StatusNotImplemented,
		Kind:    KindInternal,
		Message: msg,
	}
}

func Forbidden(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Kind:    KindForbidden,
		Message: msg,
	}
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetKind returns the failure kind, or KindInternal for unclassified errors.
func GetKind(err error) Kind {
	var fail *Failure
	if errors.As(err, &fail) && fail.Kind != "" {
		return fail.Kind
	}

	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// IsTransient reports whether err may be retried automatically. Unclassified
// errors count as transient: a raw driver error is network-class until a
// layer closer to the store says otherwise.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var fail *Failure
	if !errors.As(err, &fail) {
		return true
	}

	return fail.Kind == KindTransient || fail.Kind == ""
}
