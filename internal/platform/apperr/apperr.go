// Package apperr defines the service-wide error taxonomy. Every error that
// crosses a service boundary is one of five kinds; handlers map kinds to HTTP
// statuses without inspecting storage-layer detail.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for propagation and HTTP mapping.
type Kind int

const (
	// KindValidation marks client input faults: never retried, all side
	// effects blocked.
	KindValidation Kind = iota + 1
	// KindConflict marks uniqueness collisions; the message names the
	// conflicting entity so the caller can correct the request.
	KindConflict
	// KindNotFound marks a missing entity reference.
	KindNotFound
	// KindState marks a rejected lifecycle operation (bad transition,
	// delete of a finalized record).
	KindState
	// KindInternal marks unexpected failures, safe for the caller to retry.
	KindInternal
)

// Stable error codes carried on Error. Tests and API clients match on these
// rather than on message text.
const (
	CodeInvalidToothNumber         = "invalid_tooth_number"
	CodeInvalidToothStatus         = "invalid_tooth_status"
	CodeInvalidSurface             = "invalid_surface"
	CodeInvalidPriority            = "invalid_priority"
	CodeDuplicateToothInSubmission = "duplicate_tooth_in_submission"
	CodeInvalidExaminationDate     = "invalid_examination_date"
	CodeInvalidPatientReference    = "invalid_patient_reference"
	CodeInvalidClinicReference     = "invalid_clinic_reference"
	CodeInvalidTreatmentReference  = "invalid_treatment_reference"
	CodeInvalidUrgencyLevel        = "invalid_urgency_level"
	CodeDuplicateOdontogramForDate = "duplicate_odontogram_for_date"
	CodeDuplicateOdontogramCode    = "duplicate_odontogram_code"
	CodeInvalidStatusTransition    = "invalid_status_transition"
	CodeInvalidTreatmentStatus     = "invalid_treatment_status"
	CodeCannotDeleteFinalized      = "cannot_delete_finalized"
	CodeTreatmentNotRequired       = "treatment_not_required"
	CodeAlreadyProjected           = "already_projected"
	CodeOdontogramNotFound         = "odontogram_not_found"
	CodeToothRecordNotFound        = "tooth_record_not_found"
	CodeBudgetNotFound             = "budget_not_found"
	CodeBudgetItemNotFound         = "budget_item_not_found"
	CodeInvoiceNotFound            = "invoice_not_found"
	CodePriceNotFound              = "price_not_found"
	CodeInternal                   = "internal_error"
)

// Error is the taxonomy's concrete error type.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// wrapped holds the underlying cause for internal errors; it is never
	// exposed in user-visible messages.
	wrapped error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

// Validation builds a client-input error with the given stable code.
func Validation(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a uniqueness-collision error.
func Conflict(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a missing-entity error.
func NotFound(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

// State builds a rejected-lifecycle-operation error.
func State(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindState, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure. The cause is preserved for logging
// but the user-visible message is generic.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "internal error", wrapped: err}
}

// KindOf returns the taxonomy kind of err, or KindInternal for errors from
// outside the taxonomy.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// CodeOf returns the stable code of err, or CodeInternal.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// HTTPStatus maps an error's kind to an HTTP status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindState:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-visible message for err. Internal errors render a
// generic message so storage detail never leaks.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		return ae.Message
	}
	return "internal error"
}
