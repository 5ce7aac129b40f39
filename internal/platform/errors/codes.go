// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeInvalidRequest represents a malformed request payload.
	CodeInvalidRequest Code = "INVALID_REQUEST"

	// Story and catalog errors
	CodeStoryNotFound          Code = "STORY_NOT_FOUND"
	CodeStoryEmptyPlan         Code = "STORY_EMPTY_PLAN"
	CodeComponentNotFound      Code = "COMPONENT_NOT_FOUND"
	CodeComponentPhaseMismatch Code = "COMPONENT_PHASE_MISMATCH"

	// Session errors
	CodeSessionNotFound              Code = "SESSION_NOT_FOUND"
	CodeSessionCompleted             Code = "SESSION_COMPLETED"
	CodeSessionPhaseAlreadyCompleted Code = "SESSION_PHASE_ALREADY_COMPLETED"
	CodeSessionInvalidSlot           Code = "SESSION_INVALID_SLOT"

	// Scoring errors
	CodeScoreBreakdownInvalid Code = "SCORE_BREAKDOWN_INVALID"
	CodeScorerNotFound        Code = "SCORER_NOT_FOUND"

	// Stealth errors
	CodeStealthNegativeSpend Code = "STEALTH_NEGATIVE_SPEND"

	// Action errors
	CodeActionUnknownType   Code = "ACTION_UNKNOWN_TYPE"
	CodeActionUnknownTarget Code = "ACTION_UNKNOWN_TARGET"
	CodeActionLockedOut     Code = "ACTION_LOCKED_OUT"

	// Report errors
	CodeReportNotReady Code = "REPORT_NOT_READY"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Filter errors
	CodeFilterInvalid Code = "FILTER_INVALID"
)

// httpStatusByCode maps error codes to HTTP status codes for the JSON API.
var httpStatusByCode = map[Code]int{
	CodeUnknown:                      http.StatusInternalServerError,
	CodeInvalidRequest:               http.StatusBadRequest,
	CodeStoryNotFound:                http.StatusBadRequest,
	CodeStoryEmptyPlan:               http.StatusBadRequest,
	CodeComponentNotFound:            http.StatusBadRequest,
	CodeComponentPhaseMismatch:       http.StatusBadRequest,
	CodeSessionNotFound:              http.StatusNotFound,
	CodeSessionCompleted:             http.StatusConflict,
	CodeSessionPhaseAlreadyCompleted: http.StatusConflict,
	CodeSessionInvalidSlot:           http.StatusBadRequest,
	CodeScoreBreakdownInvalid:        http.StatusInternalServerError,
	CodeScorerNotFound:               http.StatusBadRequest,
	CodeStealthNegativeSpend:         http.StatusBadRequest,
	CodeActionUnknownType:            http.StatusBadRequest,
	CodeActionUnknownTarget:          http.StatusBadRequest,
	CodeActionLockedOut:              http.StatusConflict,
	CodeReportNotReady:               http.StatusConflict,
	CodeNotFound:                     http.StatusNotFound,
	CodeFilterInvalid:                http.StatusBadRequest,
}

// HTTPStatus returns the HTTP status code for this error code.
// Unmapped codes default to 500.
func (c Code) HTTPStatus() int {
	if status, ok := httpStatusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}
