package models

import "errors"

// Validation constants for input validation
const (
	// MaxCaseTextLength defines the maximum allowed length for patient case text
	MaxCaseTextLength = 16384
	// MaxHumanTextLength defines the maximum allowed length for supplementary human text
	MaxHumanTextLength = 8192
)

// Error variables for better error handling and testability
var (
	// ErrUnknownStage indicates a stage identifier outside the fixed catalog.
	ErrUnknownStage = errors.New("unknown stage")
	// ErrMissingDependency indicates a stage ran before a prerequisite recorded a result.
	ErrMissingDependency = errors.New("missing stage dependency")
	// ErrGenerationUnavailable indicates a transient generation backend failure
	// (network, auth, rate limit, timeout). Safe to retry; no state was mutated.
	ErrGenerationUnavailable = errors.New("generation backend unavailable")
	// ErrInvalidSessionState indicates an operation invoked in a session state
	// that does not permit it.
	ErrInvalidSessionState = errors.New("invalid session state")

	ErrEmptyCaseText    = errors.New("case text cannot be empty")
	ErrCaseTextTooLong  = errors.New("case text exceeds maximum length")
	ErrEmptyHumanText   = errors.New("text cannot be empty")
	ErrHumanTextTooLong = errors.New("text exceeds maximum length")
)

// StartCaseRequest starts a new diagnosis session from raw patient case text.
type StartCaseRequest struct {
	CaseText string `json:"case_text"`
}

// Validate performs validation on a StartCaseRequest.
func (r *StartCaseRequest) Validate() error {
	if r.CaseText == "" {
		return ErrEmptyCaseText
	}
	if len(r.CaseText) > MaxCaseTextLength {
		return ErrCaseTextTooLong
	}
	return nil
}

// SubmitRequest supplies human text for the current stage of a session.
type SubmitRequest struct {
	Text string `json:"text"`
}

// Validate performs validation on a SubmitRequest.
func (r *SubmitRequest) Validate() error {
	if len(r.Text) > MaxHumanTextLength {
		return ErrHumanTextTooLong
	}
	return nil
}

// RefineRequest asks the pending stage to be re-run with refinement guidance.
type RefineRequest struct {
	Text string `json:"text"`
}

// Validate performs validation on a RefineRequest.
func (r *RefineRequest) Validate() error {
	if r.Text == "" {
		return ErrEmptyHumanText
	}
	if len(r.Text) > MaxHumanTextLength {
		return ErrHumanTextTooLong
	}
	return nil
}

// API Response types for consistent JSON responses

// APIStatus represents the status field of an API response.
type APIStatus string

const (
	// APIStatusOK indicates a successful API call.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates a failed API call.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
