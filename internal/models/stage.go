// Package models defines the core data structures for DiagPipe.
//
// It includes the diagnosis pipeline stage identifiers, per-stage results,
// conversation messages, and the shared API response envelope.
package models

import "time"

// Stage identifies one discrete step of the diagnosis pipeline.
type Stage string

const (
	// StageInitial records the raw patient case text; no generation call.
	StageInitial Stage = "initial"
	// StageExtraction extracts medical factors from the case text.
	StageExtraction Stage = "extraction"
	// StageCausalAnalysis derives causal links between extracted factors.
	StageCausalAnalysis Stage = "causal_analysis"
	// StageValidation checks information completeness; may self-loop.
	StageValidation Stage = "validation"
	// StageCounterfactual performs counterfactual reasoning over the links.
	StageCounterfactual Stage = "counterfactual"
	// StageDiagnosis ranks candidate diagnoses.
	StageDiagnosis Stage = "diagnosis"
	// StageTreatmentPlanning drafts treatment options for the top diagnoses.
	StageTreatmentPlanning Stage = "treatment_planning"
	// StagePatientSpecific tailors the plan to patient-specific details.
	StagePatientSpecific Stage = "patient_specific"
	// StageFinalPlan consolidates the final treatment plan.
	StageFinalPlan Stage = "final_plan"
	// StageVisualization renders the causal graph; no generation call.
	StageVisualization Stage = "visualization"
	// StageComplete is the terminal stage; advancing from it is a no-op.
	StageComplete Stage = "complete"
)

// StageSequence is the fixed forward order of the pipeline. The only legal
// backward edge is validation -> validation when the readiness marker is
// absent from the generated text.
var StageSequence = []Stage{
	StageInitial,
	StageExtraction,
	StageCausalAnalysis,
	StageValidation,
	StageCounterfactual,
	StageDiagnosis,
	StageTreatmentPlanning,
	StagePatientSpecific,
	StageFinalPlan,
	StageVisualization,
	StageComplete,
}

// IsValidStage checks if the given stage identifier is part of the pipeline.
func IsValidStage(s Stage) bool {
	for _, stage := range StageSequence {
		if stage == s {
			return true
		}
	}
	return false
}

// StageResult holds the outcome of executing one pipeline stage. The results
// store keeps only the latest attempt per stage; a validation retry or an
// explicit refinement overwrites the previous entry.
type StageResult struct {
	Stage     Stage     `json:"stage"`
	Text      string    `json:"text"`
	NextStage Stage     `json:"next_stage"`
	Ready     bool      `json:"ready,omitempty"` // validation only: readiness marker found
	CreatedAt time.Time `json:"created_at"`
}

// ConversationMessage represents a single turn in a session's conversation log.
type ConversationMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionState identifies the approval-gate state of a session.
type SessionState string

const (
	// SessionAwaitingInput means the session accepts Submit for the current stage.
	SessionAwaitingInput SessionState = "awaiting_input"
	// SessionAwaitingApproval means a stage produced output pending Approve or Refine.
	SessionAwaitingApproval SessionState = "awaiting_approval"
)

// SessionStatus is the read-only snapshot exposed to UI and CLI front ends.
type SessionStatus struct {
	SessionID   string       `json:"session_id"`
	Stage       Stage        `json:"stage"`
	State       SessionState `json:"state"`
	PendingText string       `json:"pending_text,omitempty"`
	IsTerminal  bool         `json:"is_terminal"`
}
