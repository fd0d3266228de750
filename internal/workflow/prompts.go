package workflow

import "github.com/MedCausal/DiagPipe/internal/models"

// ReadyMarker is the literal substring the validation prompt instructs the
// model to emit when no critical information is missing. Stage advancement
// past validation is gated on an exact, case- and encoding-sensitive
// substring match against this constant. The marker is a versioned contract
// between the prompt template below and the executor's readiness check; both
// sides must change together.
const ReadyMarker = "✅ Yes"

// System prompts for each generation-backed stage. Each prompt receives the
// composed context of its declared dependencies as the user message.
const (
	extractionPrompt = `You are a clinical reasoning assistant. From the patient case below,
extract the medically relevant factors as a concise list. Include symptoms,
findings, risk factors, medications, and relevant history. One factor per
line, no commentary.`

	causalAnalysisPrompt = `You are a clinical reasoning assistant. Given the extracted medical
factors below, identify plausible causal relationships between them. Express
each relationship on its own line in the form "Factor A -> Factor B", where
the arrow reads "contributes to or causes". Add a one-sentence rationale
after each link.`

	validationPrompt = `You are a clinical reasoning assistant. Review the extracted factors and
causal links below and decide whether enough information is present to
proceed with diagnosis ranking.

If critical information is missing, list the specific follow-up questions a
clinician should ask, one per line.

If no critical information is missing, reply with the exact text "` + ReadyMarker + `"
on its own line, followed by a one-paragraph summary of the case.`

	counterfactualPrompt = `You are a clinical reasoning assistant. Using the case analysis below,
perform counterfactual reasoning: for each major causal link, consider
whether the observed findings would still be expected if the link were
absent. Use this to strengthen or weaken each candidate explanation, and
state the result per link.`

	diagnosisRankingPrompt = `You are a clinical reasoning assistant. Based on the counterfactual
analysis below, produce a ranked list of candidate diagnoses from most to
least likely. For each, give the supporting evidence, the evidence against,
and an approximate likelihood.`

	treatmentPrompt = `You are a clinical treatment planning assistant. For the ranked diagnoses
below, outline the standard treatment options for the leading candidates,
including first-line and alternative approaches, with brief rationale.`

	patientSpecificPrompt = `You are a clinical treatment planning assistant. Adapt the treatment
options below to this specific patient. Account for the patient-specific
information provided, including comorbidities, contraindications,
medications, and preferences. Flag any interactions or cautions.`

	finalPlanPrompt = `You are a clinical treatment planning assistant. Consolidate the material
below into a single coherent treatment plan: immediate steps, ongoing
management, monitoring, and follow-up. Write it as a structured plan a
clinician could act on.`
)

// stagePrompts maps each generation-backed stage to its system prompt.
// initial and visualization are absent: neither invokes the gateway.
var stagePrompts = map[models.Stage]string{
	models.StageExtraction:        extractionPrompt,
	models.StageCausalAnalysis:    causalAnalysisPrompt,
	models.StageValidation:        validationPrompt,
	models.StageCounterfactual:    counterfactualPrompt,
	models.StageDiagnosis:         diagnosisRankingPrompt,
	models.StageTreatmentPlanning: treatmentPrompt,
	models.StagePatientSpecific:   patientSpecificPrompt,
	models.StageFinalPlan:         finalPlanPrompt,
}
