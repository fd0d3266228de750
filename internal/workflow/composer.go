package workflow

import (
	"fmt"
	"strings"

	"github.com/MedCausal/DiagPipe/internal/models"
)

// sectionLabels names the labeled section under which each stage's recorded
// text appears when composed into a downstream stage's context.
var sectionLabels = map[models.Stage]string{
	models.StageInitial:           "Case",
	models.StageExtraction:        "Extracted Factors",
	models.StageCausalAnalysis:    "Causal Links",
	models.StageValidation:        "Validation",
	models.StageCounterfactual:    "Counterfactual Analysis",
	models.StageDiagnosis:         "Diagnosis",
	models.StageTreatmentPlanning: "Treatment Options",
	models.StagePatientSpecific:   "Patient-Specific Plan",
}

// humanTextLabels names the section under which freshly supplied human text
// appears, for the stages that accept it.
var humanTextLabels = map[models.Stage]string{
	models.StageValidation:      "Additional Information",
	models.StagePatientSpecific: "Patient-Specific Information",
}

// Compose builds the user-message payload for a stage from the recorded
// results of its declared dependencies, plus optional human-supplied text.
// It is deterministic: identical inputs yield a byte-identical payload.
// It fails with models.ErrMissingDependency when a required prior stage has
// no recorded result, which indicates a sequencing violation by the caller.
func Compose(stage models.Stage, results map[models.Stage]models.StageResult, humanText string) (string, error) {
	deps, err := Dependencies(stage)
	if err != nil {
		return "", err
	}

	var sections []string
	for _, dep := range deps {
		res, ok := results[dep]
		if !ok {
			return "", fmt.Errorf("%w: stage %s requires %s", models.ErrMissingDependency, stage, dep)
		}
		sections = append(sections, fmt.Sprintf("%s:\n%s", sectionLabels[dep], res.Text))
	}

	if humanText != "" && AcceptsHumanText(stage) {
		sections = append(sections, fmt.Sprintf("%s:\n%s", humanTextLabels[stage], humanText))
	}

	return strings.Join(sections, "\n\n"), nil
}
