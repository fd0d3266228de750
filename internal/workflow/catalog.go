// Package workflow implements the stage-sequenced diagnosis pipeline:
// the stage catalog, context composition, stage execution, and the
// workflow engine that owns results and transitions.
package workflow

import (
	"fmt"

	"github.com/MedCausal/DiagPipe/internal/models"
)

// stageDependencies maps each stage to the ordered prior stages whose result
// text feeds its composed context. Stages absent from the map have no
// dependencies.
var stageDependencies = map[models.Stage][]models.Stage{
	models.StageExtraction:        {models.StageInitial},
	models.StageCausalAnalysis:    {models.StageExtraction},
	models.StageValidation:        {models.StageExtraction, models.StageCausalAnalysis},
	models.StageCounterfactual:    {models.StageExtraction, models.StageCausalAnalysis, models.StageValidation},
	models.StageDiagnosis:         {models.StageCounterfactual},
	models.StageTreatmentPlanning: {models.StageDiagnosis},
	models.StagePatientSpecific:   {models.StageDiagnosis, models.StageTreatmentPlanning},
	models.StageFinalPlan:         {models.StageTreatmentPlanning, models.StagePatientSpecific},
	models.StageVisualization:     {models.StageCausalAnalysis},
}

// acceptsHumanText lists the stages whose composed context may carry freshly
// supplied human text in addition to prior stage results.
var acceptsHumanText = map[models.Stage]bool{
	models.StageValidation:      true,
	models.StagePatientSpecific: true,
}

// Dependencies returns the ordered prior stages whose recorded results feed
// the given stage's context. It fails for identifiers outside the catalog.
func Dependencies(stage models.Stage) ([]models.Stage, error) {
	if !models.IsValidStage(stage) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownStage, stage)
	}
	deps := stageDependencies[stage]
	out := make([]models.Stage, len(deps))
	copy(out, deps)
	return out, nil
}

// Next returns the successor of the given stage in the forward sequence.
// The terminal stage is its own successor.
func Next(stage models.Stage) (models.Stage, error) {
	for i, s := range models.StageSequence {
		if s != stage {
			continue
		}
		if i == len(models.StageSequence)-1 {
			return stage, nil
		}
		return models.StageSequence[i+1], nil
	}
	return "", fmt.Errorf("%w: %s", models.ErrUnknownStage, stage)
}

// AcceptsHumanText reports whether a stage's context may include supplementary
// human-provided text.
func AcceptsHumanText(stage models.Stage) bool {
	return acceptsHumanText[stage]
}
