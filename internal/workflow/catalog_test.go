package workflow

import (
	"errors"
	"testing"

	"github.com/MedCausal/DiagPipe/internal/models"
)

func TestDependencies_Order(t *testing.T) {
	deps, err := Dependencies(models.StageValidation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps) != 2 || deps[0] != models.StageExtraction || deps[1] != models.StageCausalAnalysis {
		t.Errorf("validation dependencies wrong: %v", deps)
	}
}

func TestDependencies_InitialHasNone(t *testing.T) {
	deps, err := Dependencies(models.StageInitial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps) != 0 {
		t.Errorf("initial should have no dependencies, got %v", deps)
	}
}

func TestDependencies_UnknownStage(t *testing.T) {
	_, err := Dependencies(models.Stage("bogus"))
	if !errors.Is(err, models.ErrUnknownStage) {
		t.Errorf("expected ErrUnknownStage, got %v", err)
	}
}

func TestNext_ForwardChain(t *testing.T) {
	cases := []struct {
		from models.Stage
		want models.Stage
	}{
		{models.StageInitial, models.StageExtraction},
		{models.StageExtraction, models.StageCausalAnalysis},
		{models.StageCausalAnalysis, models.StageValidation},
		{models.StageValidation, models.StageCounterfactual},
		{models.StageCounterfactual, models.StageDiagnosis},
		{models.StageDiagnosis, models.StageTreatmentPlanning},
		{models.StageTreatmentPlanning, models.StagePatientSpecific},
		{models.StagePatientSpecific, models.StageFinalPlan},
		{models.StageFinalPlan, models.StageVisualization},
		{models.StageVisualization, models.StageComplete},
		{models.StageComplete, models.StageComplete},
	}
	for _, c := range cases {
		got, err := Next(c.from)
		if err != nil {
			t.Fatalf("Next(%s): unexpected error: %v", c.from, err)
		}
		if got != c.want {
			t.Errorf("Next(%s) = %s, want %s", c.from, got, c.want)
		}
	}
}

func TestNext_UnknownStage(t *testing.T) {
	_, err := Next(models.Stage("bogus"))
	if !errors.Is(err, models.ErrUnknownStage) {
		t.Errorf("expected ErrUnknownStage, got %v", err)
	}
}

func TestAcceptsHumanText(t *testing.T) {
	if !AcceptsHumanText(models.StageValidation) {
		t.Error("validation should accept human text")
	}
	if !AcceptsHumanText(models.StagePatientSpecific) {
		t.Error("patient_specific should accept human text")
	}
	if AcceptsHumanText(models.StageExtraction) {
		t.Error("extraction should not accept human text")
	}
}

func TestDependencies_ReturnsCopy(t *testing.T) {
	deps, _ := Dependencies(models.StageValidation)
	deps[0] = models.StageComplete
	again, _ := Dependencies(models.StageValidation)
	if again[0] != models.StageExtraction {
		t.Error("mutating the returned slice must not affect the catalog")
	}
}
