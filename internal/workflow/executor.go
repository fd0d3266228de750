package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MedCausal/DiagPipe/internal/models"
	"github.com/openai/openai-go"
)

// Generator is the seam to the external text-generation capability. Both
// calls block until the provider responds and honor context deadlines; on
// failure they must not have mutated any orchestrator state.
type Generator interface {
	// GeneratePrompt generates a response from a single system/user prompt pair.
	GeneratePrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// GenerateWithMessages generates a response from a full message sequence.
	GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
}

// GraphRenderer renders causal-link text into an embeddable visualization.
// Used by the visualization stage, which performs no generation call.
type GraphRenderer func(causalLinks string) (string, error)

// Executor runs a single pipeline stage: it composes context from recorded
// results, invokes the generator, and applies stage-specific post-processing.
type Executor struct {
	gen         Generator
	renderGraph GraphRenderer
}

// NewExecutor creates a stage executor with the given generator and optional
// graph renderer. A nil renderer leaves the visualization stage recording the
// raw causal-link text.
func NewExecutor(gen Generator, renderGraph GraphRenderer) *Executor {
	return &Executor{gen: gen, renderGraph: renderGraph}
}

// Execute runs one stage against the recorded results and returns its result.
// humanText carries the case text for the initial stage and supplementary
// information for the stages that accept it. A non-empty history switches the
// generator into conversational mode, with the composed payload injected as
// the leading system turn.
//
// Generation content issues never fail Execute: a validation response without
// the readiness marker simply yields ready=false and a self-loop.
func (e *Executor) Execute(ctx context.Context, stage models.Stage, results map[models.Stage]models.StageResult, humanText string, history []models.ConversationMessage) (models.StageResult, error) {
	if !models.IsValidStage(stage) {
		return models.StageResult{}, fmt.Errorf("%w: %s", models.ErrUnknownStage, stage)
	}
	slog.Debug("Executor.Execute: processing stage", "stage", stage, "historyLen", len(history))

	switch stage {
	case models.StageInitial:
		// The initial stage only records the case text; no generation call.
		return models.StageResult{
			Stage:     stage,
			Text:      humanText,
			NextStage: models.StageExtraction,
			CreatedAt: time.Now(),
		}, nil
	case models.StageVisualization:
		return e.executeVisualization(results)
	case models.StageComplete:
		return models.StageResult{}, fmt.Errorf("%w: terminal stage %s is not executable", models.ErrUnknownStage, stage)
	}

	payload, err := Compose(stage, results, humanText)
	if err != nil {
		return models.StageResult{}, err
	}

	systemPrompt, ok := stagePrompts[stage]
	if !ok {
		return models.StageResult{}, fmt.Errorf("%w: no prompt for stage %s", models.ErrUnknownStage, stage)
	}

	var text string
	if len(history) > 0 {
		// Conversational mode: the composed payload rides along as the
		// leading system turn, followed by the accumulated log.
		messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
		messages = append(messages, openai.SystemMessage(systemPrompt+"\n\n"+payload))
		for _, m := range history {
			switch m.Role {
			case "assistant":
				messages = append(messages, openai.AssistantMessage(m.Content))
			default:
				messages = append(messages, openai.UserMessage(m.Content))
			}
		}
		text, err = e.gen.GenerateWithMessages(ctx, messages)
	} else {
		text, err = e.gen.GeneratePrompt(ctx, systemPrompt, payload)
	}
	if err != nil {
		slog.Error("Executor.Execute: generation failed", "stage", stage, "error", err)
		return models.StageResult{}, fmt.Errorf("stage %s generation failed: %w", stage, err)
	}

	result := models.StageResult{
		Stage:     stage,
		Text:      text,
		CreatedAt: time.Now(),
	}

	if stage == models.StageValidation {
		// Heuristic substring test against the prompt-template contract.
		// An unrecognized response means "not ready", never an error: the
		// pipeline prefers asking for more information over aborting.
		result.Ready = strings.Contains(text, ReadyMarker)
		if result.Ready {
			result.NextStage = models.StageCounterfactual
		} else {
			result.NextStage = models.StageValidation
		}
		slog.Info("Executor.Execute: validation readiness", "ready", result.Ready)
		return result, nil
	}

	next, err := Next(stage)
	if err != nil {
		return models.StageResult{}, err
	}
	result.NextStage = next
	slog.Debug("Executor.Execute: stage complete", "stage", stage, "next", next, "textLength", len(text))
	return result, nil
}

// executeVisualization renders the causal graph from the causal analysis
// text. Rendering failures are recorded in the result text rather than
// failing the stage; the pipeline still reaches the terminal state.
func (e *Executor) executeVisualization(results map[models.Stage]models.StageResult) (models.StageResult, error) {
	causal, ok := results[models.StageCausalAnalysis]
	if !ok {
		return models.StageResult{}, fmt.Errorf("%w: stage %s requires %s", models.ErrMissingDependency, models.StageVisualization, models.StageCausalAnalysis)
	}

	text := causal.Text
	if e.renderGraph != nil {
		rendered, err := e.renderGraph(causal.Text)
		if err != nil {
			slog.Error("Executor.executeVisualization: graph rendering failed", "error", err)
			text = fmt.Sprintf("Error creating visualization: %v", err)
		} else {
			text = rendered
		}
	}

	return models.StageResult{
		Stage:     models.StageVisualization,
		Text:      text,
		NextStage: models.StageComplete,
		CreatedAt: time.Now(),
	}, nil
}
