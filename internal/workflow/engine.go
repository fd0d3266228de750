package workflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/MedCausal/DiagPipe/internal/models"
)

// Engine owns the ordered stage sequence, the per-stage results store, and
// the transition function. Advance is the sole mutator of the results store.
// Engine methods serialize behind a mutex; one engine drives one session.
type Engine struct {
	mu       sync.Mutex
	executor *Executor
	results  map[models.Stage]models.StageResult
	current  models.Stage
}

// NewEngine creates an engine positioned at the initial stage with an empty
// results store.
func NewEngine(executor *Executor) *Engine {
	return &Engine{
		executor: executor,
		results:  make(map[models.Stage]models.StageResult),
		current:  models.StageInitial,
	}
}

// CurrentStage returns the stage the engine will execute next.
func (e *Engine) CurrentStage() models.Stage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Advance executes the current stage, records its result, and moves to the
// result's next stage. On the terminal stage Advance is an idempotent no-op
// returning the last recorded result. On any error the results store and
// current stage are left untouched, so a retry of the same call is safe.
func (e *Engine) Advance(ctx context.Context, humanText string, history []models.ConversationMessage) (models.StageResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == models.StageComplete {
		slog.Debug("Engine.Advance: pipeline already complete")
		return e.results[models.StageVisualization], nil
	}

	result, err := e.executor.Execute(ctx, e.current, e.results, humanText, history)
	if err != nil {
		slog.Error("Engine.Advance: stage execution failed", "stage", e.current, "error", err)
		return models.StageResult{}, err
	}

	// Re-execution replaces the stage's single entry; only the latest
	// attempt per stage is kept.
	e.results[result.Stage] = result
	e.current = result.NextStage
	slog.Info("Engine.Advance: stage recorded", "stage", result.Stage, "next", result.NextStage)
	return result, nil
}

// Rerun re-executes an already-recorded stage (a refinement) without touching
// the current stage pointer unless the re-run changes the stage's own next
// stage, as a validation retry can. The stage's entry is replaced.
func (e *Engine) Rerun(ctx context.Context, stage models.Stage, humanText string, history []models.ConversationMessage) (models.StageResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	result, err := e.executor.Execute(ctx, stage, e.results, humanText, history)
	if err != nil {
		slog.Error("Engine.Rerun: stage re-execution failed", "stage", stage, "error", err)
		return models.StageResult{}, err
	}

	e.results[result.Stage] = result
	e.current = result.NextStage
	slog.Info("Engine.Rerun: stage replaced", "stage", result.Stage, "next", result.NextStage)
	return result, nil
}

// Result returns the recorded result for a stage, if any.
func (e *Engine) Result(stage models.Stage) (models.StageResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	res, ok := e.results[stage]
	return res, ok
}

// Results returns a copy of the full results store, keyed by stage. Consumers
// (report generator, graph renderer) receive read-only access; mutating the
// copy does not affect the engine.
func (e *Engine) Results() map[models.Stage]models.StageResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[models.Stage]models.StageResult, len(e.results))
	for k, v := range e.results {
		out[k] = v
	}
	return out
}

// Reset atomically clears the results store and returns to the initial stage.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.results = make(map[models.Stage]models.StageResult)
	e.current = models.StageInitial
	slog.Info("Engine.Reset: results cleared")
}
