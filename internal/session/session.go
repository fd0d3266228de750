// Package session layers the human-in-the-loop approval gate over the
// workflow engine: every stage output must be approved or refined before the
// pipeline advances.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MedCausal/DiagPipe/internal/models"
	"github.com/MedCausal/DiagPipe/internal/workflow"
)

// pendingApproval tracks the one stage output awaiting a human decision.
type pendingApproval struct {
	Stage     models.Stage
	Text      string
	CreatedAt time.Time
}

// Session is one end-to-end pipeline run for a single patient case, owning
// its own engine, approval state, and conversation log. All operations
// serialize behind the session mutex; concurrent calls against one session
// queue up rather than interleave.
type Session struct {
	mu       sync.Mutex
	id       string
	executor *workflow.Executor
	engine   *workflow.Engine
	state    models.SessionState
	pending  *pendingApproval
	log      []models.ConversationMessage
}

// New creates a session in the AwaitingInput state with a fresh engine and an
// empty conversation log.
func New(id string, executor *workflow.Executor) *Session {
	return &Session{
		id:       id,
		executor: executor,
		engine:   workflow.NewEngine(executor),
		state:    models.SessionAwaitingInput,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Submit supplies human text for the current stage and runs it. Valid only in
// AwaitingInput. On the initial stage the case text is recorded and the first
// generative stage (extraction) runs immediately, so the pending output a
// human sees is always generated text. On success the session transitions to
// AwaitingApproval and the human and assistant turns are appended to the
// conversation log. On failure all session state is left unchanged, so a
// retry of the same call is safe.
func (s *Session) Submit(ctx context.Context, text string) (models.StageResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.SessionAwaitingInput {
		return models.StageResult{}, fmt.Errorf("%w: Submit requires %s, session is %s", models.ErrInvalidSessionState, models.SessionAwaitingInput, s.state)
	}

	history := s.snapshotLog()
	result, err := s.engine.Advance(ctx, text, history)
	if err != nil {
		return models.StageResult{}, err
	}

	if result.Stage == models.StageInitial {
		result, err = s.engine.Advance(ctx, "", history)
		if err != nil {
			// The case text is recorded; the session stays in AwaitingInput
			// so the extraction call can be retried with another Submit.
			return models.StageResult{}, err
		}
	}

	s.appendExchange(text, result.Text)
	s.pending = &pendingApproval{Stage: result.Stage, Text: result.Text, CreatedAt: time.Now()}
	s.state = models.SessionAwaitingApproval
	slog.Info("Session.Submit: stage output pending approval", "sessionID", s.id, "stage", result.Stage)
	return result, nil
}

// Approve accepts the pending stage output and releases the gate. Valid only
// in AwaitingApproval.
func (s *Session) Approve() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.SessionAwaitingApproval {
		return fmt.Errorf("%w: Approve requires %s, session is %s", models.ErrInvalidSessionState, models.SessionAwaitingApproval, s.state)
	}

	slog.Info("Session.Approve: stage approved", "sessionID", s.id, "stage", s.pending.Stage, "next", s.engine.CurrentStage())
	s.pending = nil
	s.state = models.SessionAwaitingInput
	return nil
}

// Refine re-runs the pending stage with the refinement text as conversational
// context, replacing the stage's recorded result. Valid only in
// AwaitingApproval; the session remains in AwaitingApproval for the re-run
// output. Exactly two turns (human and assistant) are appended to the
// conversation log on success.
func (s *Session) Refine(ctx context.Context, text string) (models.StageResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.SessionAwaitingApproval {
		return models.StageResult{}, fmt.Errorf("%w: Refine requires %s, session is %s", models.ErrInvalidSessionState, models.SessionAwaitingApproval, s.state)
	}

	stage := s.pending.Stage
	history := append(s.snapshotLog(), models.ConversationMessage{
		Role:      "user",
		Content:   text,
		Timestamp: time.Now(),
	})

	result, err := s.engine.Rerun(ctx, stage, text, history)
	if err != nil {
		return models.StageResult{}, err
	}

	s.appendExchange(text, result.Text)
	s.pending = &pendingApproval{Stage: result.Stage, Text: result.Text, CreatedAt: time.Now()}
	slog.Info("Session.Refine: stage re-run pending approval", "sessionID", s.id, "stage", stage)
	return result, nil
}

// Clear atomically rebuilds the session: fresh engine, empty conversation
// log, AwaitingInput. No stale entries survive.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine = workflow.NewEngine(s.executor)
	s.log = nil
	s.pending = nil
	s.state = models.SessionAwaitingInput
	slog.Info("Session.Clear: session reset", "sessionID", s.id)
}

// Status returns a read-only snapshot of the session. While output is
// pending approval the reported stage is the stage that produced it;
// otherwise it is the stage the engine will execute next.
func (s *Session) Status() models.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := models.SessionStatus{
		SessionID:  s.id,
		Stage:      s.engine.CurrentStage(),
		State:      s.state,
		IsTerminal: s.engine.CurrentStage() == models.StageComplete,
	}
	if s.pending != nil {
		status.Stage = s.pending.Stage
		status.PendingText = s.pending.Text
	}
	return status
}

// Result returns the recorded result for a stage, if any.
func (s *Session) Result(stage models.Stage) (models.StageResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Result(stage)
}

// Results returns a copy of the session's full results store.
func (s *Session) Results() map[models.Stage]models.StageResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Results()
}

// Log returns a copy of the conversation log.
func (s *Session) Log() []models.ConversationMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLog()
}

// snapshotLog copies the conversation log. Callers must hold s.mu.
func (s *Session) snapshotLog() []models.ConversationMessage {
	out := make([]models.ConversationMessage, len(s.log))
	copy(out, s.log)
	return out
}

// appendExchange records one human/assistant turn pair. Callers must hold s.mu.
func (s *Session) appendExchange(userText, assistantText string) {
	now := time.Now()
	s.log = append(s.log,
		models.ConversationMessage{Role: "user", Content: userText, Timestamp: now},
		models.ConversationMessage{Role: "assistant", Content: assistantText, Timestamp: now},
	)
}
