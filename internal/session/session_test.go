package session

import (
	"context"
	"testing"

	"github.com/MedCausal/DiagPipe/internal/models"
	"github.com/MedCausal/DiagPipe/internal/workflow"
	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGenerator replays queued responses for both invocation modes.
type mockGenerator struct {
	queue []string
	err   error
}

func (m *mockGenerator) next() string {
	if len(m.queue) == 0 {
		return "generated text"
	}
	out := m.queue[0]
	m.queue = m.queue[1:]
	return out
}

func (m *mockGenerator) GeneratePrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.next(), nil
}

func (m *mockGenerator) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.next(), nil
}

func newTestSession(gen *mockGenerator) *Session {
	return New("test-session", workflow.NewExecutor(gen, nil))
}

func TestSubmit_StartCaseRunsExtraction(t *testing.T) {
	gen := &mockGenerator{queue: []string{"Symptoms: chest pain"}}
	s := newTestSession(gen)

	result, err := s.Submit(context.Background(), "45-year-old with chest pain")
	require.NoError(t, err)
	assert.Equal(t, models.StageExtraction, result.Stage)
	assert.Equal(t, "Symptoms: chest pain", result.Text)

	extraction, ok := s.Result(models.StageExtraction)
	require.True(t, ok)
	assert.Equal(t, "Symptoms: chest pain", extraction.Text)

	// The engine has advanced past extraction; approval is still pending.
	status := s.Status()
	assert.Equal(t, models.SessionAwaitingApproval, status.State)
	assert.Equal(t, models.StageExtraction, status.Stage)
	assert.Equal(t, "Symptoms: chest pain", status.PendingText)
	assert.False(t, status.IsTerminal)
}

func TestSubmit_AppendsExchangeToLog(t *testing.T) {
	gen := &mockGenerator{queue: []string{"factors"}}
	s := newTestSession(gen)

	_, err := s.Submit(context.Background(), "case text")
	require.NoError(t, err)

	log := s.Log()
	require.Len(t, log, 2)
	assert.Equal(t, "user", log[0].Role)
	assert.Equal(t, "case text", log[0].Content)
	assert.Equal(t, "assistant", log[1].Role)
	assert.Equal(t, "factors", log[1].Content)
}

func TestSubmit_RejectedWhileAwaitingApproval(t *testing.T) {
	gen := &mockGenerator{}
	s := newTestSession(gen)

	_, err := s.Submit(context.Background(), "case")
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), "more text")
	assert.ErrorIs(t, err, models.ErrInvalidSessionState)
}

func TestApprove_ReleasesGate(t *testing.T) {
	gen := &mockGenerator{}
	s := newTestSession(gen)

	_, err := s.Submit(context.Background(), "case")
	require.NoError(t, err)

	require.NoError(t, s.Approve())
	status := s.Status()
	assert.Equal(t, models.SessionAwaitingInput, status.State)
	assert.Equal(t, models.StageCausalAnalysis, status.Stage)
	assert.Empty(t, status.PendingText)
}

func TestApprove_TwiceFails(t *testing.T) {
	gen := &mockGenerator{}
	s := newTestSession(gen)

	_, err := s.Submit(context.Background(), "case")
	require.NoError(t, err)

	require.NoError(t, s.Approve())
	assert.ErrorIs(t, s.Approve(), models.ErrInvalidSessionState)
}

func TestApprove_BeforeSubmitFails(t *testing.T) {
	s := newTestSession(&mockGenerator{})
	assert.ErrorIs(t, s.Approve(), models.ErrInvalidSessionState)
}

func TestRefine_RerunsSameStage(t *testing.T) {
	gen := &mockGenerator{queue: []string{"factors", "factors with diabetes"}}
	s := newTestSession(gen)

	_, err := s.Submit(context.Background(), "case")
	require.NoError(t, err)
	logBefore := len(s.Log())

	result, err := s.Refine(context.Background(), "patient has diabetes")
	require.NoError(t, err)

	// Refine re-runs extraction, not the stage the engine advanced to.
	assert.Equal(t, models.StageExtraction, result.Stage)
	assert.Equal(t, "factors with diabetes", result.Text)

	extraction, ok := s.Result(models.StageExtraction)
	require.True(t, ok)
	assert.Equal(t, "factors with diabetes", extraction.Text, "refinement must replace the stage's entry")

	// Exactly two entries appended: human refinement and assistant reply.
	assert.Len(t, s.Log(), logBefore+2)

	// Still awaiting approval of the re-run output.
	status := s.Status()
	assert.Equal(t, models.SessionAwaitingApproval, status.State)
	assert.Equal(t, models.StageExtraction, status.Stage)
}

func TestRefine_OutsideApprovalFails(t *testing.T) {
	s := newTestSession(&mockGenerator{})
	_, err := s.Refine(context.Background(), "text")
	assert.ErrorIs(t, err, models.ErrInvalidSessionState)
}

func TestSubmit_FailureLeavesSessionRetryable(t *testing.T) {
	gen := &mockGenerator{err: models.ErrGenerationUnavailable}
	s := newTestSession(gen)

	_, err := s.Submit(context.Background(), "case")
	assert.ErrorIs(t, err, models.ErrGenerationUnavailable)

	status := s.Status()
	assert.Equal(t, models.SessionAwaitingInput, status.State)
	assert.Empty(t, s.Log())

	// Backend recovers; the same operation succeeds on retry.
	gen.err = nil
	gen.queue = []string{"factors"}
	result, err := s.Submit(context.Background(), "case")
	require.NoError(t, err)
	assert.Equal(t, "factors", result.Text)
}

func TestClear_DestroysAllState(t *testing.T) {
	gen := &mockGenerator{}
	s := newTestSession(gen)

	_, err := s.Submit(context.Background(), "case")
	require.NoError(t, err)

	s.Clear()

	_, ok := s.Result(models.StageExtraction)
	assert.False(t, ok, "results must not survive a restart")
	assert.Empty(t, s.Log())

	status := s.Status()
	assert.Equal(t, models.SessionAwaitingInput, status.State)
	assert.Equal(t, models.StageInitial, status.Stage)
}

func TestValidationLoop_SubmitAdditionalInformation(t *testing.T) {
	gen := &mockGenerator{queue: []string{
		"factors",                  // extraction
		"a -> b",                   // causal_analysis
		"missing symptom duration", // validation, not ready
		workflow.ReadyMarker,       // validation retry, ready
	}}
	s := newTestSession(gen)
	ctx := context.Background()

	_, err := s.Submit(ctx, "case")
	require.NoError(t, err)
	require.NoError(t, s.Approve())

	_, err = s.Submit(ctx, "")
	require.NoError(t, err)
	require.NoError(t, s.Approve())

	result, err := s.Submit(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, models.StageValidation, result.Stage)
	assert.False(t, result.Ready)
	require.NoError(t, s.Approve())

	// The engine self-looped; the next submit re-runs validation with the
	// freshly supplied information.
	status := s.Status()
	assert.Equal(t, models.StageValidation, status.Stage)

	result, err = s.Submit(ctx, "symptoms started two days ago")
	require.NoError(t, err)
	assert.Equal(t, models.StageValidation, result.Stage)
	assert.True(t, result.Ready)
	require.NoError(t, s.Approve())

	assert.Equal(t, models.StageCounterfactual, s.Status().Stage)
}
