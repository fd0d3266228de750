package session

import (
	"context"
	"testing"

	"github.com/MedCausal/DiagPipe/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(workflow.NewExecutor(&mockGenerator{}, nil))
}

func TestManager_CreateAndGet(t *testing.T) {
	m := newTestManager()

	s := m.Create()
	require.NotEmpty(t, s.ID())

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestManager_GetUnknownID(t *testing.T) {
	m := newTestManager()
	_, err := m.Get("nope")
	assert.Error(t, err)
}

func TestManager_Delete(t *testing.T) {
	m := newTestManager()
	s := m.Create()

	m.Delete(s.ID())
	_, err := m.Get(s.ID())
	assert.Error(t, err)
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	m := newTestManager()
	a := m.Create()
	b := m.Create()

	_, err := a.Submit(context.Background(), "case A")
	require.NoError(t, err)

	// Session B is untouched by activity in session A.
	assert.Empty(t, b.Log())
	assert.Len(t, m.IDs(), 2)
}
