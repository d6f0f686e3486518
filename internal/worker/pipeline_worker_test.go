package worker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketflow/ticketflow/internal/pipeline"
)

func TestResultToQueueError(t *testing.T) {
	assert.NoError(t, resultToQueueError(pipeline.Result{Success: true}))

	retriable := resultToQueueError(pipeline.Result{Err: errors.New("db timeout")})
	require.Error(t, retriable)
	var nr *pipeline.NonRetriableError
	assert.False(t, errors.As(retriable, &nr))

	terminal := resultToQueueError(pipeline.Result{NonRetriable: true, Err: errors.New("gone")})
	require.Error(t, terminal)
	assert.True(t, errors.As(terminal, &nr))
}
