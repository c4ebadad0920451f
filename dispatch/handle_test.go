package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionHandle_CancelAndDone(t *testing.T) {
	h := newCompletionHandle()
	assert.False(t, h.IsCanceled())
	assert.False(t, h.IsDone())
	assert.NoError(t, h.Err())

	h.Cancel()
	assert.True(t, h.IsCanceled())
	assert.False(t, h.IsDone())
	assert.Equal(t, ErrCanceled, h.Err())

	h.markDone()
	assert.True(t, h.IsDone())
}

func TestCanceledHandle(t *testing.T) {
	h := canceledHandle(ErrQueueFull)
	assert.True(t, h.IsCanceled())
	assert.True(t, h.IsDone())
	assert.Equal(t, ErrQueueFull, h.Err())
}
