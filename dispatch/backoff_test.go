package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedBackoff(t *testing.T) {
	b := NewFixedBackoff(50 * time.Millisecond)
	for attempt := 0; attempt < 5; attempt++ {
		assert.Equal(t, 50*time.Millisecond, b.Delay(attempt))
	}
}

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff{Base: 10 * time.Millisecond, Ceiling: 1 * time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 10 * time.Millisecond},
		{1, 20 * time.Millisecond},
		{2, 40 * time.Millisecond},
		{3, 80 * time.Millisecond},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.Delay(tt.attempt))
	}
}

func TestExponentialBackoff_CapsAtCeiling(t *testing.T) {
	b := ExponentialBackoff{Base: 10 * time.Millisecond, Ceiling: 50 * time.Millisecond}
	assert.Equal(t, 50*time.Millisecond, b.Delay(10))
}

func TestLinearBackoff(t *testing.T) {
	b := NewLinearBackoff(10*time.Millisecond, 10*time.Millisecond, 35*time.Millisecond)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 10 * time.Millisecond},
		{1, 20 * time.Millisecond},
		{2, 30 * time.Millisecond},
		{3, 35 * time.Millisecond},
		{4, 35 * time.Millisecond},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.Delay(tt.attempt))
	}
}
