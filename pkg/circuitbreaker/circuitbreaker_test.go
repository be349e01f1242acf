package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var transitions []string
	cfg := DefaultConfig("test")
	cfg.FailureThreshold = 2
	cfg.Timeout = time.Hour
	cfg.OnStateChange = func(_, from, to string) {
		transitions = append(transitions, from+"->"+to)
	}
	b := New[int](cfg)

	boom := errors.New("boom")
	for i := 0; i < 2; i++ {
		_, err := b.Execute(func() (int, error) { return 0, boom })
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, "open", b.State())

	called := false
	_, err := b.Execute(func() (int, error) {
		called = true
		return 1, nil
	})
	require.Error(t, err)
	assert.True(t, IsOpen(err))
	assert.False(t, called)
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestBreaker_PassesThroughResults(t *testing.T) {
	b := New[string](DefaultConfig("test"))

	v, err := b.Execute(func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_IgnoresCancellation(t *testing.T) {
	cfg := DefaultConfig("test")
	cfg.FailureThreshold = 1
	b := New[int](cfg)

	_, err := b.Execute(func() (int, error) { return 0, context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "closed", b.State())
}
