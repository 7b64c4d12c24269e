package utils

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	id1 := RequestID()
	id2 := RequestID()

	assert.True(t, strings.HasPrefix(id1, "req_"))
	assert.Len(t, id1, len("req_")+16)
	assert.NotEqual(t, id1, id2)
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(6)
	require.NoError(t, err)
	assert.Len(t, code, 12)

	other, err := GenerateCode(6)
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}

func TestCircuitBreaker_TripsAfterFailureRatio(t *testing.T) {
	cb := NewCircuitBreaker("test", Settings{
		MaxRequests:  5,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.6,
	})

	fail := func(context.Context) error { return errors.New("boom") }

	for i := 0; i < 5; i++ {
		err := cb.Execute(context.Background(), fail)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}

	// Ratio reached: breaker is open, calls fail fast.
	err := cb.Execute(context.Background(), fail)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := NewCircuitBreaker("test", Settings{
		MaxRequests:  2,
		Interval:     time.Minute,
		Timeout:      20 * time.Millisecond,
		FailureRatio: 0.5,
	})

	fail := func(context.Context) error { return errors.New("boom") }
	ok := func(context.Context) error { return nil }

	for i := 0; i < 2; i++ {
		_ = cb.Execute(context.Background(), fail)
	}
	require.ErrorIs(t, cb.Execute(context.Background(), fail), ErrCircuitOpen)

	time.Sleep(30 * time.Millisecond)

	// First call after the timeout runs half-open; success closes it.
	require.NoError(t, cb.Execute(context.Background(), ok))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_SuccessesKeepItClosed(t *testing.T) {
	cb := NewCircuitBreaker("test", Settings{MaxRequests: 3, FailureRatio: 0.6})

	ok := func(context.Context) error { return nil }
	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Execute(context.Background(), ok))
	}
	assert.Equal(t, StateClosed, cb.State())
}
