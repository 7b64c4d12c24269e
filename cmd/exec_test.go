package cmd

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStationPollLoop_TriggersCoalesce(t *testing.T) {
	trigger := make(chan struct{}, 1)
	notify := func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	}

	// An event storm before the loop drains anything leaves one pending
	// trigger, not one refetch per event.
	for i := 0; i < 100; i++ {
		notify()
	}

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go stationPollLoop(ctx, time.Hour, trigger, func(context.Context) {
		calls.Add(1)
	})

	// Initial refresh plus the single coalesced trigger.
	require.Eventually(t, func() bool {
		return calls.Load() == 2
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())

	// A fresh trigger after the storm still causes exactly one refetch.
	notify()
	require.Eventually(t, func() bool {
		return calls.Load() == 3
	}, time.Second, 5*time.Millisecond)
}
