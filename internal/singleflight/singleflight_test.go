package singleflight

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestGroup_CoalescesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	var calls atomic.Int32
	release := make(chan struct{})

	var eg errgroup.Group
	for i := 0; i < 16; i++ {
		eg.Go(func() error {
			v, err := g.Do(context.Background(), "k", func() (int, error) {
				calls.Add(1)
				<-release
				return 42, nil
			})
			if err != nil {
				return err
			}
			if v != 42 {
				return errors.New("wrong value")
			}
			return nil
		})
	}
	require.Eventually(t, func() bool { return g.InFlight() == 1 }, time.Second, time.Millisecond)
	// Give followers a moment to join the flight before releasing.
	time.Sleep(10 * time.Millisecond)
	close(release)

	require.NoError(t, eg.Wait())
	assert.Equal(t, int32(1), calls.Load())
	assert.Zero(t, g.InFlight())
}

func TestGroup_ErrorIsShared(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	boom := errors.New("boom")
	_, err := g.Do(context.Background(), "k", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	// The failed call is not remembered.
	v, err := g.Do(context.Background(), "k", func() (int, error) { return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestGroup_FollowerCancellation(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := g.Do(context.Background(), "k", func() (int, error) {
			<-release
			return 7, nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 7, v)
	}()
	require.Eventually(t, func() bool { return g.InFlight() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Do(ctx, "k", func() (int, error) { return 0, nil })
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	wg.Wait()
}

func TestGroup_PanicReleasesWaiters(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	assert.Panics(t, func() {
		_, _ = g.Do(context.Background(), "k", func() (int, error) { panic("bad") })
	})
	assert.Zero(t, g.InFlight())
}

// Joiners of a panicking load get an error instead of blocking forever.
func TestGroup_PanicBecomesJoinerError(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	started := make(chan struct{})
	release := make(chan struct{})

	ownerDone := make(chan struct{})
	go func() {
		defer close(ownerDone)
		defer func() { _ = recover() }()
		_, _ = g.Do(context.Background(), "k", func() (int, error) {
			close(started)
			<-release
			panic("bad")
		})
	}()
	<-started

	joined := make(chan error, 1)
	go func() {
		_, err := g.Do(context.Background(), "k", func() (int, error) { return 1, nil })
		joined <- err
	}()
	// Let the joiner attach before the owner panics.
	time.Sleep(10 * time.Millisecond)
	close(release)

	<-ownerDone
	select {
	case err := <-joined:
		// A joiner that arrived after the panic runs its own fn and succeeds.
		if err != nil {
			assert.Contains(t, err.Error(), "panicked")
		}
	case <-time.After(time.Second):
		t.Fatal("joiner blocked after the owner panicked")
	}
	assert.Zero(t, g.InFlight())
}
