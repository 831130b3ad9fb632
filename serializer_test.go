package hnswix

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSerializerOrdersMutationsFIFO(t *testing.T) {
	s := NewSerializer(10, nil)
	s.Start()
	defer s.Close()

	var mu sync.Mutex
	var order []int
	for i := 0; i < 20; i++ {
		i := i
		require.NoError(t, s.Enqueue(context.Background(), func(context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		}))
	}

	for i, v := range order {
		require.Equal(t, i, v)
	}
}

func TestSerializerEnqueuePropagatesError(t *testing.T) {
	s := NewSerializer(1, nil)
	s.Start()
	defer s.Close()

	boom := context.DeadlineExceeded
	err := s.Enqueue(context.Background(), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
}

func TestSerializerClosedRejectsNewWork(t *testing.T) {
	s := NewSerializer(1, nil)
	s.Start()
	require.NoError(t, s.Close())

	err := s.Enqueue(context.Background(), func(context.Context) error { return nil })
	require.ErrorIs(t, err, ErrQueueClosed)
}

func TestSerializerEnqueueAsyncRunsLater(t *testing.T) {
	s := NewSerializer(1, nil)
	s.Start()
	defer s.Close()

	var done int32
	require.NoError(t, s.EnqueueAsync(context.Background(), func(context.Context) error {
		time.Sleep(10 * time.Millisecond)
		atomic.StoreInt32(&done, 1)
		return nil
	}))
	require.NoError(t, s.Wait(context.Background()))
	require.Equal(t, int32(1), atomic.LoadInt32(&done))
}

func TestSerializerEnqueueCanceledContext(t *testing.T) {
	s := NewSerializer(1, nil)
	s.Start()
	defer s.Close()

	release := make(chan struct{})
	require.NoError(t, s.EnqueueAsync(context.Background(), func(context.Context) error {
		<-release
		return nil
	}))
	require.NoError(t, s.EnqueueAsync(context.Background(), func(context.Context) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Enqueue(ctx, func(context.Context) error { return nil })
	require.ErrorIs(t, err, context.Canceled)

	close(release)
}
