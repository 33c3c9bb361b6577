package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/testing/leaktest"
)

type countingJob struct {
	executed *int32
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Process(ctx context.Context) error {
	atomic.AddInt32(j.executed, 1)
	return nil
}

func TestPool(t *testing.T) {
	var executed int32
	pool := NewPool(2, 10)
	pool.Start()

	job := &countingJob{executed: &executed}
	assert.True(t, pool.Enqueue(job))
	assert.True(t, pool.Enqueue(job))

	// Give workers time to drain the queue.
	time.Sleep(100 * time.Millisecond)

	pool.Stop()

	assert.Equal(t, int32(2), atomic.LoadInt32(&executed))
}

func TestPool_StopLeavesNoGoroutines(t *testing.T) {
	leaktest.CheckNoGoroutineLeak(t, func() {
		pool := NewPool(4, 10)
		pool.Start()
		pool.Enqueue(JobFunc{JobName: "noop", Fn: func(context.Context) error { return nil }})
		pool.Stop()
	})
}

func TestPool_EnqueueFullQueue(t *testing.T) {
	// No workers started, so the queue never drains.
	pool := NewPool(1, 1)

	assert.True(t, pool.Enqueue(JobFunc{JobName: "noop", Fn: func(context.Context) error { return nil }}))
	assert.False(t, pool.Enqueue(JobFunc{JobName: "noop", Fn: func(context.Context) error { return nil }}))
}

type fakeSyncer struct {
	itemCalls   int32
	outletCalls int32
	err         error
}

func (f *fakeSyncer) SyncItems(ctx context.Context) (*domain.SyncResult, error) {
	atomic.AddInt32(&f.itemCalls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SyncResult{Added: 3}, nil
}

func (f *fakeSyncer) SyncOutlets(ctx context.Context) (*domain.SyncResult, error) {
	atomic.AddInt32(&f.outletCalls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SyncResult{Updated: 1}, nil
}

func TestSyncJob_Process(t *testing.T) {
	syncer := &fakeSyncer{}

	require.NoError(t, NewItemSyncJob(syncer).Process(context.Background()))
	require.NoError(t, NewOutletSyncJob(syncer).Process(context.Background()))

	assert.Equal(t, int32(1), syncer.itemCalls)
	assert.Equal(t, int32(1), syncer.outletCalls)
}

func TestSyncJob_PropagatesError(t *testing.T) {
	syncer := &fakeSyncer{err: errors.New("source unavailable")}

	err := NewItemSyncJob(syncer).Process(context.Background())
	assert.Error(t, err)
}
