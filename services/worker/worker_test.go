package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/faziolifabrizio-jpg/risparmioevoluto/internal/pipeline"
)

// mockPipeline implements the Pipeline interface for testing
type mockPipeline struct {
	mu   sync.Mutex
	runs int
}

var _ Pipeline = (*mockPipeline)(nil)

func (m *mockPipeline) Run(now time.Time) pipeline.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	return pipeline.Report{State: pipeline.StateDone}
}

func (m *mockPipeline) runCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}

func TestWorkerRunsPipelineOnInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mp := &mockPipeline{}
	w := NewWorker(ctx, mp, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- w.Start()
	}()

	// Give the worker time for the immediate run plus a few ticks
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(1 * time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}

	assert.GreaterOrEqual(t, mp.runCount(), 2)
}

func TestWorkerStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mp := &mockPipeline{}
	w := NewWorker(ctx, mp, time.Hour)

	done := make(chan error, 1)
	go func() {
		done <- w.Start()
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(1 * time.Second):
		t.Fatal("worker did not stop")
	}

	// The immediate run still happens before the cancellation is seen
	assert.Equal(t, 1, mp.runCount())
}
