package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "veridian/pkg/domain"
)

// recorder collects the request IDs it was asked to resolve.
type recorder struct {
	mu       sync.Mutex
	resolved []id.RequestID
	err      error
}

func (r *recorder) Resolve(_ context.Context, requestID id.RequestID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved = append(r.resolved, requestID)
	return r.err
}

func (r *recorder) all() []id.RequestID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]id.RequestID(nil), r.resolved...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func TestWorkerResolvesQueuedRequests(t *testing.T) {
	rec := &recorder{}
	queue := make(chan id.RequestID, 8)
	w := New(rec, queue, testLogger())
	w.Start()

	queue <- "req_001"
	queue <- "req_002"

	require.Eventually(t, func() bool {
		return len(rec.all()) == 2
	}, time.Second, 5*time.Millisecond)

	w.Stop()
	assert.Equal(t, []id.RequestID{"req_001", "req_002"}, rec.all())
}

func TestWorkerDrainsOnStop(t *testing.T) {
	rec := &recorder{}
	queue := make(chan id.RequestID, 8)
	for i := 0; i < 5; i++ {
		queue <- id.RequestID(fmt.Sprintf("req_%d", i))
	}

	w := New(rec, queue, testLogger())
	w.Start()
	w.Stop()

	assert.Len(t, rec.all(), 5, "everything queued before Stop gets resolved")
}

func TestWorkerSurvivesResolveErrors(t *testing.T) {
	rec := &recorder{err: fmt.Errorf("ledger unavailable")}
	queue := make(chan id.RequestID, 8)
	w := New(rec, queue, testLogger(), WithTimeout(time.Second))
	w.Start()

	queue <- "req_001"
	queue <- "req_002"

	require.Eventually(t, func() bool {
		return len(rec.all()) == 2
	}, time.Second, 5*time.Millisecond)
	w.Stop()
}

func TestWorkerStopsOnClosedQueue(t *testing.T) {
	rec := &recorder{}
	queue := make(chan id.RequestID)
	w := New(rec, queue, testLogger())
	w.Start()

	close(queue)
	w.Stop()
	assert.Empty(t, rec.all())
}
