package payment_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zerowaste/payment-service/internal/domain"
	"github.com/zerowaste/payment-service/internal/payment"
)

type recordingProcessor struct {
	mu    sync.Mutex
	seen  []string
	fail  map[string]bool
	block chan struct{}
}

func (r *recordingProcessor) ProcessNotification(_ context.Context, n domain.WebhookNotification) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n.Data.ID)
	if r.fail[n.Data.ID] {
		return errors.New("boom")
	}
	return nil
}

func TestDispatcher_ProcessesAndCounts(t *testing.T) {
	proc := &recordingProcessor{fail: map[string]bool{"bad": true}}
	d := payment.NewDispatcher(proc, 2, 10, time.Second, zap.NewNop())
	d.Start(context.Background())

	for _, id := range []string{"a", "b", "bad"} {
		require.True(t, d.Submit(domain.WebhookNotification{Type: "payment", Data: domain.NotificationData{ID: id}}))
	}
	d.Stop()

	stats := d.Stats()
	assert.Equal(t, int64(3), stats.Queued)
	assert.Equal(t, int64(2), stats.Processed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, 0, stats.Pending)
	assert.ElementsMatch(t, []string{"a", "b", "bad"}, proc.seen)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	proc := &recordingProcessor{block: make(chan struct{})}
	d := payment.NewDispatcher(proc, 1, 1, time.Second, zap.NewNop())
	d.Start(context.Background())

	n := domain.WebhookNotification{Type: "payment"}
	// The first item may be picked up by the worker before the queue fills.
	accepted := 0
	for i := 0; i < 5; i++ {
		if d.Submit(n) {
			accepted++
		}
	}

	assert.LessOrEqual(t, accepted, 2)
	assert.GreaterOrEqual(t, d.Stats().Dropped, int64(3))

	close(proc.block)
	d.Stop()
}

func TestDispatcher_SubmitAfterStop(t *testing.T) {
	d := payment.NewDispatcher(&recordingProcessor{}, 1, 1, 0, zap.NewNop())
	d.Start(context.Background())
	d.Stop()
	d.Stop()

	assert.False(t, d.Submit(domain.WebhookNotification{Type: "payment"}))
	assert.Equal(t, int64(1), d.Stats().Dropped)
}
