package queue

import (
	"context"
	"testing"
	"time"

	"github.com/dnguyen800/ha-strava/internal/domain/model"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	t1 := model.Trigger{Reason: model.TriggerWebhook, Time: time.Now()}
	if !q.Enqueue(ctx, t1) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	out := q.Dequeue(ctx)
	got := <-out
	if got.Reason != model.TriggerWebhook {
		t.Errorf("expected webhook trigger, got %v", got.Reason)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, model.Trigger{Reason: model.TriggerStartup}) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, model.Trigger{Reason: model.TriggerWebhook}) {
		t.Error("expected enqueue to succeed")
	}

	// Third enqueue must be rejected, not block the caller.
	if q.Enqueue(ctx, model.Trigger{Reason: model.TriggerWebhook}) {
		t.Error("expected enqueue to fail when full")
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	q.Enqueue(ctx, model.Trigger{Reason: model.TriggerStartup})

	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close must be a no-op, got %v", err)
	}

	if q.Enqueue(ctx, model.Trigger{Reason: model.TriggerWebhook}) {
		t.Error("expected enqueue to fail after close")
	}

	// Remaining triggers drain, then the channel closes.
	out := q.Dequeue(ctx)
	if _, ok := <-out; !ok {
		t.Error("expected the buffered trigger before close")
	}
	select {
	case _, ok := <-out:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Error("dequeue channel did not close")
	}
}
