package queue

import (
	"context"
	"testing"
	"time"
)

func TestTimerReplacesPendingKeyAndCloses(t *testing.T) {
	ran := make(chan string, 4)
	q := NewTimer(func(_ context.Context, job Job) error {
		ran <- job.Payload.(string)
		return nil
	}, nil)

	future := time.Now().Add(time.Hour)
	_ = q.Enqueue(context.Background(), Job{Key: "a", Payload: "first", RunAt: future})
	_ = q.Enqueue(context.Background(), Job{Key: "a", Payload: "second", RunAt: future})
	if q.Pending() != 1 {
		t.Fatalf("expected one pending job, got %d", q.Pending())
	}

	q.Close()
	if q.Pending() != 0 {
		t.Fatalf("expected close to drop pending jobs")
	}
	_ = q.Enqueue(context.Background(), Job{Key: "b", Payload: "late", RunAt: time.Now()})
	select {
	case got := <-ran:
		t.Fatalf("unexpected job run %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}
