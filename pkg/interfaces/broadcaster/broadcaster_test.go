package broadcaster

import (
	"context"
	"errors"
	"testing"
)

func TestFanoutBroadcast(t *testing.T) {
	var received []Event
	fn := Func(func(ctx context.Context, evt Event) error {
		received = append(received, evt)
		return nil
	})
	f := NewFanout(fn, nil, fn)
	if f.Len() != 2 {
		t.Fatalf("expected nil target to be dropped, got %d targets", f.Len())
	}
	if err := f.Broadcast(context.Background(), Event{Topic: "notification.created", Payload: int64(1)}); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if len(received) != 2 {
		t.Fatalf("expected event fanout, got %d", len(received))
	}
	if received[0].Topic != "notification.created" {
		t.Fatalf("unexpected topic %q", received[0].Topic)
	}
}

func TestFanoutReturnsFirstError(t *testing.T) {
	calls := 0
	errExpected := errors.New("boom")
	fn := Func(func(ctx context.Context, evt Event) error {
		calls++
		if calls == 1 {
			return errExpected
		}
		return nil
	})
	f := NewFanout(fn, fn)
	err := f.Broadcast(context.Background(), Event{})
	if !errors.Is(err, errExpected) {
		t.Fatalf("expected error %v, got %v", errExpected, err)
	}
	if calls != 2 {
		t.Fatalf("expected both sinks invoked, got %d", calls)
	}
}

func TestLoggingWithoutLoggerIsSilent(t *testing.T) {
	if err := (Logging{}).Broadcast(context.Background(), Event{Topic: "notification.read"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
