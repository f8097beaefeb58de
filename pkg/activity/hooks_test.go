package activity

import (
	"context"
	"testing"
)

func TestHooksNotifyStampsAndSkipsNil(t *testing.T) {
	var got []Event
	hooks := Hooks{nil, HookFunc(func(_ context.Context, evt Event) {
		got = append(got, evt)
	})}

	hooks.Notify(context.Background(), Event{Verb: "notification.created"})

	if len(got) != 1 {
		t.Fatalf("expected one delivery, got %d", len(got))
	}
	if got[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be stamped")
	}
}

func TestID(t *testing.T) {
	if ID(0) != "" {
		t.Fatalf("expected zero id to format empty")
	}
	if ID(42) != "42" {
		t.Fatalf("unexpected id %q", ID(42))
	}
}

func TestCloneMetadataDetaches(t *testing.T) {
	src := map[string]any{"type": "welcome"}
	dst := CloneMetadata(src)
	dst["type"] = "changed"
	if src["type"] != "welcome" {
		t.Fatalf("source mutated")
	}
	if CloneMetadata(nil) != nil {
		t.Fatalf("expected nil clone for empty input")
	}
}
