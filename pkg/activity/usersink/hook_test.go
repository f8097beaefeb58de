package usersink

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-notification-list/pkg/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []types.ActivityRecord
}

func (s *recordingSink) Log(_ context.Context, rec types.ActivityRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func TestHookNotifyMapsFields(t *testing.T) {
	sink := &recordingSink{}
	hook := Hook{Sink: sink}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	evt := activity.Event{
		Verb:             "notification.updated",
		ActorID:          "7",
		UserID:           "7",
		ObjectType:       "notification",
		ObjectID:         "12",
		NotificationType: "invoice_due",
		Metadata: map[string]any{
			"custom": "value",
		},
		OccurredAt: now,
	}

	hook.Notify(context.Background(), evt)

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	rec := sink.records[0]

	if rec.Verb != evt.Verb {
		t.Fatalf("verb mismatch: %s", rec.Verb)
	}
	if rec.ObjectType != evt.ObjectType || rec.ObjectID != evt.ObjectID {
		t.Fatalf("object fields not mapped")
	}
	if rec.Channel != Channel {
		t.Fatalf("channel mismatch: %s", rec.Channel)
	}
	if rec.UserID == uuid.Nil || rec.UserID != rec.ActorID {
		t.Fatalf("expected stable user uuid, got %s / %s", rec.UserID, rec.ActorID)
	}
	if rec.Data["notification_type"] != "invoice_due" {
		t.Fatalf("notification_type not propagated")
	}
	if rec.Data["user_id"] != "7" {
		t.Fatalf("numeric user id not kept in data")
	}
	if rec.Data["custom"] != "value" {
		t.Fatalf("metadata not propagated")
	}
	if rec.OccurredAt != now {
		t.Fatalf("occurred_at mismatch: %v", rec.OccurredAt)
	}
}

func TestUserUUID(t *testing.T) {
	if UserUUID("") != uuid.Nil {
		t.Fatalf("expected nil uuid for empty id")
	}
	if UserUUID("7") != UserUUID("7") {
		t.Fatalf("expected deterministic uuid")
	}
	if UserUUID("7") == UserUUID("8") {
		t.Fatalf("expected distinct uuids per user")
	}
	raw := uuid.New()
	if UserUUID(raw.String()) != raw {
		t.Fatalf("expected uuid input to pass through")
	}
}
