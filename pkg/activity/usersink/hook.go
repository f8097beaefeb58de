package usersink

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-notification-list/pkg/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Channel is recorded on every activity record.
const Channel = "notification_list"

// Namespace seeds the name-based UUIDs derived from numeric ids.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("github.com/goliatone/go-notification-list"))

// Hook adapts activity events into go-users ActivitySink records.
type Hook struct {
	Sink types.ActivitySink
}

// Notify maps the activity event into a types.ActivityRecord and forwards it.
func (h Hook) Notify(ctx context.Context, evt activity.Event) {
	if h.Sink == nil {
		return
	}
	record := types.ActivityRecord{
		ID:         uuid.New(),
		UserID:     UserUUID(evt.UserID),
		ActorID:    UserUUID(evt.ActorID),
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    Channel,
		Data:       buildData(evt),
		OccurredAt: evt.OccurredAt,
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now().UTC()
	}
	_ = h.Sink.Log(ctx, record)
}

// UserUUID returns raw when it already is a UUID, otherwise a stable
// name-based UUID for the numeric user id. Empty input maps to uuid.Nil.
func UserUUID(raw string) uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil
	}
	if id, err := uuid.Parse(raw); err == nil {
		return id
	}
	return uuid.NewSHA1(Namespace, []byte("user:"+raw))
}

func buildData(evt activity.Event) map[string]any {
	data := activity.CloneMetadata(evt.Metadata)
	if data == nil {
		data = make(map[string]any)
	}
	if evt.NotificationType != "" {
		data["notification_type"] = evt.NotificationType
	}
	if evt.UserID != "" {
		data["user_id"] = evt.UserID
	}
	return data
}
