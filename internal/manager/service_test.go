package manager

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-notification-list/internal/storage/memory"
	internaltemplates "github.com/goliatone/go-notification-list/internal/templates"
	"github.com/goliatone/go-notification-list/pkg/activity"
	"github.com/goliatone/go-notification-list/pkg/domain"
	"github.com/goliatone/go-notification-list/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-notification-list/pkg/interfaces/logger"
	"github.com/goliatone/go-notification-list/pkg/interfaces/store"
	"github.com/google/go-cmp/cmp"
)

type stubTexts struct {
	locales []string
}

func (s *stubTexts) DefaultLocale() string { return "en" }

func (s *stubTexts) Compile(_ context.Context, code, locale string, data map[string]any) (internaltemplates.CompileResult, error) {
	s.locales = append(s.locales, locale)
	switch code {
	case "welcome":
		return internaltemplates.CompileResult{Text: domain.PlainText("Welcome " + toString(data["name"])), Locale: locale}, nil
	case "invoice":
		return internaltemplates.CompileResult{Text: domain.FieldText(map[string]string{
			"title": "Invoice",
			"body":  "Amount " + toString(data["amount"]),
		}), Locale: locale}, nil
	default:
		return internaltemplates.CompileResult{}, internaltemplates.ErrTypeNotFound
	}
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

type recordingLogger struct {
	logger.Nop
	warnings []string
}

func (l *recordingLogger) With(fields ...logger.Field) logger.Logger { return l }
func (l *recordingLogger) Warn(msg string, fields ...logger.Field) {
	l.warnings = append(l.warnings, msg)
}

type countingMetrics struct {
	ops []string
}

func (m *countingMetrics) Record(operation string, _ map[string]string) {
	m.ops = append(m.ops, operation)
}

type fixture struct {
	svc     *Service
	repo    store.NotificationRepository
	texts   *stubTexts
	events  []broadcaster.Event
	acts    []activity.Event
	log     *recordingLogger
	metrics *countingMetrics
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:    memory.NewNotificationRepository(),
		texts:   &stubTexts{},
		log:     &recordingLogger{},
		metrics: &countingMetrics{},
		now:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	svc, err := NewService(Dependencies{
		Repository: f.repo,
		Texts:      f.texts,
		Broadcaster: broadcaster.Func(func(_ context.Context, evt broadcaster.Event) error {
			f.events = append(f.events, evt)
			return nil
		}),
		Logger: f.log,
		Activity: activity.Hooks{activity.HookFunc(func(_ context.Context, evt activity.Event) {
			f.acts = append(f.acts, evt)
		})},
		Metrics: f.metrics,
		Clock:   func() time.Time { return f.now },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func (f *fixture) notify(t *testing.T, userID int64, typ string, data map[string]any) *domain.Notification {
	t.Helper()
	n, err := f.svc.Notify(context.Background(), NotifyInput{UserID: userID, Type: typ, Data: data})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	f.now = f.now.Add(time.Minute)
	return n
}

func (f *fixture) topics() []string {
	out := make([]string, 0, len(f.events))
	for _, evt := range f.events {
		out = append(out, evt.Topic)
	}
	return out
}

func TestNewServiceRequiresRepository(t *testing.T) {
	if _, err := NewService(Dependencies{}); !errors.Is(err, errRepositoryRequired) {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestNotifyCreatesUnreadNotificationWithText(t *testing.T) {
	f := newFixture(t)
	n := f.notify(t, 7, "welcome", map[string]any{"name": "Ada"})

	if n.ID == 0 || n.IsRead {
		t.Fatalf("expected stored unread notification, got %+v", n)
	}
	if n.Text.String() != "Welcome Ada" {
		t.Fatalf("unexpected text %q", n.Text.String())
	}
	if !n.Timestamp.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected clock timestamp, got %v", n.Timestamp)
	}
	if diff := cmp.Diff([]string{TopicCreated}, f.topics()); diff != "" {
		t.Fatalf("topics mismatch (-want +got):\n%s", diff)
	}
	if len(f.acts) != 1 || f.acts[0].ObjectID != activity.ID(n.ID) || f.acts[0].UserID != "7" {
		t.Fatalf("unexpected activity %+v", f.acts)
	}
}

func TestNotifyValidatesInput(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Notify(context.Background(), NotifyInput{UserID: 0, Type: "welcome"}); !goerrors.IsValidation(err) {
		t.Fatalf("expected validation error for user, got %v", err)
	}
	if _, err := f.svc.Notify(context.Background(), NotifyInput{UserID: 1, Type: "  "}); !goerrors.IsValidation(err) {
		t.Fatalf("expected validation error for type, got %v", err)
	}
	if _, err := f.svc.Notify(context.Background(), NotifyInput{UserID: 1, Type: "<script>x</script>"}); !goerrors.IsValidation(err) {
		t.Fatalf("expected validation error for markup in type, got %v", err)
	}
}

func TestGetNotificationsOrdersNewestFirstAndFiltersUser(t *testing.T) {
	f := newFixture(t)
	first := f.notify(t, 1, "welcome", map[string]any{"name": "A"})
	f.notify(t, 2, "welcome", map[string]any{"name": "B"})
	third := f.notify(t, 1, "invoice", map[string]any{"amount": "10"})

	user := int64(1)
	items, err := f.svc.GetNotifications(context.Background(), &user)
	if err != nil {
		t.Fatalf("get notifications: %v", err)
	}
	var ids []int64
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	if diff := cmp.Diff([]int64{third.ID, first.ID}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if got, _ := items[0].Text.Field("body"); got != "Amount 10" {
		t.Fatalf("expected keyed text, got %q", got)
	}

	all, err := f.svc.GetNotifications(context.Background(), nil)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected every user's notifications, got %d", len(all))
	}
}

func TestGetNotificationsForLocalePassesLocale(t *testing.T) {
	f := newFixture(t)
	f.notify(t, 1, "welcome", nil)
	f.texts.locales = nil

	if _, err := f.svc.GetNotificationsForLocale(context.Background(), nil, "es"); err != nil {
		t.Fatalf("get for locale: %v", err)
	}
	if diff := cmp.Diff([]string{"es"}, f.texts.locales); diff != "" {
		t.Fatalf("locales mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownTypeFallsBackToCodeAndWarns(t *testing.T) {
	f := newFixture(t)
	n := f.notify(t, 1, "mystery", nil)

	if n.Text.String() != "mystery" {
		t.Fatalf("expected type code fallback, got %q", n.Text.String())
	}
	if len(f.log.warnings) == 0 || !strings.Contains(f.log.warnings[0], "compile text failed") {
		t.Fatalf("expected compile warning, got %v", f.log.warnings)
	}
}

func TestUpdateReplacesTypeAndDataAndMarksUnread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n := f.notify(t, 3, "welcome", map[string]any{"name": "Old"})
	if _, err := f.svc.MarkRead(ctx, 3, []int64{n.ID}, true); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	f.now = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	if err := f.svc.Update(ctx, n.ID, "invoice", map[string]any{"amount": "99"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := f.svc.Get(ctx, n.ID, "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Type != "invoice" || got.Data["amount"] != "99" || got.IsRead {
		t.Fatalf("unexpected updated record %+v", got)
	}
	if _, ok := got.Data["name"]; ok {
		t.Fatalf("expected data to be replaced, got %+v", got.Data)
	}
	if !got.Timestamp.Equal(f.now) {
		t.Fatalf("expected refreshed timestamp, got %v", got.Timestamp)
	}
	if diff := cmp.Diff([]string{TopicCreated, TopicRead, TopicUpdated}, f.topics()); diff != "" {
		t.Fatalf("topics mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.Update(ctx, 0, "welcome", nil); !goerrors.IsValidation(err) {
		t.Fatalf("expected validation error for zero id, got %v", err)
	}
	if err := f.svc.Update(ctx, -4, "welcome", nil); !goerrors.IsValidation(err) {
		t.Fatalf("expected validation error for negative id, got %v", err)
	}
	if err := f.svc.Update(ctx, 1, "", nil); !goerrors.IsValidation(err) {
		t.Fatalf("expected validation error for empty type, got %v", err)
	}
	if err := f.svc.Update(ctx, 1, `x"y`, nil); !goerrors.IsValidation(err) {
		t.Fatalf("expected validation error for markup in type, got %v", err)
	}
	err := f.svc.Update(ctx, 404, "welcome", nil)
	if !goerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected wrapped store.ErrNotFound, got %v", err)
	}
}

func TestMarkReadIgnoresForeignAndMissingIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.notify(t, 1, "welcome", nil)
	theirs := f.notify(t, 2, "welcome", nil)

	changed, err := f.svc.MarkRead(ctx, 1, []int64{mine.ID, theirs.ID, 999}, true)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected one change, got %d", changed)
	}
	user := int64(2)
	unread, err := f.svc.UnreadCount(ctx, &user)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if unread != 1 {
		t.Fatalf("expected foreign notification to stay unread, got %d", unread)
	}
}

func TestMarkAllReadAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.notify(t, 5, "welcome", nil)
	f.notify(t, 5, "welcome", nil)

	count, err := f.svc.MarkAllRead(ctx, 5)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 marked, got %d", count)
	}
	if err := f.svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, a.ID, ""); !goerrors.IsNotFound(err) {
		t.Fatalf("expected deleted notification to be gone, got %v", err)
	}
	if err := f.svc.Delete(ctx, a.ID); !goerrors.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if _, err := f.svc.MarkAllRead(ctx, 0); !goerrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.metrics.ops) == 0 {
		t.Fatalf("expected metrics to be recorded")
	}
}

func TestMaskDataHidesSensitiveValues(t *testing.T) {
	masked := maskData(map[string]any{
		"email":  "ada@example.com",
		"name":   "Ada",
		"nested": map[string]any{"a": 1},
	})
	if masked["name"] != "Ada" {
		t.Fatalf("expected plain field untouched, got %v", masked["name"])
	}
	if masked["email"] == "ada@example.com" {
		t.Fatalf("expected email to be masked")
	}
	if masked["nested"] != "<map[string]interface {}>" {
		t.Fatalf("expected nested value summary, got %v", masked["nested"])
	}
}
