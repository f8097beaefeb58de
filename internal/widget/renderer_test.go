package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-notification-list/internal/placeholders"
	"github.com/goliatone/go-notification-list/pkg/dateformat"
	"github.com/goliatone/go-notification-list/pkg/domain"
	"github.com/google/go-cmp/cmp"
)

type staticSource struct {
	items   []domain.Notification
	err     error
	lastFor *int64
	calls   int
	mu      sync.Mutex
}

func (s *staticSource) GetNotifications(ctx context.Context, userID *int64) ([]domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastFor = userID
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.Notification, len(s.items))
	copy(out, s.items)
	return out, nil
}

func newTestRenderer(t *testing.T, items []domain.Notification, opts ...Option) (*Renderer, *staticSource) {
	t.Helper()
	src := &staticSource{items: items}
	r, err := New(Dependencies{Source: src}, opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r, src
}

func notification(typ string, ts time.Time, read bool) domain.Notification {
	return domain.Notification{Type: typ, Timestamp: ts, IsRead: read}
}

func TestNewRequiresSource(t *testing.T) {
	if _, err := New(Dependencies{}); !errors.Is(err, ErrSourceRequired) {
		t.Fatalf("expected ErrSourceRequired, got %v", err)
	}
}

func TestRenderEmptyListShowsEmptyText(t *testing.T) {
	r, _ := newTestRenderer(t, nil)

	got, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "No notifications available." {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderItemsInSourceOrder(t *testing.T) {
	t1 := time.Date(2024, time.January, 5, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, time.February, 6, 11, 0, 0, 0, time.UTC)
	r, _ := newTestRenderer(t,
		[]domain.Notification{notification("info", t1, false), notification("warn", t2, false)},
		WithTimestampFormat("m/d/Y"),
		WithListGlue("|"),
	)

	got, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "info at 01/05/2024|warn at 02/06/2024"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRenderSectionAndCounts(t *testing.T) {
	now := time.Now()
	r, _ := newTestRenderer(t,
		[]domain.Notification{notification("a", now, true), notification("b", now, false), notification("c", now, false)},
		WithSection("greeting", SectionText("Hello")),
		WithContainerTemplate(ContainerText("{section.greeting}: {totalCount}")),
	)

	got, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello: 3" {
		t.Fatalf("unexpected output %q", got)
	}

	stats := r.With(WithContainerTemplate(ContainerText("{totalCount}={readCount}+{unreadCount}{emptyText}")))
	got, _ = stats.Render(context.Background())
	if got != "3=1+2" {
		t.Fatalf("unexpected stats output %q", got)
	}
}

func TestRenderItemFunction(t *testing.T) {
	now := time.Now()
	r, _ := newTestRenderer(t,
		[]domain.Notification{notification("a", now, false), notification("b", now, true)},
		WithItemTemplate(ItemRender(func(domain.Notification, Settings) string { return "X" })),
		WithListGlue(","),
	)

	got, _ := r.Render(context.Background())
	if got != "X,X" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderUnknownPlaceholderPassesThrough(t *testing.T) {
	r, _ := newTestRenderer(t, nil, WithContainerTemplate(ContainerText("{foo}")))

	got, _ := r.Render(context.Background())
	if got != "foo" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderContainerFunctionBypassesTemplates(t *testing.T) {
	items := []domain.Notification{notification("a", time.Now(), false)}
	var seen Settings
	r, _ := newTestRenderer(t, items,
		WithEmptyText("none"),
		WithContainerTemplate(ContainerRender(func(list []domain.Notification, s Settings) string {
			seen = s
			return fmt.Sprintf("{notifications} %d", len(list))
		})),
	)

	got, _ := r.Render(context.Background())
	if got != "{notifications} 1" {
		t.Fatalf("unexpected output %q", got)
	}
	if seen.EmptyText != "none" {
		t.Fatalf("expected settings snapshot to be passed, got %+v", seen)
	}
}

func TestRenderIsNotRecursive(t *testing.T) {
	items := []domain.Notification{{Type: "{section.x}", Timestamp: time.Now()}}
	r, _ := newTestRenderer(t, items,
		WithSection("x", SectionText("{totalCount}")),
		WithSection("y", SectionResolver(func(placeholders.Scope, Settings) string { return "{emptyText}" })),
		WithItemTemplate(ItemText("{notification.type}")),
		WithContainerTemplate(ContainerText("{section.x}|{section.y}|{notifications}")),
	)

	got, _ := r.Render(context.Background())
	want := "{totalCount}|{emptyText}|{section.x}"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRenderItemScope(t *testing.T) {
	ts := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	items := []domain.Notification{
		{
			ID:        9,
			UserID:    4,
			Type:      "order.shipped",
			Timestamp: ts,
			IsRead:    true,
			Data:      domain.JSONMap{"order": "A-1", "count": 2},
			Text:      domain.FieldText(map[string]string{"title": "Shipped", "body": "Order A-1 left"}),
		},
		{
			ID:        10,
			Type:      "plain",
			Timestamp: ts,
			Text:      domain.PlainText("Hello there"),
		},
	}
	r, _ := newTestRenderer(t, items,
		WithItemTemplate(ItemText("{notification.id}:{notification.user_id}:{notification.is_read}:{notification.order}:{notification.count}:{text.title}|{text}|{notification}|{notification.timestamp}")),
		WithListGlue("\n"),
	)

	got, _ := r.Render(context.Background())
	want := []string{
		"9:4:true:A-1:2:Shipped|Order A-1 left Shipped|notification|1717200000",
		"10:0:false:notification.order:notification.count:text.title|Hello there|notification|1717200000",
	}
	if diff := cmp.Diff(want, strings.Split(got, "\n")); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestRenderEscapesNotificationFields(t *testing.T) {
	items := []domain.Notification{{
		Type:      `a<b>"c"`,
		Timestamp: time.Now(),
		Data:      domain.JSONMap{"note": "<script>x</script>"},
		Text:      domain.PlainText("<b>kept</b>"),
	}}
	tpl := WithItemTemplate(ItemText("{notification.type}|{notification.note}|{text}|{notification.missing}"))

	r, _ := newTestRenderer(t, items, tpl, WithEscapeHTML(true))
	got := r.RenderNotification(items[0])
	want := "a&lt;b&gt;&#34;c&#34;|&lt;script&gt;x&lt;/script&gt;|<b>kept</b>|notification.missing"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	raw := r.With(WithEscapeHTML(false)).RenderNotification(items[0])
	if raw != `a<b>"c"|<script>x</script>|<b>kept</b>|notification.missing` {
		t.Fatalf("unexpected unescaped output %q", raw)
	}
}

func TestRenderContainerCannotSeeItemData(t *testing.T) {
	items := []domain.Notification{{Type: "info", Timestamp: time.Now(), Text: domain.PlainText("body")}}
	r, _ := newTestRenderer(t, items, WithContainerTemplate(ContainerText("{notification.type} {text} {timestamp}")))

	got, _ := r.Render(context.Background())
	if got != "notification.type text timestamp" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestSectionResolverReceivesScopeAndSettings(t *testing.T) {
	items := []domain.Notification{
		{Type: "a", Timestamp: time.Now()},
		{Type: "b", Timestamp: time.Now()},
	}
	resolver := SectionResolver(func(scope placeholders.Scope, s Settings) string {
		typ, ok := scope.Lookup("notification.type")
		if !ok {
			typ = "container"
		}
		s.EmptyText = "mutated"
		return typ + "@" + s.ListGlue
	})
	r, _ := newTestRenderer(t, items,
		WithSection("who", resolver),
		WithListGlue(";"),
		WithItemTemplate(ItemText("{section.who}")),
		WithContainerTemplate(ContainerText("{notifications}/{section.who}")),
	)

	got, _ := r.Render(context.Background())
	if got != "a@;;b@;/container@;" {
		t.Fatalf("unexpected output %q", got)
	}
	if r.Settings().EmptyText != DefaultEmptyText {
		t.Fatalf("resolver mutated renderer settings")
	}
}

func TestRenderForOverridesUser(t *testing.T) {
	r, src := newTestRenderer(t, nil, WithUserID(3))

	if _, err := r.Render(context.Background()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if src.lastFor == nil || *src.lastFor != 3 {
		t.Fatalf("expected configured user 3, got %v", src.lastFor)
	}

	if _, err := r.RenderFor(context.Background(), nil); err != nil {
		t.Fatalf("render for: %v", err)
	}
	if src.lastFor != nil {
		t.Fatalf("expected all users, got %v", *src.lastFor)
	}
}

func TestRenderPropagatesSourceError(t *testing.T) {
	boom := errors.New("boom")
	src := &staticSource{err: boom}
	r, err := New(Dependencies{Source: src})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := r.Render(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}

type localeSource struct {
	staticSource
	locale string
}

func (s *localeSource) GetNotificationsForLocale(ctx context.Context, userID *int64, locale string) ([]domain.Notification, error) {
	s.locale = locale
	return s.GetNotifications(ctx, userID)
}

func TestRenderUsesLocale(t *testing.T) {
	ts := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	src := &localeSource{staticSource: staticSource{items: []domain.Notification{{Type: "a", Timestamp: ts}}}}
	r, err := New(Dependencies{Source: src, Formatter: dateformat.New()},
		WithLocale("de"),
		WithTimestampFormat("php:l"),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	got, _ := r.Render(context.Background())
	if src.locale != "de" {
		t.Fatalf("expected locale-aware fetch, got %q", src.locale)
	}
	if got != "a at Montag" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderNotificationSingle(t *testing.T) {
	r, _ := newTestRenderer(t, nil,
		WithTimestampFormat("go:2006"),
	)
	got := r.RenderNotification(domain.Notification{Type: "ping", Timestamp: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)})
	if got != "ping at 2023" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestCountStats(t *testing.T) {
	lists := [][]domain.Notification{
		nil,
		{{IsRead: true}},
		{{IsRead: true}, {}, {}, {IsRead: true}},
	}
	for _, list := range lists {
		s := CountStats(list)
		if s.Total != len(list) || s.Total != s.Read+s.Unread {
			t.Fatalf("inconsistent stats %+v for %d items", s, len(list))
		}
	}
}

func TestConcurrentRendersDoNotShareState(t *testing.T) {
	items := []domain.Notification{{Type: "a", Timestamp: time.Now()}}
	r, _ := newTestRenderer(t, items, WithItemTemplate(ItemText("{notification.type}")))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := int64(i)
			out, err := r.RenderFor(context.Background(), &user)
			if err != nil || out != "a" {
				t.Errorf("render %d: %q %v", i, out, err)
			}
		}(i)
	}
	wg.Wait()
}
