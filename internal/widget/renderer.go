// Package widget renders a user's notifications through a container
// template and a per-item template.
package widget

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/goliatone/go-notification-list/internal/placeholders"
	"github.com/goliatone/go-notification-list/pkg/dateformat"
	"github.com/goliatone/go-notification-list/pkg/domain"
	"github.com/goliatone/go-notification-list/pkg/interfaces/logger"
)

// Fixed placeholders filled by the renderer itself.
const (
	TokenNotifications = "{notifications}"
	TokenEmptyText     = "{emptyText}"
	TokenTotalCount    = "{totalCount}"
	TokenReadCount     = "{readCount}"
	TokenUnreadCount   = "{unreadCount}"
	TokenTimestamp     = "{timestamp}"
)

// Source provides the notifications to render, in display order.
type Source interface {
	GetNotifications(ctx context.Context, userID *int64) ([]domain.Notification, error)
}

// LocaleSource is implemented by sources that compile notification text for
// a specific locale.
type LocaleSource interface {
	GetNotificationsForLocale(ctx context.Context, userID *int64, locale string) ([]domain.Notification, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, userID *int64) ([]domain.Notification, error)

func (f SourceFunc) GetNotifications(ctx context.Context, userID *int64) ([]domain.Notification, error) {
	return f(ctx, userID)
}

// Dependencies wires collaborators into the renderer.
type Dependencies struct {
	Source    Source
	Formatter dateformat.Formatter
	Logger    logger.Logger
}

// Renderer renders notification lists. It is immutable once built and safe
// for concurrent use.
type Renderer struct {
	source    Source
	formatter dateformat.Formatter
	logger    logger.Logger
	settings  Settings
}

var ErrSourceRequired = errors.New("widget: notification source is required")

// New builds a renderer from the default settings adjusted by opts.
func New(deps Dependencies, opts ...Option) (*Renderer, error) {
	if deps.Source == nil {
		return nil, ErrSourceRequired
	}
	if deps.Formatter == nil {
		deps.Formatter = dateformat.New()
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	r := &Renderer{
		source:    deps.Source,
		formatter: deps.Formatter,
		logger:    deps.Logger,
		settings:  DefaultSettings(),
	}
	r.apply(opts)
	return r, nil
}

// With returns a new renderer sharing collaborators with r and using a copy
// of its settings adjusted by opts.
func (r *Renderer) With(opts ...Option) *Renderer {
	next := *r
	next.settings = r.settings.Clone()
	next.apply(opts)
	return &next
}

func (r *Renderer) apply(opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(&r.settings)
		}
	}
}

// Settings returns a copy of the renderer configuration.
func (r *Renderer) Settings() Settings {
	return r.settings.Clone()
}

// Render fetches notifications for the configured user and renders them.
func (r *Renderer) Render(ctx context.Context) (string, error) {
	return r.RenderFor(ctx, r.settings.UserID)
}

// RenderFor renders the notifications of userID; nil means every user.
func (r *Renderer) RenderFor(ctx context.Context, userID *int64) (string, error) {
	snapshot := r.settings.Clone()
	snapshot.UserID = userID

	notifications, err := r.fetch(ctx, snapshot)
	if err != nil {
		r.logger.Error("widget: fetch notifications failed", logger.Field{Key: "error", Value: err})
		return "", err
	}
	r.logger.Debug("widget: rendering notifications",
		logger.Field{Key: "count", Value: len(notifications)},
		logger.Field{Key: "user_id", Value: userLabel(userID)},
	)
	return r.render(notifications, snapshot), nil
}

func (r *Renderer) fetch(ctx context.Context, s Settings) ([]domain.Notification, error) {
	if s.Locale != "" {
		if ls, ok := r.source.(LocaleSource); ok {
			return ls.GetNotificationsForLocale(ctx, s.UserID, s.Locale)
		}
	}
	return r.source.GetNotifications(ctx, s.UserID)
}

// RenderNotifications renders an already fetched list.
func (r *Renderer) RenderNotifications(notifications []domain.Notification) string {
	return r.render(notifications, r.settings.Clone())
}

// RenderNotification renders a single notification through the item
// template.
func (r *Renderer) RenderNotification(n domain.Notification) string {
	s := r.settings.Clone()
	var table placeholders.Table
	if !s.Item.IsFunc() {
		table = placeholders.Compile(s.Item.text, r.sections(s))
	}
	return r.renderItem(n, table, s, r.formatterFor(s))
}

func (r *Renderer) render(notifications []domain.Notification, s Settings) string {
	if s.Container.IsFunc() {
		return s.Container.fn(notifications, s.Clone())
	}

	sections := r.sections(s)
	var itemTable placeholders.Table
	if !s.Item.IsFunc() {
		itemTable = placeholders.Compile(s.Item.text, sections)
	}
	containerTable := placeholders.Compile(s.Container.text, sections)

	formatter := r.formatterFor(s)
	items := make([]string, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, r.renderItem(n, itemTable, s, formatter))
	}

	stats := CountStats(notifications)
	emptyText := ""
	if stats.Total == 0 {
		emptyText = s.EmptyText
	}
	fixed := map[string]string{
		TokenNotifications: strings.Join(items, s.ListGlue),
		TokenEmptyText:     emptyText,
		TokenTotalCount:    strconv.Itoa(stats.Total),
		TokenReadCount:     strconv.Itoa(stats.Read),
		TokenUnreadCount:   strconv.Itoa(stats.Unread),
	}
	resolved := containerTable.Resolve(placeholders.EmptyScope)
	return placeholders.Substitute(s.Container.text, resolved, fixed)
}

func (r *Renderer) renderItem(n domain.Notification, table placeholders.Table, s Settings, formatter dateformat.Formatter) string {
	if s.Item.IsFunc() {
		return s.Item.fn(n, s.Clone())
	}
	resolved := table.Resolve(itemScope{n: &n, escape: s.EscapeHTML})
	fixed := map[string]string{
		TokenTimestamp: formatter.FormatDate(n.Timestamp, s.TimestampFormat),
	}
	return placeholders.Substitute(s.Item.text, resolved, fixed)
}

// sections converts configured sections into placeholder values. Resolvers
// receive the render scope and their own copy of the settings.
func (r *Renderer) sections(s Settings) map[string]placeholders.Value {
	out := make(map[string]placeholders.Value, len(s.Sections))
	for name, section := range s.Sections {
		if !section.IsFunc() {
			out[name] = placeholders.Literal(section.literal)
			continue
		}
		fn := section.fn
		out[name] = placeholders.Func(func(scope placeholders.Scope) string {
			return fn(scope, s.Clone())
		})
	}
	return out
}

func (r *Renderer) formatterFor(s Settings) dateformat.Formatter {
	if s.Locale == "" {
		return r.formatter
	}
	if l, ok := r.formatter.(dateformat.Localizer); ok {
		return l.ForLocale(s.Locale)
	}
	return r.formatter
}

// Stats are the aggregate counts injected into container templates.
type Stats struct {
	Total  int
	Read   int
	Unread int
}

// CountStats computes Stats for a notification list.
func CountStats(notifications []domain.Notification) Stats {
	stats := Stats{Total: len(notifications)}
	for _, n := range notifications {
		if n.IsRead {
			stats.Read++
		}
	}
	stats.Unread = stats.Total - stats.Read
	return stats
}

func userLabel(userID *int64) string {
	if userID == nil {
		return "all"
	}
	return strconv.FormatInt(*userID, 10)
}
