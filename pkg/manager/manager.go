// Package manager stores notifications and serves them with compiled text.
package manager

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-notification-list/internal/manager"
	"github.com/goliatone/go-notification-list/pkg/activity"
	"github.com/goliatone/go-notification-list/pkg/domain"
	"github.com/goliatone/go-notification-list/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-notification-list/pkg/interfaces/logger"
	"github.com/goliatone/go-notification-list/pkg/interfaces/store"
	"github.com/goliatone/go-notification-list/pkg/templates"
)

// Re-export commonly used types so callers don't depend on the internal package.
type (
	NotifyInput  = manager.NotifyInput
	TextCompiler = manager.TextCompiler
	Metrics      = manager.Metrics
)

// Broadcast topics.
const (
	TopicCreated = manager.TopicCreated
	TopicUpdated = manager.TopicUpdated
	TopicRead    = manager.TopicRead
	TopicDeleted = manager.TopicDeleted
)

// Updater is the single operation the update event needs.
type Updater interface {
	Update(ctx context.Context, id int64, typ string, data map[string]any) error
}

// Manager exposes notification management to consumers.
type Manager struct {
	internal *manager.Service
}

var _ Updater = (*Manager)(nil)

// Dependencies wires repositories, the text compiler and realtime hooks.
type Dependencies struct {
	Repository  store.NotificationRepository
	Transaction store.TransactionManager
	Texts       *templates.Service
	Broadcaster broadcaster.Broadcaster
	Logger      logger.Logger
	Activity    activity.Hooks
	Metrics     Metrics
	Clock       func() time.Time
}

var errManagerNotInitialised = errors.New("manager: service not initialised")

// New constructs the façade.
func New(deps Dependencies) (*Manager, error) {
	var texts manager.TextCompiler
	if deps.Texts != nil {
		texts = deps.Texts
	}
	internalSvc, err := manager.NewService(manager.Dependencies{
		Repository:  deps.Repository,
		Transaction: deps.Transaction,
		Texts:       texts,
		Broadcaster: deps.Broadcaster,
		Logger:      deps.Logger,
		Activity:    deps.Activity,
		Metrics:     deps.Metrics,
		Clock:       deps.Clock,
	})
	if err != nil {
		return nil, err
	}
	return &Manager{internal: internalSvc}, nil
}

// Notify creates an unread notification.
func (m *Manager) Notify(ctx context.Context, input NotifyInput) (*domain.Notification, error) {
	if m == nil || m.internal == nil {
		return nil, errManagerNotInitialised
	}
	return m.internal.Notify(ctx, input)
}

// Get returns one notification with text compiled for locale.
func (m *Manager) Get(ctx context.Context, id int64, locale string) (*domain.Notification, error) {
	if m == nil || m.internal == nil {
		return nil, errManagerNotInitialised
	}
	return m.internal.Get(ctx, id, locale)
}

// GetNotifications lists the notifications of userID, or of every user when
// userID is nil, newest first.
func (m *Manager) GetNotifications(ctx context.Context, userID *int64) ([]domain.Notification, error) {
	if m == nil || m.internal == nil {
		return nil, errManagerNotInitialised
	}
	return m.internal.GetNotifications(ctx, userID)
}

// GetNotificationsForLocale is GetNotifications with text compiled for locale.
func (m *Manager) GetNotificationsForLocale(ctx context.Context, userID *int64, locale string) ([]domain.Notification, error) {
	if m == nil || m.internal == nil {
		return nil, errManagerNotInitialised
	}
	return m.internal.GetNotificationsForLocale(ctx, userID, locale)
}

// List returns a page of notifications with compiled text.
func (m *Manager) List(ctx context.Context, userID *int64, locale string, opts store.ListOptions) (store.ListResult[domain.Notification], error) {
	if m == nil || m.internal == nil {
		return store.ListResult[domain.Notification]{}, errManagerNotInitialised
	}
	return m.internal.List(ctx, userID, locale, opts)
}

// Update replaces type and data of notification id and marks it unread.
func (m *Manager) Update(ctx context.Context, id int64, typ string, data map[string]any) error {
	if m == nil || m.internal == nil {
		return errManagerNotInitialised
	}
	return m.internal.Update(ctx, id, typ, data)
}

// MarkRead toggles the read flag of the user's notifications.
func (m *Manager) MarkRead(ctx context.Context, userID int64, ids []int64, read bool) (int, error) {
	if m == nil || m.internal == nil {
		return 0, errManagerNotInitialised
	}
	return m.internal.MarkRead(ctx, userID, ids, read)
}

// MarkAllRead flags every notification of userID as read.
func (m *Manager) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	if m == nil || m.internal == nil {
		return 0, errManagerNotInitialised
	}
	return m.internal.MarkAllRead(ctx, userID)
}

// Delete soft-deletes a notification.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	if m == nil || m.internal == nil {
		return errManagerNotInitialised
	}
	return m.internal.Delete(ctx, id)
}

// UnreadCount counts unread notifications.
func (m *Manager) UnreadCount(ctx context.Context, userID *int64) (int, error) {
	if m == nil || m.internal == nil {
		return 0, errManagerNotInitialised
	}
	return m.internal.UnreadCount(ctx, userID)
}

// RegisterSensitiveKey masks an additional data key in manager logs.
func RegisterSensitiveKey(key string) {
	manager.RegisterSensitiveKey(key)
}
