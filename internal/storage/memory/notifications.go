package memory

import (
	"context"
	"time"

	"github.com/goliatone/go-notification-list/pkg/domain"
	"github.com/goliatone/go-notification-list/pkg/interfaces/store"
)

// NotificationRepository keeps notifications in process memory.
type NotificationRepository struct {
	base baseMemoryRepo[domain.Notification]
}

var _ store.NotificationRepository = (*NotificationRepository)(nil)

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{
		base: newBaseMemoryRepo("notification", func(n *domain.Notification) recordMeta {
			return recordMeta{
				ID:        &n.ID,
				Timestamp: &n.Timestamp,
				CreatedAt: &n.CreatedAt,
				UpdatedAt: &n.UpdatedAt,
				DeletedAt: &n.DeletedAt,
			}
		}),
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return r.store(n, func(record *domain.Notification) error { return r.base.create(ctx, record) })
}

func (r *NotificationRepository) Update(ctx context.Context, n *domain.Notification) error {
	return r.store(n, func(record *domain.Notification) error { return r.base.update(ctx, record) })
}

// store persists a detached copy so later caller mutations of Data do not
// leak into the repository.
func (r *NotificationRepository) store(n *domain.Notification, fn func(*domain.Notification) error) error {
	record := *n
	record.Data = n.Data.Clone()
	if err := fn(&record); err != nil {
		return err
	}
	data := n.Data
	*n = record
	n.Data = data
	return nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	n, err := r.base.getByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	n.Data = n.Data.Clone()
	return n, nil
}

func (r *NotificationRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Notification], error) {
	return detach(r.base.list(ctx, opts, unreadFilter(opts)))
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID *int64, opts store.ListOptions) (store.ListResult[domain.Notification], error) {
	unread := unreadFilter(opts)
	return detach(r.base.list(ctx, opts, func(n *domain.Notification) bool {
		if userID != nil && n.UserID != *userID {
			return false
		}
		return unread == nil || unread(n)
	}))
}

func detach(result store.ListResult[domain.Notification], err error) (store.ListResult[domain.Notification], error) {
	if err != nil {
		return result, err
	}
	for i := range result.Items {
		result.Items[i].Data = result.Items[i].Data.Clone()
	}
	return result, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, read bool) error {
	n, err := r.base.getByID(ctx, id, false)
	if err != nil {
		return err
	}
	setRead(n, read, time.Now().UTC())
	return r.base.update(ctx, n)
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	now := time.Now().UTC()
	changed := r.base.mutate(
		func(n *domain.Notification) bool { return n.UserID == userID && !n.IsRead },
		func(n *domain.Notification) bool {
			setRead(n, true, now)
			return true
		},
	)
	return changed, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID *int64) (int, error) {
	r.base.mu.RLock()
	defer r.base.mu.RUnlock()

	count := 0
	for _, n := range r.base.records {
		if userID != nil && n.UserID != *userID {
			continue
		}
		if !n.IsRead && n.DeletedAt.IsZero() {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.base.softDelete(ctx, id)
}

func setRead(n *domain.Notification, read bool, at time.Time) {
	n.IsRead = read
	if read {
		n.ReadAt = &at
	} else {
		n.ReadAt = nil
	}
}

func unreadFilter(opts store.ListOptions) func(*domain.Notification) bool {
	if !opts.UnreadOnly {
		return nil
	}
	return func(n *domain.Notification) bool { return !n.IsRead }
}
