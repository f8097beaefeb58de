package bunrepo

import (
	"context"
	"time"

	"github.com/goliatone/go-notification-list/pkg/domain"
	"github.com/goliatone/go-notification-list/pkg/interfaces/store"
	"github.com/uptrace/bun"
)

// NotificationRepository stores notifications through bun.
type NotificationRepository struct {
	db *bun.DB
}

var _ store.NotificationRepository = (*NotificationRepository)(nil)

func NewNotificationRepository(db *bun.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = now
	}
	n.UpdatedAt = now
	_, err := conn(ctx, r.db).NewInsert().Model(n).Exec(ctx)
	return mapError(err)
}

func (r *NotificationRepository) Update(ctx context.Context, n *domain.Notification) error {
	n.UpdatedAt = time.Now().UTC()
	return expectRows(conn(ctx, r.db).
		NewUpdate().
		Model(n).
		ExcludeColumn("created_at").
		WherePK().
		Exec(ctx))
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	record := new(domain.Notification)
	err := applyCriteria(conn(ctx, r.db).NewSelect().Model(record), withID(id)).Scan(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return record, nil
}

func (r *NotificationRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Notification], error) {
	return r.list(ctx, withListOptions(opts))
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID *int64, opts store.ListOptions) (store.ListResult[domain.Notification], error) {
	return r.list(ctx, withUser(userID), withListOptions(opts))
}

func (r *NotificationRepository) list(ctx context.Context, criteria ...selectCriteria) (store.ListResult[domain.Notification], error) {
	var records []domain.Notification
	q := applyCriteria(conn(ctx, r.db).NewSelect().Model(&records), criteria...)
	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return store.ListResult[domain.Notification]{}, mapError(err)
	}
	return store.ListResult[domain.Notification]{Items: records, Total: total}, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, read bool) error {
	now := time.Now().UTC()
	var readAt *time.Time
	if read {
		readAt = &now
	}
	return expectRows(conn(ctx, r.db).
		NewUpdate().
		Model((*domain.Notification)(nil)).
		Set("is_read = ?", read).
		Set("read_at = ?", readAt).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx))
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	now := time.Now().UTC()
	res, err := conn(ctx, r.db).
		NewUpdate().
		Model((*domain.Notification)(nil)).
		Set("is_read = ?", true).
		Set("read_at = ?", now).
		Set("updated_at = ?", now).
		Where("user_id = ?", userID).
		Where("is_read = ?", false).
		Exec(ctx)
	if err != nil {
		return 0, mapError(err)
	}
	affected, err := res.RowsAffected()
	return int(affected), err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID *int64) (int, error) {
	q := conn(ctx, r.db).
		NewSelect().
		Model((*domain.Notification)(nil)).
		Where("?TableAlias.is_read = ?", false)
	count, err := withUser(userID)(q).Count(ctx)
	return count, mapError(err)
}

func (r *NotificationRepository) SoftDelete(ctx context.Context, id int64) error {
	return expectRows(conn(ctx, r.db).
		NewDelete().
		Model((*domain.Notification)(nil)).
		Where("id = ?", id).
		Exec(ctx))
}
