package store

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-notification-list/pkg/domain"
)

// ErrNotFound is returned when a record cannot be located.
var ErrNotFound = errors.New("store: not found")

// ListOptions capture pagination and filtering knobs common to repositories.
type ListOptions struct {
	Limit              int
	Offset             int
	Since              time.Time
	Until              time.Time
	UnreadOnly         bool
	IncludeSoftDeleted bool
}

// ListResult bundles records and totals.
type ListResult[T any] struct {
	Items []T
	Total int
}

// NotificationRepository persists notifications. Listings are ordered newest
// first, ties broken by the higher id.
type NotificationRepository interface {
	Create(ctx context.Context, record *domain.Notification) error
	Update(ctx context.Context, record *domain.Notification) error
	GetByID(ctx context.Context, id int64) (*domain.Notification, error)
	List(ctx context.Context, opts ListOptions) (ListResult[domain.Notification], error)
	// ListByUser filters by owner; a nil user lists every user.
	ListByUser(ctx context.Context, userID *int64, opts ListOptions) (ListResult[domain.Notification], error)
	MarkRead(ctx context.Context, id int64, read bool) error
	MarkAllRead(ctx context.Context, userID int64) (int, error)
	CountUnread(ctx context.Context, userID *int64) (int, error)
	SoftDelete(ctx context.Context, id int64) error
}

// TransactionManager runs fn so that every repository call made with the
// context it receives shares one transaction.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopTransactionManager runs fn directly; the memory repository has no
// transactions.
type NopTransactionManager struct{}

var _ TransactionManager = (*NopTransactionManager)(nil)

func (NopTransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}
