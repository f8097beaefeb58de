package bunrepo

import (
	"time"

	"github.com/goliatone/go-notification-list/pkg/interfaces/store"
	"github.com/uptrace/bun"
)

func withID(id int64) selectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.id = ?", id)
	}
}

func withUser(userID *int64) selectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if userID == nil {
			return q
		}
		return q.Where("?TableAlias.user_id = ?", *userID)
	}
}

func withTimeRange(field string, since, until time.Time) selectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if !since.IsZero() {
			q = q.Where("? >= ?", bun.Ident(field), since)
		}
		if !until.IsZero() {
			q = q.Where("? <= ?", bun.Ident(field), until)
		}
		return q
	}
}

func withListOptions(opts store.ListOptions) selectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if opts.Limit > 0 {
			q = q.Limit(opts.Limit)
		}
		if opts.Offset > 0 {
			q = q.Offset(opts.Offset)
		}
		if opts.IncludeSoftDeleted {
			q = q.WhereAllWithDeleted()
		}
		if opts.UnreadOnly {
			q = q.Where("?TableAlias.is_read = ?", false)
		}
		q = withTimeRange("n.timestamp", opts.Since, opts.Until)(q)
		return q.OrderExpr("? DESC, ? DESC", bun.Ident("n.timestamp"), bun.Ident("n.id"))
	}
}
