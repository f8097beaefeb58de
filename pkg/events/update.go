package events

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to update event errors.
const (
	CodeUpdaterRequired = "UPDATE_EVENT_MANAGER_REQUIRED"
	CodeResolveFailed   = "UPDATE_EVENT_RESOLVE_FAILED"
)

// Updater applies a notification update. The notification manager satisfies
// it.
type Updater interface {
	Update(ctx context.Context, id int64, typ string, data map[string]any) error
}

// UpdaterFunc adapts a function to Updater.
type UpdaterFunc func(ctx context.Context, id int64, typ string, data map[string]any) error

// Update satisfies Updater.
func (f UpdaterFunc) Update(ctx context.Context, id int64, typ string, data map[string]any) error {
	return f(ctx, id, typ, data)
}

// IDResolver computes the target id from the event itself.
type IDResolver func(evt *UpdateNotification) (int64, error)

// IDSource is either a literal id or a resolver of the event. The zero value
// is the literal 0.
type IDSource struct {
	literal  int64
	resolver IDResolver
}

// LiteralID returns a source holding a fixed id.
func LiteralID(id int64) IDSource {
	return IDSource{literal: id}
}

// ResolveID returns a source that asks fn for the id at resolution time.
func ResolveID(fn IDResolver) IDSource {
	return IDSource{resolver: fn}
}

// IsResolver reports whether the id is computed.
func (s IDSource) IsResolver() bool {
	return s.resolver != nil
}

// Literal returns the fixed id and whether the source holds one.
func (s IDSource) Literal() (int64, bool) {
	if s.resolver != nil {
		return 0, false
	}
	return s.literal, true
}

// UpdateNotification asks the manager to replace the type and data of one
// notification.
type UpdateNotification struct {
	ID   IDSource
	Type string
	Data map[string]any
}

// NewUpdateNotification builds an update event for a literal id.
func NewUpdateNotification(id int64, typ string, data map[string]any) *UpdateNotification {
	return &UpdateNotification{ID: LiteralID(id), Type: typ, Data: data}
}

// ResolveTargetID returns the literal id or the resolver's result.
func (e *UpdateNotification) ResolveTargetID() (int64, error) {
	if !e.ID.IsResolver() {
		return e.ID.literal, nil
	}
	id, err := e.ID.resolver(e)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryBadInput, "update event: resolve id").
			WithTextCode(CodeResolveFailed)
	}
	return id, nil
}

// Resolve resolves the target id and delegates to updater. The id is not
// validated here; the updater decides what a valid id is.
func (e *UpdateNotification) Resolve(ctx context.Context, updater Updater) error {
	if updater == nil {
		return goerrors.New("update event: manager is required", goerrors.CategoryOperation).
			WithTextCode(CodeUpdaterRequired)
	}
	id, err := e.ResolveTargetID()
	if err != nil {
		return err
	}
	return updater.Update(ctx, id, e.Type, e.Data)
}
