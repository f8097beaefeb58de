package manager

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	internaltemplates "github.com/goliatone/go-notification-list/internal/templates"
	"github.com/goliatone/go-notification-list/pkg/activity"
	"github.com/goliatone/go-notification-list/pkg/domain"
	"github.com/goliatone/go-notification-list/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-notification-list/pkg/interfaces/logger"
	"github.com/goliatone/go-notification-list/pkg/interfaces/store"
)

// Broadcast topics emitted after each mutation.
const (
	TopicCreated = "notification.created"
	TopicUpdated = "notification.updated"
	TopicRead    = "notification.read"
	TopicDeleted = "notification.deleted"
)

// Text codes attached to boundary errors.
const (
	CodeInvalidID      = "NOTIFICATION_INVALID_ID"
	CodeInvalidType    = "NOTIFICATION_INVALID_TYPE"
	CodeInvalidUser    = "NOTIFICATION_INVALID_USER"
	CodeNotFound       = "NOTIFICATION_NOT_FOUND"
	CodeStorageFailure = "NOTIFICATION_STORAGE_FAILURE"
)

const objectType = "notification"

// TextCompiler renders the display text of a notification type.
type TextCompiler interface {
	Compile(ctx context.Context, code, locale string, data map[string]any) (internaltemplates.CompileResult, error)
	DefaultLocale() string
}

// Metrics records per-operation counters.
type Metrics interface {
	Record(operation string, labels map[string]string)
}

// NotifyInput captures the fields required to create a notification.
type NotifyInput struct {
	UserID int64
	Type   string
	Data   map[string]any
	// Timestamp defaults to the service clock.
	Timestamp time.Time
}

// Dependencies wires repositories and realtime hooks into the service.
type Dependencies struct {
	Repository  store.NotificationRepository
	Transaction store.TransactionManager
	Texts       TextCompiler
	Broadcaster broadcaster.Broadcaster
	Logger      logger.Logger
	Activity    activity.Hooks
	Metrics     Metrics
	Clock       func() time.Time
}

// Service stores notifications, compiles their text on read and fans out
// change events.
type Service struct {
	repo        store.NotificationRepository
	tx          store.TransactionManager
	texts       TextCompiler
	broadcaster broadcaster.Broadcaster
	logger      logger.Logger
	activity    activity.Hooks
	metrics     Metrics
	now         func() time.Time
}

var (
	errRepositoryRequired = stderrors.New("manager: repository is required")
)

// NewService constructs the notification manager.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Repository == nil {
		return nil, errRepositoryRequired
	}
	if deps.Transaction == nil {
		deps.Transaction = &store.NopTransactionManager{}
	}
	if deps.Broadcaster == nil {
		deps.Broadcaster = &broadcaster.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Service{
		repo:        deps.Repository,
		tx:          deps.Transaction,
		texts:       deps.Texts,
		broadcaster: deps.Broadcaster,
		logger:      deps.Logger,
		activity:    deps.Activity,
		metrics:     deps.Metrics,
		now:         deps.Clock,
	}, nil
}

// Notify creates an unread notification and returns it with its text compiled
// in the default locale.
func (s *Service) Notify(ctx context.Context, input NotifyInput) (*domain.Notification, error) {
	if input.UserID <= 0 {
		return nil, goerrors.New("user id must be a positive number", goerrors.CategoryValidation).
			WithTextCode(CodeInvalidUser).
			WithMetadata(map[string]any{"user_id": input.UserID})
	}
	typ := strings.TrimSpace(input.Type)
	if err := checkType(typ); err != nil {
		return nil, err
	}
	ts := input.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	record := &domain.Notification{
		UserID:    input.UserID,
		Type:      typ,
		Data:      domain.JSONMap(input.Data).Clone(),
		Timestamp: ts.UTC(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, storageError(err, "create notification")
	}
	record.Text = s.compile(ctx, record, "")
	s.logger.Debug("manager: notification created",
		logger.Field{Key: "id", Value: record.ID},
		logger.Field{Key: "type", Value: record.Type},
		logger.Field{Key: "data", Value: maskData(record.Data)},
	)
	s.record("notify", record.Type)
	s.emit(ctx, TopicCreated, record)
	s.activity.Notify(ctx, activity.Event{
		Verb:             TopicCreated,
		UserID:           activity.ID(record.UserID),
		ObjectType:       objectType,
		ObjectID:         activity.ID(record.ID),
		NotificationType: record.Type,
	})
	return record, nil
}

// Get returns one notification with its text compiled for locale.
func (s *Service) Get(ctx context.Context, id int64, locale string) (*domain.Notification, error) {
	if id <= 0 {
		return nil, errInvalidID(id)
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, id)
	}
	record.Text = s.compile(ctx, record, locale)
	return record, nil
}

// GetNotifications returns the notifications of userID, or of every user when
// userID is nil, with text compiled in the default locale.
func (s *Service) GetNotifications(ctx context.Context, userID *int64) ([]domain.Notification, error) {
	return s.GetNotificationsForLocale(ctx, userID, "")
}

// GetNotificationsForLocale is GetNotifications with text compiled for locale.
func (s *Service) GetNotificationsForLocale(ctx context.Context, userID *int64, locale string) ([]domain.Notification, error) {
	result, err := s.List(ctx, userID, locale, store.ListOptions{})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// List returns a page of notifications with compiled text.
func (s *Service) List(ctx context.Context, userID *int64, locale string, opts store.ListOptions) (store.ListResult[domain.Notification], error) {
	result, err := s.repo.ListByUser(ctx, userID, opts)
	if err != nil {
		return store.ListResult[domain.Notification]{}, storageError(err, "list notifications")
	}
	for i := range result.Items {
		result.Items[i].Text = s.compile(ctx, &result.Items[i], locale)
	}
	return result, nil
}

// Update replaces the type and data of notification id, refreshes its
// timestamp and marks it unread.
func (s *Service) Update(ctx context.Context, id int64, typ string, data map[string]any) error {
	if id <= 0 {
		return errInvalidID(id)
	}
	typ = strings.TrimSpace(typ)
	if err := checkType(typ); err != nil {
		return err
	}
	var updated *domain.Notification
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		record, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return lookupError(err, id)
		}
		record.Type = typ
		record.Data = domain.JSONMap(data).Clone()
		record.Timestamp = s.now().UTC()
		record.IsRead = false
		record.ReadAt = nil
		if err := s.repo.Update(txCtx, record); err != nil {
			return lookupError(err, id)
		}
		updated = record
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("manager: notification updated",
		logger.Field{Key: "id", Value: id},
		logger.Field{Key: "type", Value: typ},
		logger.Field{Key: "data", Value: maskData(updated.Data)},
	)
	s.record("update", typ)
	s.emit(ctx, TopicUpdated, updated)
	s.activity.Notify(ctx, activity.Event{
		Verb:             TopicUpdated,
		UserID:           activity.ID(updated.UserID),
		ObjectType:       objectType,
		ObjectID:         activity.ID(id),
		NotificationType: typ,
	})
	return nil
}

// MarkRead toggles the read flag for the provided ids. IDs that do not exist
// or do not belong to the user are ignored to avoid leaking existence checks.
func (s *Service) MarkRead(ctx context.Context, userID int64, ids []int64, read bool) (int, error) {
	changed := 0
	for _, id := range ids {
		record, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if stderrors.Is(err, store.ErrNotFound) {
				continue
			}
			return changed, storageError(err, "load notification")
		}
		if record.UserID != userID {
			continue
		}
		if err := s.repo.MarkRead(ctx, id, read); err != nil {
			return changed, storageError(err, "mark notification read")
		}
		changed++
		record.IsRead = read
		s.emit(ctx, TopicRead, record)
		verb := "notification.unread"
		if read {
			verb = TopicRead
		}
		s.activity.Notify(ctx, activity.Event{
			Verb:             verb,
			ActorID:          activity.ID(userID),
			UserID:           activity.ID(record.UserID),
			ObjectType:       objectType,
			ObjectID:         activity.ID(id),
			NotificationType: record.Type,
		})
	}
	s.record("mark_read", "")
	return changed, nil
}

// MarkAllRead flags every unread notification of userID as read.
func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, goerrors.New("user id must be a positive number", goerrors.CategoryValidation).
			WithTextCode(CodeInvalidUser)
	}
	count, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, storageError(err, "mark all read")
	}
	if count > 0 {
		s.emit(ctx, TopicRead, map[string]any{"user_id": userID, "count": count})
		s.activity.Notify(ctx, activity.Event{
			Verb:       TopicRead,
			ActorID:    activity.ID(userID),
			UserID:     activity.ID(userID),
			ObjectType: objectType,
			Metadata:   map[string]any{"count": count},
		})
	}
	s.record("mark_all_read", "")
	return count, nil
}

// Delete soft-deletes notification id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errInvalidID(id)
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return lookupError(err, id)
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return lookupError(err, id)
	}
	s.record("delete", record.Type)
	s.emit(ctx, TopicDeleted, record)
	s.activity.Notify(ctx, activity.Event{
		Verb:             TopicDeleted,
		UserID:           activity.ID(record.UserID),
		ObjectType:       objectType,
		ObjectID:         activity.ID(id),
		NotificationType: record.Type,
	})
	return nil
}

// UnreadCount counts unread notifications of userID, or of every user when
// userID is nil.
func (s *Service) UnreadCount(ctx context.Context, userID *int64) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, storageError(err, "count unread")
	}
	return count, nil
}

func (s *Service) compile(ctx context.Context, record *domain.Notification, locale string) domain.CompiledText {
	if s.texts == nil {
		return domain.PlainText(record.Type)
	}
	if locale == "" {
		locale = s.texts.DefaultLocale()
	}
	result, err := s.texts.Compile(ctx, record.Type, locale, record.Data)
	if err != nil {
		s.logger.Warn("manager: compile text failed",
			logger.Field{Key: "id", Value: record.ID},
			logger.Field{Key: "type", Value: record.Type},
			logger.Field{Key: "locale", Value: locale},
			logger.Field{Key: "error", Value: err},
		)
		return domain.PlainText(record.Type)
	}
	return result.Text
}

func (s *Service) emit(ctx context.Context, topic string, payload any) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.Broadcast(ctx, broadcaster.Event{Topic: topic, Payload: payload}); err != nil {
		s.logger.Warn("manager: broadcast failed",
			logger.Field{Key: "topic", Value: topic},
			logger.Field{Key: "error", Value: err},
		)
	}
}

func (s *Service) record(operation, typ string) {
	if s.metrics == nil {
		return
	}
	labels := map[string]string{}
	if typ != "" {
		labels["type"] = typ
	}
	s.metrics.Record("manager."+operation, labels)
}

func errInvalidID(id int64) error {
	return goerrors.New("notification id must be a positive number", goerrors.CategoryValidation).
		WithTextCode(CodeInvalidID).
		WithMetadata(map[string]any{"id": id})
}

// typeMarkup lists characters a type code may not carry. The code doubles as
// fallback text and as {notification.type} in HTML widgets.
const typeMarkup = "<>&\"'"

func checkType(typ string) error {
	if typ == "" {
		return goerrors.New("notification type is required", goerrors.CategoryValidation).
			WithTextCode(CodeInvalidType)
	}
	if strings.ContainsAny(typ, typeMarkup) {
		return goerrors.New("notification type contains markup characters", goerrors.CategoryValidation).
			WithTextCode(CodeInvalidType).
			WithMetadata(map[string]any{"type": typ})
	}
	return nil
}

func lookupError(err error, id int64) error {
	if stderrors.Is(err, store.ErrNotFound) {
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "notification not found").
			WithTextCode(CodeNotFound).
			WithMetadata(map[string]any{"id": id})
	}
	var typed *goerrors.Error
	if goerrors.As(err, &typed) {
		return err
	}
	return storageError(err, "load notification")
}

func storageError(err error, op string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "manager: "+op).
		WithTextCode(CodeStorageFailure)
}
