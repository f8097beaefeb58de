package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-notification-list/pkg/domain"
	"github.com/goliatone/go-notification-list/pkg/events"
	"github.com/goliatone/go-notification-list/pkg/interfaces/logger"
	"github.com/goliatone/go-notification-list/pkg/manager"
)

// Catalog exposes go-command compatible handlers for host transports.
type Catalog struct {
	CreateNotification command.Commander[CreateNotification]
	UpdateNotification command.Commander[UpdateNotification]
	MarkRead           command.Commander[MarkRead]
	MarkAllRead        command.Commander[MarkAllRead]
	DeleteNotification command.Commander[DeleteNotification]
	RegisterTypes      command.Commander[RegisterTypes]
}

type notificationService interface {
	Notify(ctx context.Context, input manager.NotifyInput) (*domain.Notification, error)
	MarkRead(ctx context.Context, userID int64, ids []int64, read bool) (int, error)
	MarkAllRead(ctx context.Context, userID int64) (int, error)
	Delete(ctx context.Context, id int64) error
}

type eventService interface {
	SubmitAt(ctx context.Context, evt *events.UpdateNotification, runAt time.Time) error
}

type typeRegistry interface {
	RegisterTypes(ctx context.Context, defs ...domain.TypeDefinition) error
}

// Dependencies wires services into the command catalog.
type Dependencies struct {
	Manager notificationService
	Events  eventService
	Types   typeRegistry
	Logger  logger.Logger
}

// NewCatalog builds the command catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Manager == nil {
		return nil, errors.New("commands: manager is required")
	}
	if deps.Events == nil {
		return nil, errors.New("commands: events service is required")
	}
	if deps.Types == nil {
		return nil, errors.New("commands: type registry is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}

	return &Catalog{
		CreateNotification: createCommand{svc: deps.Manager, logger: deps.Logger},
		UpdateNotification: updateCommand{events: deps.Events},
		MarkRead:           markReadCommand{svc: deps.Manager},
		MarkAllRead:        markAllReadCommand{svc: deps.Manager},
		DeleteNotification: deleteCommand{svc: deps.Manager},
		RegisterTypes:      registerTypesCommand{types: deps.Types},
	}, nil
}

// CreateNotification request payload.
type CreateNotification struct {
	UserID    int64          `json:"user_id"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

type createCommand struct {
	svc    notificationService
	logger logger.Logger
}

func (c createCommand) Execute(ctx context.Context, msg CreateNotification) error {
	record, err := c.svc.Notify(ctx, manager.NotifyInput{
		UserID:    msg.UserID,
		Type:      msg.Type,
		Data:      msg.Data,
		Timestamp: msg.Timestamp,
	})
	if err != nil {
		return err
	}
	c.logger.Debug("commands: notification created", logger.Field{Key: "id", Value: record.ID})
	return nil
}

// UpdateNotification replaces type and data of notification ID, optionally
// at a later time.
type UpdateNotification struct {
	ID    int64          `json:"id"`
	Type  string         `json:"type"`
	Data  map[string]any `json:"data"`
	RunAt time.Time      `json:"run_at"`
}

type updateCommand struct {
	events eventService
}

func (c updateCommand) Execute(ctx context.Context, msg UpdateNotification) error {
	return c.events.SubmitAt(ctx, events.NewUpdateNotification(msg.ID, msg.Type, msg.Data), msg.RunAt)
}

// MarkRead request payload.
type MarkRead struct {
	UserID int64   `json:"user_id"`
	IDs    []int64 `json:"ids"`
	Read   bool    `json:"read"`
}

type markReadCommand struct {
	svc notificationService
}

func (c markReadCommand) Execute(ctx context.Context, msg MarkRead) error {
	_, err := c.svc.MarkRead(ctx, msg.UserID, msg.IDs, msg.Read)
	return err
}

// MarkAllRead flags every notification of a user as read.
type MarkAllRead struct {
	UserID int64 `json:"user_id"`
}

type markAllReadCommand struct {
	svc notificationService
}

func (c markAllReadCommand) Execute(ctx context.Context, msg MarkAllRead) error {
	_, err := c.svc.MarkAllRead(ctx, msg.UserID)
	return err
}

// DeleteNotification removes a notification.
type DeleteNotification struct {
	ID int64 `json:"id"`
}

type deleteCommand struct {
	svc notificationService
}

func (c deleteCommand) Execute(ctx context.Context, msg DeleteNotification) error {
	return c.svc.Delete(ctx, msg.ID)
}

// RegisterTypes adds or replaces notification type text definitions.
type RegisterTypes struct {
	Definitions []domain.TypeDefinition `json:"definitions"`
}

type registerTypesCommand struct {
	types typeRegistry
}

func (c registerTypesCommand) Execute(ctx context.Context, msg RegisterTypes) error {
	if len(msg.Definitions) == 0 {
		return errors.New("commands: at least one definition is required")
	}
	for i := range msg.Definitions {
		msg.Definitions[i].Code = strings.TrimSpace(msg.Definitions[i].Code)
	}
	return c.types.RegisterTypes(ctx, msg.Definitions...)
}
