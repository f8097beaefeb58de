package commands

import (
	command "github.com/goliatone/go-command"
	internalcommands "github.com/goliatone/go-notification-list/internal/commands"
	"github.com/goliatone/go-notification-list/pkg/events"
	"github.com/goliatone/go-notification-list/pkg/interfaces/logger"
	"github.com/goliatone/go-notification-list/pkg/manager"
	"github.com/goliatone/go-notification-list/pkg/templates"
)

// Re-export request types so consumers need not import internal packages.
type (
	CreateNotification = internalcommands.CreateNotification
	UpdateNotification = internalcommands.UpdateNotification
	MarkRead           = internalcommands.MarkRead
	MarkAllRead        = internalcommands.MarkAllRead
	DeleteNotification = internalcommands.DeleteNotification
	RegisterTypes      = internalcommands.RegisterTypes
)

// Registry exposes go-command compatible handlers backed by the module services.
type Registry struct {
	Catalog            *internalcommands.Catalog
	CreateNotification command.Commander[CreateNotification]
	UpdateNotification command.Commander[UpdateNotification]
	MarkRead           command.Commander[MarkRead]
	MarkAllRead        command.Commander[MarkAllRead]
	DeleteNotification command.Commander[DeleteNotification]
	RegisterTypes      command.Commander[RegisterTypes]
}

// Dependencies mirror the internal command dependencies but keep them public.
type Dependencies struct {
	Manager *manager.Manager
	Events  *events.Service
	Types   *templates.Service
	Logger  logger.Logger
}

// New builds the registry using the provided dependencies.
func New(deps Dependencies) (*Registry, error) {
	internalDeps := internalcommands.Dependencies{Logger: deps.Logger}
	if deps.Manager != nil {
		internalDeps.Manager = deps.Manager
	}
	if deps.Events != nil {
		internalDeps.Events = deps.Events
	}
	if deps.Types != nil {
		internalDeps.Types = deps.Types
	}
	catalog, err := internalcommands.NewCatalog(internalDeps)
	if err != nil {
		return nil, err
	}
	return &Registry{
		Catalog:            catalog,
		CreateNotification: catalog.CreateNotification,
		UpdateNotification: catalog.UpdateNotification,
		MarkRead:           catalog.MarkRead,
		MarkAllRead:        catalog.MarkAllRead,
		DeleteNotification: catalog.DeleteNotification,
		RegisterTypes:      catalog.RegisterTypes,
	}, nil
}

// Commanders returns every handler so callers can register them with go-command registries.
func (r *Registry) Commanders() []any {
	if r == nil {
		return nil
	}
	return []any{
		r.CreateNotification,
		r.UpdateNotification,
		r.MarkRead,
		r.MarkAllRead,
		r.DeleteNotification,
		r.RegisterTypes,
	}
}
