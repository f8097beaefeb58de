package notifier

import (
	"context"

	i18n "github.com/goliatone/go-i18n"
	"github.com/goliatone/go-notification-list/internal/di"
	"github.com/goliatone/go-notification-list/pkg/activity"
	"github.com/goliatone/go-notification-list/pkg/commands"
	"github.com/goliatone/go-notification-list/pkg/config"
	"github.com/goliatone/go-notification-list/pkg/dateformat"
	"github.com/goliatone/go-notification-list/pkg/events"
	"github.com/goliatone/go-notification-list/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-notification-list/pkg/interfaces/logger"
	"github.com/goliatone/go-notification-list/pkg/interfaces/queue"
	"github.com/goliatone/go-notification-list/pkg/manager"
	"github.com/goliatone/go-notification-list/pkg/options"
	"github.com/goliatone/go-notification-list/pkg/preferences"
	"github.com/goliatone/go-notification-list/pkg/storage"
	"github.com/goliatone/go-notification-list/pkg/templates"
	"github.com/goliatone/go-notification-list/pkg/widget"
)

// ModuleOptions configure the notification list module facade.
type ModuleOptions struct {
	Config      config.Config
	Storage     storage.Providers
	Logger      logger.Logger
	Translator  i18n.Translator
	Messages    map[string]map[string]string
	Fallbacks   i18n.FallbackResolver
	Queue       queue.Queue
	Broadcaster broadcaster.Broadcaster
	Activity    activity.Hooks
	Formatter   dateformat.Formatter
	Preferences preferences.Store
}

// Module bundles the container and exposes high-level accessors.
type Module struct {
	container *di.Container
	widget    *widget.Widget
}

// NewModule assembles storage, the text compiler, manager, update events,
// commands and the configured list widget.
func NewModule(opts ModuleOptions) (*Module, error) {
	container, err := di.New(di.Options{
		Config:      opts.Config,
		Storage:     opts.Storage,
		Logger:      opts.Logger,
		Translator:  opts.Translator,
		Messages:    opts.Messages,
		Fallbacks:   opts.Fallbacks,
		Queue:       opts.Queue,
		Broadcaster: opts.Broadcaster,
		Activity:    opts.Activity,
		Formatter:   opts.Formatter,
		Preferences: opts.Preferences,
	})
	if err != nil {
		return nil, err
	}
	cfg := container.Config
	settings := append(widget.SettingsFromConfig(cfg.Widget), widget.WithLocale(cfg.Localization.DefaultLocale))
	w, err := widget.New(widget.Dependencies{
		Source:    container.Manager,
		Formatter: container.Formatter,
		Logger:    container.Logger,
	}, settings...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container, widget: w}, nil
}

// Manager returns the notification manager.
func (m *Module) Manager() *manager.Manager {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Manager
}

// Templates returns the notification type text compiler.
func (m *Module) Templates() *templates.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Templates
}

// Events returns the update event intake service.
func (m *Module) Events() *events.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Events
}

// Commands returns the go-command registry.
func (m *Module) Commands() *commands.Registry {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Commands
}

// Formatter returns the date formatter used by widgets.
func (m *Module) Formatter() dateformat.Formatter {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Formatter
}

// Widget returns the configured list widget, adjusted by opts.
func (m *Module) Widget(opts ...widget.Option) *widget.Widget {
	if m == nil {
		return nil
	}
	if len(opts) == 0 {
		return m.widget
	}
	return m.widget.With(opts...)
}

// Preferences returns the per-user widget preference service.
func (m *Module) Preferences() *preferences.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Preferences
}

// UserWidget returns a widget scoped to userID with the user's preference
// document layered over the configured widget settings. Preferences are
// shaped like options.WidgetSnapshot output, e.g. {"widget": {"empty_text": ...}}.
func (m *Module) UserWidget(userID int64, prefs map[string]any) (*widget.Widget, error) {
	if m == nil || m.container == nil {
		return nil, nil
	}
	overrides, err := preferences.Resolve(options.WidgetSnapshot(m.container.Config.Widget), prefs)
	if err != nil {
		return nil, err
	}
	opts := append(widget.OverrideOptions(overrides), widget.WithUserID(userID))
	return m.widget.With(opts...), nil
}

// WidgetFor returns userID's widget using the stored preferences.
func (m *Module) WidgetFor(ctx context.Context, userID int64) (*widget.Widget, error) {
	if m == nil || m.container == nil {
		return nil, nil
	}
	prefs, err := m.container.Preferences.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return m.UserWidget(userID, prefs)
}

// Render renders userID's notifications with the configured widget; nil
// renders every user.
func (m *Module) Render(ctx context.Context, userID *int64) (string, error) {
	return m.Widget().RenderFor(ctx, userID)
}

// Config returns the effective module configuration.
func (m *Module) Config() config.Config {
	if m == nil || m.container == nil {
		return config.Config{}
	}
	return m.container.Config
}

// Close releases background resources.
func (m *Module) Close() {
	if m == nil {
		return
	}
	m.container.Close()
}

// Container returns the internal DI container.
// This is exposed for advanced use cases like direct storage access.
func (m *Module) Container() *di.Container {
	if m == nil {
		return nil
	}
	return m.container
}
