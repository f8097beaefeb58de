package di

import (
	"context"
	"reflect"

	i18n "github.com/goliatone/go-i18n"
	"github.com/goliatone/go-notification-list/pkg/activity"
	"github.com/goliatone/go-notification-list/pkg/commands"
	"github.com/goliatone/go-notification-list/pkg/config"
	"github.com/goliatone/go-notification-list/pkg/dateformat"
	"github.com/goliatone/go-notification-list/pkg/events"
	"github.com/goliatone/go-notification-list/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-notification-list/pkg/interfaces/logger"
	"github.com/goliatone/go-notification-list/pkg/interfaces/queue"
	"github.com/goliatone/go-notification-list/pkg/manager"
	"github.com/goliatone/go-notification-list/pkg/preferences"
	"github.com/goliatone/go-notification-list/pkg/retry"
	"github.com/goliatone/go-notification-list/pkg/storage"
	"github.com/goliatone/go-notification-list/pkg/templates"
)

// Options configure the DI container.
type Options struct {
	Config     config.Config
	Storage    storage.Providers
	Logger     logger.Logger
	Translator i18n.Translator
	// Messages seeds a static translator when Translator is nil.
	Messages    map[string]map[string]string
	Fallbacks   i18n.FallbackResolver
	Queue       queue.Queue
	Broadcaster broadcaster.Broadcaster
	Activity    activity.Hooks
	Formatter   dateformat.Formatter
	Preferences preferences.Store
}

// Container wires repositories, services, commands, preferences and the
// date formatter.
type Container struct {
	Config      config.Config
	Storage     storage.Providers
	Logger      logger.Logger
	Templates   *templates.Service
	Manager     *manager.Manager
	Events      *events.Service
	Commands    *commands.Registry
	Formatter   dateformat.Formatter
	Queue       queue.Queue
	Preferences *preferences.Service

	timer *queue.Timer
}

func isZeroConfig(cfg config.Config) bool {
	return reflect.ValueOf(cfg).IsZero()
}

// New constructs the container using the supplied options.
func New(opts Options) (*Container, error) {
	cfg := opts.Config
	if isZeroConfig(cfg) {
		cfg = config.Defaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	providers := opts.Storage
	if providers.Notifications == nil {
		providers = storage.NewMemoryProviders()
	}

	lgr := opts.Logger
	if lgr == nil {
		lgr = &logger.Nop{}
	}

	b := opts.Broadcaster
	if b == nil || !cfg.Realtime.Enabled {
		b = &broadcaster.Nop{}
	}

	translator := opts.Translator
	if translator == nil {
		var err error
		translator, err = templates.NewTranslator(cfg.Localization.DefaultLocale, opts.Messages)
		if err != nil {
			return nil, err
		}
	}
	fallbacks := opts.Fallbacks
	if fallbacks == nil && len(cfg.Localization.Fallbacks) > 0 {
		fallbacks = templates.NewFallbackResolver(cfg.Localization.Fallbacks)
	}

	tplSvc, err := templates.New(templates.Dependencies{
		Logger:        lgr,
		Translator:    translator,
		Fallbacks:     fallbacks,
		DefaultLocale: cfg.Localization.DefaultLocale,
		Sanitize:      cfg.Templates.SanitizeEnabled(),
		Types:         cfg.Templates.Types,
	})
	if err != nil {
		return nil, err
	}

	var metrics manager.Metrics
	if providers.Metrics != nil {
		metrics = providers.Metrics
	}
	mgr, err := manager.New(manager.Dependencies{
		Repository:  providers.Notifications,
		Transaction: providers.Transaction,
		Texts:       tplSvc,
		Broadcaster: b,
		Logger:      lgr,
		Activity:    opts.Activity,
		Metrics:     metrics,
	})
	if err != nil {
		return nil, err
	}

	var eventSvc *events.Service
	var timer *queue.Timer
	q := opts.Queue
	if q == nil {
		timer = queue.NewTimer(func(ctx context.Context, job queue.Job) error {
			return eventSvc.HandleJob(ctx, job)
		}, nil)
		q = timer
	}
	eventSvc, err = events.New(events.Dependencies{
		Updater: mgr,
		Queue:   q,
		Logger:  lgr,
		Retry:   retry.DefaultPolicy(),
	})
	if err != nil {
		return nil, err
	}

	cmdRegistry, err := commands.New(commands.Dependencies{
		Manager: mgr,
		Events:  eventSvc,
		Types:   tplSvc,
		Logger:  lgr,
	})
	if err != nil {
		return nil, err
	}

	formatter := opts.Formatter
	if formatter == nil {
		formatter = dateformat.New(
			dateformat.WithLocale(cfg.Localization.DefaultLocale),
			dateformat.WithLocation(cfg.Location()),
		)
	}

	prefs := preferences.New(preferences.Dependencies{
		Store:  opts.Preferences,
		Base:   cfg.Widget,
		Logger: lgr,
	})

	return &Container{
		Config:      cfg,
		Storage:     providers,
		Logger:      lgr,
		Templates:   tplSvc,
		Manager:     mgr,
		Events:      eventSvc,
		Commands:    cmdRegistry,
		Formatter:   formatter,
		Queue:       q,
		Preferences: prefs,
		timer:       timer,
	}, nil
}

// Close stops deferred updates that are still pending in the built-in queue.
func (c *Container) Close() {
	if c == nil || c.timer == nil {
		return
	}
	c.timer.Close()
}
