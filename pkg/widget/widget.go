// Package widget exposes the notification list renderer.
package widget

import (
	"context"
	"errors"

	"github.com/goliatone/go-notification-list/internal/placeholders"
	"github.com/goliatone/go-notification-list/internal/widget"
	"github.com/goliatone/go-notification-list/pkg/config"
	"github.com/goliatone/go-notification-list/pkg/dateformat"
	"github.com/goliatone/go-notification-list/pkg/domain"
	"github.com/goliatone/go-notification-list/pkg/interfaces/logger"
	"github.com/goliatone/go-notification-list/pkg/options"
	"github.com/jaytaylor/html2text"
)

// Re-export commonly used types so callers don't depend on the internal package.
type (
	Settings          = widget.Settings
	Option            = widget.Option
	Source            = widget.Source
	LocaleSource      = widget.LocaleSource
	SourceFunc        = widget.SourceFunc
	ContainerTemplate = widget.ContainerTemplate
	ItemTemplate      = widget.ItemTemplate
	Section           = widget.Section
	ContainerFunc     = widget.ContainerFunc
	ItemFunc          = widget.ItemFunc
	SectionFunc       = widget.SectionFunc
	Stats             = widget.Stats
	Scope             = placeholders.Scope
)

var (
	ContainerText         = widget.ContainerText
	ContainerRender       = widget.ContainerRender
	ItemText              = widget.ItemText
	ItemRender            = widget.ItemRender
	SectionText           = widget.SectionText
	SectionResolver       = widget.SectionResolver
	DefaultSettings       = widget.DefaultSettings
	CountStats            = widget.CountStats
	WithContainerTemplate = widget.WithContainerTemplate
	WithItemTemplate      = widget.WithItemTemplate
	WithSection           = widget.WithSection
	WithSections          = widget.WithSections
	WithTimestampFormat   = widget.WithTimestampFormat
	WithListGlue          = widget.WithListGlue
	WithEmptyText         = widget.WithEmptyText
	WithUserID            = widget.WithUserID
	WithAllUsers          = widget.WithAllUsers
	WithLocale            = widget.WithLocale
	WithEscapeHTML        = widget.WithEscapeHTML
	WithSettings          = widget.WithSettings

	ErrSourceRequired = widget.ErrSourceRequired
)

// Dependencies wires the notification source, date formatter and logger.
type Dependencies struct {
	Source    Source
	Formatter dateformat.Formatter
	Logger    logger.Logger
}

// Widget renders notification lists.
type Widget struct {
	internal *widget.Renderer
}

var errWidgetNotInitialised = errors.New("widget: renderer not initialised")

// New constructs the façade.
func New(deps Dependencies, opts ...Option) (*Widget, error) {
	r, err := widget.New(widget.Dependencies{
		Source:    deps.Source,
		Formatter: deps.Formatter,
		Logger:    deps.Logger,
	}, opts...)
	if err != nil {
		return nil, err
	}
	return &Widget{internal: r}, nil
}

// With derives a widget with adjusted settings.
func (w *Widget) With(opts ...Option) *Widget {
	if w == nil || w.internal == nil {
		return w
	}
	return &Widget{internal: w.internal.With(opts...)}
}

// Settings returns a copy of the current settings.
func (w *Widget) Settings() Settings {
	if w == nil || w.internal == nil {
		return DefaultSettings()
	}
	return w.internal.Settings()
}

// Render renders the configured user's notifications.
func (w *Widget) Render(ctx context.Context) (string, error) {
	if w == nil || w.internal == nil {
		return "", errWidgetNotInitialised
	}
	return w.internal.Render(ctx)
}

// RenderFor renders userID's notifications; nil renders every user.
func (w *Widget) RenderFor(ctx context.Context, userID *int64) (string, error) {
	if w == nil || w.internal == nil {
		return "", errWidgetNotInitialised
	}
	return w.internal.RenderFor(ctx, userID)
}

// RenderNotifications renders an already fetched list.
func (w *Widget) RenderNotifications(list []domain.Notification) string {
	if w == nil || w.internal == nil {
		return ""
	}
	return w.internal.RenderNotifications(list)
}

// RenderNotification renders one notification through the item template.
func (w *Widget) RenderNotification(n domain.Notification) string {
	if w == nil || w.internal == nil {
		return ""
	}
	return w.internal.RenderNotification(n)
}

// RenderText renders like RenderFor and converts the HTML output to plain
// text.
func (w *Widget) RenderText(ctx context.Context, userID *int64) (string, error) {
	out, err := w.RenderFor(ctx, userID)
	if err != nil {
		return "", err
	}
	return PlainText(out)
}

// PlainText converts rendered HTML into readable plain text.
func PlainText(html string) (string, error) {
	return html2text.FromString(html, html2text.Options{PrettyTables: true})
}

// SettingsFromConfig maps the string-only configuration block onto settings.
func SettingsFromConfig(cfg config.WidgetConfig) []Option {
	opts := []Option{
		WithContainerTemplate(ContainerText(cfg.ContainerTemplate)),
		WithItemTemplate(ItemText(cfg.ItemTemplate)),
		WithTimestampFormat(cfg.TimestampFormat),
		WithListGlue(cfg.ListGlue),
		WithEmptyText(cfg.EmptyText),
	}
	for name, value := range cfg.Sections {
		opts = append(opts, WithSection(name, SectionText(value)))
	}
	if cfg.UserID != nil {
		opts = append(opts, WithUserID(*cfg.UserID))
	}
	return opts
}

// OverrideOptions turns layered overrides into options. Sections from the
// overrides are merged over the existing ones.
func OverrideOptions(o options.WidgetOverrides) []Option {
	var opts []Option
	if o.ContainerTemplate != nil {
		opts = append(opts, WithContainerTemplate(ContainerText(*o.ContainerTemplate)))
	}
	if o.ItemTemplate != nil {
		opts = append(opts, WithItemTemplate(ItemText(*o.ItemTemplate)))
	}
	if o.TimestampFormat != nil {
		opts = append(opts, WithTimestampFormat(*o.TimestampFormat))
	}
	if o.ListGlue != nil {
		opts = append(opts, WithListGlue(*o.ListGlue))
	}
	if o.EmptyText != nil {
		opts = append(opts, WithEmptyText(*o.EmptyText))
	}
	if o.Locale != nil {
		opts = append(opts, WithLocale(*o.Locale))
	}
	for name, value := range o.Sections {
		opts = append(opts, WithSection(name, SectionText(value)))
	}
	return opts
}
