package widget

import (
	"github.com/goliatone/go-notification-list/internal/placeholders"
	"github.com/goliatone/go-notification-list/pkg/domain"
)

const (
	DefaultContainerTemplate = "{notifications}{emptyText}"
	DefaultItemTemplate      = "{notification.type} at {timestamp}"
	DefaultTimestampFormat   = "php:m/d/Y H:i:s"
	DefaultListGlue          = "\n"
	DefaultEmptyText         = "No notifications available."
)

// ContainerFunc renders the whole list, bypassing placeholder processing.
type ContainerFunc func(notifications []domain.Notification, settings Settings) string

// ItemFunc renders one notification, bypassing placeholder processing.
type ItemFunc func(notification domain.Notification, settings Settings) string

// SectionFunc computes a section value at render time.
type SectionFunc func(scope placeholders.Scope, settings Settings) string

// ContainerTemplate is either a template string or a ContainerFunc.
type ContainerTemplate struct {
	text string
	fn   ContainerFunc
}

// ContainerText builds a string container template.
func ContainerText(s string) ContainerTemplate { return ContainerTemplate{text: s} }

// ContainerRender builds a function container template.
func ContainerRender(fn ContainerFunc) ContainerTemplate { return ContainerTemplate{fn: fn} }

// Text returns the template string; empty for function templates.
func (c ContainerTemplate) Text() string { return c.text }

// IsFunc reports whether the template is a function.
func (c ContainerTemplate) IsFunc() bool { return c.fn != nil }

// ItemTemplate is either a template string or an ItemFunc.
type ItemTemplate struct {
	text string
	fn   ItemFunc
}

// ItemText builds a string item template.
func ItemText(s string) ItemTemplate { return ItemTemplate{text: s} }

// ItemRender builds a function item template.
func ItemRender(fn ItemFunc) ItemTemplate { return ItemTemplate{fn: fn} }

func (i ItemTemplate) Text() string { return i.text }

func (i ItemTemplate) IsFunc() bool { return i.fn != nil }

// Section is a named value usable as {section.<name>}: a literal or a
// SectionFunc.
type Section struct {
	literal string
	fn      SectionFunc
}

// SectionText builds a literal section.
func SectionText(s string) Section { return Section{literal: s} }

// SectionResolver builds a computed section.
func SectionResolver(fn SectionFunc) Section { return Section{fn: fn} }

func (s Section) IsFunc() bool { return s.fn != nil }

// Settings is the renderer configuration. Every render works on its own copy.
type Settings struct {
	Container       ContainerTemplate
	Item            ItemTemplate
	Sections        map[string]Section
	TimestampFormat string
	ListGlue        string
	EmptyText       string
	// UserID filters notifications; nil renders every user's notifications.
	UserID *int64
	Locale string
	// EscapeHTML escapes {notification.<field>} values. Compiled text is left
	// as the type compiler produced it.
	EscapeHTML bool
}

// DefaultSettings returns the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		Container:       ContainerText(DefaultContainerTemplate),
		Item:            ItemText(DefaultItemTemplate),
		Sections:        map[string]Section{},
		TimestampFormat: DefaultTimestampFormat,
		ListGlue:        DefaultListGlue,
		EmptyText:       DefaultEmptyText,
	}
}

// Clone returns a copy that shares no mutable state with s.
func (s Settings) Clone() Settings {
	out := s
	out.Sections = make(map[string]Section, len(s.Sections))
	for k, v := range s.Sections {
		out.Sections[k] = v
	}
	if s.UserID != nil {
		id := *s.UserID
		out.UserID = &id
	}
	return out
}

// Option mutates settings while a renderer is built.
type Option func(*Settings)

func WithContainerTemplate(tpl ContainerTemplate) Option {
	return func(s *Settings) { s.Container = tpl }
}

func WithItemTemplate(tpl ItemTemplate) Option {
	return func(s *Settings) { s.Item = tpl }
}

// WithSection registers or replaces one section.
func WithSection(name string, section Section) Option {
	return func(s *Settings) {
		if s.Sections == nil {
			s.Sections = map[string]Section{}
		}
		s.Sections[name] = section
	}
}

// WithSections replaces the whole section set.
func WithSections(sections map[string]Section) Option {
	return func(s *Settings) {
		s.Sections = make(map[string]Section, len(sections))
		for k, v := range sections {
			s.Sections[k] = v
		}
	}
}

func WithTimestampFormat(spec string) Option {
	return func(s *Settings) { s.TimestampFormat = spec }
}

func WithListGlue(glue string) Option {
	return func(s *Settings) { s.ListGlue = glue }
}

func WithEmptyText(text string) Option {
	return func(s *Settings) { s.EmptyText = text }
}

// WithUserID restricts rendering to one user's notifications.
func WithUserID(id int64) Option {
	return func(s *Settings) { s.UserID = &id }
}

// WithAllUsers clears the user filter.
func WithAllUsers() Option {
	return func(s *Settings) { s.UserID = nil }
}

// WithEscapeHTML toggles escaping of notification fields for HTML output.
func WithEscapeHTML(on bool) Option {
	return func(s *Settings) { s.EscapeHTML = on }
}

func WithLocale(locale string) Option {
	return func(s *Settings) { s.Locale = locale }
}

// WithSettings replaces the full configuration.
func WithSettings(settings Settings) Option {
	return func(s *Settings) { *s = settings.Clone() }
}
