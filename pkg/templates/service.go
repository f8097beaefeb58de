// Package templates exposes the notification type text compiler.
package templates

import (
	"context"
	"errors"
	"strings"

	i18n "github.com/goliatone/go-i18n"
	internaltemplates "github.com/goliatone/go-notification-list/internal/templates"
	"github.com/goliatone/go-notification-list/pkg/domain"
	"github.com/goliatone/go-notification-list/pkg/interfaces/logger"
)

// CompileRequest maps to the internal compile request payload.
type CompileRequest = internaltemplates.CompileRequest

// CompileResult wraps the compiled text returned by the internal service.
type CompileResult = internaltemplates.CompileResult

// ErrTypeNotFound is returned when no variant exists for a type code.
var ErrTypeNotFound = internaltemplates.ErrTypeNotFound

// Service compiles the display text of notification types.
type Service struct {
	logger logger.Logger
	engine *internaltemplates.Service
}

// Dependencies wires the translator and the initial type definitions.
type Dependencies struct {
	Logger        logger.Logger
	Translator    i18n.Translator
	Fallbacks     i18n.FallbackResolver
	DefaultLocale string
	// Sanitize filters compiled text through the default HTML policy.
	Sanitize bool
	Types    []domain.TypeDefinition
}

var errTranslatorRequired = errors.New("templates: translator is required")

// New instantiates the templates facade using the provided dependencies.
func New(deps Dependencies) (*Service, error) {
	if deps.Translator == nil {
		return nil, errTranslatorRequired
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}

	opts := []internaltemplates.Option{
		internaltemplates.WithDefaultLocale(strings.TrimSpace(deps.DefaultLocale)),
		internaltemplates.WithFallbackResolver(deps.Fallbacks),
	}
	if deps.Sanitize {
		opts = append(opts, internaltemplates.WithSanitizer(internaltemplates.DefaultSanitizer()))
	}
	engine, err := internaltemplates.NewService(deps.Translator, opts...)
	if err != nil {
		return nil, err
	}

	svc := &Service{logger: deps.Logger, engine: engine}
	if len(deps.Types) > 0 {
		if err := svc.RegisterTypes(context.Background(), deps.Types...); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// RegisterTypes adds or replaces type definitions.
func (s *Service) RegisterTypes(ctx context.Context, defs ...domain.TypeDefinition) error {
	if s == nil {
		return errTranslatorRequired
	}
	if err := s.engine.RegisterTypes(ctx, defs...); err != nil {
		return err
	}
	s.logger.Debug("templates: registered types", logger.Field{Key: "count", Value: len(defs)})
	return nil
}

// RegisterHelpers exposes helper registration to callers.
func (s *Service) RegisterHelpers(funcs map[string]any) {
	if s == nil {
		return
	}
	s.engine.RegisterHelpers(funcs)
}

// HasType reports whether code is registered.
func (s *Service) HasType(code string) bool {
	return s != nil && s.engine.HasType(code)
}

// Types lists the registered type codes.
func (s *Service) Types() []string {
	if s == nil {
		return nil
	}
	return s.engine.Types()
}

// DefaultLocale returns the locale used when none is requested.
func (s *Service) DefaultLocale() string {
	if s == nil {
		return ""
	}
	return s.engine.DefaultLocale()
}

// Compile renders the text of the type named by code for locale.
func (s *Service) Compile(ctx context.Context, code, locale string, data map[string]any) (CompileResult, error) {
	if s == nil {
		return CompileResult{}, errTranslatorRequired
	}
	return s.engine.Compile(ctx, CompileRequest{Code: code, Locale: locale, Data: data})
}

// NewTranslator builds a static go-i18n translator from locale -> key ->
// message maps.
func NewTranslator(defaultLocale string, messages map[string]map[string]string) (i18n.Translator, error) {
	translations := make(i18n.Translations, len(messages))
	for locale, entries := range messages {
		catalog := &i18n.TranslationCatalog{
			Locale:   i18n.Locale{Code: locale},
			Messages: make(map[string]i18n.Message, len(entries)),
		}
		for key, content := range entries {
			msg := i18n.Message{}
			msg.SetContent(content)
			catalog.Messages[key] = msg
		}
		translations[locale] = catalog
	}
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	if _, ok := translations[defaultLocale]; !ok {
		translations[defaultLocale] = &i18n.TranslationCatalog{
			Locale:   i18n.Locale{Code: defaultLocale},
			Messages: map[string]i18n.Message{},
		}
	}
	return i18n.NewSimpleTranslator(i18n.NewStaticStore(translations), i18n.WithTranslatorDefaultLocale(defaultLocale))
}

// NewFallbackResolver builds a static resolver from locale -> chain.
func NewFallbackResolver(chains map[string][]string) i18n.FallbackResolver {
	resolver := i18n.NewStaticFallbackResolver()
	for locale, chain := range chains {
		resolver.Set(locale, chain...)
	}
	return resolver
}
