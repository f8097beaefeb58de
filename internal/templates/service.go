// Package templates compiles the display text of notification types. Each
// type carries one template or a map of keyed templates rendered with
// go-template and the go-i18n "t" helper.
package templates

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	i18n "github.com/goliatone/go-i18n"
	"github.com/goliatone/go-notification-list/pkg/domain"
	gotemplate "github.com/goliatone/go-template"
	"github.com/microcosm-cc/bluemonday"
)

// Service coordinates type registration + text compilation with
// locale-aware fallbacks.
type Service struct {
	renderer      *gotemplate.Engine
	registry      *registry
	helpers       *helperRegistry
	translator    i18n.Translator
	fallbacks     i18n.FallbackResolver
	sanitizer     *bluemonday.Policy
	defaultLocale string
	localeKey     string
	renderMu      sync.Mutex
}

// CompileRequest names the type, locale and payload to compile.
type CompileRequest struct {
	Code   string
	Locale string
	Data   map[string]any
}

// CompileResult carries the compiled text and the locale that served it.
type CompileResult struct {
	Text         domain.CompiledText
	Locale       string
	UsedFallback bool
}

type serviceOptions struct {
	defaultLocale  string
	fallbacks      i18n.FallbackResolver
	helperFuncs    []map[string]any
	rendererOpts   []gotemplate.Option
	missingHandler i18n.MissingTranslationHandler
	localeKey      string
	sanitizer      *bluemonday.Policy
}

// Option configures the template service.
type Option func(*serviceOptions)

// WithDefaultLocale overrides the locale used when lookups do not provide one.
func WithDefaultLocale(locale string) Option {
	return func(so *serviceOptions) {
		so.defaultLocale = locale
	}
}

// WithFallbackResolver wires a locale fallback resolver (e.g., es-MX -> es -> en).
func WithFallbackResolver(resolver i18n.FallbackResolver) Option {
	return func(so *serviceOptions) {
		so.fallbacks = resolver
	}
}

// WithHelperFuncs registers additional helper functions with the renderer.
func WithHelperFuncs(funcs map[string]any) Option {
	return func(so *serviceOptions) {
		if len(funcs) == 0 {
			return
		}
		so.helperFuncs = append(so.helperFuncs, funcs)
	}
}

// WithRendererOptions forwards options directly to go-template's renderer.
func WithRendererOptions(opts ...gotemplate.Option) Option {
	return func(so *serviceOptions) {
		so.rendererOpts = append(so.rendererOpts, opts...)
	}
}

// WithLocaleKey customizes the key injected into the data map to expose the locale.
func WithLocaleKey(key string) Option {
	return func(so *serviceOptions) {
		if key == "" {
			return
		}
		so.localeKey = key
	}
}

// WithMissingTranslationHandler customizes how go-i18n helpers surface missing keys.
func WithMissingTranslationHandler(handler i18n.MissingTranslationHandler) Option {
	return func(so *serviceOptions) {
		so.missingHandler = handler
	}
}

// WithSanitizer filters every compiled string through policy.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(so *serviceOptions) {
		so.sanitizer = policy
	}
}

// DefaultSanitizer allows the basic inline formatting notifications use.
func DefaultSanitizer() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("b", "strong", "i", "em", "u", "span", "br", "code")
	policy.AllowAttrs("href").OnElements("a")
	policy.AllowStandardURLs()
	policy.AllowAttrs("class").Globally()
	return policy
}

// NewService builds the template service wiring the helper registry,
// renderer, and localization translator together.
func NewService(translator i18n.Translator, opts ...Option) (*Service, error) {
	if translator == nil {
		return nil, ErrTranslatorRequired
	}

	settings := serviceOptions{
		localeKey: "locale",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}

	defaultLocale := strings.TrimSpace(settings.defaultLocale)
	if defaultLocale == "" {
		if provider, ok := translator.(interface{ DefaultLocale() string }); ok {
			defaultLocale = provider.DefaultLocale()
		}
	}
	if defaultLocale == "" {
		defaultLocale = "en"
	}

	rendererOpts := []gotemplate.Option{
		gotemplate.WithBaseDir("."),
	}
	rendererOpts = append(rendererOpts, settings.rendererOpts...)

	renderer, err := gotemplate.NewRenderer(rendererOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRendererConfig, err)
	}

	service := &Service{
		renderer:      renderer,
		registry:      newRegistry(),
		helpers:       newHelperRegistry(renderer),
		translator:    translator,
		fallbacks:     settings.fallbacks,
		sanitizer:     settings.sanitizer,
		defaultLocale: defaultLocale,
		localeKey:     settings.localeKey,
	}

	helperCfg := i18n.HelperConfig{
		LocaleKey:         service.localeKey,
		TemplateHelperKey: "t",
		OnMissing:         settings.missingHandler,
	}
	service.helpers.Register(i18n.TemplateHelpers(translator, helperCfg))
	service.helpers.Register(defaultHelperFuncs())

	for _, funcs := range settings.helperFuncs {
		service.helpers.Register(funcs)
	}

	return service, nil
}

// DefaultLocale returns the locale used when a request names none.
func (s *Service) DefaultLocale() string {
	if s == nil {
		return ""
	}
	return s.defaultLocale
}

// RegisterTypes loads type definitions. Invalid definitions are rejected
// without registering any of the batch.
func (s *Service) RegisterTypes(_ context.Context, defs ...domain.TypeDefinition) error {
	if s == nil {
		return ErrRendererConfig
	}
	for _, def := range defs {
		if err := validateDefinition(def); err != nil {
			return err
		}
	}
	for _, def := range defs {
		s.registry.Upsert(def)
	}
	return nil
}

// HasType reports whether code has at least one registered variant.
func (s *Service) HasType(code string) bool {
	if s == nil {
		return false
	}
	return s.registry.Has(code)
}

// Types lists the registered type codes.
func (s *Service) Types() []string {
	if s == nil {
		return nil
	}
	return s.registry.Codes()
}

// RegisterHelpers adds helper functions to the underlying renderer.
func (s *Service) RegisterHelpers(funcs map[string]any) {
	if s == nil {
		return
	}
	s.helpers.Register(funcs)
}

// Compile resolves the type variant for the requested locale and renders
// its text with data.
func (s *Service) Compile(ctx context.Context, req CompileRequest) (CompileResult, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return CompileResult{}, err
		}
	}
	if s == nil {
		return CompileResult{}, ErrRendererConfig
	}

	def, resolvedLocale, err := s.registry.Resolve(req.Code, s.localeChain(req.Locale))
	if err != nil {
		return CompileResult{}, err
	}

	payload := cloneData(req.Data)
	payload[s.localeKey] = resolvedLocale

	requested := strings.TrimSpace(req.Locale)
	if requested == "" {
		requested = s.defaultLocale
	}
	result := CompileResult{
		Locale:       resolvedLocale,
		UsedFallback: !strings.EqualFold(resolvedLocale, requested),
	}

	if def.Text.Templates == nil {
		text, err := s.render(def.Code, "", def.Text.Template, payload)
		if err != nil {
			return CompileResult{}, err
		}
		result.Text = domain.PlainText(text)
		return result, nil
	}

	keys := make([]string, 0, len(def.Text.Templates))
	for key := range def.Text.Templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fields := make(map[string]string, len(keys))
	for _, key := range keys {
		text, err := s.render(def.Code, key, def.Text.Templates[key], payload)
		if err != nil {
			return CompileResult{}, err
		}
		fields[key] = text
	}
	result.Text = domain.FieldText(fields)
	return result, nil
}

func (s *Service) render(code, field, tpl string, payload map[string]any) (string, error) {
	s.renderMu.Lock()
	out, err := s.renderer.RenderString(tpl, payload)
	s.renderMu.Unlock()
	if err != nil {
		return "", RenderError{Code: code, Field: field, Err: err}
	}
	if s.sanitizer != nil {
		out = s.sanitizer.Sanitize(out)
	}
	return out, nil
}

func (s *Service) localeChain(requested string) []string {
	chain := make([]string, 0, 4)
	appendUnique := func(locale string) {
		if locale == "" {
			return
		}
		for _, existing := range chain {
			if strings.EqualFold(existing, locale) {
				return
			}
		}
		chain = append(chain, locale)
	}

	appendUnique(requested)
	if s.fallbacks != nil && requested != "" {
		for _, fb := range s.fallbacks.Resolve(requested) {
			appendUnique(fb)
		}
	}
	appendUnique(s.defaultLocale)
	appendUnique("en")
	return chain
}

// Helpers lists the helper functions available to type templates.
func (s *Service) Helpers() []string {
	if s == nil {
		return nil
	}
	return s.helpers.Names()
}
