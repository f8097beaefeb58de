// Package dateformat renders timestamps from format specs written as PHP
// date() letters, strftime directives or Go layouts.
//
// A spec is selected by prefix:
//
//	"php:m/d/Y"           PHP date() letters (also the default without prefix)
//	"strftime:%Y-%m-%d"   C strftime directives
//	"go:2006-01-02"       Go reference layout
//	"short", "medium", "long", "full"   named presets
package dateformat

import (
	"strings"
	"time"

	"github.com/goodsign/monday"
	"github.com/ncruces/go-strftime"
)

const (
	PrefixPHP      = "php:"
	PrefixStrftime = "strftime:"
	PrefixGo       = "go:"

	// DefaultSpec is used when an empty spec is supplied.
	DefaultSpec = "php:m/d/Y H:i:s"
)

var presets = map[string]string{
	"short":  "php:m/d/Y",
	"medium": "php:M j, Y g:i A",
	"long":   "php:F j, Y g:i:s A T",
	"full":   "php:l, F j, Y g:i:s A T",
}

// Formatter renders a timestamp according to a format spec.
type Formatter interface {
	FormatDate(t time.Time, spec string) string
}

// Localizer is implemented by formatters that can produce a variant bound to
// another locale.
type Localizer interface {
	ForLocale(locale string) Formatter
}

// Func adapts a plain function to Formatter.
type Func func(t time.Time, spec string) string

func (f Func) FormatDate(t time.Time, spec string) string { return f(t, spec) }

// Option customises a DateFormatter.
type Option func(*DateFormatter)

// WithLocale sets the locale used for month and weekday names.
func WithLocale(locale string) Option {
	return func(f *DateFormatter) {
		f.locale = resolveLocale(locale)
	}
}

// WithLocation converts timestamps into loc before formatting.
func WithLocation(loc *time.Location) Option {
	return func(f *DateFormatter) {
		if loc != nil {
			f.location = loc
		}
	}
}

// DateFormatter is the default Formatter. It is safe for concurrent use.
type DateFormatter struct {
	locale   monday.Locale
	location *time.Location
}

var (
	_ Formatter = (*DateFormatter)(nil)
	_ Localizer = (*DateFormatter)(nil)
)

// New builds a formatter. Defaults to en_US names in UTC.
func New(opts ...Option) *DateFormatter {
	f := &DateFormatter{
		locale:   monday.LocaleEnUS,
		location: time.UTC,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// ForLocale returns a copy of the formatter bound to locale.
func (f *DateFormatter) ForLocale(locale string) Formatter {
	next := *f
	next.locale = resolveLocale(locale)
	return &next
}

// FormatDate renders t according to spec.
func (f *DateFormatter) FormatDate(t time.Time, spec string) string {
	if f == nil {
		f = New()
	}
	t = t.In(f.location)
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = DefaultSpec
	}
	if preset, ok := presets[spec]; ok {
		spec = preset
	}
	switch {
	case strings.HasPrefix(spec, PrefixStrftime):
		return strftime.Format(strings.TrimPrefix(spec, PrefixStrftime), t)
	case strings.HasPrefix(spec, PrefixGo):
		return monday.Format(t, strings.TrimPrefix(spec, PrefixGo), f.locale)
	default:
		return formatPHP(t, strings.TrimPrefix(spec, PrefixPHP), f.locale)
	}
}

var localeAliases = map[string]monday.Locale{
	"en": monday.LocaleEnUS,
	"de": monday.LocaleDeDE,
	"fr": monday.LocaleFrFR,
	"es": monday.LocaleEsES,
	"it": monday.LocaleItIT,
	"pt": monday.LocalePtPT,
	"nl": monday.LocaleNlNL,
	"ru": monday.LocaleRuRU,
}

func resolveLocale(locale string) monday.Locale {
	code := strings.ReplaceAll(strings.TrimSpace(locale), "-", "_")
	if code == "" {
		return monday.LocaleEnUS
	}
	if alias, ok := localeAliases[strings.ToLower(code)]; ok {
		return alias
	}
	lang, region, found := strings.Cut(code, "_")
	if !found {
		return monday.Locale(strings.ToLower(lang))
	}
	return monday.Locale(strings.ToLower(lang) + "_" + strings.ToUpper(region))
}
