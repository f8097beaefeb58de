// Package preferences stores per-user widget overrides and layers them over
// the configured widget settings.
package preferences

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-notification-list/pkg/config"
	"github.com/goliatone/go-notification-list/pkg/interfaces/logger"
	"github.com/goliatone/go-notification-list/pkg/options"
)

const (
	CodeInvalidUser        = "PREFERENCES_INVALID_USER"
	CodeInvalidPreferences = "PREFERENCES_INVALID"
)

var widgetKeys = map[string]bool{
	"container_template": true,
	"item_template":      true,
	"timestamp_format":   true,
	"list_glue":          true,
	"empty_text":         true,
	"locale":             true,
	"sections":           true,
}

// Dependencies wires the store, the base widget config and a logger.
type Dependencies struct {
	Store  Store
	Base   config.WidgetConfig
	Logger logger.Logger
}

// Service validates, persists and resolves widget preferences.
type Service struct {
	store  Store
	base   map[string]any
	logger logger.Logger
}

var errServiceNotInitialised = errors.New("preferences: service not initialised")

// New constructs the service. A nil store falls back to memory.
func New(deps Dependencies) *Service {
	if deps.Store == nil {
		deps.Store = NewMemoryStore()
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Service{
		store:  deps.Store,
		base:   options.WidgetSnapshot(deps.Base),
		logger: deps.Logger,
	}
}

// Get returns the stored document for userID, or nil.
func (s *Service) Get(ctx context.Context, userID int64) (map[string]any, error) {
	if s == nil {
		return nil, errServiceNotInitialised
	}
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, userID)
}

// Set replaces the document for userID after checking that it only carries
// known widget keys of the right type.
func (s *Service) Set(ctx context.Context, userID int64, prefs map[string]any) error {
	if s == nil {
		return errServiceNotInitialised
	}
	if err := checkUser(userID); err != nil {
		return err
	}
	if err := validate(prefs); err != nil {
		return err
	}
	if _, err := options.NewResolver(options.Snapshot{Scope: options.UserScope(), Data: prefs}); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "preferences: merge").
			WithTextCode(CodeInvalidPreferences)
	}
	if err := s.store.Put(ctx, userID, prefs); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "preferences: store")
	}
	s.logger.Debug("preferences: saved", logger.Field{Key: "user_id", Value: userID})
	return nil
}

// Delete drops the stored document for userID.
func (s *Service) Delete(ctx context.Context, userID int64) error {
	if s == nil {
		return errServiceNotInitialised
	}
	if err := checkUser(userID); err != nil {
		return err
	}
	return s.store.Delete(ctx, userID)
}

// Overrides merges userID's document over the base widget config.
func (s *Service) Overrides(ctx context.Context, userID int64) (options.WidgetOverrides, error) {
	if s == nil {
		return options.WidgetOverrides{}, errServiceNotInitialised
	}
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return options.WidgetOverrides{}, err
	}
	return Resolve(s.base, prefs)
}

// Resolve layers prefs over base, both shaped like options.WidgetSnapshot.
func Resolve(base, prefs map[string]any) (options.WidgetOverrides, error) {
	snapshots := []options.Snapshot{{Scope: options.SystemScope(), Data: base}}
	if len(prefs) > 0 {
		snapshots = append(snapshots, options.Snapshot{Scope: options.UserScope(), Data: prefs})
	}
	resolver, err := options.NewResolver(snapshots...)
	if err != nil {
		return options.WidgetOverrides{}, err
	}
	return resolver.WidgetOverrides(), nil
}

func checkUser(userID int64) error {
	if userID <= 0 {
		return goerrors.New("user id must be a positive number", goerrors.CategoryValidation).
			WithTextCode(CodeInvalidUser)
	}
	return nil
}

func validate(prefs map[string]any) error {
	invalid := func(msg string) error {
		return goerrors.New(msg, goerrors.CategoryValidation).WithTextCode(CodeInvalidPreferences)
	}
	for key := range prefs {
		if key != "widget" {
			return invalid(fmt.Sprintf("unknown preference %q", key))
		}
	}
	raw, ok := prefs["widget"]
	if !ok {
		return nil
	}
	widget, ok := raw.(map[string]any)
	if !ok {
		return invalid("widget preferences must be an object")
	}
	for key, value := range widget {
		if !widgetKeys[key] {
			return invalid(fmt.Sprintf("unknown widget preference %q", key))
		}
		if key == "sections" {
			sections, ok := value.(map[string]any)
			if !ok {
				return invalid("widget.sections must be an object")
			}
			for name, v := range sections {
				if _, ok := v.(string); !ok {
					return invalid(fmt.Sprintf("widget.sections.%s must be a string", name))
				}
			}
			continue
		}
		if _, ok := value.(string); !ok {
			return invalid(fmt.Sprintf("widget.%s must be a string", key))
		}
	}
	return nil
}
