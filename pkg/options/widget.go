package options

import (
	"github.com/goliatone/go-notification-list/pkg/config"
)

// Widget option paths inside a snapshot.
const (
	PathContainerTemplate = "widget.container_template"
	PathItemTemplate      = "widget.item_template"
	PathTimestampFormat   = "widget.timestamp_format"
	PathListGlue          = "widget.list_glue"
	PathEmptyText         = "widget.empty_text"
	PathSections          = "widget.sections"
	PathLocale            = "widget.locale"
)

// WidgetOverrides lists the widget settings set by any layer. Nil fields were
// not provided.
type WidgetOverrides struct {
	ContainerTemplate *string
	ItemTemplate      *string
	TimestampFormat   *string
	ListGlue          *string
	EmptyText         *string
	Locale            *string
	Sections          map[string]string
}

// WidgetSnapshot turns a widget config block into a snapshot payload.
func WidgetSnapshot(cfg config.WidgetConfig) map[string]any {
	widget := map[string]any{}
	put := func(key, value string) {
		if value != "" {
			widget[key] = value
		}
	}
	put("container_template", cfg.ContainerTemplate)
	put("item_template", cfg.ItemTemplate)
	put("timestamp_format", cfg.TimestampFormat)
	put("list_glue", cfg.ListGlue)
	put("empty_text", cfg.EmptyText)
	if len(cfg.Sections) > 0 {
		sections := make(map[string]any, len(cfg.Sections))
		for k, v := range cfg.Sections {
			sections[k] = v
		}
		widget["sections"] = sections
	}
	return map[string]any{"widget": widget}
}

// WidgetOverrides collects the widget settings present in the merged layers.
// Paths that are absent or of the wrong type are skipped.
func (r *Resolver) WidgetOverrides() WidgetOverrides {
	var out WidgetOverrides
	str := func(path string) *string {
		v, _, err := r.ResolveString(path)
		if err != nil {
			return nil
		}
		return &v
	}
	out.ContainerTemplate = str(PathContainerTemplate)
	out.ItemTemplate = str(PathItemTemplate)
	out.TimestampFormat = str(PathTimestampFormat)
	out.ListGlue = str(PathListGlue)
	out.EmptyText = str(PathEmptyText)
	out.Locale = str(PathLocale)
	if sections, _, err := r.ResolveStringMap(PathSections); err == nil {
		out.Sections = sections
	}
	return out
}
