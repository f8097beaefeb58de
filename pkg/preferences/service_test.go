package preferences

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-notification-list/pkg/config"
	"github.com/google/go-cmp/cmp"
)

func newService() *Service {
	return New(Dependencies{Base: config.WidgetConfig{
		EmptyText: "Nothing",
		Sections:  map[string]string{"title": "Inbox"},
	}})
}

func TestSetAndOverrides(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	err := svc.Set(ctx, 7, map[string]any{
		"widget": map[string]any{
			"item_template": "<li>{text}</li>",
			"sections":      map[string]any{"footer": "bye"},
		},
	})
	if err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := svc.Overrides(ctx, 7)
	if err != nil {
		t.Fatalf("overrides: %v", err)
	}
	if got.EmptyText == nil || *got.EmptyText != "Nothing" {
		t.Fatalf("expected base empty text, got %v", got.EmptyText)
	}
	if got.ItemTemplate == nil || *got.ItemTemplate != "<li>{text}</li>" {
		t.Fatalf("expected user item template, got %v", got.ItemTemplate)
	}
	if diff := cmp.Diff(map[string]string{"title": "Inbox", "footer": "bye"}, got.Sections); diff != "" {
		t.Fatalf("unexpected sections (-want +got):\n%s", diff)
	}
}

func TestOverridesWithoutPreferences(t *testing.T) {
	got, err := newService().Overrides(context.Background(), 9)
	if err != nil {
		t.Fatalf("overrides: %v", err)
	}
	if got.ItemTemplate != nil {
		t.Fatalf("expected no item template, got %q", *got.ItemTemplate)
	}
	if got.EmptyText == nil || *got.EmptyText != "Nothing" {
		t.Fatalf("expected base empty text")
	}
}

func TestSetRejectsInvalidDocuments(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	cases := map[string]map[string]any{
		"unknown root":    {"theme": "dark"},
		"widget not map":  {"widget": "x"},
		"unknown key":     {"widget": map[string]any{"color": "red"}},
		"wrong type":      {"widget": map[string]any{"empty_text": 3}},
		"section type":    {"widget": map[string]any{"sections": map[string]any{"title": 1}}},
		"sections layout": {"widget": map[string]any{"sections": "x"}},
	}
	for name, prefs := range cases {
		err := svc.Set(ctx, 1, prefs)
		if !goerrors.IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}

	if err := svc.Set(ctx, 0, nil); !goerrors.IsValidation(err) {
		t.Fatalf("expected validation error for user 0, got %v", err)
	}
	if prefs, _ := svc.Get(ctx, 1); prefs != nil {
		t.Fatalf("expected nothing stored, got %v", prefs)
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	doc := map[string]any{"widget": map[string]any{"empty_text": "a"}}
	if err := store.Put(ctx, 1, doc); err != nil {
		t.Fatalf("put: %v", err)
	}
	doc["widget"].(map[string]any)["empty_text"] = "b"

	got, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["widget"].(map[string]any)["empty_text"] != "a" {
		t.Fatalf("store shares caller map: %v", got)
	}

	if err := store.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := store.Get(ctx, 1); got != nil {
		t.Fatalf("expected deleted document, got %v", got)
	}
}
