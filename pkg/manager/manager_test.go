package manager

import (
	"context"
	"testing"

	"github.com/goliatone/go-notification-list/internal/storage/memory"
	"github.com/goliatone/go-notification-list/pkg/domain"
	"github.com/goliatone/go-notification-list/pkg/interfaces/logger"
	"github.com/goliatone/go-notification-list/pkg/templates"
)

func TestManagerFacadeCompilesTextOnRead(t *testing.T) {
	translator, err := templates.NewTranslator("en", nil)
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	texts, err := templates.New(templates.Dependencies{
		Translator:    translator,
		DefaultLocale: "en",
		Types: []domain.TypeDefinition{
			{Code: "order_shipped", Text: domain.TextSpec{Template: "Order {{ order }} shipped"}},
		},
	})
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	mgr, err := New(Dependencies{
		Repository: memory.NewNotificationRepository(),
		Texts:      texts,
		Logger:     &logger.Nop{},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	ctx := context.Background()
	created, err := mgr.Notify(ctx, NotifyInput{UserID: 9, Type: "order_shipped", Data: map[string]any{"order": "A-1"}})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := mgr.Update(ctx, created.ID, "order_shipped", map[string]any{"order": "B-2"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	user := int64(9)
	items, err := mgr.GetNotifications(ctx, &user)
	if err != nil {
		t.Fatalf("get notifications: %v", err)
	}
	if len(items) != 1 || items[0].Text.String() != "Order B-2 shipped" {
		t.Fatalf("unexpected notifications %+v", items)
	}
}

func TestNilManagerReportsNotInitialised(t *testing.T) {
	var mgr *Manager
	if err := mgr.Update(context.Background(), 1, "x", nil); err != errManagerNotInitialised {
		t.Fatalf("expected not initialised error, got %v", err)
	}
}
