package main

import (
	"context"
	"time"

	"github.com/goliatone/go-notification-list/pkg/commands"
	"github.com/goliatone/go-notification-list/pkg/domain"
)

var seedTypes = []domain.TypeDefinition{
	{Code: "welcome", Text: domain.TextSpec{Template: "Welcome aboard, {{ name }}!"}},
	{Code: "order.shipped", Text: domain.TextSpec{
		Template: "Order {{ order }} has shipped",
		Templates: map[string]string{
			"title": "Shipping update",
			"body":  "Order {{ order }} left the warehouse",
		},
	}},
	{Code: "comment.mention", Text: domain.TextSpec{Template: "{{ author }} mentioned you"}},
}

// seed registers demo types and creates a few notifications for userID through
// the command catalog.
func seed(ctx context.Context, registry *commands.Registry, userID int64) error {
	if err := registry.RegisterTypes.Execute(ctx, commands.RegisterTypes{Definitions: seedTypes}); err != nil {
		return err
	}
	now := time.Now().UTC()
	msgs := []commands.CreateNotification{
		{UserID: userID, Type: "welcome", Data: map[string]any{"name": "friend"}, Timestamp: now.Add(-2 * time.Hour)},
		{UserID: userID, Type: "order.shipped", Data: map[string]any{"order": "A-1001"}, Timestamp: now.Add(-time.Hour)},
		{UserID: userID, Type: "comment.mention", Data: map[string]any{"author": "Ada"}, Timestamp: now},
	}
	for _, msg := range msgs {
		if err := registry.CreateNotification.Execute(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}
