package widget

import (
	"fmt"
	"html"
	"strconv"

	"github.com/goliatone/go-notification-list/internal/placeholders"
	"github.com/goliatone/go-notification-list/pkg/domain"
)

const (
	rootText         = "text"
	rootNotification = "notification"
)

// itemScope resolves {text}, {text.<key>} and {notification.<field>} for one
// notification. No other root is visible to item templates.
type itemScope struct {
	n      *domain.Notification
	escape bool
}

var _ placeholders.Scope = itemScope{}

func (s itemScope) Lookup(path string) (string, bool) {
	root, rest := placeholders.SplitPath(path)
	switch root {
	case rootText:
		if rest == "" {
			return s.n.Text.String(), true
		}
		return s.n.Text.Field(rest)
	case rootNotification:
		if rest == "" {
			return "", false
		}
		v, ok := notificationField(s.n, rest)
		if ok && s.escape {
			v = html.EscapeString(v)
		}
		return v, ok
	default:
		return "", false
	}
}

func notificationField(n *domain.Notification, field string) (string, bool) {
	switch field {
	case "id":
		return strconv.FormatInt(n.ID, 10), true
	case "type":
		return n.Type, true
	case "user_id", "userId":
		return strconv.FormatInt(n.UserID, 10), true
	case "timestamp":
		return strconv.FormatInt(n.Timestamp.Unix(), 10), true
	case "is_read", "isRead", "read":
		return strconv.FormatBool(n.IsRead), true
	case "text":
		return n.Text.String(), true
	}
	v, ok := n.Data[field]
	if !ok || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	case map[string]any, []any:
		return "", false
	default:
		return fmt.Sprint(val), true
	}
}
