package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-notification-list/pkg/domain"
	"github.com/goliatone/go-notification-list/pkg/events"
	"github.com/goliatone/go-notification-list/pkg/interfaces/store"
	"github.com/goliatone/go-notification-list/pkg/manager"
	"github.com/goliatone/go-notification-list/pkg/widget"
)

const maxPageSize = 200

// NotificationService is the manager surface used by the handlers.
type NotificationService interface {
	Notify(ctx context.Context, input manager.NotifyInput) (*domain.Notification, error)
	Get(ctx context.Context, id int64, locale string) (*domain.Notification, error)
	List(ctx context.Context, userID *int64, locale string, opts store.ListOptions) (store.ListResult[domain.Notification], error)
	MarkRead(ctx context.Context, userID int64, ids []int64, read bool) (int, error)
	MarkAllRead(ctx context.Context, userID int64) (int, error)
	Delete(ctx context.Context, id int64) error
	UnreadCount(ctx context.Context, userID *int64) (int, error)
}

// UpdateSubmitter applies update events now or later.
type UpdateSubmitter interface {
	SubmitAt(ctx context.Context, evt *events.UpdateNotification, runAt time.Time) error
}

// PreferenceService stores per-user widget preference documents.
type PreferenceService interface {
	Get(ctx context.Context, userID int64) (map[string]any, error)
	Set(ctx context.Context, userID int64, prefs map[string]any) error
	Delete(ctx context.Context, userID int64) error
}

// UserWidgetFunc returns the widget for one user, preferences applied.
type UserWidgetFunc func(ctx context.Context, userID int64) (*widget.Widget, error)

// Handler serves the notification endpoints.
type Handler struct {
	notifications NotificationService
	updates       UpdateSubmitter
	widget        *widget.Widget
	userWidget    UserWidgetFunc
	preferences   PreferenceService
}

// CreateRequest is the body of POST /notifications.
type CreateRequest struct {
	UserID    int64          `json:"user_id" validate:"required,gt=0"`
	Type      string         `json:"type" validate:"required"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// UpdateRequest is the body of PUT /notifications/{id}.
type UpdateRequest struct {
	Type  string         `json:"type" validate:"required"`
	Data  map[string]any `json:"data"`
	RunAt time.Time      `json:"run_at"`
}

// MarkReadRequest is the body of POST /notifications/read. All marks every
// notification of the user and ignores IDs.
type MarkReadRequest struct {
	UserID int64   `json:"user_id" validate:"required,gt=0"`
	IDs    []int64 `json:"ids" validate:"required_without=All,dive,gt=0"`
	Read   *bool   `json:"read"`
	All    bool    `json:"all"`
}

// ListEnvelope wraps JSON listings.
type ListEnvelope struct {
	Data   []domain.Notification `json:"data"`
	Total  int                   `json:"total"`
	Unread int                   `json:"unread"`
	Limit  int                   `json:"limit,omitempty"`
	Offset int                   `json:"offset,omitempty"`
}

// MarkReadEnvelope reports how many notifications changed.
type MarkReadEnvelope struct {
	Updated int `json:"updated"`
}

// Render handles GET /notifications. The widget output is HTML unless the
// client asks for text/plain.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	userID, err := optionalUserID(r)
	if err != nil {
		httpError(w, r, err)
		return
	}
	base := h.widget
	opts := []widget.Option{widget.WithAllUsers()}
	if userID != nil {
		opts = []widget.Option{widget.WithUserID(*userID)}
		if h.userWidget != nil {
			if base, err = h.userWidget(r.Context(), *userID); err != nil {
				httpError(w, r, err)
				return
			}
		}
	}
	if locale := strings.TrimSpace(r.URL.Query().Get("locale")); locale != "" {
		opts = append(opts, widget.WithLocale(locale))
	}
	plain := wantsPlainText(r)
	opts = append(opts, widget.WithEscapeHTML(!plain))
	out, err := base.With(opts...).Render(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	if plain {
		text, err := widget.PlainText(out)
		if err != nil {
			httpError(w, r, goerrors.Wrap(err, goerrors.CategoryInternal, "convert to plain text"))
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(text))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// List handles GET /notifications.json.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := optionalUserID(r)
	if err != nil {
		httpError(w, r, err)
		return
	}
	q := r.URL.Query()
	opts := store.ListOptions{UnreadOnly: q.Get("unread") == "true"}
	if opts.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		httpError(w, r, err)
		return
	}
	if opts.Offset, err = intParam(q.Get("offset"), "offset"); err != nil {
		httpError(w, r, err)
		return
	}
	if opts.Limit > maxPageSize {
		opts.Limit = maxPageSize
	}
	result, err := h.notifications.List(r.Context(), userID, strings.TrimSpace(q.Get("locale")), opts)
	if err != nil {
		httpError(w, r, err)
		return
	}
	unread, err := h.notifications.UnreadCount(r.Context(), userID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	items := result.Items
	if items == nil {
		items = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, ListEnvelope{
		Data:   items,
		Total:  result.Total,
		Unread: unread,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
}

// Get handles GET /notifications/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpError(w, r, err)
		return
	}
	n, err := h.notifications.Get(r.Context(), id, strings.TrimSpace(r.URL.Query().Get("locale")))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// Create handles POST /notifications.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	n, err := h.notifications.Notify(r.Context(), manager.NotifyInput{
		UserID:    req.UserID,
		Type:      req.Type,
		Data:      req.Data,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// Update handles PUT /notifications/{id} by submitting an update event. A
// future run_at answers 202 Accepted.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpError(w, r, err)
		return
	}
	var req UpdateRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	evt := events.NewUpdateNotification(id, req.Type, req.Data)
	if err := h.updates.SubmitAt(r.Context(), evt, req.RunAt); err != nil {
		httpError(w, r, err)
		return
	}
	if req.RunAt.After(time.Now().Add(time.Second)) {
		writeJSON(w, http.StatusAccepted, map[string]any{"id": id, "run_at": req.RunAt})
		return
	}
	n, err := h.notifications.Get(r.Context(), id, "")
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// MarkRead handles POST /notifications/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req MarkReadRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	read := true
	if req.Read != nil {
		read = *req.Read
	}
	var updated int
	var err error
	if req.All {
		updated, err = h.notifications.MarkAllRead(r.Context(), req.UserID)
	} else {
		updated, err = h.notifications.MarkRead(r.Context(), req.UserID, req.IDs, read)
	}
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MarkReadEnvelope{Updated: updated})
}

// Delete handles DELETE /notifications/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpError(w, r, err)
		return
	}
	if err := h.notifications.Delete(r.Context(), id); err != nil {
		httpError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPreferences handles GET /users/{user}/preferences.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		httpError(w, r, err)
		return
	}
	prefs, err := h.preferences.Get(r.Context(), userID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	if prefs == nil {
		prefs = map[string]any{}
	}
	writeJSON(w, http.StatusOK, prefs)
}

// PutPreferences handles PUT /users/{user}/preferences.
func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		httpError(w, r, err)
		return
	}
	var prefs map[string]any
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		httpError(w, r, goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed JSON body").
			WithTextCode("MALFORMED_BODY"))
		return
	}
	if err := h.preferences.Set(r.Context(), userID, prefs); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// DeletePreferences handles DELETE /users/{user}/preferences.
func (h *Handler) DeletePreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		httpError(w, r, err)
		return
	}
	if err := h.preferences.Delete(r.Context(), userID); err != nil {
		httpError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed JSON body").
			WithTextCode("MALFORMED_BODY")
	}
	return validateStruct(dst)
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, goerrors.New("notification id must be numeric", goerrors.CategoryValidation).
			WithTextCode("INVALID_ID").
			WithMetadata(map[string]any{"id": raw})
	}
	return id, nil
}

func pathUserID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "user")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, goerrors.New("user id must be a positive number", goerrors.CategoryValidation).
			WithTextCode("INVALID_USER_ID").
			WithMetadata(map[string]any{"user_id": raw})
	}
	return id, nil
}

func optionalUserID(r *http.Request) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, goerrors.New("user_id must be a positive number", goerrors.CategoryValidation).
			WithTextCode("INVALID_USER_ID").
			WithMetadata(map[string]any{"user_id": raw})
	}
	return &id, nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, goerrors.New(name+" must be a non-negative number", goerrors.CategoryValidation).
			WithTextCode("INVALID_" + strings.ToUpper(name))
	}
	return v, nil
}

func wantsPlainText(r *http.Request) bool {
	if r.URL.Query().Get("format") == "text" {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/plain") && !strings.Contains(accept, "text/html")
}
