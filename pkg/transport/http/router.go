// Package httptransport serves the notification list and its management
// endpoints over HTTP.
package httptransport

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goliatone/go-notification-list/pkg/config"
	"github.com/goliatone/go-notification-list/pkg/interfaces/logger"
	"github.com/goliatone/go-notification-list/pkg/widget"
	"golang.org/x/time/rate"
)

// Dependencies wires the services behind the router.
type Dependencies struct {
	Notifications NotificationService
	Updates       UpdateSubmitter
	Widget        *widget.Widget
	// UserWidget and Preferences are optional. Without Preferences the
	// preference routes are not mounted.
	UserWidget  UserWidgetFunc
	Preferences PreferenceService
	Logger      logger.Logger
	Config      config.HTTPConfig
}

// Router is the chi router plus the resources it owns.
type Router struct {
	chi.Router
	limiter *RateLimiter
}

var (
	errNotificationsRequired = errors.New("http: notification service is required")
	errUpdatesRequired       = errors.New("http: update submitter is required")
	errWidgetRequired        = errors.New("http: widget is required")
)

// NewRouter builds the HTTP routes:
//
//	GET    /healthz
//	GET    /notifications            rendered widget (HTML or text/plain)
//	GET    /notifications.json       JSON listing
//	POST   /notifications            create
//	POST   /notifications/read       mark read
//	GET    /notifications/{id}       one notification
//	PUT    /notifications/{id}       update event
//	DELETE /notifications/{id}       soft delete
//	GET    /users/{user}/preferences widget preferences
//	PUT    /users/{user}/preferences
//	DELETE /users/{user}/preferences
func NewRouter(deps Dependencies) (*Router, error) {
	if deps.Notifications == nil {
		return nil, errNotificationsRequired
	}
	if deps.Updates == nil {
		return nil, errUpdatesRequired
	}
	if deps.Widget == nil {
		return nil, errWidgetRequired
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}

	h := &Handler{
		notifications: deps.Notifications,
		updates:       deps.Updates,
		widget:        deps.Widget,
		userWidget:    deps.UserWidget,
		preferences:   deps.Preferences,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	if len(deps.Config.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.Config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	writes := func(next http.Handler) http.Handler { return next }
	var limiter *RateLimiter
	if deps.Config.WriteRateLimit > 0 {
		burst := deps.Config.WriteBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = NewRateLimiter(rate.Limit(deps.Config.WriteRateLimit), burst)
		writes = limiter.Limit
	}

	r.Get("/healthz", h.Health)
	r.Get("/notifications", h.Render)
	r.Get("/notifications.json", h.List)
	r.Get("/notifications/{id}", h.Get)
	r.Group(func(r chi.Router) {
		r.Use(writes)
		r.Post("/notifications", h.Create)
		r.Post("/notifications/read", h.MarkRead)
		r.Put("/notifications/{id}", h.Update)
		r.Delete("/notifications/{id}", h.Delete)
		if h.preferences != nil {
			r.Put("/users/{user}/preferences", h.PutPreferences)
			r.Delete("/users/{user}/preferences", h.DeletePreferences)
		}
	})
	if h.preferences != nil {
		r.Get("/users/{user}/preferences", h.GetPreferences)
	}

	return &Router{Router: r, limiter: limiter}, nil
}

// Close stops background work owned by the router.
func (r *Router) Close() {
	if r != nil && r.limiter != nil {
		r.limiter.Stop()
	}
}

func requestLogger(lgr logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			lgr.Debug("http: request",
				logger.Field{Key: "method", Value: r.Method},
				logger.Field{Key: "path", Value: r.URL.Path},
				logger.Field{Key: "status", Value: ww.Status()},
				logger.Field{Key: "request_id", Value: chimiddleware.GetReqID(r.Context())},
			)
		})
	}
}

func requestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	return chimiddleware.GetReqID(r.Context())
}
