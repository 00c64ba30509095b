// Package httpapi is the JSON-over-HTTP transport: chi routing, middleware,
// session cookie handling and the mapping of service errors to responses.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// AuthService is the subset of services.AuthService used by handlers.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	RequestCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) (*services.Session, error)
}

// NoteService is the subset of services.NoteService used by handlers.
type NoteService interface {
	List(ctx context.Context, userID string) ([]*models.Note, error)
	Create(ctx context.Context, userID, title, content string) (*models.Note, error)
	Get(ctx context.Context, userID, id string) (*models.Note, error)
	Update(ctx context.Context, userID, id, title, content string) (*models.Note, error)
	Delete(ctx context.Context, userID, id string) error
}

// Options configures the router.
type Options struct {
	Cookie         auth.CookieOptions
	CORSOrigins    []string
	RequestTimeout time.Duration
	Gatherer       prometheus.Gatherer
	Metrics        *HTTPMetrics
	Logger         logging.Logger
}

// Handler holds handler dependencies.
type Handler struct {
	auth   AuthService
	notes  NoteService
	cookie auth.CookieOptions
	logger logging.Logger
}

// NewRouter builds the full HTTP handler, including tracing.
func NewRouter(as AuthService, ns NoteService, sessions SessionParser, opts Options) http.Handler {
	h := &Handler{
		auth:   as,
		notes:  ns,
		cookie: opts.Cookie,
		logger: opts.Logger.With("module", "http"),
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	// cors treats an empty origin list as "*", so no origins means no CORS.
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/sign-up", h.signUp)
		r.Post("/request-otp", h.requestOTP)
		r.Post("/verify-otp", h.verifyOTP)
		r.Post("/sign-out", h.signOut)
		r.With(requireSession(sessions, opts.Cookie.Name)).Get("/session", h.session)
	})

	r.Route("/api/notes", func(r chi.Router) {
		r.Use(requireSession(sessions, opts.Cookie.Name))
		r.Get("/", h.listNotes)
		r.Post("/", h.createNote)
		r.Get("/{id}", h.getNote)
		r.Put("/{id}", h.updateNote)
		r.Delete("/{id}", h.deleteNote)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return otelhttp.NewHandler(r, "notekeeper.http")
}

// fail writes the public form of err and logs unexpected failures.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error, notFound string) {
	status, msg, unexpected := errorStatus(err, notFound)
	if unexpected {
		h.logger.Error(r.Context(), "request failed", "op", op, "error", err,
			"request_id", middleware.GetReqID(r.Context()))
	}
	writeError(w, status, msg)
}
