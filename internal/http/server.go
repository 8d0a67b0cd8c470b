package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"projecthub/internal/backend"
	"projecthub/internal/dashboard"
	"projecthub/internal/forms"
	"projecthub/internal/log"
	"projecthub/internal/storage"
	appweb "projecthub/web"
)

// requestTimeout bounds every backend call made while serving a request.
const requestTimeout = 7 * time.Second

// ActivityReader lists the most recent journaled submissions.
type ActivityReader interface {
	ListRecent(ctx context.Context, limit int) ([]storage.Entry, error)
}

// journalHealth is implemented by activity sources backed by the journal.
type journalHealth interface {
	Ping(ctx context.Context) error
	Counts(ctx context.Context) (map[storage.Status]int, error)
}

// Deps are the collaborators the server renders and submits through.
type Deps struct {
	Backend backend.Backend
	// References caches the dialog reference lists. Defaults to a one
	// minute cache over Backend.
	References *backend.References
	// Submitter posts create actions. Defaults to Backend.
	Submitter forms.Submitter
	// Activity feeds the recent activity partial. Optional.
	Activity ActivityReader
}

type Server struct {
	http.Server
	templates *template.Template
	logger    *log.Logger

	backend   backend.Backend
	refs      *backend.References
	loader    *dashboard.Loader
	submitter forms.Submitter
	activity  ActivityReader
	started   time.Time

	rateLimiter *rateLimiter
	security    *securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	refs := deps.References
	if refs == nil {
		refs = backend.NewReferences(deps.Backend, 16, time.Minute)
	}
	submitter := deps.Submitter
	if submitter == nil {
		submitter = deps.Backend
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:      logger.WithComponent(log.ComponentHTTP),
		backend:     deps.Backend,
		refs:        refs,
		loader:      dashboard.NewLoader(deps.Backend, logger),
		submitter:   submitter,
		activity:    deps.Activity,
		started:     time.Now(),
		rateLimiter: newRateLimiter(submitLimit, submitWindow),
		security:    &securityMetrics{},
	}

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err)
	} else {
		s.templates = t
	}

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/activity", s.handleActivity)
	mux.HandleFunc("GET /ui/companies/{id}/projects", s.handleCompanyProjects)
	mux.HandleFunc("GET /ui/{tab}", s.handleTab)

	mux.HandleFunc("GET /forms/{kind}", s.handleDialog)
	mux.HandleFunc("POST /forms/{kind}/lines", s.handleLines)
	mux.HandleFunc("POST /forms/{kind}", s.handleSubmit)

	mux.HandleFunc("GET /export/analytics.xlsx", s.handleExportAnalytics)

	s.Handler = log.RequestMiddleware(logger, extractClientIP)(s.withSecurityHeaders(mux))
	return s
}

// withSecurityHeaders adds security headers and rate limits submissions.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		clientIP := extractClientIP(r)

		if reason := detectSuspiciousRequest(r, s.security); reason != "" {
			log.FromContext(ctx).WarnContext(ctx, "Suspicious request",
				log.FieldClientIP, clientIP,
				"reason", reason,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.security) {
			log.FromContext(ctx).WithComponent(log.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path)
			const msg = "Слишком много запросов, попробуйте через минуту"
			w.Header().Set("Retry-After", "60")
			ErrorResponse(http.StatusTooManyRequests, msg).TriggerErrorNotification(msg).Write(w)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// render executes a named template, logging and answering 500 on failure.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
			"template", name,
			log.FieldError, err)
	}
}
