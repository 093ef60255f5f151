package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	applog "subboard/internal/log"
	"subboard/internal/middleware/ratelimit"
	"subboard/internal/middleware/security"
	"subboard/internal/middleware/trace"
	"subboard/internal/services"
	appweb "subboard/web"
)

// Deps are the collaborators the server renders from.
type Deps struct {
	Reports   *services.ReportService
	Directory *services.DirectoryService
	Favorites *services.FavoritesService

	// Ping checks the data backend for /readyz. Nil means always ready.
	Ping func(context.Context) error

	Logger             *applog.Logger
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	templates *template.Template
	reports   *services.ReportService
	directory *services.DirectoryService
	favorites *services.FavoritesService
	ping      func(context.Context) error
	logger    *applog.Logger

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	detector := security.NewDetector()
	s := &Server{
		reports:     deps.Reports,
		directory:   deps.Directory,
		favorites:   deps.Favorites,
		ping:        deps.Ping,
		logger:      logger,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		detector:    detector,
		tracer:      trace.NewMiddleware(logger, detector.ExtractClientIP),
		started:     time.Now(),
	}

	t, err := parseTemplates()
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.tracer.Middleware(handler)
	handler = detector.Middleware(logger.Logger.With(applog.FieldComponent, applog.ComponentSecurity))(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	limited := s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /reports/{id}", s.handleReportPage)

	// UI partials
	mux.HandleFunc("GET /ui/reports", s.handleDirectoryPartial)
	mux.HandleFunc("GET /ui/reports/{id}", s.handleReportPartial)
	mux.Handle("POST /ui/favorites/{id}", limited(http.HandlerFunc(s.handleToggleFavorite)))
	mux.Handle("POST /ui/filters/clear", limited(http.HandlerFunc(s.handleClearFilters)))

	// JSON
	mux.HandleFunc("GET /api/reports", s.handleAPIReports)
	mux.HandleFunc("GET /api/reports/{id}/data", s.handleAPIReportData)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again later.").Write(w)
}

// Shutdown stops the rate limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// Close stops background goroutines without serving. Used by tests.
func (s *Server) Close() error {
	s.rateLimiter.Stop()
	return s.Server.Close()
}
