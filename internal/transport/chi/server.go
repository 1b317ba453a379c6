// Package chi serves the search API over HTTP with a chi router.
package chi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/derekjytan/xai/internal/domain"
	logpkg "github.com/derekjytan/xai/internal/logger"
	"github.com/derekjytan/xai/internal/metrics"
	cataloguc "github.com/derekjytan/xai/internal/usecase/catalog"
	healthuc "github.com/derekjytan/xai/internal/usecase/health"
	ingestuc "github.com/derekjytan/xai/internal/usecase/ingest"
	searchuc "github.com/derekjytan/xai/internal/usecase/search"
)

// maxBodyBytes caps request bodies; a post is at most a few KB.
const maxBodyBytes = 1 << 20

// Server holds the HTTP handlers.
type Server struct {
	search       *searchuc.Service
	catalog      *cataloguc.Service
	ingest       *ingestuc.Service
	health       *healthuc.Service
	defaultLimit int
	logger       *zap.Logger
}

// NewServer creates an HTTP API server. defaultLimit is the page size of
// searches that do not set one.
func NewServer(
	search *searchuc.Service,
	catalog *cataloguc.Service,
	ingest *ingestuc.Service,
	health *healthuc.Service,
	defaultLimit int,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:       search,
		catalog:      catalog,
		ingest:       ingest,
		health:       health,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// Handler returns the router with the full middleware stack.
func (s *Server) Handler(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())
	r.Use(embeddingUsageMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Route("/search", func(r chi.Router) {
		r.Get("/", s.SearchGet)
		r.Post("/", s.SearchPost)
		r.Get("/suggestions", s.Suggestions)
	})
	r.Post("/ask", s.Ask)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", s.ListPosts)
		r.Post("/", s.CreatePost)
		r.Get("/{post_id}", s.GetPost)
	})
	r.Get("/stats", s.Stats)

	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// log returns the request-scoped logger installed by wideEventMiddleware.
func (s *Server) log(r *http.Request) *zap.Logger {
	return logpkg.FromContext(r.Context())
}

// embeddingUsageMiddleware installs a per-request token collector and reports
// it in X-Embedding-Tokens once the handler writes its status.
func embeddingUsageMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, usage := domain.NewContextWithUsage(r.Context())
		next.ServeHTTP(&usageWriter{ResponseWriter: w, usage: usage}, r.WithContext(ctx))
	})
}

type usageWriter struct {
	http.ResponseWriter
	usage       *domain.EmbeddingUsage
	wroteHeader bool
}

func (w *usageWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		if w.usage.Used {
			w.Header().Set("X-Embedding-Tokens", strconv.Itoa(w.usage.TotalTokens))
		}
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *usageWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b) //nolint:wrapcheck // delegating to underlying ResponseWriter
}
