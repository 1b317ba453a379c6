package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	cataloguc "github.com/derekjytan/xai/internal/usecase/catalog"
	healthuc "github.com/derekjytan/xai/internal/usecase/health"
	"github.com/derekjytan/xai/internal/version"
)

// ListPosts handles GET /posts.
func (s *Server) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, ok := queryInt(q, "limit", cataloguc.DefaultPageSize)
	if !ok {
		invalidParam(w, "limit", q.Get("limit"))
		return
	}
	offset, ok := queryInt(q, "offset", 0)
	if !ok {
		invalidParam(w, "offset", q.Get("offset"))
		return
	}

	page, err := s.catalog.List(r.Context(), q.Get("author"), limit, offset)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToResponse(page))
}

// GetPost handles GET /posts/{post_id}.
func (s *Server) GetPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.Get(r.Context(), chi.URLParam(r, "post_id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postToResponse(&p))
}

// CreatePost handles POST /posts.
func (s *Server) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		badRequest(w, "Invalid request body: "+err.Error())
		return
	}

	p, err := req.toDomain()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := s.ingest.Add(r.Context(), &p); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, postToResponse(&p))
}

// Stats handles GET /stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.catalog.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsToResponse(st))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  checks,
	})
}
