package chi

import (
	"encoding/json"
	"net/http"

	"github.com/derekjytan/xai/internal/domain/search/request"
	searchuc "github.com/derekjytan/xai/internal/usecase/search"
)

// SearchGet handles GET /search.
func (s *Server) SearchGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, ok := queryInt(q, "limit", s.defaultLimit)
	if !ok {
		invalidParam(w, "limit", q.Get("limit"))
		return
	}
	offset, ok := queryInt(q, "offset", 0)
	if !ok {
		invalidParam(w, "offset", q.Get("offset"))
		return
	}
	includeSummary, ok := queryBool(q, "include_summary", true)
	if !ok {
		invalidParam(w, "include_summary", q.Get("include_summary"))
		return
	}
	enhance, ok := queryBool(q, "enhance_query", true)
	if !ok {
		invalidParam(w, "enhance_query", q.Get("enhance_query"))
		return
	}

	from, err := parseTime("date_from", optString(q.Get("date_from")))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	to, err := parseTime("date_to", optString(q.Get("date_to")))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	s.runSearch(w, r, request.Params{
		Query:          q.Get("q"),
		Limit:          limit,
		Offset:         offset,
		SortBy:         q.Get("sort_by"),
		SortOrder:      q.Get("sort_order"),
		Author:         q.Get("author"),
		Sentiment:      q.Get("sentiment"),
		DateFrom:       from,
		DateTo:         to,
		IncludeSummary: includeSummary,
		EnhanceQuery:   enhance,
		Mode:           q.Get("mode"),
	})
}

// SearchPost handles POST /search.
func (s *Server) SearchPost(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		badRequest(w, "Invalid request body: "+err.Error())
		return
	}

	from, err := parseTime("date_from", req.DateFrom)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	to, err := parseTime("date_to", req.DateTo)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	s.runSearch(w, r, request.Params{
		Query:          req.Query,
		Limit:          deref(req.Limit, s.defaultLimit),
		Offset:         req.Offset,
		SortBy:         req.SortBy,
		SortOrder:      req.SortOrder,
		Author:         req.AuthorFilter,
		Sentiment:      req.SentimentFilter,
		DateFrom:       from,
		DateTo:         to,
		IncludeSummary: deref(req.IncludeSummary, true),
		EnhanceQuery:   deref(req.EnhanceQuery, true),
		Mode:           req.SearchMode,
	})
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, p request.Params) {
	req, err := request.New(p)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchToResponse(resp))
}

// Suggestions handles GET /search/suggestions.
func (s *Server) Suggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, ok := queryInt(q, "limit", searchuc.DefaultSuggestions)
	if !ok {
		invalidParam(w, "limit", q.Get("limit"))
		return
	}

	suggestions, err := s.search.Suggestions(r.Context(), q.Get("q"), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: nonNil(suggestions)})
}

// Ask handles POST /ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		badRequest(w, "Invalid request body: "+err.Error())
		return
	}

	answer, err := s.search.Ask(r.Context(), req.Question)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answerToResponse(answer))
}
