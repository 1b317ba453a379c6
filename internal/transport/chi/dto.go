package chi

import (
	"time"

	"github.com/derekjytan/xai/internal/domain/analysis"
	"github.com/derekjytan/xai/internal/domain/post"
	"github.com/derekjytan/xai/internal/domain/search/result"
	"github.com/derekjytan/xai/internal/domain/searchlog"
	"github.com/derekjytan/xai/internal/repository/corpus"
	cataloguc "github.com/derekjytan/xai/internal/usecase/catalog"
	searchuc "github.com/derekjytan/xai/internal/usecase/search"
)

// SearchRequest is the POST /search body. Pointer fields distinguish
// "absent" from the zero value so defaults can apply.
type SearchRequest struct {
	Query           string  `json:"query"`
	Limit           *int    `json:"limit,omitempty"`
	Offset          int     `json:"offset"`
	SortBy          string  `json:"sort_by"`
	SortOrder       string  `json:"sort_order"`
	AuthorFilter    string  `json:"author_filter"`
	DateFrom        *string `json:"date_from,omitempty"`
	DateTo          *string `json:"date_to,omitempty"`
	SentimentFilter string  `json:"sentiment_filter"`
	IncludeSummary  *bool   `json:"include_summary,omitempty"`
	EnhanceQuery    *bool   `json:"enhance_query,omitempty"`
	SearchMode      string  `json:"search_mode"`
}

// AskRequest is the POST /ask body.
type AskRequest struct {
	Question string `json:"question"`
}

// CreatePostRequest is the POST /posts body.
type CreatePostRequest struct {
	PostID            string   `json:"post_id"`
	AuthorUsername    string   `json:"author_username"`
	AuthorDisplayName string   `json:"author_display_name"`
	Content           string   `json:"content"`
	Likes             int64    `json:"likes"`
	Retweets          int64    `json:"retweets"`
	Replies           int64    `json:"replies"`
	Views             int64    `json:"views"`
	PostedAt          *string  `json:"posted_at,omitempty"`
	MediaURLs         []string `json:"media_urls,omitempty"`
}

// PostResponse is the public shape of a post. Embeddings are never exposed.
type PostResponse struct {
	ID                int64      `json:"id"`
	PostID            string     `json:"post_id"`
	AuthorUsername    string     `json:"author_username"`
	AuthorDisplayName *string    `json:"author_display_name"`
	Content           string     `json:"content"`
	Likes             int64      `json:"likes"`
	Retweets          int64      `json:"retweets"`
	Replies           int64      `json:"replies"`
	Views             int64      `json:"views"`
	PostedAt          *time.Time `json:"posted_at"`
	ScrapedAt         time.Time  `json:"scraped_at"`
	AIDescription     *string    `json:"ai_description"`
	AITopics          []string   `json:"ai_topics"`
	AISentiment       *string    `json:"ai_sentiment"`
	AIEntities        []string   `json:"ai_entities"`
	HasMedia          bool       `json:"has_media"`
	MediaURLs         []string   `json:"media_urls"`
}

// SearchResultItem is a post with the scores of the retrievers that found it.
type SearchResultItem struct {
	PostResponse
	RelevanceScore  *float64 `json:"relevance_score,omitempty"`
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
	CombinedScore   *float64 `json:"combined_score,omitempty"`
	FTSRank         *int     `json:"fts_rank,omitempty"`
	VectorRank      *int     `json:"vector_rank,omitempty"`
}

// SearchResponse is the result of GET and POST /search.
type SearchResponse struct {
	Query         string                  `json:"query"`
	EnhancedQuery *string                 `json:"enhanced_query"`
	QueryAnalysis *analysis.QueryAnalysis `json:"query_analysis"`
	Results       []SearchResultItem      `json:"results"`
	TotalCount    int                     `json:"total_count"`
	Limit         int                     `json:"limit"`
	Offset        int                     `json:"offset"`
	Summary       *analysis.Summary       `json:"summary"`
}

// SuggestionsResponse is the result of GET /search/suggestions.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// AskResponse is the result of POST /ask.
type AskResponse struct {
	Question      string                  `json:"question"`
	Answer        string                  `json:"answer"`
	Sources       []SearchResultItem      `json:"sources"`
	QueryAnalysis *analysis.QueryAnalysis `json:"query_analysis"`
}

// PostListResponse is the result of GET /posts.
type PostListResponse struct {
	Posts  []PostResponse `json:"posts"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// AuthorCount is one entry of StatsResponse.TopAuthors.
type AuthorCount struct {
	Username  string `json:"username"`
	PostCount int    `json:"post_count"`
}

// RecentSearch is one entry of StatsResponse.RecentSearches.
type RecentSearch struct {
	Query       string    `json:"query"`
	Intent      *string   `json:"intent"`
	ResultCount int       `json:"result_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// StatsResponse is the result of GET /stats.
type StatsResponse struct {
	TotalPosts            int            `json:"total_posts"`
	TotalAuthors          int            `json:"total_authors"`
	TotalSearches         int            `json:"total_searches"`
	SentimentDistribution map[string]int `json:"sentiment_distribution"`
	TopAuthors            []AuthorCount  `json:"top_authors"`
	RecentSearches        []RecentSearch `json:"recent_searches"`
}

// HealthResponse is the result of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

func (req *CreatePostRequest) toDomain() (post.Post, error) {
	posted, err := parseTime("posted_at", req.PostedAt)
	if err != nil {
		return post.Post{}, err
	}
	return post.Post{
		PostID:            req.PostID,
		AuthorUsername:    req.AuthorUsername,
		AuthorDisplayName: req.AuthorDisplayName,
		Content:           req.Content,
		Likes:             req.Likes,
		Reshares:          req.Retweets,
		Replies:           req.Replies,
		Views:             req.Views,
		PostedAt:          posted,
		HasMedia:          len(req.MediaURLs) > 0,
		MediaURLs:         req.MediaURLs,
	}, nil
}

func postToResponse(p *post.Post) PostResponse {
	return PostResponse{
		ID:                p.ID,
		PostID:            p.PostID,
		AuthorUsername:    p.AuthorUsername,
		AuthorDisplayName: optString(p.AuthorDisplayName),
		Content:           p.Content,
		Likes:             p.Likes,
		Retweets:          p.Reshares,
		Replies:           p.Replies,
		Views:             p.Views,
		PostedAt:          p.PostedAt,
		ScrapedAt:         p.IngestedAt,
		AIDescription:     optString(p.Description),
		AITopics:          nonNil(p.Topics),
		AISentiment:       optString(string(p.Sentiment)),
		AIEntities:        nonNil(p.Entities),
		HasMedia:          p.HasMedia,
		MediaURLs:         nonNil(p.MediaURLs),
	}
}

func resultsToResponse(items []result.Result) []SearchResultItem {
	out := make([]SearchResultItem, len(items))
	for i, r := range items {
		p := r.Post()
		out[i] = SearchResultItem{PostResponse: postToResponse(&p)}
		if v, ok := r.Relevance(); ok {
			out[i].RelevanceScore = &v
		}
		if v, ok := r.Similarity(); ok {
			out[i].SimilarityScore = &v
		}
		if v, ok := r.Combined(); ok {
			out[i].CombinedScore = &v
		}
		if v, ok := r.FTSRank(); ok {
			out[i].FTSRank = &v
		}
		if v, ok := r.VectorRank(); ok {
			out[i].VectorRank = &v
		}
	}
	return out
}

func searchToResponse(resp *searchuc.Response) SearchResponse {
	return SearchResponse{
		Query:         resp.Query,
		EnhancedQuery: resp.EnhancedQuery,
		QueryAnalysis: resp.Analysis,
		Results:       resultsToResponse(resp.Results),
		TotalCount:    resp.TotalCount,
		Limit:         resp.Limit,
		Offset:        resp.Offset,
		Summary:       resp.Summary,
	}
}

func answerToResponse(a *searchuc.Answer) AskResponse {
	return AskResponse{
		Question:      a.Question,
		Answer:        a.Answer,
		Sources:       resultsToResponse(a.Sources),
		QueryAnalysis: a.Analysis,
	}
}

func pageToResponse(pg cataloguc.Page) PostListResponse {
	posts := make([]PostResponse, len(pg.Posts))
	for i := range pg.Posts {
		posts[i] = postToResponse(&pg.Posts[i])
	}
	return PostListResponse{Posts: posts, Total: pg.Total, Limit: pg.Limit, Offset: pg.Offset}
}

func statsToResponse(st cataloguc.Stats) StatsResponse {
	return StatsResponse{
		TotalPosts:            st.TotalPosts,
		TotalAuthors:          st.TotalAuthors,
		TotalSearches:         st.TotalSearches,
		SentimentDistribution: st.SentimentDistribution,
		TopAuthors:            authorsToResponse(st.TopAuthors),
		RecentSearches:        searchesToResponse(st.RecentSearches),
	}
}

func authorsToResponse(authors []corpus.AuthorCount) []AuthorCount {
	out := make([]AuthorCount, len(authors))
	for i, a := range authors {
		out[i] = AuthorCount{Username: a.Username, PostCount: a.PostCount}
	}
	return out
}

func searchesToResponse(entries []searchlog.Entry) []RecentSearch {
	out := make([]RecentSearch, len(entries))
	for i, e := range entries {
		out[i] = RecentSearch{
			Query:       e.OriginalQuery,
			Intent:      optString(e.Intent),
			ResultCount: e.ResultCount,
			CreatedAt:   e.CreatedAt,
		}
	}
	return out
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
