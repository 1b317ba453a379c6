package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/derekjytan/xai/internal/domain/search/request"
	"github.com/derekjytan/xai/internal/domain/search/result"
	"github.com/derekjytan/xai/internal/metrics"
)

// Question answering parameters.
const (
	QuestionSearchLimit = 15
	MaxSources          = 5

	NoResultsAnswer   = "I couldn't find any relevant posts to answer your question."
	UnavailableAnswer = "I couldn't generate an answer right now. Please try again later."
)

// Ask answers a question from the posts a hybrid search finds for it.
func (s *Service) Ask(ctx context.Context, question string) (*Answer, error) {
	req, err := request.ForQuestion(question, QuestionSearchLimit)
	if err != nil {
		return nil, err
	}

	resp, err := s.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("question search: %w", err)
	}

	out := &Answer{Question: question, Analysis: resp.Analysis, Sources: []result.Result{}}
	if len(resp.Results) == 0 {
		out.Answer = NoResultsAnswer
		return out, nil
	}

	text, err := s.llm.Answerer.Answer(ctx, question, result.Posts(resp.Results))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		metrics.CollaboratorFailuresTotal.WithLabelValues("answer").Inc()
		s.logger.Warn("answer generation failed", zap.Error(err))
		text = UnavailableAnswer
	}
	out.Answer = text

	sources := resp.Results
	if len(sources) > MaxSources {
		sources = sources[:MaxSources]
	}
	out.Sources = sources
	return out, nil
}
