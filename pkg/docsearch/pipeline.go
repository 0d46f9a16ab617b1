package docsearch

import (
	"context"
	"fmt"

	"customer-inquiry-be/internal/constant"
	"customer-inquiry-be/internal/entity"
	"customer-inquiry-be/internal/pkg/logger"
	"customer-inquiry-be/pkg/chat/router"
	"customer-inquiry-be/pkg/chat/state"
)

// Pipeline is the document-search pipeline: analyze, optionally pause for
// rewrite confirmation, retrieve, synthesize.
type Pipeline struct {
	analyzer    QueryAnalyzer
	retriever   Retriever
	synthesizer Synthesizer
	states      *state.Manager
	resultLimit int
	logger      logger.ILogger
}

var _ router.SearchPipeline = (*Pipeline)(nil)

func NewPipeline(
	analyzer QueryAnalyzer,
	retriever Retriever,
	synthesizer Synthesizer,
	states *state.Manager,
	resultLimit int,
	logger logger.ILogger,
) *Pipeline {
	return &Pipeline{
		analyzer:    analyzer,
		retriever:   retriever,
		synthesizer: synthesizer,
		states:      states,
		resultLimit: resultLimit,
		logger:      logger,
	}
}

func (p *Pipeline) Run(ctx context.Context, req router.SearchRequest) (*router.Response, error) {
	analysis, err := p.analyzer.Analyze(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	if analysis.NeedsConfirmation && !req.SkipConfirmation {
		return p.askForConfirmation(ctx, req, analysis)
	}

	hits, err := p.retriever.Retrieve(ctx, analysis.RewrittenQuery, analysis.ExpandedTerms, p.resultLimit, req.UserId)
	if err != nil {
		return nil, err
	}

	if len(hits) == 0 {
		apology := fmt.Sprintf(constant.NoResultsTemplate, analysis.CleanTopic)
		return &router.Response{
			QueryType:     constant.QueryTypeDocumentSearch,
			AssistantText: apology,
			ResponseData: map[string]any{
				"response":     apology,
				"clean_topic":  analysis.CleanTopic,
				"result_count": 0,
			},
		}, nil
	}

	answer, err := p.synthesizer.Synthesize(ctx, analysis.RewrittenQuery, hits)
	if err != nil {
		return nil, err
	}

	results := make([]map[string]any, 0, len(hits))
	for _, hit := range hits {
		results = append(results, map[string]any{
			"document_id": hit.DocumentId.String(),
			"title":       hit.Title,
			"snippet":     hit.Snippet,
			"score":       hit.Score,
		})
	}

	return &router.Response{
		QueryType:     constant.QueryTypeDocumentSearch,
		AssistantText: answer,
		ResponseData: map[string]any{
			"response":     answer,
			"clean_topic":  analysis.CleanTopic,
			"results":      results,
			"result_count": len(hits),
		},
	}, nil
}

// askForConfirmation parks the rewrite in session state and ends the turn
// with a confirmation prompt. No retrieval happens until the user answers.
func (p *Pipeline) askForConfirmation(ctx context.Context, req router.SearchRequest, analysis *Analysis) (*router.Response, error) {
	err := p.states.SetPendingRewrite(ctx, req.SessionId, &entity.PendingRewrite{
		OriginalQuery:  req.Query,
		RewrittenQuery: analysis.RewrittenQuery,
		Reason:         analysis.RewriteReason,
	})
	if err != nil {
		return nil, fmt.Errorf("set pending rewrite: %w", err)
	}

	prompt := fmt.Sprintf(
		"Did you mean \"%s\"? Reply \"yes\" to search for that, \"no\" to rephrase, or say \"use the original\" to search your exact words.",
		analysis.RewrittenQuery,
	)

	return &router.Response{
		QueryType:     constant.QueryTypeConfirmation,
		AssistantText: prompt,
		ResponseData: map[string]any{
			"response":        prompt,
			"original_query":  req.Query,
			"rewritten_query": analysis.RewrittenQuery,
			"reason":          analysis.RewriteReason,
		},
	}, nil
}
