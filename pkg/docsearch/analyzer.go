package docsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"customer-inquiry-be/internal/pkg/logger"
	"customer-inquiry-be/pkg/llm"
)

// Analysis is the query-analysis capability's verdict on a search query:
// cleaned topic for display, expanded terms for retrieval, and optionally
// a grammar rewrite that needs the user's confirmation first.
type Analysis struct {
	OriginalQuery     string   `json:"original_query"`
	CleanTopic        string   `json:"clean_topic"`
	RewrittenQuery    string   `json:"rewritten_query"`
	NeedsConfirmation bool     `json:"needs_confirmation"`
	RewriteReason     string   `json:"rewrite_reason"`
	Keywords          []string `json:"keywords"`
	SearchIntent      string   `json:"search_intent"`
	ExpandedTerms     []string `json:"expanded_terms"`
}

// QueryAnalyzer inspects a search query before retrieval.
type QueryAnalyzer interface {
	Analyze(ctx context.Context, query string) (*Analysis, error)
}

const analyzerPromptTemplate = `You are a search query analyzer for a document search engine.

Analyze the user's search query:
- Fix obvious grammar or phrasing mistakes (e.g. "Africa people" should become "African people"). If you changed the meaning-bearing words, set needs_confirmation to true and explain why in rewrite_reason.
- Extract the core topic as clean_topic (short, human readable).
- List the important keywords and a few expanded synonyms.

Query: %s

Respond with JSON only:
{"original_query": "...", "clean_topic": "...", "rewritten_query": "...", "needs_confirmation": false, "rewrite_reason": "", "keywords": [], "search_intent": "...", "expanded_terms": []}`

// LLMQueryAnalyzer implements QueryAnalyzer with a chat model. Parse
// failures degrade to a pass-through analysis so the search still runs.
type LLMQueryAnalyzer struct {
	provider llm.LLMProvider
	logger   logger.ILogger
}

func NewLLMQueryAnalyzer(provider llm.LLMProvider, logger logger.ILogger) *LLMQueryAnalyzer {
	return &LLMQueryAnalyzer{
		provider: provider,
		logger:   logger,
	}
}

func (a *LLMQueryAnalyzer) Analyze(ctx context.Context, query string) (*Analysis, error) {
	prompt := fmt.Sprintf(analyzerPromptTemplate, query)

	raw, err := a.provider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		return nil, fmt.Errorf("query analysis failed: %w", err)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(llm.CleanJSON(raw)), &analysis); err != nil {
		a.logger.Warn("docsearch", "analyzer returned unparseable output, searching verbatim", map[string]interface{}{
			"error": err.Error(),
		})
		return passThroughAnalysis(query), nil
	}

	if strings.TrimSpace(analysis.CleanTopic) == "" {
		analysis.CleanTopic = query
	}
	if strings.TrimSpace(analysis.RewrittenQuery) == "" {
		analysis.RewrittenQuery = query
		analysis.NeedsConfirmation = false
	}
	if analysis.OriginalQuery == "" {
		analysis.OriginalQuery = query
	}

	// A rewrite identical to the input needs no confirmation.
	if strings.EqualFold(strings.TrimSpace(analysis.RewrittenQuery), strings.TrimSpace(query)) {
		analysis.NeedsConfirmation = false
	}

	return &analysis, nil
}

func passThroughAnalysis(query string) *Analysis {
	return &Analysis{
		OriginalQuery:  query,
		CleanTopic:     query,
		RewrittenQuery: query,
	}
}
