package docsearch

import (
	"context"
	"testing"

	"customer-inquiry-be/internal/pkg/logger"
	"customer-inquiry-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	response string
	err      error
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func newTestAnalyzer(response string) *LLMQueryAnalyzer {
	return NewLLMQueryAnalyzer(&stubProvider{response: response}, logger.NewNopLogger())
}

func TestAnalyzeGrammarRewrite(t *testing.T) {
	analyzer := newTestAnalyzer(`{
		"original_query": "Africa people",
		"clean_topic": "African people",
		"rewritten_query": "African people",
		"needs_confirmation": true,
		"rewrite_reason": "adjusted adjective form",
		"keywords": ["african", "people"],
		"search_intent": "find documents about African people",
		"expanded_terms": ["africa", "population"]
	}`)

	analysis, err := analyzer.Analyze(context.Background(), "Africa people")
	require.NoError(t, err)

	assert.True(t, analysis.NeedsConfirmation)
	assert.Equal(t, "African people", analysis.RewrittenQuery)
	assert.Equal(t, "Africa people", analysis.OriginalQuery)
	assert.Equal(t, "adjusted adjective form", analysis.RewriteReason)
}

func TestAnalyzeIdenticalRewriteNeedsNoConfirmation(t *testing.T) {
	analyzer := newTestAnalyzer(`{
		"original_query": "billing policy",
		"clean_topic": "billing policy",
		"rewritten_query": "billing policy",
		"needs_confirmation": true,
		"rewrite_reason": ""
	}`)

	analysis, err := analyzer.Analyze(context.Background(), "billing policy")
	require.NoError(t, err)

	assert.False(t, analysis.NeedsConfirmation, "an unchanged query must not trigger a confirmation round trip")
}

func TestAnalyzeFallsBackOnUnparseableOutput(t *testing.T) {
	analyzer := newTestAnalyzer("the query looks fine to me")

	analysis, err := analyzer.Analyze(context.Background(), "refund policy")
	require.NoError(t, err)

	assert.False(t, analysis.NeedsConfirmation)
	assert.Equal(t, "refund policy", analysis.RewrittenQuery)
	assert.Equal(t, "refund policy", analysis.CleanTopic)
}

func TestAnalyzeFillsEmptyFields(t *testing.T) {
	analyzer := newTestAnalyzer(`{"needs_confirmation": false}`)

	analysis, err := analyzer.Analyze(context.Background(), "shipping times")
	require.NoError(t, err)

	assert.Equal(t, "shipping times", analysis.CleanTopic)
	assert.Equal(t, "shipping times", analysis.RewrittenQuery)
	assert.Equal(t, "shipping times", analysis.OriginalQuery)
}

func TestAnalyzeStripsMarkdownFences(t *testing.T) {
	analyzer := newTestAnalyzer("```json\n{\"clean_topic\": \"onboarding\", \"rewritten_query\": \"onboarding guide\"}\n```")

	analysis, err := analyzer.Analyze(context.Background(), "onboarding guide pls")
	require.NoError(t, err)

	assert.Equal(t, "onboarding", analysis.CleanTopic)
	assert.Equal(t, "onboarding guide", analysis.RewrittenQuery)
}
