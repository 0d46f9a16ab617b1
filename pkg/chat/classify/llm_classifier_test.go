package classify

import (
	"context"
	"testing"

	"customer-inquiry-be/internal/entity"
	"customer-inquiry-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer-inquiry-be/pkg/llm"
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

func newTestClassifier(response string) *LLMClassifier {
	return NewLLMClassifier(&stubProvider{response: response}, logger.NewNopLogger())
}

func TestClassifyParsesDecision(t *testing.T) {
	classifier := newTestClassifier(`{"query_type": "sql_query", "confidence": "high", "reasoning": "asks about order counts"}`)

	decision, err := classifier.Classify(context.Background(), "How many orders did I place?", nil, "")
	require.NoError(t, err)

	assert.Equal(t, KindDataQuery, decision.Kind)
	assert.Equal(t, ConfidenceHigh, decision.Confidence)
	assert.Equal(t, "asks about order counts", decision.Reasoning)
}

func TestClassifyStripsMarkdownFences(t *testing.T) {
	classifier := newTestClassifier("```json\n{\"query_type\": \"document_search\", \"confidence\": \"medium\", \"reasoning\": \"wants a document\"}\n```")

	decision, err := classifier.Classify(context.Background(), "Find the onboarding guide", nil, "")
	require.NoError(t, err)

	assert.Equal(t, KindDocumentSearch, decision.Kind)
	assert.Equal(t, ConfidenceMedium, decision.Confidence)
}

func TestClassifyFallsBackOnUnparseableOutput(t *testing.T) {
	classifier := newTestClassifier("I think this is probably a data question.")

	decision, err := classifier.Classify(context.Background(), "How many orders?", nil, "")
	require.NoError(t, err)

	assert.Equal(t, KindServiceRequest, decision.Kind)
	assert.Equal(t, ConfidenceLow, decision.Confidence)
}

func TestClassifyFallsBackOnUnknownCategory(t *testing.T) {
	classifier := newTestClassifier(`{"query_type": "banana", "confidence": "high", "reasoning": "?"}`)

	decision, err := classifier.Classify(context.Background(), "hello", nil, "")
	require.NoError(t, err)

	assert.Equal(t, KindServiceRequest, decision.Kind)
}

func TestClassifyDefaultsClarificationQuestion(t *testing.T) {
	classifier := newTestClassifier(`{"query_type": "clarification_needed", "confidence": "low", "reasoning": "ambiguous"}`)

	decision, err := classifier.Classify(context.Background(), "it", nil, "")
	require.NoError(t, err)

	assert.Equal(t, KindNeedsClarification, decision.Kind)
	assert.NotEmpty(t, decision.ClarificationQuestion)
}

func TestClassifyIncludesHistoryInPrompt(t *testing.T) {
	history := []entity.ChatMessage{
		{Role: "user", Chat: "How many orders?"},
		{Role: "assistant", Chat: "You have 3 orders."},
	}

	rendered := renderHistory(history)
	assert.Contains(t, rendered, "user: How many orders?")
	assert.Contains(t, rendered, "assistant: You have 3 orders.")
}
