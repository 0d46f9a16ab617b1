package docsearch

import (
	"context"
	"fmt"
	"strings"

	"customer-inquiry-be/pkg/llm"
)

// Synthesizer turns retrieved chunks into a grounded answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, hits []Hit) (string, error)
}

const synthesizerPromptTemplate = `Answer the user's question using only the document excerpts below.
Cite document titles when you use them. If the excerpts do not contain the
answer, say so briefly.

Question: %s

Excerpts:
%s`

type LLMSynthesizer struct {
	provider llm.LLMProvider
}

func NewLLMSynthesizer(provider llm.LLMProvider) *LLMSynthesizer {
	return &LLMSynthesizer{provider: provider}
}

func (s *LLMSynthesizer) Synthesize(ctx context.Context, query string, hits []Hit) (string, error) {
	var excerpts strings.Builder
	for i, hit := range hits {
		fmt.Fprintf(&excerpts, "[%d] %s (relevance %.2f)\n%s\n\n", i+1, hit.Title, hit.Score, hit.Snippet)
	}

	prompt := fmt.Sprintf(synthesizerPromptTemplate, query, excerpts.String())

	answer, err := s.provider.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		return "", fmt.Errorf("synthesize answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
