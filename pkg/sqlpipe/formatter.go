package sqlpipe

import (
	"context"
	"encoding/json"
	"fmt"

	"customer-inquiry-be/pkg/llm"
)

// ResultFormatter turns raw result rows into a conversational answer.
type ResultFormatter interface {
	Format(ctx context.Context, question string, rows []map[string]any) string
}

const formatterPromptTemplate = `The user asked: %s

The database returned these rows as JSON:
%s

Summarize the result for the user in one or two friendly sentences.
Mention concrete values (counts, totals, statuses) where relevant.
Do not mention SQL or databases.`

// LLMResultFormatter summarizes rows with the model. Any failure falls
// back to a plain acknowledgement so a formatting hiccup never fails the
// turn after the query already succeeded.
type LLMResultFormatter struct {
	provider llm.LLMProvider
}

func NewLLMResultFormatter(provider llm.LLMProvider) *LLMResultFormatter {
	return &LLMResultFormatter{provider: provider}
}

func (f *LLMResultFormatter) Format(ctx context.Context, question string, rows []map[string]any) string {
	if len(rows) == 0 {
		return "I could not find any matching records for your request."
	}

	rowsJson, err := json.Marshal(rows)
	if err != nil {
		return fallbackSummary(rows)
	}

	prompt := fmt.Sprintf(formatterPromptTemplate, question, string(rowsJson))
	answer, err := f.provider.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil || answer == "" {
		return fallbackSummary(rows)
	}

	return answer
}

func fallbackSummary(rows []map[string]any) string {
	return fmt.Sprintf("Query executed successfully. Found %d matching records.", len(rows))
}
