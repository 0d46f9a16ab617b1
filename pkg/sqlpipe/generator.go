package sqlpipe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"customer-inquiry-be/pkg/llm"
)

// GeneratedQuery is a candidate statement from the generation capability.
// It is untrusted until it passes the Validator.
type GeneratedQuery struct {
	StatementText string `json:"sql_query"`
	Explanation   string `json:"explanation"`
}

// StatementGenerator turns a natural language question into a candidate
// read statement.
type StatementGenerator interface {
	Generate(ctx context.Context, question string) (*GeneratedQuery, error)
}

const generatorPromptTemplate = `You are a SQL generation assistant for a customer order database.

Database schema:
%s

Rules:
- Generate exactly one read-only SELECT statement.
- Only reference the tables listed in the schema.
- Always filter rows by the requesting user with the placeholder $user_id, e.g. WHERE user_id = '$user_id'.
- Never generate INSERT, UPDATE, DELETE or any DDL.

User question: %s

Respond with JSON only:
{"sql_query": "<the statement>", "explanation": "<one sentence on what it returns>"}`

// LLMStatementGenerator prompts the model with the live table schema so the
// statement references real column names.
type LLMStatementGenerator struct {
	provider llm.LLMProvider
	schema   *SchemaInspector
}

func NewLLMStatementGenerator(provider llm.LLMProvider, schema *SchemaInspector) *LLMStatementGenerator {
	return &LLMStatementGenerator{
		provider: provider,
		schema:   schema,
	}
}

func (g *LLMStatementGenerator) Generate(ctx context.Context, question string) (*GeneratedQuery, error) {
	schemaText := "Table orders:\n  - (schema unavailable)\n"
	if g.schema != nil {
		if schema, err := g.schema.Inspect(ctx); err == nil && len(schema) > 0 {
			schemaText = schema.Describe()
		}
	}

	prompt := fmt.Sprintf(generatorPromptTemplate, schemaText, question)

	raw, err := g.provider.Generate(ctx, prompt, llm.WithTemperature(0.1))
	if err != nil {
		return nil, fmt.Errorf("statement generation failed: %w", err)
	}

	var generated GeneratedQuery
	if err := json.Unmarshal([]byte(llm.CleanJSON(raw)), &generated); err != nil {
		return nil, fmt.Errorf("unparseable generator response: %w", err)
	}

	generated.StatementText = strings.TrimSpace(generated.StatementText)
	if generated.StatementText == "" {
		return nil, fmt.Errorf("generator returned an empty statement")
	}

	return &generated, nil
}
