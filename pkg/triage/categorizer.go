package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"customer-inquiry-be/internal/pkg/logger"
	"customer-inquiry-be/pkg/llm"
)

// Supported service categories.
const (
	CategoryTechnicalSupport = "Technical Support"
	CategoryBilling          = "Billing"
	CategoryGeneralInquiry   = "General Inquiry"
)

// Categorizer assigns a service request to one of the support categories.
type Categorizer interface {
	Categorize(ctx context.Context, message string) (string, error)
}

const categorizerPromptTemplate = `Classify this customer service message into exactly one category:
- "Technical Support": errors, login problems, things not working.
- "Billing": invoices, charges, refunds, payment methods.
- "General Inquiry": everything else.

Message: %s

Respond with JSON only:
{"category": "<one of the three category names>"}`

type categorizerResponse struct {
	Category string `json:"category"`
}

// LLMCategorizer implements Categorizer with a chat model. Anything it
// cannot parse lands in General Inquiry.
type LLMCategorizer struct {
	provider llm.LLMProvider
	logger   logger.ILogger
}

func NewLLMCategorizer(provider llm.LLMProvider, logger logger.ILogger) *LLMCategorizer {
	return &LLMCategorizer{
		provider: provider,
		logger:   logger,
	}
}

func (c *LLMCategorizer) Categorize(ctx context.Context, message string) (string, error) {
	prompt := fmt.Sprintf(categorizerPromptTemplate, message)

	raw, err := c.provider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		return "", fmt.Errorf("categorization failed: %w", err)
	}

	var resp categorizerResponse
	if err := json.Unmarshal([]byte(llm.CleanJSON(raw)), &resp); err != nil {
		c.logger.Warn("triage", "categorizer returned unparseable output, defaulting to general inquiry", map[string]interface{}{
			"error": err.Error(),
		})
		return CategoryGeneralInquiry, nil
	}

	return normalizeCategory(resp.Category), nil
}

func normalizeCategory(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case strings.ToLower(CategoryTechnicalSupport):
		return CategoryTechnicalSupport
	case strings.ToLower(CategoryBilling):
		return CategoryBilling
	default:
		return CategoryGeneralInquiry
	}
}
