package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"customer-inquiry-be/internal/entity"
	"customer-inquiry-be/internal/pkg/logger"
	"customer-inquiry-be/pkg/llm"
)

const classifierPromptTemplate = `You are a routing classifier for a customer support assistant.

Classify the user's message into exactly one category:
- "sql_query": questions about the user's own order data (counts, statuses, totals, dates).
- "document_search": requests to find information inside uploaded documents.
- "customer_service": support requests, complaints, billing questions, general inquiries.
- "clarification_needed": the intent is too ambiguous to route; ask one short clarifying question.
- "unsupported": anything outside the three categories above (jokes, chit-chat, general knowledge).

%sRecent conversation:
%s

User message: %s

Respond with JSON only:
{"query_type": "<category>", "confidence": "high|medium|low", "reasoning": "<one sentence>", "clarification_question": "<only when clarification_needed>"}`

type classifierResponse struct {
	QueryType             string `json:"query_type"`
	Confidence            string `json:"confidence"`
	Reasoning             string `json:"reasoning"`
	ClarificationQuestion string `json:"clarification_question"`
}

// LLMClassifier implements Classifier on top of a chat model. Unparseable
// model output falls back to the service-request category, the most
// conservative route, instead of failing the turn.
type LLMClassifier struct {
	provider llm.LLMProvider
	logger   logger.ILogger
}

func NewLLMClassifier(provider llm.LLMProvider, logger logger.ILogger) *LLMClassifier {
	return &LLMClassifier{
		provider: provider,
		logger:   logger,
	}
}

func (c *LLMClassifier) Classify(ctx context.Context, message string, recentHistory []entity.ChatMessage, pendingContext string) (*Decision, error) {
	prompt := fmt.Sprintf(
		classifierPromptTemplate,
		pendingContextSection(pendingContext),
		renderHistory(recentHistory),
		message,
	)

	raw, err := c.provider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}

	var resp classifierResponse
	if err := json.Unmarshal([]byte(llm.CleanJSON(raw)), &resp); err != nil {
		c.logger.Warn("classify", "classifier returned unparseable output, falling back to customer_service", map[string]interface{}{
			"error": err.Error(),
		})
		return fallbackDecision(), nil
	}

	kind, ok := parseKind(resp.QueryType)
	if !ok {
		c.logger.Warn("classify", "classifier returned unknown category, falling back to customer_service", map[string]interface{}{
			"category": resp.QueryType,
		})
		return fallbackDecision(), nil
	}

	decision := &Decision{
		Kind:                  kind,
		Confidence:            parseConfidence(resp.Confidence),
		Reasoning:             resp.Reasoning,
		ClarificationQuestion: strings.TrimSpace(resp.ClarificationQuestion),
	}

	if decision.Kind == KindNeedsClarification && decision.ClarificationQuestion == "" {
		decision.ClarificationQuestion = "Could you tell me a bit more about what you're looking for?"
	}

	return decision, nil
}

func fallbackDecision() *Decision {
	return &Decision{
		Kind:       KindServiceRequest,
		Confidence: ConfidenceLow,
		Reasoning:  "fallback after unparseable classifier output",
	}
}

func parseKind(raw string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindDataQuery:
		return KindDataQuery, true
	case KindDocumentSearch:
		return KindDocumentSearch, true
	case KindServiceRequest:
		return KindServiceRequest, true
	case KindNeedsClarification:
		return KindNeedsClarification, true
	case KindUnsupported:
		return KindUnsupported, true
	default:
		return "", false
	}
}

func parseConfidence(raw string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(raw))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMedium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func pendingContextSection(pendingContext string) string {
	if pendingContext == "" {
		return ""
	}
	return fmt.Sprintf("Earlier you asked the user to clarify: %s\nResolve the new message against that question before asking again.\n\n", pendingContext)
}

func renderHistory(history []entity.ChatMessage) string {
	if len(history) == 0 {
		return "(no prior messages)"
	}
	var b strings.Builder
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Chat)
	}
	return strings.TrimRight(b.String(), "\n")
}
