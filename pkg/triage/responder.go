package triage

import (
	"context"
	"fmt"
	"strings"

	"customer-inquiry-be/internal/entity"
	"customer-inquiry-be/pkg/llm"
)

// Responder writes the conversational reply for a categorized service
// request.
type Responder interface {
	Respond(ctx context.Context, message, category string, history []entity.ChatMessage) (string, error)
}

const responderSystemPrompt = `You are a friendly customer support assistant.
The request has been categorized as: %s.
Answer helpfully and concisely. If the request needs a human agent
(account changes, escalations), say a support agent will follow up.`

type LLMResponder struct {
	provider llm.LLMProvider
}

func NewLLMResponder(provider llm.LLMProvider) *LLMResponder {
	return &LLMResponder{provider: provider}
}

func (r *LLMResponder) Respond(ctx context.Context, message, category string, history []entity.ChatMessage) (string, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    "system",
		Content: fmt.Sprintf(responderSystemPrompt, category),
	})
	for _, turn := range history {
		messages = append(messages, llm.Message{
			Role:    turn.Role,
			Content: turn.Chat,
		})
	}
	messages = append(messages, llm.Message{
		Role:    "user",
		Content: message,
	})

	reply, err := r.provider.Chat(ctx, messages, llm.WithTemperature(0.5))
	if err != nil {
		return "", fmt.Errorf("support reply failed: %w", err)
	}
	return strings.TrimSpace(reply), nil
}
