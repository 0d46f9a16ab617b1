package triage

import (
	"context"

	"customer-inquiry-be/internal/constant"
	"customer-inquiry-be/internal/entity"
	"customer-inquiry-be/pkg/chat/router"

	"github.com/google/uuid"
)

// Pipeline is the customer-service pipeline: categorize, then answer.
type Pipeline struct {
	categorizer Categorizer
	responder   Responder
}

var _ router.ServicePipeline = (*Pipeline)(nil)

func NewPipeline(categorizer Categorizer, responder Responder) *Pipeline {
	return &Pipeline{
		categorizer: categorizer,
		responder:   responder,
	}
}

func (p *Pipeline) Run(ctx context.Context, userId uuid.UUID, message string, history []entity.ChatMessage) (*router.Response, error) {
	category, err := p.categorizer.Categorize(ctx, message)
	if err != nil {
		return nil, err
	}

	reply, err := p.responder.Respond(ctx, message, category, history)
	if err != nil {
		return nil, err
	}

	return &router.Response{
		QueryType:     constant.QueryTypeCustomer,
		AssistantText: reply,
		ResponseData: map[string]any{
			"response": reply,
			"category": category,
		},
	}, nil
}
