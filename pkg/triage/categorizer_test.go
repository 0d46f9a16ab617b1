package triage

import (
	"context"
	"testing"

	"customer-inquiry-be/internal/constant"
	"customer-inquiry-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "exact technical support", raw: "Technical Support", want: CategoryTechnicalSupport},
		{name: "lowercase billing", raw: "billing", want: CategoryBilling},
		{name: "padded general inquiry", raw: "  General Inquiry  ", want: CategoryGeneralInquiry},
		{name: "unknown falls back to general", raw: "Sales", want: CategoryGeneralInquiry},
		{name: "empty falls back to general", raw: "", want: CategoryGeneralInquiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeCategory(tt.raw))
		})
	}
}

type stubCategorizer struct {
	category string
}

func (s *stubCategorizer) Categorize(ctx context.Context, message string) (string, error) {
	return s.category, nil
}

type stubResponder struct {
	reply        string
	lastCategory string
}

func (s *stubResponder) Respond(ctx context.Context, message, category string, history []entity.ChatMessage) (string, error) {
	s.lastCategory = category
	return s.reply, nil
}

func TestPipelineAttachesCategoryToResponse(t *testing.T) {
	responder := &stubResponder{reply: "Please clear your browser cache and try again."}
	pipeline := NewPipeline(&stubCategorizer{category: CategoryTechnicalSupport}, responder)

	resp, err := pipeline.Run(context.Background(), uuid.New(), "I can't log in", nil)
	require.NoError(t, err)

	assert.Equal(t, constant.QueryTypeCustomer, resp.QueryType)
	assert.Equal(t, "Please clear your browser cache and try again.", resp.AssistantText)
	assert.Equal(t, CategoryTechnicalSupport, resp.ResponseData["category"])
	assert.Equal(t, CategoryTechnicalSupport, responder.lastCategory)
}
