package state

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"customer-inquiry-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingStateNeverHoldsBoth(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	manager := NewManager(store)

	session, err := store.CreateSession(ctx, uuid.New())
	require.NoError(t, err)

	err = manager.SetPendingRewrite(ctx, session.Id, &entity.PendingRewrite{
		OriginalQuery:  "Africa people",
		RewrittenQuery: "African people",
		Reason:         "grammar",
	})
	require.NoError(t, err)

	err = manager.SetPendingClarification(ctx, session.Id, &entity.PendingClarification{
		Question: "Which document do you mean?",
	})
	require.NoError(t, err)

	pending, err := store.GetPendingState(ctx, session.Id)
	require.NoError(t, err)
	require.NotNil(t, pending)

	assert.Nil(t, pending.Rewrite, "setting a clarification must clear the rewrite slot")
	assert.NotNil(t, pending.Clarification)
}

func TestConsumeClearsPendingState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	manager := NewManager(store)

	session, err := store.CreateSession(ctx, uuid.New())
	require.NoError(t, err)

	require.NoError(t, manager.SetPendingRewrite(ctx, session.Id, &entity.PendingRewrite{
		OriginalQuery:  "Africa people",
		RewrittenQuery: "African people",
	}))

	pending, err := manager.Consume(ctx, session.Id)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "African people", pending.Rewrite.RewrittenQuery)

	again, err := manager.Consume(ctx, session.Id)
	require.NoError(t, err)
	assert.Nil(t, again, "pending state must survive at most one turn")
}

func TestConsumeWithNothingPending(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(NewMemoryStore())

	pending, err := manager.Consume(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "short message kept verbatim",
			message: "How many orders do I have?",
			want:    "How many orders do I have?",
		},
		{
			name:    "long message truncated with ellipsis",
			message: strings.Repeat("a", 80),
			want:    strings.Repeat("a", 50) + "...",
		},
		{
			name:    "newlines collapse to spaces",
			message: "hello\nworld",
			want:    "hello world",
		},
		{
			name:    "empty message falls back to default",
			message: "   ",
			want:    "New Chat",
		},
		{
			name:    "multibyte message truncated on character boundary",
			message: strings.Repeat("日", 80),
			want:    strings.Repeat("日", 50) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTitle(tt.message)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got), "derived title must be valid UTF-8")
		})
	}
}
