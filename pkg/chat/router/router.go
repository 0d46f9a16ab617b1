package router

import (
	"context"
	"fmt"

	"customer-inquiry-be/internal/constant"
	"customer-inquiry-be/internal/entity"
	"customer-inquiry-be/internal/pkg/logger"
	"customer-inquiry-be/internal/repository/memory"
	"customer-inquiry-be/pkg/chat/classify"
	"customer-inquiry-be/pkg/chat/state"

	"github.com/google/uuid"
)

// historyWindow is how many recent turns are handed to the classifier and
// to the backward scan for the original request.
const historyWindow = 10

// Dispatcher drives one conversation turn end to end: resolve pending
// state, classify, dispatch to the matching pipeline, persist both turns
// and set any new pending state. Turns of the same session are serialized.
type Dispatcher struct {
	classifier classify.Classifier
	states     *state.Manager
	data       DataPipeline
	search     SearchPipeline
	service    ServicePipeline
	locks      *memory.SessionLocks
	logger     logger.ILogger
}

func NewDispatcher(
	classifier classify.Classifier,
	states *state.Manager,
	data DataPipeline,
	search SearchPipeline,
	service ServicePipeline,
	locks *memory.SessionLocks,
	logger logger.ILogger,
) *Dispatcher {
	return &Dispatcher{
		classifier: classifier,
		states:     states,
		data:       data,
		search:     search,
		service:    service,
		locks:      locks,
		logger:     logger,
	}
}

// HandleTurn processes one user message against a session and returns the
// pipeline response. The user and assistant turns are persisted before it
// returns.
func (d *Dispatcher) HandleTurn(ctx context.Context, userId, sessionId uuid.UUID, message string) (*Response, error) {
	d.locks.Lock(sessionId)
	defer d.locks.Unlock(sessionId)

	store := d.states.Store()

	turnsBefore, err := store.CountTurns(ctx, sessionId)
	if err != nil {
		return nil, fmt.Errorf("count turns: %w", err)
	}

	history, err := store.GetRecentTurns(ctx, sessionId, historyWindow)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	// Pending state is consumed up front. Whatever this turn does, it never
	// carries over unless explicitly set again below.
	pending, err := d.states.Consume(ctx, sessionId)
	if err != nil {
		return nil, fmt.Errorf("consume pending state: %w", err)
	}

	response, err := d.resolveTurn(ctx, userId, sessionId, message, history, pending)
	if err != nil {
		return nil, err
	}

	if _, err := store.AppendTurn(ctx, sessionId, constant.ChatMessageRoleUser, message); err != nil {
		return nil, fmt.Errorf("persist user turn: %w", err)
	}
	if _, err := store.AppendTurn(ctx, sessionId, constant.ChatMessageRoleAssistant, response.AssistantText); err != nil {
		return nil, fmt.Errorf("persist assistant turn: %w", err)
	}

	if turnsBefore == 0 {
		if err := store.UpdateTitle(ctx, sessionId, state.DeriveTitle(message)); err != nil {
			d.logger.Warn("router", "failed to update session title", map[string]interface{}{
				"session_id": sessionId.String(),
				"error":      err.Error(),
			})
		}
	}

	return response, nil
}

func (d *Dispatcher) resolveTurn(
	ctx context.Context,
	userId, sessionId uuid.UUID,
	message string,
	history []entity.ChatMessage,
	pending *state.PendingState,
) (*Response, error) {
	if pending != nil && pending.Rewrite != nil {
		return d.resolvePendingRewrite(ctx, userId, sessionId, message, history, pending.Rewrite)
	}

	pendingContext := ""
	if pending != nil && pending.Clarification != nil {
		pendingContext = pending.Clarification.Question
	}

	decision, err := d.classifier.Classify(ctx, message, history, pendingContext)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	d.logger.Info("router", "turn classified", map[string]interface{}{
		"session_id": sessionId.String(),
		"kind":       string(decision.Kind),
		"confidence": string(decision.Confidence),
	})

	return d.dispatch(ctx, userId, sessionId, message, history, decision)
}

// resolvePendingRewrite handles the turn after a rewrite-confirmation
// prompt. The pending slot is already cleared; every branch here is
// terminal for the confirmation exchange.
func (d *Dispatcher) resolvePendingRewrite(
	ctx context.Context,
	userId, sessionId uuid.UUID,
	message string,
	history []entity.ChatMessage,
	rewrite *entity.PendingRewrite,
) (*Response, error) {
	switch {
	case isAffirmative(message):
		return d.search.Run(ctx, SearchRequest{
			SessionId:        sessionId,
			UserId:           userId,
			Query:            rewrite.RewrittenQuery,
			SkipConfirmation: true,
		})

	case isNegative(message):
		return &Response{
			QueryType:     constant.QueryTypeClarification,
			AssistantText: constant.RephraseResponseTemplate,
			ResponseData: map[string]any{
				"response": constant.RephraseResponseTemplate,
			},
		}, nil

	case requestsOriginal(message):
		query := d.findOriginalQuery(history, rewrite)
		return d.search.Run(ctx, SearchRequest{
			SessionId:        sessionId,
			UserId:           userId,
			Query:            query,
			SkipConfirmation: true,
		})

	default:
		// Not a confirmation reply. The pending rewrite is abandoned and
		// the message is routed as a fresh turn.
		decision, err := d.classifier.Classify(ctx, message, history, "")
		if err != nil {
			return nil, fmt.Errorf("classify: %w", err)
		}
		return d.dispatch(ctx, userId, sessionId, message, history, decision)
	}
}

// findOriginalQuery scans history backward for the most recent user turn
// that is not itself a confirmation keyword. Falls back to the original
// query captured in the pending rewrite.
func (d *Dispatcher) findOriginalQuery(history []entity.ChatMessage, rewrite *entity.PendingRewrite) string {
	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		if turn.Role != constant.ChatMessageRoleUser {
			continue
		}
		if isConfirmationKeyword(turn.Chat) {
			continue
		}
		return turn.Chat
	}
	return rewrite.OriginalQuery
}

func (d *Dispatcher) dispatch(
	ctx context.Context,
	userId, sessionId uuid.UUID,
	message string,
	history []entity.ChatMessage,
	decision *classify.Decision,
) (*Response, error) {
	var (
		response *Response
		err      error
	)

	switch decision.Kind {
	case classify.KindDataQuery:
		response, err = d.data.Run(ctx, userId, message)

	case classify.KindDocumentSearch:
		response, err = d.search.Run(ctx, SearchRequest{
			SessionId: sessionId,
			UserId:    userId,
			Query:     message,
		})

	case classify.KindServiceRequest:
		response, err = d.service.Run(ctx, userId, message, history)

	case classify.KindNeedsClarification:
		question := decision.ClarificationQuestion
		if setErr := d.states.SetPendingClarification(ctx, sessionId, &entity.PendingClarification{
			Question:          question,
			ReasoningSnapshot: decision.Reasoning,
		}); setErr != nil {
			return nil, fmt.Errorf("set pending clarification: %w", setErr)
		}
		response = &Response{
			QueryType:     constant.QueryTypeClarification,
			AssistantText: question,
			ResponseData: map[string]any{
				"question": question,
			},
		}

	case classify.KindUnsupported:
		response = &Response{
			QueryType:     constant.QueryTypeUnsupported,
			AssistantText: constant.UnsupportedResponseTemplate,
			ResponseData: map[string]any{
				"response": constant.UnsupportedResponseTemplate,
			},
		}

	default:
		return nil, fmt.Errorf("unhandled routing kind %q", decision.Kind)
	}

	if err != nil {
		return nil, err
	}

	if response.ResponseData == nil {
		response.ResponseData = map[string]any{}
	}
	// Confidence is advisory telemetry, passed through untouched.
	response.ResponseData["confidence"] = string(decision.Confidence)

	return response, nil
}
