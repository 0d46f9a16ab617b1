package service

import (
	"context"
	"time"

	"customer-inquiry-be/internal/dto"
	"customer-inquiry-be/internal/pkg/logger"
	"customer-inquiry-be/internal/repository/specification"
	"customer-inquiry-be/internal/repository/unitofwork"
	"customer-inquiry-be/pkg/chat/router"
	"customer-inquiry-be/pkg/chat/state"
	"customer-inquiry-be/pkg/events"
	pktNats "customer-inquiry-be/pkg/nats"

	"github.com/google/uuid"
)

// IChatService defines the conversational API surface.
type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, limit int) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	UpdateSessionTitle(ctx context.Context, userId uuid.UUID, request *dto.UpdateSessionTitleRequest) error
	DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	store          state.ConversationStore
	dispatcher     *router.Dispatcher
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	store state.ConversationStore,
	dispatcher *router.Dispatcher,
	eventPublisher *pktNats.Publisher,
	logger logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		store:          store,
		dispatcher:     dispatcher,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (cs *chatService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	session, err := cs.store.CreateSession(ctx, userId)
	if err != nil {
		return nil, err
	}
	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (cs *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, s := range sessions {
		count, err := uow.ChatMessageRepository().Count(ctx,
			specification.ByChatSessionID{ChatSessionID: s.Id},
		)
		if err != nil {
			return nil, err
		}
		response = append(response, &dto.GetAllSessionsResponse{
			Id:           s.Id,
			Title:        s.Title,
			MessageCount: count,
			CreatedAt:    s.CreatedAt,
			UpdatedAt:    s.UpdatedAt,
		})
	}
	return response, nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, limit int) ([]*dto.GetChatHistoryResponse, error) {
	// Ownership check before touching the message log.
	if _, err := cs.store.GetSession(ctx, sessionId, userId); err != nil {
		return nil, err
	}

	specs := []specification.Specification{
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	}
	if limit > 0 {
		specs = append(specs, specification.Limit{Limit: limit})
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, &dto.GetChatHistoryResponse{
			Id:        m.Id,
			Role:      m.Role,
			Content:   m.Chat,
			CreatedAt: m.CreatedAt,
		})
	}
	return response, nil
}

func (cs *chatService) SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	session, err := cs.store.GetSession(ctx, request.ChatSessionId, userId)
	if err != nil {
		return nil, err
	}

	started := time.Now()

	response, err := cs.dispatcher.HandleTurn(ctx, userId, session.Id, request.Message)
	if err != nil {
		return nil, err
	}

	cs.publishTurnCompleted(ctx, session.Id, userId, response, time.Since(started))

	return &dto.SendChatResponse{
		QueryType:       response.QueryType,
		OriginalMessage: request.Message,
		ResponseData:    response.ResponseData,
		SessionId:       session.Id,
	}, nil
}

func (cs *chatService) UpdateSessionTitle(ctx context.Context, userId uuid.UUID, request *dto.UpdateSessionTitleRequest) error {
	if _, err := cs.store.GetSession(ctx, request.ChatSessionId, userId); err != nil {
		return err
	}
	return cs.store.UpdateTitle(ctx, request.ChatSessionId, request.Title)
}

func (cs *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error {
	if _, err := cs.store.GetSession(ctx, request.ChatSessionId, userId); err != nil {
		return err
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if _, err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, request.ChatSessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, request.ChatSessionId); err != nil {
		return err
	}

	return uow.Commit()
}

// publishTurnCompleted emits telemetry. Failures are logged and swallowed,
// the user's turn already succeeded.
func (cs *chatService) publishTurnCompleted(ctx context.Context, sessionId, userId uuid.UUID, response *router.Response, duration time.Duration) {
	if cs.eventPublisher == nil {
		return
	}

	confidence, _ := response.ResponseData["confidence"].(string)
	evt := events.NewTurnCompletedEvent(sessionId, userId, response.QueryType, confidence, duration)
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn("chat_service", "failed to publish turn telemetry", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
	}
}
