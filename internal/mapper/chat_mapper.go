package mapper

import (
	"encoding/json"
	"time"

	"customer-inquiry-be/internal/entity"
	"customer-inquiry-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	var pendingRewrite *entity.PendingRewrite
	if len(s.PendingRewrite) > 0 {
		var pr entity.PendingRewrite
		if err := json.Unmarshal(s.PendingRewrite, &pr); err == nil {
			pendingRewrite = &pr
		}
	}

	var pendingClarification *entity.PendingClarification
	if len(s.PendingClarification) > 0 {
		var pc entity.PendingClarification
		if err := json.Unmarshal(s.PendingClarification, &pc); err == nil {
			pendingClarification = &pc
		}
	}

	return &entity.ChatSession{
		Id:                   s.Id,
		UserId:               s.UserId,
		Title:                s.Title,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            updatedAt,
		DeletedAt:            deletedAt,
		PendingRewrite:       pendingRewrite,
		PendingClarification: pendingClarification,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	var pendingRewrite datatypes.JSON
	if s.PendingRewrite != nil {
		if raw, err := json.Marshal(s.PendingRewrite); err == nil {
			pendingRewrite = raw
		}
	}

	var pendingClarification datatypes.JSON
	if s.PendingClarification != nil {
		if raw, err := json.Marshal(s.PendingClarification); err == nil {
			pendingClarification = raw
		}
	}

	return &model.ChatSession{
		Id:                   s.Id,
		UserId:               s.UserId,
		Title:                s.Title,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            updatedAt,
		DeletedAt:            deletedAt,
		PendingRewrite:       pendingRewrite,
		PendingClarification: pendingClarification,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	var deletedAt *time.Time
	if msg.DeletedAt.Valid {
		t := msg.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !msg.UpdatedAt.IsZero() {
		t := msg.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		Chat:          msg.Chat,
		Role:          msg.Role,
		ChatSessionId: msg.ChatSessionId,
		CreatedAt:     msg.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if msg.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *msg.DeletedAt, Valid: true}
	}

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	return &model.ChatMessage{
		Id:            msg.Id,
		Chat:          msg.Chat,
		Role:          msg.Role,
		ChatSessionId: msg.ChatSessionId,
		CreatedAt:     msg.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}
