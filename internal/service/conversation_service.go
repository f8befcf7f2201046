package service

import (
	"context"

	"costwise-go/internal/model"
	"costwise-go/internal/repository"
)

// ConversationService 定义了对话历史的查询操作。
type ConversationService interface {
	// GetHistory 返回用户当前对话的消息列表（最多 20 条，由存储层裁剪）。
	GetHistory(ctx context.Context, userID uint) ([]model.ChatMessage, error)
}

type conversationService struct {
	conversationRepo repository.ConversationRepository
}

// NewConversationService 创建一个新的 ConversationService 实例。
func NewConversationService(conversationRepo repository.ConversationRepository) ConversationService {
	return &conversationService{conversationRepo: conversationRepo}
}

func (s *conversationService) GetHistory(ctx context.Context, userID uint) ([]model.ChatMessage, error) {
	conversationID, err := s.conversationRepo.GetOrCreateConversationID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.conversationRepo.GetConversationHistory(ctx, conversationID)
}
