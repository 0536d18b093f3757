package services

import (
	"livehub/domain"
	"livehub/repositories"
)

type IHistoryService interface {
	Recent(channelID string, limit int, cursor *string) ([]domain.ChatMessage, *string, error)
}

// HistoryService serves the recent chat log of a channel, oldest first,
// for late joiners catching up over the REST hook.
type HistoryService struct {
	messages repositories.IMessageRepository
}

func NewHistoryService(messages repositories.IMessageRepository) HistoryService {
	return HistoryService{messages: messages}
}

func (s HistoryService) Recent(channelID string, limit int, cursor *string) ([]domain.ChatMessage, *string, error) {
	return s.messages.RecentMessages(channelID, limit, cursor)
}
