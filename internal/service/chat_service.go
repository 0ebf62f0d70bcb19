package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"lifeboard/internal/models"
	"lifeboard/internal/repository"

	"github.com/google/uuid"
)

const (
	chatHistoryMax   = 200
	chatMaxTextRunes = 2000
)

// InboundChatMessage is a message as received from a websocket client.
// Clients may pre-assign an ID so their optimistic UI can reconcile the echo.
type InboundChatMessage struct {
	ID       string `json:"id"`
	SenderID string `json:"sender"`
	Nickname string `json:"nickname"`
	Text     string `json:"text"`
}

// ChatService persists chat traffic and serves its history. Fan-out is the
// hub's job; this layer only owns durability and validation.
type ChatService struct {
	messages repository.ChatRepository
	now      func() time.Time
}

// NewChatService wires the chat persistence layer.
func NewChatService(messages repository.ChatRepository, now func() time.Time) *ChatService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ChatService{messages: messages, now: now}
}

// SaveIncoming validates and persists an inbound message, assigning an ID
// when the client did not and stamping server time. The persisted record is
// returned so the hub broadcasts exactly what the store holds.
func (s *ChatService) SaveIncoming(ctx context.Context, in InboundChatMessage) (*models.ChatMessage, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, models.NewValidationError("Message text is required")
	}
	if utf8.RuneCountInString(text) > chatMaxTextRunes {
		return nil, models.NewValidationError("Message text is too long")
	}
	nickname := strings.TrimSpace(in.Nickname)
	if nickname == "" {
		nickname = "anonymous"
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}

	msg := &models.ChatMessage{
		ID:        id,
		SenderID:  strings.TrimSpace(in.SenderID),
		Nickname:  nickname,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, models.NewInternalError(err)
	}
	return msg, nil
}

// History returns up to limit messages at or before the given instant,
// newest first. A nil cursor means "from now"; the limit is clamped so a
// single call can never drag the whole table over the wire.
func (s *ChatService) History(ctx context.Context, before *time.Time, limit int) ([]*models.ChatMessage, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > chatHistoryMax {
		limit = chatHistoryMax
	}

	cursor := s.now()
	if before != nil {
		cursor = *before
	}

	msgs, err := s.messages.HistoryBefore(ctx, cursor, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}
