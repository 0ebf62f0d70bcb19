package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"lifeboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatRepoStub is a stub for repository.ChatRepository.
type chatRepoStub struct {
	createFn        func(context.Context, *models.ChatMessage) error
	historyBeforeFn func(context.Context, time.Time, int) ([]*models.ChatMessage, error)
}

func (s *chatRepoStub) Create(ctx context.Context, msg *models.ChatMessage) error {
	return s.createFn(ctx, msg)
}
func (s *chatRepoStub) HistoryBefore(ctx context.Context, before time.Time, limit int) ([]*models.ChatMessage, error) {
	return s.historyBeforeFn(ctx, before, limit)
}

var chatNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func chatClock() time.Time { return chatNow }

func TestSaveIncoming_AssignsIDAndServerTime(t *testing.T) {
	var saved *models.ChatMessage
	repo := &chatRepoStub{
		createFn: func(_ context.Context, msg *models.ChatMessage) error {
			saved = msg
			return nil
		},
	}
	svc := NewChatService(repo, chatClock)

	msg, err := svc.SaveIncoming(context.Background(), InboundChatMessage{
		SenderID: "device-9",
		Nickname: "  neighbor  ",
		Text:     "  anyone selling a bike?  ",
	})
	require.NoError(t, err)
	require.NotNil(t, saved)

	assert.NotEmpty(t, msg.ID, "server assigns an ID when the client omits one")
	assert.Equal(t, chatNow, msg.CreatedAt, "server time, never client time")
	assert.Equal(t, "neighbor", msg.Nickname)
	assert.Equal(t, "anyone selling a bike?", msg.Text)
	assert.Same(t, saved, msg, "broadcast payload is the persisted record")
}

func TestSaveIncoming_KeepsClientAssignedID(t *testing.T) {
	repo := &chatRepoStub{
		createFn: func(_ context.Context, _ *models.ChatMessage) error { return nil },
	}
	svc := NewChatService(repo, chatClock)

	msg, err := svc.SaveIncoming(context.Background(), InboundChatMessage{
		ID:       "client-chosen-id",
		Nickname: "n",
		Text:     "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "client-chosen-id", msg.ID)
}

func TestSaveIncoming_Validation(t *testing.T) {
	repo := &chatRepoStub{
		createFn: func(_ context.Context, _ *models.ChatMessage) error {
			t.Fatal("invalid message must not be persisted")
			return nil
		},
	}
	svc := NewChatService(repo, chatClock)

	_, err := svc.SaveIncoming(context.Background(), InboundChatMessage{Text: "   "})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	_, err = svc.SaveIncoming(context.Background(), InboundChatMessage{
		Text: strings.Repeat("x", chatMaxTextRunes+1),
	})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestSaveIncoming_BlankNicknameDefaultsToAnonymous(t *testing.T) {
	repo := &chatRepoStub{
		createFn: func(_ context.Context, _ *models.ChatMessage) error { return nil },
	}
	svc := NewChatService(repo, chatClock)

	msg, err := svc.SaveIncoming(context.Background(), InboundChatMessage{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "anonymous", msg.Nickname)
}

func TestHistory_ClampsLimitAndDefaultsCursor(t *testing.T) {
	var gotBefore time.Time
	var gotLimit int
	repo := &chatRepoStub{
		historyBeforeFn: func(_ context.Context, before time.Time, limit int) ([]*models.ChatMessage, error) {
			gotBefore = before
			gotLimit = limit
			return nil, nil
		},
	}
	svc := NewChatService(repo, chatClock)
	ctx := context.Background()

	_, err := svc.History(ctx, nil, 9999)
	require.NoError(t, err)
	assert.Equal(t, chatNow, gotBefore)
	assert.Equal(t, chatHistoryMax, gotLimit)

	_, err = svc.History(ctx, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, gotLimit)

	cursor := chatNow.Add(-time.Hour)
	_, err = svc.History(ctx, &cursor, 50)
	require.NoError(t, err)
	assert.Equal(t, cursor, gotBefore)
	assert.Equal(t, 50, gotLimit)
}
