package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"lifeboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRepository_HistoryBeforeNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &models.ChatMessage{
			ID:        fmt.Sprintf("msg-%d", i),
			Nickname:  "n",
			Text:      fmt.Sprintf("message %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	// Cursor at minute 3 includes messages 0..3, newest first
	msgs, err := repo.HistoryBefore(ctx, base.Add(3*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, "msg-3", msgs[0].ID)
	assert.Equal(t, "msg-0", msgs[3].ID)

	// Limit truncates from the newest end
	msgs, err = repo.HistoryBefore(ctx, base.Add(time.Hour), 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "msg-4", msgs[0].ID)
	assert.Equal(t, "msg-3", msgs[1].ID)
}
