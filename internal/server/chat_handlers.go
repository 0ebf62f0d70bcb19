package server

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"lifeboard/internal/models"
	"lifeboard/internal/notifications"
	"lifeboard/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// GetChatHistory handles GET /api/chat/messages?before=&limit=
func (s *Server) GetChatHistory(c *fiber.Ctx) error {
	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid before timestamp, want RFC3339"))
		}
		before = &t
	}

	limit := c.QueryInt("limit", s.config.ChatHistoryLimit)
	msgs, err := s.chatService.History(c.UserContext(), before, limit)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(msgs)
}

// WebSocketUpgrade gates websocket routes to actual upgrade requests.
func (s *Server) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebSocketChatHandler handles WebSocket connections for the shared chat
// room. Every inbound message is persisted first, then fanned out to all
// connected clients, so the broadcast always matches stored history.
func (s *Server) WebSocketChatHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client := s.hub.Register(conn)
		if client == nil {
			// Hub already shut down
			_ = conn.Close()
			return
		}

		client.IncomingHandler = func(c *notifications.Client, message []byte) {
			var inbound service.InboundChatMessage
			if err := json.Unmarshal(message, &inbound); err != nil {
				log.Printf("WebSocket chat: invalid message from client %s", c.ID)
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			saved, err := s.chatService.SaveIncoming(ctx, inbound)
			if err != nil {
				log.Printf("WebSocket chat: save failed for client %s: %v", c.ID, err)
				return
			}

			s.hub.BroadcastAll(saved)
		}

		go client.WritePump()
		client.ReadPump()
	})
}
