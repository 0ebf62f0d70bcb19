package server

import (
	"lifeboard/internal/models"
	"lifeboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.postService.ListComments(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(comments)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.CommentInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.postService.CreateComment(c.UserContext(), postID, req)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT /api/posts/:postId/comments/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	var req service.CommentInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.postService.UpdateComment(c.UserContext(), postID, commentID, req)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/posts/:postId/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	password := s.passwordFrom(c)
	if err := s.postService.DeleteComment(c.UserContext(), postID, commentID, password); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
