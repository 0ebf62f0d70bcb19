package server

import (
	"lifeboard/internal/models"
	"lifeboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts.
// Query params: category, q, sort (latest|best|trending), period
// (7d|14d|30d|all), page, size, min (trending floor).
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.rankingService.List(c.UserContext(), service.FeedInput{
		CategoryCode: c.Query("category"),
		Query:        c.Query("q"),
		Sort:         c.Query("sort"),
		Period:       c.Query("period"),
		Page:         c.QueryInt("page", 0),
		PageSize:     c.QueryInt("size", 20),
		MinResults:   c.QueryInt("min", 0),
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Create(c.UserContext(), req)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.UpdatePostInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Update(c.UserContext(), id, req)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id. The password travels in the body
// when present, in the query string otherwise (some clients cannot attach a
// body to DELETE).
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	password := s.passwordFrom(c)
	if err := s.postService.Delete(c.UserContext(), id, password); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// VerifyPostPassword handles POST /api/posts/:id/verify
func (s *Server) VerifyPostPassword(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	password := s.passwordFrom(c)
	if err := s.postService.Verify(c.UserContext(), id, password); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"valid": true})
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	likes, err := s.postService.Like(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"likes": likes})
}

// UnlikePost handles POST /api/posts/:id/unlike
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	likes, err := s.postService.Unlike(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"likes": likes})
}

func (s *Server) passwordFrom(c *fiber.Ctx) string {
	var req struct {
		Password string `json:"password"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err == nil && req.Password != "" {
			return req.Password
		}
	}
	return c.Query("password")
}
