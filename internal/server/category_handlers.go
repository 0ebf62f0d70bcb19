package server

import (
	"lifeboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetCategories handles GET /api/posts/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.categoryRepo.List(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(categories)
}
