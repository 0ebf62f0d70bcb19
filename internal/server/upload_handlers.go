package server

import (
	"io"

	"lifeboard/internal/models"
	"lifeboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadFile handles POST /api/uploads (multipart field "file")
func (s *Server) UploadFile(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}

	uploaded, err := s.uploadService.Store(service.StoreUploadInput{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(uploaded)
}
