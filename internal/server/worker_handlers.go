package server

import (
	"resonate/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UpdateWaveform handles PUT /api/internal/posts/:id/waveform, the
// audio-processing worker callback delivering the rendered waveform URL.
func (s *Server) UpdateWaveform(c *fiber.Ctx) error {
	ctx := c.UserContext()
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		WaveformURL string `json:"waveform_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.postService.UpdateWaveformURL(ctx, postID, req.WaveformURL); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// UpdatePostStatus handles PUT /api/internal/posts/:id/status, the
// lifecycle transition callback from the processing pipeline.
func (s *Server) UpdatePostStatus(c *fiber.Ctx) error {
	ctx := c.UserContext()
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.postService.UpdateStatus(ctx, postID, req.Status); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
