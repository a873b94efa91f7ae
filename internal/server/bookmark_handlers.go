package server

import (
	"resonate/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// BookmarkPost handles POST /api/posts/:id/bookmark
func (s *Server) BookmarkPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	viewerID := middleware.ViewerID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.bookmarkService.Bookmark(ctx, viewerID, postID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusCreated)
}

// UnbookmarkPost handles DELETE /api/posts/:id/bookmark
func (s *Server) UnbookmarkPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	viewerID := middleware.ViewerID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.bookmarkService.RemoveBookmark(ctx, viewerID, postID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
