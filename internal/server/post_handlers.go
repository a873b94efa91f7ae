package server

import (
	"resonate/internal/middleware"
	"resonate/internal/models"
	"resonate/internal/observability"
	"resonate/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	AudioURL string   `json:"audio_url"`
	AudioKey string   `json:"audio_key"`
	Duration int      `json:"duration"`
	Tags     []string `json:"tags,omitempty"`
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	viewerID := middleware.ViewerID(c)

	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		UserID:   viewerID,
		AudioURL: req.AudioURL,
		AudioKey: req.AudioKey,
		Duration: req.Duration,
		Tags:     req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// CreateResponse handles POST /api/posts/:id/responses
func (s *Server) CreateResponse(c *fiber.Ctx) error {
	ctx := c.UserContext()
	viewerID := middleware.ViewerID(c)
	parentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	response, err := s.postService.CreateResponse(ctx, service.CreateResponseInput{
		UserID:   viewerID,
		ParentID: parentID,
		AudioURL: req.AudioURL,
		AudioKey: req.AudioKey,
		Duration: req.Duration,
		Tags:     req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	in := parseListQuery(c)

	result, err := s.postService.ListPosts(ctx, in)
	if err != nil {
		return respondServiceError(c, err)
	}

	observability.FeedPages.WithLabelValues(string(in.Sort)).Inc()
	return c.JSON(result)
}

// GetResponses handles GET /api/posts/:id/responses, the response thread
// of one post as a regular paginated listing.
func (s *Server) GetResponses(c *fiber.Ctx) error {
	ctx := c.UserContext()
	parentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	// Confirm the parent itself is visible so a deactivated thread 404s
	// instead of returning an empty page.
	if _, err := s.postService.GetPost(ctx, parentID, middleware.ViewerID(c)); err != nil {
		return respondServiceError(c, err)
	}

	in := parseListQuery(c)
	in.Filters.ParentID = &parentID
	in.Filters.Type = models.PostTypeResponse

	result, err := s.postService.ListPosts(ctx, in)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(result)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(ctx, id, middleware.ViewerID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	viewerID := middleware.ViewerID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(ctx, service.DeletePostInput{
		UserID: viewerID,
		PostID: postID,
	}); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetSavedPosts handles GET /api/me/saved
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	viewerID := middleware.ViewerID(c)

	result, err := s.postService.ListSaved(ctx, viewerID, c.Query("cursor"), c.QueryInt("limit", 0))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(result)
}

// GetNotifications handles GET /api/me/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	ctx := c.UserContext()
	viewerID := middleware.ViewerID(c)

	notifications, err := s.notificationService.ListNotifications(ctx, viewerID, c.QueryInt("limit", 0))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"items": notifications})
}
