package server

import (
	"errors"
	"strings"

	"resonate/internal/middleware"
	"resonate/internal/models"
	"resonate/internal/pagination"
	"resonate/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseListQuery assembles a feed page request from the query string.
// Unknown sort values and malformed cursors both degrade to the first
// page of the default ordering rather than erroring.
func parseListQuery(c *fiber.Ctx) service.ListPostsInput {
	filters := pagination.Filters{
		Type: strings.ToUpper(strings.TrimSpace(c.Query("type"))),
		City: strings.TrimSpace(c.Query("city")),
	}
	if rawTags := c.Query("tags"); rawTags != "" {
		for _, t := range strings.Split(rawTags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filters.Tags = append(filters.Tags, t)
			}
		}
	}
	if userID := c.QueryInt("user_id", 0); userID > 0 {
		filters.UserID = uint(userID)
	}

	return service.ListPostsInput{
		Filters:  filters,
		Sort:     pagination.ParseSortOrder(c.Query("sort")),
		Cursor:   c.Query("cursor"),
		Limit:    c.QueryInt("limit", pagination.DefaultLimit),
		ViewerID: middleware.ViewerID(c),
	}
}

// respondServiceError maps an application error onto its HTTP status.
func respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}
