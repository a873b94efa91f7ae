package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"resonate/internal/pagination"
	"resonate/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListQuery(t *testing.T) {
	app := fiber.New()
	var got service.ListPostsInput
	app.Get("/posts", func(c *fiber.Ctx) error {
		got = parseListQuery(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet,
		"/posts?sort=most_saved&cursor=5:12&limit=10&type=post&city=Lisbon&tags=music,%20latenight%20,&user_id=4", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, pagination.SortMostSaved, got.Sort)
	assert.Equal(t, "5:12", got.Cursor)
	assert.Equal(t, 10, got.Limit)
	assert.Equal(t, "POST", got.Filters.Type)
	assert.Equal(t, "Lisbon", got.Filters.City)
	assert.Equal(t, []string{"music", "latenight"}, got.Filters.Tags)
	assert.Equal(t, uint(4), got.Filters.UserID)
	assert.Equal(t, uint(0), got.ViewerID)
}

func TestParseListQueryDefaults(t *testing.T) {
	app := fiber.New()
	var got service.ListPostsInput
	app.Get("/posts", func(c *fiber.Ctx) error {
		got = parseListQuery(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/posts?sort=bogus", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	// Unknown sort degrades to the default ordering, never an error.
	assert.Equal(t, pagination.SortNewest, got.Sort)
	assert.Equal(t, pagination.DefaultLimit, got.Limit)
	assert.Empty(t, got.Filters.Tags)
}

func TestParseID(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/posts/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	tests := []struct {
		path           string
		expectedStatus int
	}{
		{"/posts/12", http.StatusOK},
		{"/posts/0", http.StatusBadRequest},
		{"/posts/-3", http.StatusBadRequest},
		{"/posts/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestLivenessCheck(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/health/live", s.LivenessCheck)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
