package middleware

import (
	"context"
	"strconv"
	"strings"

	"resonate/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// viewerFromToken parses a bearer token and returns the viewer id from the
// subject claim. Token issuance lives in the identity service; this core
// only verifies.
func viewerFromToken(tokenString, secret string) (uint, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	viewerID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(viewerID), true
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// AuthRequired enforces an authenticated viewer for write routes.
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		viewerID, ok := viewerFromToken(token, secret)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		c.Locals("viewerID", viewerID)
		ctx := context.WithValue(c.UserContext(), ViewerIDKey, viewerID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// OptionalViewer resolves the viewer on read routes without enforcing
// authentication; anonymous requests proceed with viewer id 0.
func OptionalViewer(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if viewerID, ok := viewerFromToken(token, secret); ok {
				c.Locals("viewerID", viewerID)
				ctx := context.WithValue(c.UserContext(), ViewerIDKey, viewerID)
				c.SetUserContext(ctx)
			}
		}
		return c.Next()
	}
}

// ViewerID reads the resolved viewer id from Fiber locals (0 = anonymous).
func ViewerID(c *fiber.Ctx) uint {
	if v, ok := c.Locals("viewerID").(uint); ok {
		return v
	}
	return 0
}
