package middleware

import (
	"fmt"
	"strings"

	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/config"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Code:    "authorization",
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// OptionalJWT sets the token in locals when a valid bearer token is
// present, but never rejects the request. Listing endpoints use it so
// anonymous browsing still works while authenticated viewers see their
// own unapproved items.
func OptionalJWT(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
					if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
					}
					return []byte(cfg.JWTSecret), nil
				})
				if err == nil && token.Valid {
					c.Locals("user", token)
				}
			}
		}
		return c.Next()
	}
}
