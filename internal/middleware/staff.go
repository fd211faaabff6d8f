package middleware

import (
	"strings"

	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/auth"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/config"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/dto"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StaffRequired checks, in order: the is_staff JWT claim, the
// config-based admin email list, and the user's IsStaff flag in the DB.
func StaffRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)

	return func(c *fiber.Ctx) error {
		userID, err := auth.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Code: "authorization", Message: "Unauthorized",
			})
		}

		if auth.IsStaff(c) {
			return c.Next()
		}

		if contains(adminEmails, auth.Email(c)) {
			return c.Next()
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err == nil && user.IsStaff {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Code: "authorization", Message: "Staff access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
