package middleware

import (
	"github.com/gofiber/fiber/v2"

	"humidorhub_backend/internal/model"
	"humidorhub_backend/pkg/database"
	"humidorhub_backend/pkg/utils/jwt"
)

// CheckHumidorOwnership guards routes with a humidor :id param.
func CheckHumidorOwnership() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)
		humidorID := c.Params("id")

		var humidor model.Humidor
		if err := database.DB.First(&humidor, humidorID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Humidor not found",
			})
		}

		if humidor.UserID != claims.UserID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You don't have permission to access this humidor",
			})
		}

		return c.Next()
	}
}

// CheckCigarOwnership guards routes with a cigar :id param.
func CheckCigarOwnership() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)
		cigarID := c.Params("id")

		var cigar model.Cigar
		if err := database.DB.First(&cigar, cigarID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Cigar not found",
			})
		}

		if cigar.UserID != claims.UserID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You don't have permission to access this cigar",
			})
		}

		return c.Next()
	}
}
