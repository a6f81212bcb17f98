package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"humidorhub_backend/internal/model"
	"humidorhub_backend/pkg/database"
	"humidorhub_backend/pkg/entitlement"
	"humidorhub_backend/pkg/utils/jwt"
)

// CheckCigarLimit gates inventory additions on the tier's item limit. The
// current count comes from the inventory tables here; the entitlement
// service itself only consumes the number.
func CheckCigarLimit(svc *entitlement.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)

		rec := svc.Record(c.Context(), claims.UserID)

		var currentCount int64
		database.DB.Model(&model.Cigar{}).Where("user_id = ?", claims.UserID).Count(&currentCount)

		remaining := svc.RemainingSlots(rec, int(currentCount))
		if entitlement.IsAtLimit(remaining) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":         "You have reached your cigar limit. Upgrade to Premium for an unlimited collection.",
				"current_count": currentCount,
				"max_limit":     svc.Limits(rec).MaxItems,
			})
		}

		// Let the client surface an upgrade nudge before the hard stop.
		if entitlement.IsNearLimit(remaining) {
			c.Set("X-Slots-Remaining", strconv.Itoa(*remaining))
		}

		return c.Next()
	}
}

// RequireCSVImport gates the CSV import endpoint.
func RequireCSVImport(svc *entitlement.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)

		rec := svc.Record(c.Context(), claims.UserID)
		if !svc.CanImportCSV(rec) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "CSV import requires a Premium subscription",
			})
		}

		return c.Next()
	}
}

// RequireFeature gates a route on a tier feature flag.
func RequireFeature(svc *entitlement.Service, feature entitlement.Feature) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)

		rec := svc.Record(c.Context(), claims.UserID)
		if !svc.HasFeature(rec, feature) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "This feature requires a higher subscription plan",
			})
		}

		return c.Next()
	}
}

// CheckAIQuota gates AI lookups on the monthly allowance.
func CheckAIQuota(svc *entitlement.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)

		rec := svc.Record(c.Context(), claims.UserID)
		if !svc.CanUseAIFeature(rec) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":      "You have used all of your AI lookups for this month",
				"used":       rec.AILookupsUsed,
				"limit":      svc.Limits(rec).AILookupsPerMonth,
				"resets_on":  "the 1st of next month",
				"upgrade_to": "PREMIUM",
			})
		}

		return c.Next()
	}
}
