package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"humidorhub_backend/pkg/ai"
	"humidorhub_backend/pkg/entitlement"
	"humidorhub_backend/pkg/utils/jwt"
)

type AIController struct {
	svc      *entitlement.Service
	autofill *ai.AutofillService
	log      zerolog.Logger
}

func NewAIController(svc *entitlement.Service, autofill *ai.AutofillService, log zerolog.Logger) *AIController {
	return &AIController{
		svc:      svc,
		autofill: autofill,
		log:      log.With().Str("component", "ai").Logger(),
	}
}

type AutofillInput struct {
	Brand string `json:"brand" validate:"required"`
	Name  string `json:"name" validate:"required"`
}

// AutofillCigar looks up a cigar's attributes. The quota gate runs as route
// middleware; usage is recorded here only for lookups that actually hit the
// model, so cache hits stay free.
func (ctl *AIController) AutofillCigar(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(AutofillInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if input.Brand == "" || input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Brand and name are required",
		})
	}

	details, cached, err := ctl.autofill.Lookup(c.Context(), input.Brand, input.Name)
	if err != nil {
		ctl.log.Error().Err(err).
			Str("brand", input.Brand).Str("name", input.Name).
			Msg("autofill lookup failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Could not look up cigar details right now",
		})
	}

	usage := ctl.svc.Record(c.Context(), claims.UserID)
	if !cached {
		// Best effort: a failed usage write must not lose the user's result.
		updated, err := ctl.svc.RecordAIUsage(c.Context(), claims.UserID)
		if err != nil {
			ctl.log.Warn().Err(err).Uint("user_id", claims.UserID).Msg("could not record AI usage")
		} else {
			usage = updated
		}
	}

	return c.JSON(fiber.Map{
		"details": details,
		"cached":  cached,
		"usage": fiber.Map{
			"used":  usage.AILookupsUsed,
			"limit": ctl.svc.Limits(usage).AILookupsPerMonth,
		},
	})
}
