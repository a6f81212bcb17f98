package controller

import (
	"math"
	"time"

	"github.com/gofiber/fiber/v2"

	"humidorhub_backend/internal/model"
	"humidorhub_backend/pkg/database"
	"humidorhub_backend/pkg/utils/jwt"
)

type ReadingInput struct {
	Temperature float64 `json:"temperature" validate:"required"`
	Humidity    float64 `json:"humidity" validate:"required,min=0,max=100"`
	Source      string  `json:"source"`
	RecordedAt  string  `json:"recorded_at"`
}

// AddReading records an environment sample for a humidor. Ownership is
// checked by the route middleware.
func AddReading(c *fiber.Ctx) error {
	id := c.Params("id")

	var humidor model.Humidor
	if err := database.GetDB().First(&humidor, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Humidor not found",
		})
	}

	input := new(ReadingInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if input.Humidity < 0 || input.Humidity > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Humidity must be between 0 and 100",
		})
	}

	source := input.Source
	if source == "" {
		source = model.ReadingSourceManual
	}
	if source != model.ReadingSourceManual && source != model.ReadingSourceSensor {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Source must be manual or sensor",
		})
	}

	recordedAt := time.Now()
	if input.RecordedAt != "" {
		parsed, err := time.Parse(time.RFC3339, input.RecordedAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "recorded_at must be RFC3339",
			})
		}
		recordedAt = parsed
	}

	reading := model.EnvironmentReading{
		HumidorID:   humidor.ID,
		Temperature: input.Temperature,
		Humidity:    input.Humidity,
		Source:      source,
		RecordedAt:  recordedAt,
	}

	if err := database.GetDB().Create(&reading).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save reading",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(reading)
}

// ListReadings returns a humidor's readings, newest first. An optional
// ?days=N window trims the history; default is 30 days.
func ListReadings(c *fiber.Ctx) error {
	id := c.Params("id")

	var humidor model.Humidor
	if err := database.GetDB().First(&humidor, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Humidor not found",
		})
	}

	days := c.QueryInt("days", 30)
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	var readings []model.EnvironmentReading
	if err := database.GetDB().
		Where("humidor_id = ? AND recorded_at >= ?", humidor.ID, since).
		Order("recorded_at desc").
		Find(&readings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch readings",
		})
	}

	return c.JSON(readings)
}

// Drift tolerances before a humidor counts as out of range.
const (
	humidityTolerance    = 3.0  // percentage points
	temperatureTolerance = 4.0  // degrees F
	staleReadingAge      = 48.0 // hours
)

// GetEnvironmentAlerts flags humidors whose latest reading drifted from the
// target climate, or that have gone quiet. The route is premium-gated.
func GetEnvironmentAlerts(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var humidors []model.Humidor
	if err := database.GetDB().Where("user_id = ?", claims.UserID).
		Find(&humidors).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch humidors",
		})
	}

	type alert struct {
		HumidorID   uint    `json:"humidor_id"`
		HumidorName string  `json:"humidor_name"`
		Kind        string  `json:"kind"`
		Measured    float64 `json:"measured,omitempty"`
		Target      float64 `json:"target,omitempty"`
	}

	alerts := []alert{}
	for _, h := range humidors {
		var latest model.EnvironmentReading
		err := database.GetDB().Where("humidor_id = ?", h.ID).
			Order("recorded_at desc").
			First(&latest).Error
		if err != nil {
			continue // no readings yet, nothing to alert on
		}

		if time.Since(latest.RecordedAt).Hours() > staleReadingAge {
			alerts = append(alerts, alert{
				HumidorID: h.ID, HumidorName: h.Name, Kind: "stale_readings",
			})
			continue
		}

		if math.Abs(latest.Humidity-h.TargetHumidity) > humidityTolerance {
			alerts = append(alerts, alert{
				HumidorID: h.ID, HumidorName: h.Name, Kind: "humidity_drift",
				Measured: latest.Humidity, Target: h.TargetHumidity,
			})
		}
		if math.Abs(latest.Temperature-h.TargetTemperature) > temperatureTolerance {
			alerts = append(alerts, alert{
				HumidorID: h.ID, HumidorName: h.Name, Kind: "temperature_drift",
				Measured: latest.Temperature, Target: h.TargetTemperature,
			})
		}
	}

	return c.JSON(fiber.Map{
		"alerts": alerts,
	})
}
