package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"humidorhub_backend/internal/model"
	"humidorhub_backend/pkg/database"
	"humidorhub_backend/pkg/utils/jwt"
)

type HumidorInput struct {
	Name              string            `json:"name" validate:"required"`
	Description       string            `json:"description"`
	Type              model.HumidorType `json:"type"`
	Capacity          int               `json:"capacity" validate:"min=0"`
	TargetHumidity    float64           `json:"target_humidity"`
	TargetTemperature float64           `json:"target_temperature"`
}

// CreateHumidor creates a humidor for the authenticated user. Humidors are
// not counted against the item limit; cigars are.
func CreateHumidor(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	input := new(HumidorInput)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Humidor name is required",
		})
	}

	humidor := model.Humidor{
		UserID:            claims.UserID,
		Name:              input.Name,
		Description:       input.Description,
		Type:              input.Type,
		Capacity:          input.Capacity,
		TargetHumidity:    input.TargetHumidity,
		TargetTemperature: input.TargetTemperature,
	}

	if err := database.GetDB().Create(&humidor).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create humidor",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(humidor)
}

// ListMyHumidors returns the user's humidors with cigar counts.
func ListMyHumidors(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var humidors []model.Humidor
	if err := database.GetDB().Where("user_id = ?", claims.UserID).
		Order("created_at desc").
		Find(&humidors).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch humidors",
		})
	}

	type humidorWithCount struct {
		model.Humidor
		CigarCount int64 `json:"cigar_count"`
	}

	result := make([]humidorWithCount, 0, len(humidors))
	for _, h := range humidors {
		var count int64
		database.GetDB().Model(&model.Cigar{}).Where("humidor_id = ?", h.ID).Count(&count)
		result = append(result, humidorWithCount{Humidor: h, CigarCount: count})
	}

	return c.JSON(result)
}

// GetHumidor returns one humidor with its cigars.
func GetHumidor(c *fiber.Ctx) error {
	id := c.Params("id")

	var humidor model.Humidor
	if err := database.GetDB().
		Preload("Cigars", func(db *gorm.DB) *gorm.DB {
			return db.Order("cigars.brand ASC, cigars.name ASC")
		}).
		First(&humidor, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Humidor not found",
		})
	}

	return c.JSON(humidor)
}

// UpdateHumidor updates a humidor's settings.
func UpdateHumidor(c *fiber.Ctx) error {
	id := c.Params("id")
	input := new(HumidorInput)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	var humidor model.Humidor
	if err := database.GetDB().First(&humidor, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Humidor not found",
		})
	}

	humidor.Name = input.Name
	humidor.Description = input.Description
	humidor.Type = input.Type
	humidor.Capacity = input.Capacity
	humidor.TargetHumidity = input.TargetHumidity
	humidor.TargetTemperature = input.TargetTemperature

	if err := database.GetDB().Save(&humidor).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update humidor",
		})
	}

	return c.JSON(humidor)
}

// DeleteHumidor deletes a humidor and its cigars and readings.
func DeleteHumidor(c *fiber.Ctx) error {
	id := c.Params("id")

	var humidor model.Humidor
	if err := database.GetDB().First(&humidor, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Humidor not found",
		})
	}

	tx := database.GetDB().Begin()

	if err := tx.Where("humidor_id = ?", humidor.ID).Delete(&model.Cigar{}).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete cigars",
		})
	}

	if err := tx.Where("humidor_id = ?", humidor.ID).Delete(&model.EnvironmentReading{}).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete readings",
		})
	}

	if err := tx.Delete(&humidor).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete humidor",
		})
	}

	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not complete deletion",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
