package controller

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"humidorhub_backend/internal/model"
	"humidorhub_backend/pkg/database"
	imageutil "humidorhub_backend/pkg/utils/image"
	"humidorhub_backend/pkg/utils/jwt"
	"humidorhub_backend/pkg/utils/storage"
)

type CigarInput struct {
	Brand     string              `json:"brand" validate:"required"`
	Name      string              `json:"name" validate:"required"`
	Shape     string              `json:"shape"`
	LengthIn  float64             `json:"length_in" validate:"min=0"`
	RingGauge int                 `json:"ring_gauge" validate:"min=0"`
	Strength  model.CigarStrength `json:"strength"`
	Wrapper   string              `json:"wrapper"`
	Binder    string              `json:"binder"`
	Filler    string              `json:"filler"`
	Origin    string              `json:"origin"`
	Price     float64             `json:"price" validate:"min=0"`
	Rating    int                 `json:"rating" validate:"min=0,max=100"`
	Quantity  int                 `json:"quantity" validate:"min=1"`

	AIAttributes datatypes.JSON `json:"ai_attributes,omitempty"`
}

// CreateCigar adds a cigar to a humidor. The route passes CheckCigarLimit
// first, so the item limit is already enforced when we get here.
func CreateCigar(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	humidorIDStr := c.Params("humidor_id")
	humidorID, err := strconv.ParseUint(humidorIDStr, 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid humidor ID",
		})
	}

	var humidor model.Humidor
	if err := database.GetDB().First(&humidor, humidorID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Humidor not found",
		})
	}
	if humidor.UserID != claims.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to add cigars to this humidor",
		})
	}

	input := new(CigarInput)
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

	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	cigar := model.Cigar{
		UserID:       claims.UserID,
		HumidorID:    uint(humidorID),
		Brand:        input.Brand,
		Name:         input.Name,
		Shape:        input.Shape,
		LengthIn:     input.LengthIn,
		RingGauge:    input.RingGauge,
		Strength:     input.Strength,
		Wrapper:      input.Wrapper,
		Binder:       input.Binder,
		Filler:       input.Filler,
		Origin:       input.Origin,
		Price:        input.Price,
		Rating:       input.Rating,
		Quantity:     quantity,
		AIAttributes: input.AIAttributes,
	}

	if err := database.GetDB().Create(&cigar).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create cigar",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(cigar)
}

// ListMyCigars lists the user's whole collection across humidors.
func ListMyCigars(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var cigars []model.Cigar
	if err := database.GetDB().Where("user_id = ?", claims.UserID).
		Order("brand ASC, name ASC").
		Find(&cigars).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch cigars",
		})
	}

	return c.JSON(cigars)
}

// UpdateCigar updates a cigar's fields.
func UpdateCigar(c *fiber.Ctx) error {
	id := c.Params("id")
	input := new(CigarInput)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	var cigar model.Cigar
	if err := database.GetDB().First(&cigar, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Cigar not found",
		})
	}

	cigar.Brand = input.Brand
	cigar.Name = input.Name
	cigar.Shape = input.Shape
	cigar.LengthIn = input.LengthIn
	cigar.RingGauge = input.RingGauge
	cigar.Strength = input.Strength
	cigar.Wrapper = input.Wrapper
	cigar.Binder = input.Binder
	cigar.Filler = input.Filler
	cigar.Origin = input.Origin
	cigar.Price = input.Price
	cigar.Rating = input.Rating
	if input.Quantity > 0 {
		cigar.Quantity = input.Quantity
	}
	if len(input.AIAttributes) > 0 {
		cigar.AIAttributes = input.AIAttributes
	}

	if err := database.GetDB().Save(&cigar).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update cigar",
		})
	}

	return c.JSON(cigar)
}

// SmokeCigar decrements quantity and stamps the smoke log.
func SmokeCigar(c *fiber.Ctx) error {
	id := c.Params("id")

	var cigar model.Cigar
	if err := database.GetDB().First(&cigar, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Cigar not found",
		})
	}

	if cigar.Quantity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No cigars of this kind left to smoke",
		})
	}

	now := time.Now()
	cigar.Quantity--
	cigar.LastSmokedAt = &now

	if err := database.GetDB().Save(&cigar).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update cigar",
		})
	}

	return c.JSON(cigar)
}

// DeleteCigar removes a cigar from the collection.
func DeleteCigar(c *fiber.Ctx) error {
	id := c.Params("id")

	var cigar model.Cigar
	if err := database.GetDB().First(&cigar, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Cigar not found",
		})
	}

	if err := database.GetDB().Delete(&cigar).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete cigar",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// UploadCigarImage processes and stores a cigar photo.
func UploadCigarImage(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	id := c.Params("id")

	var cigar model.Cigar
	if err := database.GetDB().First(&cigar, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Cigar not found",
		})
	}
	if cigar.UserID != claims.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to upload images for this cigar",
		})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}

	buf, contentType, err := imageutil.Process(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	key := fmt.Sprintf("cigars/%d/%d/%d", claims.UserID, cigar.ID, time.Now().Unix())
	url, err := storage.Upload(c.Context(), key, buf.Bytes(), contentType)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not upload image",
		})
	}

	cigar.ImageURL = url
	if err := database.GetDB().Save(&cigar).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save image URL",
		})
	}

	return c.JSON(fiber.Map{
		"image_url": url,
	})
}
