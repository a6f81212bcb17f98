package controller

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"humidorhub_backend/internal/model"
	"humidorhub_backend/pkg/csvio"
	"humidorhub_backend/pkg/database"
	"humidorhub_backend/pkg/entitlement"
	"humidorhub_backend/pkg/utils/jwt"
	"humidorhub_backend/pkg/utils/storage"
)

type CSVController struct {
	svc *entitlement.Service
	log zerolog.Logger
}

func NewCSVController(svc *entitlement.Service, log zerolog.Logger) *CSVController {
	return &CSVController{svc: svc, log: log.With().Str("component", "csv").Logger()}
}

// ExportCigars streams the user's collection as a CSV download. Export is
// available on every tier. Premium exports also get archived to object
// storage so users can re-download past snapshots.
func (ctl *CSVController) ExportCigars(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	rec := ctl.svc.Record(c.Context(), claims.UserID)
	if !ctl.svc.CanExportCSV(rec) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "CSV export is not available on your plan",
		})
	}

	var cigars []model.Cigar
	if err := database.GetDB().Where("user_id = ?", claims.UserID).
		Order("brand ASC, name ASC").
		Find(&cigars).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch cigars",
		})
	}

	var buf bytes.Buffer
	if err := csvio.Write(&buf, cigars); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate CSV",
		})
	}

	if entitlement.ParseTier(rec.Tier) == entitlement.TierPremium {
		key := fmt.Sprintf("exports/%d/%s.csv", claims.UserID, uuid.New().String())
		if _, err := storage.Upload(c.Context(), key, buf.Bytes(), "text/csv"); err != nil {
			// The download still succeeds; the archive copy is best-effort.
			ctl.log.Warn().Err(err).Uint("user_id", claims.UserID).Msg("export archive failed")
		}
	}

	filename := fmt.Sprintf("humidor-export-%s.csv", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}

// ImportCigars loads cigars from an uploaded CSV into a humidor. The route
// is gated on the import entitlement; here we additionally cap the batch so
// the import cannot blow past the tier's item limit.
func (ctl *CSVController) ImportCigars(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var humidor model.Humidor
	if err := database.GetDB().First(&humidor, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Humidor not found",
		})
	}
	if humidor.UserID != claims.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to import into this humidor",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Could not read file",
		})
	}
	defer src.Close()

	cigars, err := csvio.Read(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if len(cigars) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "CSV contains no rows",
		})
	}

	rec := ctl.svc.Record(c.Context(), claims.UserID)

	var currentCount int64
	database.GetDB().Model(&model.Cigar{}).Where("user_id = ?", claims.UserID).Count(&currentCount)

	skipped := 0
	if remaining := ctl.svc.RemainingSlots(rec, int(currentCount)); remaining != nil {
		if *remaining <= 0 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":         "You have reached your cigar limit",
				"current_count": currentCount,
				"max_limit":     ctl.svc.Limits(rec).MaxItems,
			})
		}
		if len(cigars) > *remaining {
			skipped = len(cigars) - *remaining
			cigars = cigars[:*remaining]
		}
	}

	tx := database.GetDB().Begin()
	for i := range cigars {
		cigars[i].UserID = claims.UserID
		cigars[i].HumidorID = humidor.ID
		if err := tx.Create(&cigars[i]).Error; err != nil {
			tx.Rollback()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("Could not import row %d", i+1),
			})
		}
	}
	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not complete import",
		})
	}

	ctl.log.Info().Uint("user_id", claims.UserID).
		Int("imported", len(cigars)).Int("skipped", skipped).
		Msg("csv import finished")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"imported": len(cigars),
		"skipped":  skipped,
	})
}
