package controller

import (
	"github.com/gofiber/fiber/v2"

	"humidorhub_backend/internal/model"
	"humidorhub_backend/pkg/database"
	"humidorhub_backend/pkg/utils/jwt"
)

// GetDashboardStats returns the headline numbers for the user's collection.
func GetDashboardStats(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	db := database.GetDB()

	var humidorCount int64
	db.Model(&model.Humidor{}).Where("user_id = ?", claims.UserID).Count(&humidorCount)

	var cigarCount int64
	db.Model(&model.Cigar{}).Where("user_id = ?", claims.UserID).Count(&cigarCount)

	var totalSticks struct {
		Total int64
	}
	db.Model(&model.Cigar{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("user_id = ?", claims.UserID).
		Scan(&totalSticks)

	var collectionValue struct {
		Total float64
	}
	db.Model(&model.Cigar{}).
		Select("COALESCE(SUM(price * quantity), 0) as total").
		Where("user_id = ?", claims.UserID).
		Scan(&collectionValue)

	return c.JSON(fiber.Map{
		"humidors":         humidorCount,
		"cigars":           cigarCount,
		"total_sticks":     totalSticks.Total,
		"collection_value": collectionValue.Total,
	})
}

// GetCollectionAnalytics breaks the collection down by strength, origin and
// brand. The route is gated on the advanced analytics feature.
func GetCollectionAnalytics(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	db := database.GetDB()

	type bucket struct {
		Key   string `json:"key"`
		Count int64  `json:"count"`
	}

	var byStrength []bucket
	db.Model(&model.Cigar{}).
		Select("strength as key, COALESCE(SUM(quantity), 0) as count").
		Where("user_id = ? AND strength <> ''", claims.UserID).
		Group("strength").
		Order("count desc").
		Scan(&byStrength)

	var byOrigin []bucket
	db.Model(&model.Cigar{}).
		Select("origin as key, COALESCE(SUM(quantity), 0) as count").
		Where("user_id = ? AND origin <> ''", claims.UserID).
		Group("origin").
		Order("count desc").
		Scan(&byOrigin)

	var topBrands []bucket
	db.Model(&model.Cigar{}).
		Select("brand as key, COALESCE(SUM(quantity), 0) as count").
		Where("user_id = ?", claims.UserID).
		Group("brand").
		Order("count desc").
		Limit(10).
		Scan(&topBrands)

	var avgRating struct {
		Avg float64
	}
	db.Model(&model.Cigar{}).
		Select("COALESCE(AVG(rating), 0) as avg").
		Where("user_id = ? AND rating > 0", claims.UserID).
		Scan(&avgRating)

	var smokedCount int64
	db.Model(&model.Cigar{}).
		Where("user_id = ? AND last_smoked_at IS NOT NULL", claims.UserID).
		Count(&smokedCount)

	return c.JSON(fiber.Map{
		"by_strength":    byStrength,
		"by_origin":      byOrigin,
		"top_brands":     topBrands,
		"average_rating": avgRating.Avg,
		"smoked_kinds":   smokedCount,
	})
}
