package cron

import (
	"log"

	"github.com/robfig/cron/v3"

	"humidorhub_backend/internal/model"
	"humidorhub_backend/pkg/database"
)

// InitQuotaResetCron zeroes every AI usage counter at the start of each
// calendar month, which is the quota period for all tiers.
func InitQuotaResetCron() {
	c := cron.New()

	_, err := c.AddFunc("0 0 1 * *", func() {
		resetAIUsageCounters()
	})

	if err != nil {
		log.Printf("Could not initialize quota reset cron: %v", err)
		return
	}

	c.Start()
}

func resetAIUsageCounters() {
	res := database.DB.
		Model(&model.SubscriptionRecord{}).
		Where("ai_lookups_used > 0").
		Update("ai_lookups_used", 0)

	if res.Error != nil {
		log.Printf("Error resetting AI usage counters: %v", res.Error)
		return
	}

	log.Printf("Reset AI usage counters for %d subscriptions", res.RowsAffected)
}
