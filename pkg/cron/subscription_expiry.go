package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"humidorhub_backend/internal/model"
	"humidorhub_backend/pkg/database"
	"humidorhub_backend/pkg/email"
	"humidorhub_backend/pkg/entitlement"
)

// InitSubscriptionExpiryCron schedules the daily premium sweep: warning
// emails ahead of the renewal date, then a soft downgrade for records whose
// renewal date has passed without a billing event.
func InitSubscriptionExpiryCron(svc *entitlement.Service) {
	c := cron.New()

	_, err := c.AddFunc("0 9 * * *", func() {
		warnExpiringSubscriptions()
		downgradeLapsedSubscriptions(svc)
	})

	if err != nil {
		log.Printf("Could not initialize subscription expiry cron: %v", err)
		return
	}

	c.Start()
}

func warnExpiringSubscriptions() {
	log.Println("Checking for expiring premium subscriptions...")

	warningDays := []int{7, 3}

	for _, days := range warningDays {
		var recs []model.SubscriptionRecord
		targetDate := time.Now().AddDate(0, 0, days).Format("2006-01-02")

		err := database.DB.
			Where("tier = ? AND status = ? AND DATE(renews_on) = ?",
				string(entitlement.TierPremium), model.SubscriptionStatusActive, targetDate).
			Preload("User").
			Find(&recs).Error

		if err != nil {
			log.Printf("Error fetching expiring subscriptions: %v", err)
			continue
		}

		for _, rec := range recs {
			if email.GlobalEmailService == nil || rec.RenewsOn == nil {
				continue
			}
			err := email.GlobalEmailService.SendExpiryWarningEmail(
				rec.User.Email,
				rec.User.Username,
				*rec.RenewsOn,
				days,
			)
			if err != nil {
				log.Printf("Error sending expiry warning to %s: %v", rec.User.Email, err)
			}
		}
	}
}

// downgradeLapsedSubscriptions is the soft expiry: a premium record whose
// renewal date passed without a billing webhook drops back to FREE. Nothing
// is deleted; the record and the user's data stay.
func downgradeLapsedSubscriptions(svc *entitlement.Service) {
	var recs []model.SubscriptionRecord

	err := database.DB.
		Where("tier = ? AND renews_on < ?", string(entitlement.TierPremium), time.Now()).
		Find(&recs).Error

	if err != nil {
		log.Printf("Error fetching lapsed subscriptions: %v", err)
		return
	}

	for _, rec := range recs {
		if _, err := svc.ChangeTier(context.Background(), rec.UserID, entitlement.TierFree, nil); err != nil {
			log.Printf("Error downgrading lapsed subscription for user %d: %v", rec.UserID, err)
		}
	}

	if len(recs) > 0 {
		log.Printf("Downgraded %d lapsed premium subscriptions", len(recs))
	}
}
