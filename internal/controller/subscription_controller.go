package controller

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v74"
	checkoutsession "github.com/stripe/stripe-go/v74/checkout/session"
	stripesub "github.com/stripe/stripe-go/v74/subscription"
	"github.com/stripe/stripe-go/v74/webhook"

	"humidorhub_backend/internal/model"
	"humidorhub_backend/pkg/config"
	"humidorhub_backend/pkg/database"
	"humidorhub_backend/pkg/email"
	"humidorhub_backend/pkg/entitlement"
	"humidorhub_backend/pkg/utils/jwt"
)

type SubscriptionController struct {
	svc *entitlement.Service
	cfg config.StripeConfig
	log zerolog.Logger
}

func NewSubscriptionController(svc *entitlement.Service, cfg config.StripeConfig, logger zerolog.Logger) *SubscriptionController {
	stripe.Key = cfg.SecretKey
	return &SubscriptionController{
		svc: svc,
		cfg: cfg,
		log: logger.With().Str("component", "subscription").Logger(),
	}
}

// GetMySubscription returns the user's subscription record with the derived
// tier limits. Every user gets a record; free users simply get the default.
func (ctl *SubscriptionController) GetMySubscription(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	rec := ctl.svc.Record(c.Context(), claims.UserID)
	limits := ctl.svc.Limits(rec)

	var currentCount int64
	database.GetDB().Model(&model.Cigar{}).Where("user_id = ?", claims.UserID).Count(&currentCount)

	resp := fiber.Map{
		"subscription": rec,
		"limits": fiber.Map{
			"max_items":            limits.MaxItems,
			"can_import_csv":       limits.CSVImportAllowed,
			"can_export_csv":       limits.CSVExportAllowed,
			"ai_lookups_per_month": limits.AILookupsPerMonth,
			"features":             limits.Features,
		},
		"item_count": currentCount,
	}
	if remaining := ctl.svc.RemainingSlots(rec, int(currentCount)); remaining != nil {
		resp["remaining_slots"] = *remaining
	}

	return c.JSON(resp)
}

// CreateCheckoutSession starts a Stripe Checkout flow for the premium plan.
// The user ID rides along as the client reference so the webhook can map the
// completed session back to an account.
func (ctl *SubscriptionController) CreateCheckoutSession(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	rec := ctl.svc.Record(c.Context(), claims.UserID)
	if entitlement.ParseTier(rec.Tier) == entitlement.TierPremium {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You already have a Premium subscription",
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		ClientReferenceID: stripe.String(strconv.FormatUint(uint64(claims.UserID), 10)),
		CustomerEmail:     stripe.String(claims.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(ctl.cfg.PremiumPrice),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(ctl.cfg.SuccessURL),
		CancelURL:  stripe.String(ctl.cfg.CancelURL),
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		ctl.log.Error().Err(err).Uint("user_id", claims.UserID).Msg("checkout session failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not start checkout",
		})
	}

	return c.JSON(fiber.Map{
		"checkout_url": sess.URL,
	})
}

// CancelSubscription cancels the Stripe subscription at period end. The user
// keeps premium until renewsOn; the downgrade lands via the deletion webhook.
func (ctl *SubscriptionController) CancelSubscription(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	rec := ctl.svc.Record(c.Context(), claims.UserID)
	if entitlement.ParseTier(rec.Tier) != entitlement.TierPremium || rec.StripeSubscriptionID == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active subscription found",
		})
	}

	_, err := stripesub.Update(rec.StripeSubscriptionID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not cancel subscription",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Subscription will end at the close of the current period",
	})
}

// HandleStripeWebhook applies billing events to the entitlement record.
func (ctl *SubscriptionController) HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	signatureHeader := c.Get("Stripe-Signature")

	event, err := webhook.ConstructEvent(payload, signatureHeader, ctl.cfg.WebhookSecret)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook signature",
		})
	}

	ctl.log.Info().Str("event", string(event.Type)).Msg("processing stripe webhook")

	switch event.Type {
	case "checkout.session.completed":
		var sess struct {
			ClientReferenceID string `json:"client_reference_id"`
			Customer          string `json:"customer"`
			Subscription      string `json:"subscription"`
		}
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return c.Status(fiber.StatusBadRequest).Send(nil)
		}

		userID64, err := strconv.ParseUint(sess.ClientReferenceID, 10, 32)
		if err != nil {
			ctl.log.Error().Str("ref", sess.ClientReferenceID).Msg("checkout session without usable reference")
			return c.SendStatus(fiber.StatusOK)
		}
		userID := uint(userID64)

		var renewsOn *time.Time
		if sess.Subscription != "" {
			if stripeSub, err := stripesub.Get(sess.Subscription, nil); err == nil {
				t := time.Unix(stripeSub.CurrentPeriodEnd, 0)
				renewsOn = &t
			}
		}

		if _, err := ctl.svc.ChangeTier(c.Context(), userID, entitlement.TierPremium, renewsOn); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not activate subscription",
			})
		}

		if err := database.GetDB().Model(&model.SubscriptionRecord{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"stripe_customer_id":     sess.Customer,
				"stripe_subscription_id": sess.Subscription,
			}).Error; err != nil {
			ctl.log.Warn().Err(err).Uint("user_id", userID).Msg("could not store billing references")
		}

		ctl.sendPremiumStartedEmail(userID, renewsOn)

	case "customer.subscription.updated":
		var subData struct {
			ID               string `json:"id"`
			Status           string `json:"status"`
			CurrentPeriodEnd int64  `json:"current_period_end"`
		}
		if err := json.Unmarshal(event.Data.Raw, &subData); err != nil {
			return c.Status(fiber.StatusBadRequest).Send(nil)
		}

		if subData.Status != "active" {
			return c.SendStatus(fiber.StatusOK)
		}

		renewsOn := time.Unix(subData.CurrentPeriodEnd, 0)
		if err := database.GetDB().Model(&model.SubscriptionRecord{}).
			Where("stripe_subscription_id = ?", subData.ID).
			Update("renews_on", renewsOn).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not update renewal date",
			})
		}

	case "customer.subscription.deleted":
		var subData struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(event.Data.Raw, &subData); err != nil {
			return c.Status(fiber.StatusBadRequest).Send(nil)
		}

		var rec model.SubscriptionRecord
		if err := database.GetDB().Where("stripe_subscription_id = ?", subData.ID).First(&rec).Error; err != nil {
			// Already downgraded or never tracked; nothing to do.
			return c.SendStatus(fiber.StatusOK)
		}

		if _, err := ctl.svc.ChangeTier(c.Context(), rec.UserID, entitlement.TierFree, nil); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not downgrade subscription",
			})
		}

		ctl.log.Info().Uint("user_id", rec.UserID).Msg("subscription ended, downgraded to free")
	}

	return c.SendStatus(fiber.StatusOK)
}

func (ctl *SubscriptionController) sendPremiumStartedEmail(userID uint, renewsOn *time.Time) {
	if email.GlobalEmailService == nil {
		return
	}

	var user model.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		return
	}

	renewal := time.Now().AddDate(0, 1, 0)
	if renewsOn != nil {
		renewal = *renewsOn
	}

	if err := email.GlobalEmailService.SendPremiumStartedEmail(user.Email, user.Username, renewal); err != nil {
		log.Printf("Could not send premium welcome email: %v", err)
	}
}
