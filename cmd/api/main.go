package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/rs/zerolog"

	"humidorhub_backend/internal/controller"
	"humidorhub_backend/internal/middleware"
	"humidorhub_backend/internal/model"
	"humidorhub_backend/pkg/ai"
	"humidorhub_backend/pkg/cache"
	"humidorhub_backend/pkg/config"
	"humidorhub_backend/pkg/cron"
	"humidorhub_backend/pkg/database"
	"humidorhub_backend/pkg/email"
	"humidorhub_backend/pkg/entitlement"
	"humidorhub_backend/pkg/utils/storage"
)

func setupRoutes(
	app *fiber.App,
	svc *entitlement.Service,
	aiCtl *controller.AIController,
	csvCtl *controller.CSVController,
	subCtl *controller.SubscriptionController,
) {
	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)

	// Protected routes
	protected := api.Group("/", middleware.AuthMiddleware())
	protected.Get("/me", controller.GetMe)

	// Humidor routes
	humidors := protected.Group("/humidors")
	humidors.Post("/", controller.CreateHumidor)
	humidors.Get("/", controller.ListMyHumidors)
	humidors.Get("/:id", middleware.CheckHumidorOwnership(), controller.GetHumidor)
	humidors.Put("/:id", middleware.CheckHumidorOwnership(), controller.UpdateHumidor)
	humidors.Delete("/:id", middleware.CheckHumidorOwnership(), controller.DeleteHumidor)

	// Cigars live under their humidor for creation, flat elsewhere
	humidors.Post("/:humidor_id/cigars", middleware.CheckCigarLimit(svc), controller.CreateCigar)
	humidors.Post("/:id/import", middleware.CheckHumidorOwnership(), middleware.RequireCSVImport(svc), csvCtl.ImportCigars)

	// Environment readings
	humidors.Post("/:id/readings", middleware.CheckHumidorOwnership(), controller.AddReading)
	humidors.Get("/:id/readings", middleware.CheckHumidorOwnership(), controller.ListReadings)
	protected.Get("/alerts", middleware.RequireFeature(svc, entitlement.EnvironmentAlerts), controller.GetEnvironmentAlerts)

	cigars := protected.Group("/cigars")
	cigars.Get("/", controller.ListMyCigars)
	cigars.Put("/:id", middleware.CheckCigarOwnership(), controller.UpdateCigar)
	cigars.Delete("/:id", middleware.CheckCigarOwnership(), controller.DeleteCigar)
	cigars.Post("/:id/smoke", middleware.CheckCigarOwnership(), controller.SmokeCigar)
	cigars.Post("/:id/image", middleware.CheckCigarOwnership(), controller.UploadCigarImage)
	cigars.Get("/export", csvCtl.ExportCigars)

	// AI autofill
	aiGroup := protected.Group("/ai")
	aiGroup.Post("/autofill", middleware.CheckAIQuota(svc), aiCtl.AutofillCigar)

	// Dashboard
	dashboard := api.Group("/dashboard", middleware.AuthMiddleware())
	dashboard.Get("/stats", controller.GetDashboardStats)
	dashboard.Get("/analytics", middleware.RequireFeature(svc, entitlement.AdvancedAnalytics), controller.GetCollectionAnalytics)

	// Subscription routes
	subscriptions := api.Group("/subscriptions", middleware.AuthMiddleware())
	subscriptions.Get("/my", subCtl.GetMySubscription)
	subscriptions.Post("/create-checkout-session", subCtl.CreateCheckoutSession)
	subscriptions.Post("/cancel-subscription", subCtl.CancelSubscription)

	// Stripe webhook (unauthenticated, signature-verified)
	api.Post("/webhook", subCtl.HandleStripeWebhook)
}

func main() {
	cfg := config.Load()

	zlog := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := email.InitEmailService(os.Getenv("RESEND_API_KEY")); err != nil {
		log.Printf("Email service disabled: %v", err)
	}

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is not set in .env")
	}

	database.InitDB(cfg.Database.URL)
	err := database.MigrateDatabase(
		&model.User{},
		&model.SubscriptionRecord{},
		&model.Humidor{},
		&model.Cigar{},
		&model.EnvironmentReading{},
	)
	if err != nil {
		log.Printf("Migration warning: %v", err)
	}

	if err := storage.InitStorage(); err != nil {
		log.Printf("Object storage disabled: %v", err)
	}

	redis, err := cache.NewRedisFromURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal("Could not connect to Redis:", err)
	}
	defer redis.Close()

	backend := entitlement.NewGormBackend(database.GetDB())
	store := entitlement.NewStore(backend, zlog)
	svc := entitlement.NewService(store, zlog)

	aiClient := ai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model)
	autofill := ai.NewAutofillService(aiClient, ai.NewAutofillCache(redis))

	aiCtl := controller.NewAIController(svc, autofill, zlog)
	csvCtl := controller.NewCSVController(svc, zlog)
	subCtl := controller.NewSubscriptionController(svc, cfg.Stripe, zlog)

	cron.InitSubscriptionExpiryCron(svc)
	cron.InitQuotaResetCron()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	setupRoutes(app, svc, aiCtl, csvCtl, subCtl)

	log.Printf("Server is running on port %s", cfg.Server.Port)
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
