package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"elpunto/internal/config"
	"elpunto/internal/database"
	"elpunto/internal/handlers"
	"elpunto/internal/logger"
	"elpunto/internal/middleware"
	"elpunto/internal/repositories"
	"elpunto/internal/services"
	"elpunto/internal/uploads"
	"elpunto/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())

	app, closeApp, err := NewApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}

	// --- Start HTTP Server ---
	log.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Msg("starting server")

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during fiber shutdown")
	}
	closeApp()
	log.Info().Msg("server gracefully stopped")
}

// NewApp builds the fiber app and everything behind it. The returned func
// releases the database and broker connections.
func NewApp(cfg config.Config) (*fiber.App, func(), error) {
	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access database handle: %w", err)
	}

	// --- Uploads ---
	store, err := uploads.NewStore(cfg.UploadDir, cfg.AllowedExtensions)
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}

	// --- RabbitMQ (optional) ---
	// A nil interface value turns notifications off; never store a nil
	// *rabbitmq.Client in it.
	var notifier services.Notifier
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		notifier = mqClient
	}

	closeAll := func() {
		if mqClient != nil {
			if err := mqClient.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close RabbitMQ client")
			}
		}
		if err := sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	sessionRepo := repositories.NewGORMSessionRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	forumRepo := repositories.NewGORMForumRepository(db)
	galleryRepo := repositories.NewGORMGalleryRepository(db)
	eventRepo := repositories.NewGORMEventRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, notifier)
	sessionService := services.NewSessionService(sessionRepo, userRepo, services.SessionConfig{
		Secret:      cfg.SecretKey,
		SessionTTL:  cfg.SessionTTL,
		RememberTTL: cfg.RememberTTL,
	})
	productService := services.NewProductService(productRepo)
	galleryService := services.NewGalleryService(galleryRepo, store, notifier)
	forumService := services.NewForumService(forumRepo, notifier)
	profileService := services.NewProfileService(userRepo, store, notifier)
	adminService := services.NewAdminService(repositories.NewGORMTransactor(db), notifier)
	catalogService := services.NewCatalogService(userRepo, eventRepo, galleryRepo, productService)

	if cfg.AdminUsername != "" {
		if _, err := authService.EnsureAdmin(cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to bootstrap admin %s: %w", cfg.AdminUsername, err)
		}
	}

	// --- Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      "El Punto Gaming",
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(fiberlogger.New()) // Request logger
	app.Use(middleware.Flashes())
	app.Use(middleware.LoadIdentity(sessionService))
	app.Use(middleware.CSRF(cfg.CookieSecure))

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status, dbStatus, code := "healthy", "connected", fiber.StatusOK
		if err := sqlDB.Ping(); err != nil {
			status, dbStatus, code = "unhealthy", "unreachable", fiber.StatusServiceUnavailable
		}
		mqStatus := "disabled"
		if mqClient != nil {
			mqStatus = "connected"
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
			"rabbitmq": mqStatus,
		})
	})

	// --- Routes ---
	var loginGuards []fiber.Handler
	if cfg.LoginRateLimit > 0 {
		loginGuards = append(loginGuards, limiter.New(limiter.Config{
			Max:        cfg.LoginRateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return fiber.NewError(fiber.StatusTooManyRequests, "Demasiados intentos de inicio de sesión. Espera un minuto.")
			},
		}))
	}
	handlers.NewAuthHandler(authService, sessionService, handlers.CookieConfig{Secure: cfg.CookieSecure}).RegisterRoutes(app, loginGuards...)
	handlers.NewPageHandler(catalogService, productService, galleryService).RegisterRoutes(app)
	handlers.NewForumHandler(forumService).RegisterRoutes(app)
	handlers.NewGalleryHandler(galleryService).RegisterRoutes(app)
	handlers.NewProfileHandler(profileService).RegisterRoutes(app)
	handlers.NewAdminHandler(adminService).RegisterRoutes(app)
	handlers.NewFileHandler(store).RegisterRoutes(app)

	return app, closeAll, nil
}
