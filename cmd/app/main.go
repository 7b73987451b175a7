package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wichananm65/recommendation-console/internal/config"
	"github.com/wichananm65/recommendation-console/internal/console"
	"github.com/wichananm65/recommendation-console/internal/history"
	"github.com/wichananm65/recommendation-console/internal/logging"
	"github.com/wichananm65/recommendation-console/internal/recommendation"
)

// historyCapacity bounds the in-memory history used without DATABASE_URL.
const historyCapacity = 1000

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	app := fiber.New(fiber.Config{
		AppName:               "recommendation-console",
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
	})
	setupCORS(app, cfg.CORSAllowOrigins)
	app.Use(checkMiddleware)

	var repo recommendation.Repository
	if cfg.Offline {
		logging.Warn().Msg("offline mode: recommendations are kept in memory")
		repo = recommendation.NewInMemoryRepository(nil)
	} else {
		repo = recommendation.NewHTTPRepository(recommendation.HTTPConfig{
			BaseURL: cfg.APIURL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.APITimeout,
		})
	}

	var historyRepo history.Repository = history.NewInMemoryRepository(historyCapacity)
	if cfg.DatabaseURL != "" {
		db := mustOpenDB(cfg.DatabaseURL)
		defer db.Close()

		pg := history.NewPostgresRepository(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pg.EnsureSchema(ctx); err != nil {
			cancel()
			logging.Fatal().Err(err).Msg("could not create history table")
		}
		cancel()
		historyRepo = pg
	}
	hist := history.NewService(historyRepo).WithDefaultLimit(cfg.HistoryLimit)

	auth := console.NewAuthenticator(cfg.JWTSecret, cfg.OperatorKeyHash, 0)
	if auth == nil {
		logging.Warn().Msg("CONSOLE_JWT_SECRET is not set; the console is open to anyone who can reach it")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	consoleHandler := console.NewHandler(console.NewController(repo), hist, auth)
	consoleHandler.RegisterPublicRoutes(app)
	consoleHandler.RegisterProtectedRoutes(app)

	go func() {
		logging.Info().Str("addr", cfg.Addr).Str("api", cfg.APIURL).Bool("offline", cfg.Offline).Msg("console listening")
		if err := app.Listen(cfg.Addr); err != nil {
			logging.Fatal().Err(err).Msg("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logging.Error().Err(err).Msg("shutdown")
	}
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func mustOpenDB(dbURL string) *sql.DB {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("open database")
	}

	if err := db.Ping(); err != nil {
		logging.Fatal().Err(err).Msg("ping database")
	}

	return db
}

// checkMiddleware logs every request once it has been handled.
func checkMiddleware(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}
	logging.Info().
		Str("method", c.Method()).
		Str("url", c.OriginalURL()).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Msg("request")
	return err
}
