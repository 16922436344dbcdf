package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"points-ledger-system/handlers"
	"points-ledger-system/models"
	"points-ledger-system/services"
	"points-ledger-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Whop-User-Id, X-Whop-Company-Id, X-Whop-Username, X-Whop-Email, X-Whop-Role",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.PointTransaction{},
		&models.LeaderboardStat{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	memberService := services.NewMemberService(db)
	categoryService := services.NewCategoryService(db)
	ledgerService := services.NewLedgerService(db)
	leaderboardService := services.NewLeaderboardService(db)
	statsService := services.NewStatsService(db)

	if err := categoryService.SeedDefaults(); err != nil {
		log.Fatal("failed to seed default categories:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Snapshot refreshes run off the request path: the ledger enqueues, the
	// worker recomputes.
	refreshWorker := workers.NewStatsRefreshWorker(statsService)
	refreshWorker.Start(ctx)
	ledgerService.Notifier = refreshWorker

	// Periodic sweep keeps windowed snapshots fresh between adjustments.
	statsService.StartRefreshScheduler(10 * time.Minute)

	// Optional member mirror from the Whop API.
	if apiKey, companyID := os.Getenv("WHOP_API_KEY"), os.Getenv("WHOP_COMPANY_ID"); apiKey != "" && companyID != "" {
		whopClient := services.NewWhopClient(os.Getenv("WHOP_API_URL"), apiKey)
		syncWorker := workers.NewMemberSyncWorker(memberService, whopClient, companyID)
		syncWorker.Start(ctx)
	} else {
		log.Println("⚠️  WHOP_API_KEY / WHOP_COMPANY_ID not set — member sync worker disabled")
	}

	handlers.SetupWebhookRoutes(app, memberService)
	handlers.SetupPointsRoutes(app, memberService, ledgerService)
	handlers.SetupLeaderboardRoutes(app, memberService, leaderboardService)
	handlers.SetupCategoryRoutes(app, categoryService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Stats Refresh Worker running")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
