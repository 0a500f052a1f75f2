package main

import (
	"context"
	"log"
	"os"
	"time"

	"receiving/cmd"
	"receiving/internal/container"
	"receiving/internal/database"
	"receiving/internal/middleware"
	"receiving/internal/rate_limiter"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load .env file, but don't overwrite system environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, falling back to system environment variables.")
	}

	// Execute migration CMD
	cmd.Execute(ctx)
}

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	// Connect to the database
	db, err := database.NewPostgresConnection(dbURL)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer db.Close()

	log.Println("Connected to the database successfully!")

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := database.RunMigrations(db, "./migrations"); err != nil {
			log.Fatalf("Migrations failed: %v", err)
		}
	}

	app := container.NewAppContainer(db)
	defer app.Logger.Sync()

	// Refuse to serve against a receiving_lines table missing required columns.
	if err := app.Repository.CheckSchema(); err != nil {
		log.Fatalf("Schema check failed: %v", err)
	}

	router := gin.Default()
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.TimeoutMiddleware(30 * time.Second))
	router.Use(rate_limiter.Middleware(300, time.Minute))

	app.LoginHandler.RegisterRoutes(router)
	app.CheckHandler.RegisterRoutes(router)
	app.InboundHandler.RegisterRoutes(router)
	app.IntakeHandler.RegisterRoutes(router)
	app.SessionHandler.RegisterRoutes(router)
	app.UserHandler.RegisterRoutes(router)

	router.GET("/health", middleware.HealthCheckMiddleware())

	if err := router.Run(os.Getenv("APP_HOST")); err != nil {
		panic(err)
	}
}
