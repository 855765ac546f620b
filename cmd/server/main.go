package main

import (
	"context"
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/bookcircle/backend/internal/router"
	"github.com/bookcircle/backend/pkg/config"
	"github.com/bookcircle/backend/pkg/firebase"
	"github.com/bookcircle/backend/pkg/storage"
	"github.com/bookcircle/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	ctx := context.Background()

	// Initialize object storage for book images
	imageStore, err := storage.NewS3ImageStore(ctx, cfg.S3Bucket, cfg.S3PublicURL)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// Firebase sign-in is optional; without credentials only local
	// email/password auth is available
	var firebaseAuthClient *auth.Client
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		firebaseAuthClient = firebaseApp.AuthClient
	} else {
		log.Println("No Firebase credentials configured, skipping Firebase sign-in.")
	}

	// Create Echo instance
	e := echo.New()

	// Validator
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, cfg, db.Mongo, db.Postgres, imageStore, firebaseAuthClient)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
