package main

import (
	"net/http"

	"github.com/joho/godotenv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/app"
	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/handlers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug.Println("No .env file found, relying on the environment")
	}

	service, err := app.NewService("config.toml")
	if err != nil {
		logger.Error.Fatalf("Failed to build service: %v", err)
	}
	defer service.Close()

	router := handlers.NewRouter(service)

	logger.Info.Printf("Starting meet-your-modules server on %s", service.Config.Server.Port)
	if service.Config.Server.AdminToken == "" {
		logger.Info.Println("Admin endpoints are open, set an admin token for anything public-facing")
	}
	if err := http.ListenAndServe(service.Config.Server.Port, router); err != nil {
		logger.Error.Fatalf("Server failed: %v", err)
	}
}
