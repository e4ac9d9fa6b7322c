package main

import (
	"log"
	"os"

	"presalecontrol/internal/events"
	"presalecontrol/internal/routes"
	"presalecontrol/pkg/config"
	"presalecontrol/schedule"
)

func main() {
	// Initialize database
	config.InitDB()

	// Run SQL migrations when requested
	if os.Getenv("RUN_MIGRATIONS") == "true" {
		config.ExecuteMigrations()
	}

	// Initialize RabbitMQ (optional, will log warning if not configured)
	if os.Getenv("RABBITMQ_HOST") != "" {
		config.InitRabbitMQ()
		defer func() {
			if config.RabbitMQ != nil {
				config.RabbitMQ.Close()
			}
		}()
		if err := events.InitPublisher(); err != nil {
			log.Println("Event publisher init failed:", err)
		} else {
			log.Println("RabbitMQ initialized successfully")
		}
	} else {
		log.Println("RabbitMQ not configured, skipping initialization")
	}

	// Start the presale lifecycle scheduler unless disabled
	if os.Getenv("DISABLE_SCHEDULER") != "true" {
		cronRunner, err := schedule.StartScheduler()
		if err != nil {
			log.Fatal("Failed to start scheduler:", err)
		}
		defer cronRunner.Stop()
	}

	// Set up router
	r := routes.SetupRouter()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
