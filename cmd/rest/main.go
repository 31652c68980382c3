package main

import (
	"context"
	"log"

	"ops-assistant-be/internal/bootstrap"
	"ops-assistant-be/internal/config"
	"ops-assistant-be/internal/server"
	"ops-assistant-be/internal/tracer"
	"ops-assistant-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	// 0. Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Configuration
	cfg := config.Load()

	// 2. Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Dependency container
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Background consumer: forwards ingestion events to NATS
	go func() {
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. HTTP server
	srv := server.New(cfg, container)

	color.Green("ops-assistant backend ready (env: %s)", cfg.App.Environment)
	log.Fatal(srv.Run())
}
