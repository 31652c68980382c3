package main

import (
	"log"

	"ops-assistant-be/internal/config"
	"ops-assistant-be/internal/model"
	"ops-assistant-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}

	// pgvector must exist before the chunk table's vector column migrates.
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		log.Fatalf("Failed to create pgvector extension: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Document{},
		&model.DocumentChunk{},
		&model.GenerationRun{},
	); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	color.Green("Migration completed: documents, document_chunks, generation_runs")
}
