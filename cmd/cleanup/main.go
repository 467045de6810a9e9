package main

import (
	"context"
	"flag"
	"log"

	"dorm-assistant-be/internal/config"
	"dorm-assistant-be/internal/repository/implementation"
	"dorm-assistant-be/pkg/database"
	"dorm-assistant-be/pkg/ragcore/session"

	"github.com/fatih/color"
)

// Removes sessions (and their turns) whose last activity is older than
// the retention window. Meant for cron; safe to run while the API serves
// traffic.
func main() {
	retentionDays := flag.Int("retention-days", 0, "override SESSION_RETENTION_DAYS")
	flag.Parse()

	cfg := config.Load()

	days := cfg.Session.RetentionDays
	if *retentionDays > 0 {
		days = *retentionDays
	}

	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set (in-memory sessions need no sweep)")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}

	manager := session.NewManager(
		implementation.NewSessionStore(db),
		0, // timeout irrelevant for the sweep
		cfg.Session.MaxTurnLen,
	)

	removed, err := manager.Cleanup(context.Background(), days)
	if err != nil {
		log.Fatalf("Error: Cleanup failed: %v", err)
	}

	color.Green("Removed %d inactive sessions (retention %d days).", removed, days)
}
