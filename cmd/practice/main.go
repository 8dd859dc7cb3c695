package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/jesses-code-adventures/practice/internal/config"
	"github.com/jesses-code-adventures/practice/internal/database"
	"github.com/jesses-code-adventures/practice/internal/logger"
	"github.com/jesses-code-adventures/practice/internal/models"
	"github.com/jesses-code-adventures/practice/internal/readmodel"
	"github.com/jesses-code-adventures/practice/internal/service"
)

// Set at build time with -ldflags "-X main.dbConn=...".
var (
	dbConn   string
	dbDriver string
	devMode  string
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			fmt.Fprintln(os.Stderr, "Access Denied")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(dbConn, dbDriver, devMode)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := logger.Setup(logger.LogConfig{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		TimeFormat: cfg.LogTimeFormat,
		Output:     cfg.LogOutput,
	}); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	store, err := database.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to document store: %w", err)
	}
	defer store.Close()

	// The activity log is best effort, like the writes to it.
	var activity database.ActivityLog
	if sqlLog, err := database.OpenActivityLog(ctx, cfg.ActivityDriver, cfg.ActivityURL); err != nil {
		log.Warn().Err(err).Str("driver", cfg.ActivityDriver).Msg("activity log unavailable")
	} else {
		defer sqlLog.Close()
		activity = sqlLog
	}

	next, _ := models.ParseBillStatus(cfg.NextBillStatus)
	svc := service.New(store, activity, readmodel.New(store, cfg.ReadModelTTL), cfg.Actor(), service.Options{
		NextBillStatus: next,
		Logger:         logger.WithComponent("service"),
	})

	return newRootCmd(&app{cfg: cfg, svc: svc}).ExecuteContext(ctx)
}
