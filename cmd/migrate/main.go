package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handwerk/backoffice/internal/infrastructure/config"
	"github.com/handwerk/backoffice/internal/infrastructure/logger"
	"github.com/handwerk/backoffice/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("database", cfg.Database.DBName),
		zap.String("host", cfg.Database.Host),
	)

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel)))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	switch command {
	case "up":
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}
		log.Info("Schema is up to date", zap.Int("models", len(persistence.AllModels())))

	case "status":
		status, err := persistence.SchemaStatus(db.DB)
		if err != nil {
			log.Fatal("Failed to read schema", zap.Error(err))
		}
		missing := 0
		for _, s := range status {
			mark := "ok"
			if !s.Exists {
				mark = "missing"
				missing++
			}
			fmt.Printf("  %-16s %s\n", s.Table, mark)
		}
		log.Info("Schema status", zap.Int("tables", len(status)), zap.Int("missing", missing))
		if missing > 0 {
			os.Exit(2)
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Back office schema tool

Usage:
  migrate [flags] <command>

Commands:
  up        Create or update the tables of all models
  status    List the tables and whether they exist (exit code 2 when any is missing)

Flags:
  -log-level string     Log level: debug, info, warn, error (default: info)

Configuration is read from config.toml and BACKOFFICE_DATABASE_* variables.`)
}
