package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/angelmondragon/basket-engine/pkg/config"
	"github.com/angelmondragon/basket-engine/pkg/db"
	"github.com/angelmondragon/basket-engine/pkg/logger"
	"github.com/angelmondragon/basket-engine/pkg/migrate"
)

func main() {
	// bootstrap logger early (then re-init after config load)
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	dirFlag := &cli.StringFlag{Name: "dir", Value: migrate.DefaultDir, Usage: "goose migrations directory"}

	app := &cli.App{
		Name:  "migrate",
		Usage: "manage the basket_records schema",
		Flags: []cli.Flag{dirFlag},
		Commands: []*cli.Command{
			gooseCommand(logg, "up", "apply all pending migrations"),
			gooseCommand(logg, "down", "roll back the latest migration"),
			gooseCommand(logg, "status", "print migration status"),
			{
				Name:      "version",
				Usage:     "migrate up or down to a target version",
				ArgsUsage: "<YYYYMMDDHHMMSS>",
				Action: func(c *cli.Context) error {
					target := c.Args().First()
					if target == "" {
						return cli.Exit("missing target version", 1)
					}
					return withDB(c, logg, func(ctx context.Context, sqlDB *sql.DB, dialect string) error {
						return migrate.MigrateToVersion(ctx, sqlDB, dialect, c.String("dir"), target)
					})
				},
			},
			{
				Name:      "create",
				Usage:     "write a new timestamped SQL migration",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return cli.Exit("missing migration name", 1)
					}
					path, err := migrate.CreateSQLMigration(c.String("dir"), name)
					if err != nil {
						return fmt.Errorf("create migration: %w", err)
					}
					fmt.Println("created migration:", path)
					return nil
				},
			},
			{
				Name:  "validate",
				Usage: "check migration file names and goose annotations",
				Action: func(c *cli.Context) error {
					if err := migrate.ValidateDir(c.String("dir")); err != nil {
						return fmt.Errorf("migration validation failed: %w", err)
					}
					fmt.Println("migration validation passed")
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logg.Error(context.Background(), "migrate failed", err)
		os.Exit(1)
	}
}

func gooseCommand(logg *logger.Logger, command, usage string) *cli.Command {
	return &cli.Command{
		Name:  command,
		Usage: usage,
		Action: func(c *cli.Context) error {
			return withDB(c, logg, func(ctx context.Context, sqlDB *sql.DB, dialect string) error {
				return migrate.Run(ctx, sqlDB, dialect, c.String("dir"), command)
			})
		},
	}
}

// withDB loads config, opens the database and hands fn the raw handle. The
// database settings are required here whatever basket backend is configured.
func withDB(c *cli.Context, logg *logger.Logger, fn func(ctx context.Context, sqlDB *sql.DB, dialect string) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.DB.EnsureDSN(); err != nil {
		return err
	}

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dialect := migrate.DialectFor(cfg.DB)
	ctx := logg.WithFields(c.Context, map[string]any{
		"env":     cfg.App.Env,
		"cmd":     c.Command.Name,
		"dir":     c.String("dir"),
		"dialect": dialect,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("sql database: %w", err)
	}

	logg.Info(ctx, "migrate ready")
	if err := fn(ctx, sqlDB, dialect); err != nil {
		return fmt.Errorf("goose %s failed: %w", c.Command.Name, err)
	}
	logg.Info(ctx, "migrate done")
	return nil
}
