// Command migrate applies or rolls back the embedded SQL migrations.
//
// Usage:
//
//	migrate [--database-url URL] up|down|status|version|reset
//
// DATABASE_URL is used when --database-url is not given.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/spf13/pflag"

	"github.com/raahi/backend/migrations"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		dsn     string
		timeout time.Duration
		verbose bool
	)
	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	flagSet.StringVar(&dsn, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	flagSet.DurationVar(&timeout, "timeout", 2*time.Minute, "give up after this long")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log each migration as it runs")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: migrate [flags] up|down|status|version|reset\n\n%s", flagSet.FlagUsages())
	}

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return fmt.Errorf("expected exactly one command, got %d", flagSet.NArg())
	}
	if dsn == "" {
		return fmt.Errorf("--database-url or DATABASE_URL is required")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	var opts []goose.ProviderOption
	if verbose {
		opts = append(opts, goose.WithVerbose(true))
	}
	provider, err := migrations.NewProvider(db, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	switch cmd := flagSet.Arg(0); cmd {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("up: %w", err)
		}
		if len(results) == 0 {
			slog.Info("no pending migrations")
		}
		for _, r := range results {
			slog.Info("applied", "version", r.Source.Version, "path", r.Source.Path, "duration", r.Duration)
		}
	case "down":
		r, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("down: %w", err)
		}
		slog.Info("rolled back", "version", r.Source.Version, "path", r.Source.Path, "duration", r.Duration)
	case "reset":
		results, err := provider.DownTo(ctx, 0)
		if err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		slog.Info("reset", "rolled_back", len(results))
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		for _, s := range statuses {
			applied := "pending"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.Format(time.RFC3339)
			}
			fmt.Printf("%5d  %-40s  %s\n", s.Source.Version, s.Source.Path, applied)
		}
	case "version":
		v, err := provider.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("version: %w", err)
		}
		fmt.Println(v)
	default:
		flagSet.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}
