// rescore recomputes every provider's stored care score. Run it after a
// change to the score table; --dry-run only reports how many would change.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"carelink/internal/platform/postgres"
	profileservice "carelink/internal/profile/service"
	profilestore "carelink/internal/profile/store"
)

type options struct {
	databaseURL string
	dryRun      bool
	timeout     time.Duration
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	opts := options{databaseURL: os.Getenv("DATABASE_URL")}

	flagSet := pflag.NewFlagSet("rescore", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.databaseURL, "database-url", opts.databaseURL, "Postgres connection URL (default $DATABASE_URL)")
	flagSet.BoolVar(&opts.dryRun, "dry-run", false, "report changes without writing them")
	flagSet.DurationVar(&opts.timeout, "timeout", 10*time.Minute, "abort the backfill after this long")

	if err := flagSet.Parse(args); err != nil {
		return options{}, err
	}
	if opts.databaseURL == "" {
		return options{}, errors.New("--database-url or DATABASE_URL is required")
	}
	if opts.timeout <= 0 {
		return options{}, errors.New("--timeout must be positive")
	}
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(stderr, nil))

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	db, err := postgres.Open(ctx, postgres.Config{URL: opts.databaseURL, MaxOpenConns: 4})
	if err != nil {
		return err
	}
	defer db.Close()

	svc := profileservice.New(profilestore.NewPostgres(db), profileservice.WithLogger(log))
	start := time.Now()
	report, err := svc.RescoreAll(ctx, opts.dryRun)
	if err != nil {
		return fmt.Errorf("rescore stopped after %d providers: %w", report.Scanned, err)
	}

	log.Info("rescore finished",
		"scanned", report.Scanned,
		"changed", report.Changed,
		"dry_run", opts.dryRun,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return json.NewEncoder(stdout).Encode(report)
}
