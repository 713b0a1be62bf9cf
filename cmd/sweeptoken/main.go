// Command sweeptoken prints a bearer token for GET /check_payments.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"expense_tracker/internal/config"
	"expense_tracker/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("sweeptoken", flag.ContinueOnError)
	fs.SetOutput(stderr)
	ttl := fs.Duration("ttl", 365*24*time.Hour, "Token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if len(cfg.Reminders.Secret) < config.MinSweepSecretLen {
		return fmt.Errorf("reminders.secret must be at least %d characters", config.MinSweepSecretLen)
	}

	token, err := service.NewSweepTokenService(cfg.Reminders.Secret).IssueSweepToken(*ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, token)
	return nil
}
