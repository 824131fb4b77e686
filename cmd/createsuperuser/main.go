// Command createsuperuser registers a staff account that can manage users
// and teams.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cloudyy74/teams-api/internal/app"
	"github.com/cloudyy74/teams-api/internal/config"
)

var (
	email    = flag.String("email", "", "superuser email")
	password = flag.String("password", "", "superuser password (defaults to $SUPERUSER_PASSWORD)")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "createsuperuser:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	pass := *password
	if pass == "" {
		pass = os.Getenv("SUPERUSER_PASSWORD")
	}
	if strings.TrimSpace(*email) == "" || pass == "" {
		return errors.New("both -email and a password are required")
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.Env == "local" {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		return err
	}
	defer application.Close(context.Background())

	user, err := application.CreateSuperuser(context.Background(), *email, pass)
	if err != nil {
		return err
	}
	fmt.Printf("superuser %s created (id %d)\n", user.Email, user.ID)
	return nil
}
