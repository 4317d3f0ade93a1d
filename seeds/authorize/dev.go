package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"github.com/edvin/okapi/internal/config"
	"github.com/edvin/okapi/internal/platform"
	"github.com/edvin/okapi/internal/session"
)

type fixturesFile struct {
	Consumers []consumerEntry `yaml:"consumers"`
	Tokens    []tokenEntry    `yaml:"tokens"`
	DevUserID int64           `yaml:"dev_user_id"`
}

type consumerEntry struct {
	Key   string `yaml:"key"`
	Name  string `yaml:"name"`
	URL   string `yaml:"url"`
	Email string `yaml:"email"`
}

type tokenEntry struct {
	Key         string `yaml:"key"`
	ConsumerKey string `yaml:"consumer_key"`
	Callback    string `yaml:"callback"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" || cfg.SessionSecret == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL and SESSION_SECRET are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	fx, err := loadFixtures()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("Seeding authorize database...")

	for _, c := range fx.Consumers {
		fmt.Printf("  Upserting consumer %s (%s)\n", c.Key, c.Name)
		_, err := pool.Exec(ctx,
			`INSERT INTO okapi_consumers (key, secret, name, url, email, date_created) VALUES ($1, $2, $3, NULLIF($4, ''), $5, now())
			 ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name, url = EXCLUDED.url, email = EXCLUDED.email`,
			c.Key, platform.NewID(), c.Name, c.URL, c.Email)
		if err != nil {
			fmt.Fprintf(os.Stderr, "insert consumer %s: %v\n", c.Key, err)
			os.Exit(1)
		}
	}

	// Tokens are reset to unbound so the flow can be walked again.
	for _, t := range fx.Tokens {
		fmt.Printf("  Resetting request token %s\n", t.Key)
		_, err := pool.Exec(ctx,
			`INSERT INTO okapi_tokens (key, secret, token_type, timestamp, consumer_key, callback) VALUES ($1, $2, 'request', now(), $3, NULLIF($4, ''))
			 ON CONFLICT (key) DO UPDATE SET user_id = NULL, verifier = NULL, timestamp = now(), callback = EXCLUDED.callback`,
			t.Key, platform.NewID(), t.ConsumerKey, t.Callback)
		if err != nil {
			fmt.Fprintf(os.Stderr, "insert token %s: %v\n", t.Key, err)
			os.Exit(1)
		}
	}

	gate := session.New(session.Options{CookieName: cfg.SessionCookie, Secret: cfg.SessionSecret, Issuer: cfg.SiteURL})
	cookie, err := gate.Issue(fx.DevUserID, 24*time.Hour)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue session: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("Seed complete!")
	fmt.Println()
	for _, t := range fx.Tokens {
		fmt.Printf("  %s?token=%s\n", cfg.AuthorizePath, t.Key)
	}
	fmt.Println()
	fmt.Printf("  Session cookie for user %d (valid 24h):\n", fx.DevUserID)
	fmt.Printf("    %s=%s\n", cfg.SessionCookie, cookie)
}

// loadFixtures reads fixtures.yaml next to this file.
func loadFixtures() (*fixturesFile, error) {
	_, thisFile, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(thisFile), "fixtures.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures.yaml: %w", err)
	}
	var fx fixturesFile
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures.yaml: %w", err)
	}
	if fx.DevUserID <= 0 {
		return nil, fmt.Errorf("fixtures.yaml: dev_user_id must be positive")
	}
	return &fx, nil
}
