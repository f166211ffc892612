// Command seed-key inserts an API key row, storing only its HMAC-SHA256
// hash. The plaintext key is printed exactly once.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/google/uuid"

	"github.com/xenking/order-settlement/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		apiKey      string
		pepper      string
		name        string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed; generated when empty")
	flag.StringVar(&pepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or SETTLE_API_KEY_PEPPER env)")
	flag.StringVar(&name, "name", "default", "human-readable key name")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if pepper == "" {
		pepper = os.Getenv("SETTLE_API_KEY_PEPPER")
	}
	if pepper == "" {
		slog.Error("pepper is required: set --api-key-pepper or SETTLE_API_KEY_PEPPER")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = uuid.New().String()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, apiKey, pepper, name); err != nil {
		slog.Error("seed key failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println(apiKey)
}

func run(ctx context.Context, databaseURL, apiKey, pepper, name string) error {
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return err
	}

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	hash := hex.EncodeToString(mac.Sum(nil))

	repo := postgres.NewAPIKeyRepository(pool)
	if err := repo.Create(ctx, uuid.New().String(), hash, name); err != nil {
		return err
	}

	slog.Info("api key seeded", slog.String("name", name))
	return nil
}
