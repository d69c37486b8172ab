package db

import (
	"context"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the shared connection pool, nil when the service runs without a
// database. Callers check for nil and degrade to in-memory behavior.
var Pool *pgxpool.Pool

// InitPostgres connects the shared pool. The DSN comes from config, not
// the environment, so the caller stays the single source of settings. An
// empty DSN is a supported mode; a bad one is fatal.
func InitPostgres(ctx context.Context, dsn string) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		log.Println("Warning: DATABASE_URL not set, trade journal will not survive restarts")
		return
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("failed to ping Postgres: %v", err)
	}
	Pool = pool
	log.Println("Connected to Postgres")
}
