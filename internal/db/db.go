package db

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	"tierfs-backend/internal/config"
)

// Connect opens the pgx connection pool used by repositories.
func Connect(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("[DB] Failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("[DB] Failed to connect to database: %v", err)
	}

	log.Println("[DB] Connected to PostgreSQL")
	return pool
}

// ConnectSQL opens a database/sql handle over lib/pq for the services that
// call stored trash functions through the standard interface.
func ConnectSQL(cfg *config.Config) *sql.DB {
	conn, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("[DB] Failed to open sql connection: %v", err)
	}
	conn.SetMaxOpenConns(5)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		log.Fatalf("[DB] Failed to ping database over lib/pq: %v", err)
	}
	return conn
}
