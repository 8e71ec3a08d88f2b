package database

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrator runs embedded SQL migrations in filename order, tracking applied
// files in a schema_migrations table.
type Migrator struct {
	pool          *pgxpool.Pool
	migrationsFS  fs.FS
	migrationsDir string
}

func NewMigrator(pool *pgxpool.Pool, migrationsFS fs.FS, migrationsDir string) *Migrator {
	return &Migrator{
		pool:          pool,
		migrationsFS:  migrationsFS,
		migrationsDir: migrationsDir,
	}
}

// RunMigrations applies all pending migrations.
func (m *Migrator) RunMigrations(ctx context.Context) error {
	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	applied, err := m.appliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("read applied migrations: %w", err)
	}

	entries, err := fs.ReadDir(m.migrationsFS, m.migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	ran := 0
	for _, filename := range files {
		if applied[filename] {
			continue
		}

		path := filename
		if m.migrationsDir != "" && m.migrationsDir != "." {
			path = m.migrationsDir + "/" + filename
		}
		content, err := fs.ReadFile(m.migrationsFS, path)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", filename, err)
		}

		log.Printf("[Migrator] Running %s", filename)
		for i, stmt := range splitSQLStatements(string(content)) {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" || stmt == ";" {
				continue
			}
			if _, err := m.pool.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migration %s (statement %d): %w", filename, i+1, err)
			}
		}

		if err := m.recordMigration(ctx, filename); err != nil {
			return fmt.Errorf("record migration %s: %w", filename, err)
		}
		ran++
	}

	if ran > 0 {
		log.Printf("[Migrator] Applied %d new migration(s)", ran)
	} else {
		log.Println("[Migrator] Database is up to date")
	}
	return nil
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	return err
}

func (m *Migrator) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := m.pool.Query(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, err
		}
		applied[filename] = true
	}
	return applied, rows.Err()
}

func (m *Migrator) recordMigration(ctx context.Context, filename string) error {
	_, err := m.pool.Exec(ctx, `
		INSERT INTO schema_migrations (filename)
		VALUES ($1)
		ON CONFLICT (filename) DO NOTHING`, filename)
	return err
}

// splitSQLStatements splits SQL content on statement-terminating semicolons,
// keeping $$-quoted function bodies intact.
func splitSQLStatements(content string) []string {
	var statements []string
	var current strings.Builder
	dollarQuoteDepth := 0

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		dollarQuoteDepth += strings.Count(line, "$$")

		current.WriteString(line)
		current.WriteString("\n")

		outsideDollarQuotes := dollarQuoteDepth%2 == 0
		if outsideDollarQuotes && strings.HasSuffix(trimmed, ";") && !strings.HasPrefix(trimmed, "--") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if remaining := strings.TrimSpace(current.String()); remaining != "" && !strings.HasPrefix(remaining, "--") {
		statements = append(statements, remaining)
	}
	return statements
}
