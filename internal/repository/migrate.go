package repository

import (
	"context"
	"fmt"
	"time"

	"study_garden/pkg/logger"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

type migration struct {
	version    int
	name       string
	statements func(driver string) []string
}

func idColumn(driver string) string {
	if driver == DriverSQLite {
		return "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	return "id BIGSERIAL PRIMARY KEY"
}

var migrations = []migration{
	{
		version: 1,
		name:    "create_tasks",
		statements: func(driver string) []string {
			return []string{`CREATE TABLE IF NOT EXISTS tasks (
	` + idColumn(driver) + `,
	user_id BIGINT NOT NULL,
	course TEXT NOT NULL,
	title TEXT NOT NULL,
	category TEXT NOT NULL,
	due_date TEXT NOT NULL,
	due_time TEXT NOT NULL,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP NOT NULL
)`}
		},
	},
	{
		version: 2,
		name:    "create_reward_ledger",
		statements: func(driver string) []string {
			return []string{`CREATE TABLE IF NOT EXISTS reward_ledger (
	` + idColumn(driver) + `,
	user_id BIGINT NOT NULL,
	kind TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	rarity TEXT NOT NULL DEFAULT '',
	cost INTEGER NOT NULL,
	source TEXT NOT NULL,
	roll_id TEXT,
	acquired_at TIMESTAMP NOT NULL
)`}
		},
	},
	{
		version: 3,
		name:    "add_user_indexes",
		statements: func(string) []string {
			return []string{
				"CREATE INDEX IF NOT EXISTS idx_tasks_user_completed ON tasks (user_id, completed)",
				"CREATE INDEX IF NOT EXISTS idx_reward_ledger_user ON reward_ledger (user_id)",
			}
		},
	},
}

// Migrate applies every migration newer than the recorded schema version.
// Each migration runs in its own transaction together with its version row,
// so a failure leaves the schema at the last fully applied version.
func (r *Repository) Migrate(ctx context.Context) (int, error) {
	log := logger.Logger()

	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at TIMESTAMP NOT NULL
)`)
	if err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	current, err := r.SchemaVersion(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		err = r.Transaction(ctx, func(ctx context.Context) error {
			for _, stmt := range m.statements(r.driver) {
				if _, err := r.conn(ctx).ExecContext(ctx, stmt); err != nil {
					return err
				}
			}

			query, args, err := squirrel.
				Insert("schema_migrations").
				SetMap(map[string]interface{}{
					"version":    m.version,
					"name":       m.name,
					"applied_at": time.Now().UTC(),
				}).
				PlaceholderFormat(r.placeholder).
				ToSql()
			if err != nil {
				return err
			}
			_, err = r.conn(ctx).ExecContext(ctx, query, args...)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("migration %d %s failed: %w", m.version, m.name, err)
		}

		log.Info("Applied migration", zap.Int("version", m.version), zap.String("name", m.name))
		applied++
	}

	return applied, nil
}

func (r *Repository) SchemaVersion(ctx context.Context) (int, error) {
	query, args, err := squirrel.
		Select("COALESCE(MAX(version), 0)").
		From("schema_migrations").
		PlaceholderFormat(r.placeholder).
		ToSql()
	if err != nil {
		return 0, err
	}

	var version int
	if err = r.conn(ctx).GetContext(ctx, &version, query, args...); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
