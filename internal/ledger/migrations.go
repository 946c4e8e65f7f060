package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

const latestVersion = 1

// migrate brings the schema up to latestVersion, tracking progress in a
// single-row schema_migrations table.
func migrate(ctx context.Context, db *sql.DB) error {
	cur, err := version(ctx, db)
	if err != nil {
		return err
	}
	for cur < latestVersion {
		next := cur + 1
		if err := applyMigration(ctx, db, next); err != nil {
			return fmt.Errorf("migration to version %d failed: %w", next, err)
		}
		if err := setVersion(ctx, db, next); err != nil {
			return err
		}
		cur = next
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, v int) error {
	switch v {
	case 1:
		stmts := []string{
			`CREATE TABLE IF NOT EXISTS patches (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                applied_at TEXT NOT NULL,
                title TEXT NOT NULL DEFAULT '',
                author TEXT NOT NULL DEFAULT '',
                success INTEGER NOT NULL,
                files TEXT NOT NULL,
                errors TEXT NOT NULL
            );`,
			`CREATE INDEX IF NOT EXISTS idx_patches_applied_at ON patches(applied_at);`,
		}
		for _, stmt := range stmts {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown migration version %d", v)
	}
}

func version(ctx context.Context, db *sql.DB) (int, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER NOT NULL);`); err != nil {
		return 0, err
	}
	var cnt int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&cnt); err != nil {
		return 0, err
	}
	if cnt == 0 {
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES(0)`); err != nil {
			return 0, err
		}
		return 0, nil
	}
	var v int
	if err := db.QueryRowContext(ctx, `SELECT version FROM schema_migrations`).Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

func setVersion(ctx context.Context, db *sql.DB, v int) error {
	_, err := db.ExecContext(ctx, `UPDATE schema_migrations SET version=?`, v)
	return err
}
