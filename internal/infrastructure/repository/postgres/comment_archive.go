package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
)

// CommentArchive keeps every labeled batch in postgres for audit and
// future rebuilds. It is an append-only history; the hierarchy document
// stays the authoritative store.
type CommentArchive struct {
	db *sql.DB
}

func NewCommentArchive(db *sql.DB) *CommentArchive {
	return &CommentArchive{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (a *CommentArchive) EnsureSchema(ctx context.Context) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across overlapping runs.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS labeled_comments (
	id BIGSERIAL PRIMARY KEY,
	run_id TEXT NOT NULL,
	source TEXT NOT NULL,
	curve TEXT NOT NULL,
	grouping_var TEXT NOT NULL,
	comment_date TEXT NOT NULL,
	comment TEXT NOT NULL,
	standard_label TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_labeled_comments_run ON labeled_comments(run_id);
CREATE INDEX IF NOT EXISTS idx_labeled_comments_path ON labeled_comments(source, curve, grouping_var);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// SaveBatch archives one run's labeled records in a single transaction,
// so a failed run leaves no partial batch behind.
func (a *CommentArchive) SaveBatch(ctx context.Context, runID string, records []domain.CommentRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	for _, rec := range records {
		_, err := tx.ExecContext(ctx, `
INSERT INTO labeled_comments (run_id, source, curve, grouping_var, comment_date, comment, standard_label, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
			runID, rec.Source, rec.Curve, rec.GroupingVar, rec.Date, rec.RawComment, rec.StandardLabel, now,
		)
		if err != nil {
			return fmt.Errorf("insert labeled comment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}
