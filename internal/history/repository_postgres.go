package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

const (
	createTableQuery = `
		CREATE TABLE IF NOT EXISTS console_history (
			id UUID PRIMARY KEY,
			action TEXT NOT NULL,
			product_id TEXT,
			recommendation_product_id TEXT,
			relationship TEXT,
			success BOOLEAN NOT NULL DEFAULT FALSE,
			flash TEXT,
			error TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`
	createIndexQuery = `CREATE INDEX IF NOT EXISTS console_history_created_at_idx ON console_history (created_at DESC)`

	insertEntryQuery = `
		INSERT INTO console_history (id, action, product_id, recommendation_product_id, relationship, success, flash, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	listEntriesQuery = `
		SELECT id, action, product_id, recommendation_product_id, relationship, success, flash, error, created_at
		FROM console_history
		ORDER BY created_at DESC
		LIMIT $1`
	listEntriesByActionQuery = `
		SELECT id, action, product_id, recommendation_product_id, relationship, success, flash, error, created_at
		FROM console_history
		WHERE action = ANY($1::text[])
		ORDER BY created_at DESC
		LIMIT $2`
)

// PostgresRepository implements Repository using Postgres.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the history table when it does not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTableQuery); err != nil {
		return fmt.Errorf("create console_history: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createIndexQuery); err != nil {
		return fmt.Errorf("index console_history: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Append(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, insertEntryQuery,
		e.ID, e.Action, e.ProductID, e.RecommendationProductID, e.Relationship,
		e.Success, e.Flash, nullString(e.Error), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if len(f.Actions) > 0 {
		rows, err = r.db.QueryContext(ctx, listEntriesByActionQuery, pq.Array(f.Actions), f.Limit)
	} else {
		rows, err = r.db.QueryContext(ctx, listEntriesQuery, f.Limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		var (
			e                         Entry
			productID, recommendation sql.NullString
			relationship, flash, msg  sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Action, &productID, &recommendation, &relationship, &e.Success, &flash, &msg, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.ProductID = productID.String
		e.RecommendationProductID = recommendation.String
		e.Relationship = relationship.String
		e.Flash = flash.String
		e.Error = msg.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
