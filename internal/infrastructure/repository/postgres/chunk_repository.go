package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
)

// ChunkRepository persists ingested chunks. It is the source of truth the
// index worker rebuilds from, so reads come back in a stable order.
type ChunkRepository struct {
	db *sql.DB
}

func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ChunkRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082501)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS chunks (
	id TEXT PRIMARY KEY,
	channel TEXT NOT NULL,
	text_content TEXT NOT NULL,
	source_document TEXT NOT NULL DEFAULT '',
	fiscal_year INT,
	is_financial BOOLEAN NOT NULL DEFAULT FALSE,
	table_id TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_channel ON chunks(channel);
CREATE INDEX IF NOT EXISTS idx_chunks_created_at ON chunks(created_at);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// SaveChunks upserts a batch atomically. Resubmitting an id refreshes its
// content, so corrected extractions replace stale rows.
func (r *ChunkRepository) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chunks tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	for _, chunk := range chunks {
		_, err := tx.ExecContext(ctx, `
INSERT INTO chunks (id, channel, text_content, source_document, fiscal_year, is_financial, table_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
	channel = EXCLUDED.channel,
	text_content = EXCLUDED.text_content,
	source_document = EXCLUDED.source_document,
	fiscal_year = EXCLUDED.fiscal_year,
	is_financial = EXCLUDED.is_financial,
	table_id = EXCLUDED.table_id
`,
			chunk.ID, string(chunk.Channel), chunk.Text, chunk.SourceDocument,
			nullableYear(chunk.Year), chunk.IsFinancial, nullableString(chunk.TableID), now,
		)
		if err != nil {
			return fmt.Errorf("insert chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chunks tx: %w", err)
	}
	return nil
}

func (r *ChunkRepository) ListByChannel(ctx context.Context, channel domain.Channel) ([]domain.Chunk, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, channel, text_content, source_document, fiscal_year, is_financial, table_id
FROM chunks
WHERE channel = $1
ORDER BY created_at, id
`, string(channel))
	if err != nil {
		return nil, fmt.Errorf("query %s chunks: %w", channel, err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var chunk domain.Chunk
		var channelRaw string
		var year sql.NullInt64
		var tableID sql.NullString

		if err := rows.Scan(&chunk.ID, &channelRaw, &chunk.Text, &chunk.SourceDocument,
			&year, &chunk.IsFinancial, &tableID); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunk.Channel = domain.Channel(channelRaw)
		if year.Valid {
			value := int(year.Int64)
			chunk.Year = &value
		}
		if tableID.Valid {
			chunk.TableID = tableID.String
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return chunks, nil
}

func (r *ChunkRepository) CountByChannel(ctx context.Context, channel domain.Channel) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE channel = $1`, string(channel)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count %s chunks: %w", channel, err)
	}
	return count, nil
}

func nullableYear(year *int) sql.NullInt64 {
	if year == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*year), Valid: true}
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
