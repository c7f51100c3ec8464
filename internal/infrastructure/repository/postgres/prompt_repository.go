package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/policyops/policy-rag/internal/core/domain"
)

// PromptRepository is the append-only registry of prompt template
// versions. Published versions are immutable: Publish never updates an
// existing row.
type PromptRepository struct {
	db *sql.DB
}

func NewPromptRepository(db *sql.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

func (r *PromptRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082902)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS prompt_templates (
	version TEXT PRIMARY KEY,
	template TEXT NOT NULL,
	required_variables JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *PromptRepository) Get(ctx context.Context, version string) (*domain.PromptTemplate, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT version, template, required_variables, created_at
FROM prompt_templates
WHERE version = $1
`, version)

	var tpl domain.PromptTemplate
	var varsRaw []byte
	err := row.Scan(&tpl.Version, &tpl.Text, &varsRaw, &tpl.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrUnknownPromptVersion, "get prompt", fmt.Errorf("version %s", version))
		}
		return nil, fmt.Errorf("scan prompt template: %w", err)
	}
	if err := json.Unmarshal(varsRaw, &tpl.RequiredVariables); err != nil {
		return nil, fmt.Errorf("unmarshal required variables: %w", err)
	}
	return &tpl, nil
}

func (r *PromptRepository) Publish(ctx context.Context, tpl domain.PromptTemplate) error {
	varsJSON, err := json.Marshal(tpl.RequiredVariables)
	if err != nil {
		return fmt.Errorf("marshal required variables: %w", err)
	}
	createdAt := tpl.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx, `
INSERT INTO prompt_templates (version, template, required_variables, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (version) DO NOTHING
`, tpl.Version, tpl.Text, varsJSON, createdAt)
	if err != nil {
		return fmt.Errorf("insert prompt template: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("publish rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "publish prompt",
			fmt.Errorf("version %s already published", tpl.Version))
	}
	return nil
}

func (r *PromptRepository) Versions(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT version
FROM prompt_templates
ORDER BY created_at ASC, version ASC
`)
	if err != nil {
		return nil, fmt.Errorf("query prompt versions: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan prompt version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompt versions: %w", err)
	}
	return versions, nil
}
