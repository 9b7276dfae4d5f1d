// Package units provides the local unit directory: a read-mostly lookup from
// upstream space identifiers to display names. The table is populated by a
// separate space sync; the reconciler only reads it.
package units

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo implements the unit directory with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new unit directory repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Directory returns the full space-id to unit-name mapping.
func (r *Repo) Directory(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT mews_space_id, name FROM units`)
	if err != nil {
		return nil, fmt.Errorf("load unit directory: %w", err)
	}
	defer rows.Close()

	dir := make(map[string]string)
	for rows.Next() {
		var spaceID, name string
		if err := rows.Scan(&spaceID, &name); err != nil {
			return nil, fmt.Errorf("scan unit row: %w", err)
		}
		dir[spaceID] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unit rows: %w", err)
	}

	return dir, nil
}

// Upsert inserts or refreshes one directory entry. Used by the space sync,
// not by the reconciler.
func (r *Repo) Upsert(ctx context.Context, spaceID, name string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO units (mews_space_id, name)
		VALUES ($1, $2)
		ON CONFLICT (mews_space_id) DO UPDATE SET name = EXCLUDED.name, updated_at = now()`,
		spaceID, name,
	)
	if err != nil {
		return fmt.Errorf("upsert unit %s: %w", spaceID, err)
	}
	return nil
}
