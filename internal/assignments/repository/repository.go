// Package repository implements the assignment store with PostgreSQL.
//
// Write failures the reconciler must react to are surfaced as typed
// sentinel errors instead of leaking storage error codes: a violated
// (date, unit_key, type) uniqueness constraint becomes ErrUniqueViolation,
// and a write rejected because unit_key is a generated column in the
// deployed schema becomes ErrUnwritableColumn.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mews_bridge_backend/internal/assignments"
	"mews_bridge_backend/platform/apperr"
)

// Typed storage errors for the reconciler's fallback policy.
var (
	// ErrUniqueViolation signals a conflict on the (date, unit_key, type)
	// uniqueness constraint.
	ErrUniqueViolation = errors.New("assignment unique violation")
	// ErrUnwritableColumn signals that the schema rejected a write to
	// unit_key because it is a generated column.
	ErrUnwritableColumn = errors.New("assignment column not writable")
)

const (
	pgCodeUniqueViolation    = "23505"
	pgCodeGeneratedColumn    = "428C9"
	assignmentNotFoundMessage = "assignment not found"
)

const assignmentColumns = `id, date, unit_name, unit_key, cabin_no, title, type, status,
		comment, photo_url, mews_reservation_id, mews_space_id, mews_service_id,
		created_at, updated_at`

// NewAssignment is the desired state for a row to be created.
type NewAssignment struct {
	Date              string
	UnitName          string
	UnitKey           string
	CabinNo           string
	Title             string
	Type              string
	Status            string
	MewsReservationID string
	MewsSpaceID       string
	MewsServiceID     string
}

// IdentityPatch carries the identity/descriptive fields the sync is allowed
// to rewrite on an existing row. Workflow fields (status, comment, photo)
// are deliberately absent.
type IdentityPatch struct {
	Date              string
	UnitName          string
	UnitKey           string
	CabinNo           string
	Title             string
	MewsReservationID string
	MewsSpaceID       string
	MewsServiceID     string
}

// ListParams filters the task list for the HTTP surface.
type ListParams struct {
	Date   string
	Type   string
	Status string
}

// Repo implements the assignment store.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new assignment repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ListRange returns all assignments of every type with a date inside
// [from, to], both inclusive local dates.
func (r *Repo) ListRange(ctx context.Context, from, to string) ([]assignments.Assignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignments
		WHERE date >= $1 AND date <= $2
		ORDER BY date, unit_key, type`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments in range: %w", err)
	}
	defer rows.Close()

	return scanAssignments(rows)
}

// GetByKey returns the assignment occupying the (date, unit_key, type) slot.
func (r *Repo) GetByKey(ctx context.Context, date, unitKey, taskType string) (assignments.Assignment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignments
		WHERE date = $1 AND unit_key = $2 AND type = $3`,
		date, unitKey, taskType,
	)

	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return assignments.Assignment{}, apperr.NotFound(assignmentNotFoundMessage)
		}
		return assignments.Assignment{}, fmt.Errorf("get assignment by key: %w", err)
	}
	return a, nil
}

// GetByID returns one assignment.
func (r *Repo) GetByID(ctx context.Context, id int64) (assignments.Assignment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignments
		WHERE id = $1`,
		id,
	)

	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return assignments.Assignment{}, apperr.NotFound(assignmentNotFoundMessage)
		}
		return assignments.Assignment{}, fmt.Errorf("get assignment by id: %w", err)
	}
	return a, nil
}

// List returns assignments matching the given filters, newest date first.
func (r *Repo) List(ctx context.Context, params ListParams) ([]assignments.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if params.Date != "" {
		query += fmt.Sprintf(" AND date = $%d", idx)
		args = append(args, params.Date)
		idx++
	}
	if params.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", idx)
		args = append(args, params.Type)
		idx++
	}
	if params.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, params.Status)
		idx++
	}
	query += " ORDER BY date DESC, unit_key, type"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	return scanAssignments(rows)
}

// Insert creates a new assignment row. withUnitKey controls whether the
// unit_key column is included in the column list; schemas where unit_key is
// generated reject writes to it, and the caller retries without it.
func (r *Repo) Insert(ctx context.Context, a NewAssignment, withUnitKey bool) (assignments.Assignment, error) {
	var row pgx.Row
	if withUnitKey {
		row = r.pool.QueryRow(ctx, `
			INSERT INTO assignments
				(date, unit_name, unit_key, cabin_no, title, type, status,
				 mews_reservation_id, mews_space_id, mews_service_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''))
			RETURNING `+assignmentColumns,
			a.Date, a.UnitName, a.UnitKey, a.CabinNo, a.Title, a.Type, a.Status,
			a.MewsReservationID, a.MewsSpaceID, a.MewsServiceID,
		)
	} else {
		row = r.pool.QueryRow(ctx, `
			INSERT INTO assignments
				(date, unit_name, cabin_no, title, type, status,
				 mews_reservation_id, mews_space_id, mews_service_id)
			VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''))
			RETURNING `+assignmentColumns,
			a.Date, a.UnitName, a.CabinNo, a.Title, a.Type, a.Status,
			a.MewsReservationID, a.MewsSpaceID, a.MewsServiceID,
		)
	}

	created, err := scanAssignment(row)
	if err != nil {
		return assignments.Assignment{}, classifyWriteError("insert assignment", err)
	}
	return created, nil
}

// UpdateIdentity rewrites the identity/descriptive fields of an existing
// row. Status, comment and photo are never touched here.
func (r *Repo) UpdateIdentity(ctx context.Context, id int64, p IdentityPatch, withUnitKey bool) error {
	var tag pgconn.CommandTag
	var err error

	if withUnitKey {
		tag, err = r.pool.Exec(ctx, `
			UPDATE assignments
			SET date = $1, unit_name = $2, unit_key = $3, cabin_no = $4, title = $5,
				mews_reservation_id = NULLIF($6, ''), mews_space_id = NULLIF($7, ''),
				mews_service_id = NULLIF($8, ''), updated_at = now()
			WHERE id = $9`,
			p.Date, p.UnitName, p.UnitKey, p.CabinNo, p.Title,
			p.MewsReservationID, p.MewsSpaceID, p.MewsServiceID, id,
		)
	} else {
		tag, err = r.pool.Exec(ctx, `
			UPDATE assignments
			SET date = $1, unit_name = $2, cabin_no = $3, title = $4,
				mews_reservation_id = NULLIF($5, ''), mews_space_id = NULLIF($6, ''),
				mews_service_id = NULLIF($7, ''), updated_at = now()
			WHERE id = $8`,
			p.Date, p.UnitName, p.CabinNo, p.Title,
			p.MewsReservationID, p.MewsSpaceID, p.MewsServiceID, id,
		)
	}
	if err != nil {
		return classifyWriteError("update assignment identity", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(assignmentNotFoundMessage)
	}
	return nil
}

// UpdateStatus advances the workflow status of one assignment.
func (r *Repo) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE assignments SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(assignmentNotFoundMessage)
	}
	return nil
}

// UpdateComment sets the free-text comment of one assignment.
func (r *Repo) UpdateComment(ctx context.Context, id int64, comment string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE assignments SET comment = NULLIF($1, ''), updated_at = now() WHERE id = $2`,
		comment, id,
	)
	if err != nil {
		return fmt.Errorf("update assignment comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(assignmentNotFoundMessage)
	}
	return nil
}

// SetPhotoURL attaches a completion photo to one assignment.
func (r *Repo) SetPhotoURL(ctx context.Context, id int64, url string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE assignments SET photo_url = NULLIF($1, ''), updated_at = now() WHERE id = $2`,
		url, id,
	)
	if err != nil {
		return fmt.Errorf("set assignment photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(assignmentNotFoundMessage)
	}
	return nil
}

// Delete removes one assignment. Only the HTTP surface uses this for
// manually created tasks; the sync never deletes.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(assignmentNotFoundMessage)
	}
	return nil
}

// classifyWriteError maps storage error codes onto the typed sentinels the
// reconciler's fallback policy is written against.
func classifyWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeUniqueViolation:
			return fmt.Errorf("%s: %w", op, ErrUniqueViolation)
		case pgCodeGeneratedColumn:
			return fmt.Errorf("%s: %w", op, ErrUnwritableColumn)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanAssignment(row pgx.Row) (assignments.Assignment, error) {
	var a assignments.Assignment
	var date time.Time
	err := row.Scan(
		&a.ID, &date, &a.UnitName, &a.UnitKey, &a.CabinNo, &a.Title, &a.Type, &a.Status,
		&a.Comment, &a.PhotoURL, &a.MewsReservationID, &a.MewsSpaceID, &a.MewsServiceID,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return assignments.Assignment{}, err
	}
	a.Date = date.Format("2006-01-02")
	return a, nil
}

func scanAssignments(rows pgx.Rows) ([]assignments.Assignment, error) {
	var out []assignments.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignment rows: %w", err)
	}
	return out, nil
}
