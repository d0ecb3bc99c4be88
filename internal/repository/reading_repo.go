package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"thermolab/internal/models"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite { return &ReadingSQLite{db: db} }

// defaultReadingLimit caps unbounded history queries.
const defaultReadingLimit = 500

// Insert appends a reading. A zero TakenAt is stamped with now (UTC).
func (r *ReadingSQLite) Insert(ctx context.Context, rd models.Reading) error {
	if rd.TakenAt.IsZero() {
		rd.TakenAt = time.Now().UTC()
	} else {
		rd.TakenAt = rd.TakenAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO readings (source, temp_c, temp_f, taken_at)
		VALUES (?, ?, ?, ?)
	`,
		rd.Source,
		rd.TempC,
		rd.TempF,
		rd.TakenAt.Format(sqliteTimeLayout),
	)
	return err
}

// List returns readings within [from, to] (inclusive), newest first, capped at limit.
func (r *ReadingSQLite) List(ctx context.Context, from, to time.Time, limit int) ([]models.Reading, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "taken_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimeLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "taken_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimeLayout))
	}
	if limit <= 0 || limit > defaultReadingLimit {
		limit = defaultReadingLimit
	}

	q := `SELECT id, source, temp_c, temp_f, taken_at FROM readings`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY taken_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Reading, 0, limit)
	for rows.Next() {
		var rd models.Reading
		if err := rows.Scan(&rd.ID, &rd.Source, &rd.TempC, &rd.TempF, &rd.TakenAt); err != nil {
			return nil, err
		}
		rd.TakenAt = rd.TakenAt.UTC()
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
