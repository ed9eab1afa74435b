package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"wedding-guest-list/internal/model"
	apperrors "wedding-guest-list/pkg/app_errors"
)

// Fixed width so that text comparison orders timestamps correctly.
const sqliteTimeFormat = "2006-01-02 15:04:05.000000000"

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS guests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL CHECK (length(name) > 0),
		count INTEGER NOT NULL CHECK (typeof(count) = 'integer' AND count BETWEEN 1 AND 2147483647),
		side TEXT NOT NULL CHECK (side IN ('groom', 'bride')),
		attendance TEXT NOT NULL CHECK (attendance IN ('likely', 'unlikely')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK (updated_at >= created_at)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_guests_name ON guests (name)`,
}

type SQLiteGuestRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteGuestRepository(db *sql.DB) GuestRepository {
	return &SQLiteGuestRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *SQLiteGuestRepository) Initialize(ctx context.Context) (err error) {
	ctx, span := startSpan(ctx, "sqlite", "Initialize")
	defer func() { endSpan(span, err) }()

	return r.withTx(ctx, "initialize", func(tx *sql.Tx) error {
		for _, stmt := range sqliteSchema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteGuestRepository) Create(ctx context.Context, input model.GuestInput) (id int64, err error) {
	ctx, span := startSpan(ctx, "sqlite", "Create")
	defer func() { endSpan(span, err) }()

	if err := input.Validate(); err != nil {
		return 0, err
	}

	query := `
		INSERT INTO guests (name, count, side, attendance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	now := r.timestamp()
	err = r.withTx(ctx, "create guest", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query,
			input.Name, input.Count, string(input.Side), string(input.Attendance), now, now,
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *SQLiteGuestRepository) List(ctx context.Context) (guests []*model.Guest, err error) {
	ctx, span := startSpan(ctx, "sqlite", "List")
	defer func() { endSpan(span, err) }()

	query := `
		SELECT id, name, count, side, attendance, created_at, updated_at
		FROM guests
		ORDER BY name ASC, id ASC
	`
	guests = make([]*model.Guest, 0)
	err = r.withTx(ctx, "list guests", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			guest, err := scanSQLiteGuest(rows)
			if err != nil {
				return err
			}
			guests = append(guests, guest)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return guests, nil
}

func (r *SQLiteGuestRepository) FindByID(ctx context.Context, id int64) (guest *model.Guest, err error) {
	ctx, span := startSpan(ctx, "sqlite", "FindByID")
	defer func() { endSpan(span, err) }()

	query := `
		SELECT id, name, count, side, attendance, created_at, updated_at
		FROM guests
		WHERE id = ?
	`
	err = r.withTx(ctx, "find guest", func(tx *sql.Tx) error {
		var err error
		guest, err = scanSQLiteGuest(tx.QueryRowContext(ctx, query, id))
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrGuestNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return guest, nil
}

func (r *SQLiteGuestRepository) Update(ctx context.Context, id int64, input model.GuestInput) (found bool, err error) {
	ctx, span := startSpan(ctx, "sqlite", "Update")
	defer func() { endSpan(span, err) }()

	if err := input.Validate(); err != nil {
		return false, err
	}

	query := `
		UPDATE guests
		SET name = ?, count = ?, side = ?, attendance = ?,
			updated_at = MAX(?, updated_at)
		WHERE id = ?
	`
	now := r.timestamp()
	err = r.withTx(ctx, "update guest", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query,
			input.Name, input.Count, string(input.Side), string(input.Attendance), now, id,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		found = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *SQLiteGuestRepository) Delete(ctx context.Context, id int64) (found bool, err error) {
	ctx, span := startSpan(ctx, "sqlite", "Delete")
	defer func() { endSpan(span, err) }()

	err = r.withTx(ctx, "delete guest", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM guests WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		found = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *SQLiteGuestRepository) Statistics(ctx context.Context) (stats model.Statistics, err error) {
	ctx, span := startSpan(ctx, "sqlite", "Statistics")
	defer func() { endSpan(span, err) }()

	query := `
		SELECT
			COALESCE(SUM(count), 0),
			COALESCE(SUM(CASE WHEN attendance = 'likely' THEN count END), 0),
			COALESCE(SUM(CASE WHEN side = 'groom' THEN count END), 0),
			COALESCE(SUM(CASE WHEN side = 'bride' THEN count END), 0)
		FROM guests
	`
	err = r.withTx(ctx, "guest statistics", func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Likely, &stats.Groom, &stats.Bride)
	})
	if err != nil {
		return model.Statistics{}, err
	}
	return stats, nil
}

func (r *SQLiteGuestRepository) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError(op, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return classifySQLiteError(op, err)
	}

	if err := tx.Commit(); err != nil {
		return classifySQLiteError(op, err)
	}
	return nil
}

func (r *SQLiteGuestRepository) timestamp() string {
	return r.now().UTC().Format(sqliteTimeFormat)
}

func classifySQLiteError(op string, err error) error {
	if errors.Is(err, apperrors.ErrGuestNotFound) {
		return err
	}
	if isConstraintViolation(err) {
		return constraintError(op, err)
	}
	return storageError(op, err)
}

func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "CHECK constraint failed") ||
		strings.Contains(msg, "NOT NULL constraint failed")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteGuest(row rowScanner) (*model.Guest, error) {
	var (
		guest      model.Guest
		side       string
		attendance string
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(
		&guest.ID,
		&guest.Name,
		&guest.Count,
		&side,
		&attendance,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	guest.Side = model.Side(side)
	guest.Attendance = model.Attendance(attendance)

	if guest.CreatedAt, err = time.Parse(sqliteTimeFormat, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if guest.UpdatedAt, err = time.Parse(sqliteTimeFormat, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &guest, nil
}
