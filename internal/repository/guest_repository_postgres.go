package repository

import (
	"context"
	"errors"
	"time"

	"wedding-guest-list/internal/model"
	apperrors "wedding-guest-list/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgCheckViolation   = "23514"
	pgNotNullViolation = "23502"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS guests (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		name TEXT NOT NULL CHECK (name <> ''),
		count INTEGER NOT NULL CHECK (count BETWEEN 1 AND 2147483647),
		side TEXT NOT NULL CHECK (side IN ('groom', 'bride')),
		attendance TEXT NOT NULL CHECK (attendance IN ('likely', 'unlikely')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (updated_at >= created_at)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_guests_name ON guests (name COLLATE "C")`,
}

type PostgresGuestRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresGuestRepository(pool *pgxpool.Pool) GuestRepository {
	return &PostgresGuestRepository{
		pool: pool,
		now:  time.Now,
	}
}

func (r *PostgresGuestRepository) Initialize(ctx context.Context) (err error) {
	ctx, span := startSpan(ctx, "postgresql", "Initialize")
	defer func() { endSpan(span, err) }()

	return r.withTx(ctx, "initialize", func(tx pgx.Tx) error {
		for _, stmt := range postgresSchema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresGuestRepository) Create(ctx context.Context, input model.GuestInput) (id int64, err error) {
	ctx, span := startSpan(ctx, "postgresql", "Create")
	defer func() { endSpan(span, err) }()

	if err := input.Validate(); err != nil {
		return 0, err
	}

	query := `
		INSERT INTO guests (name, count, side, attendance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`
	now := r.timestamp()
	err = r.withTx(ctx, "create guest", func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, query,
			input.Name, input.Count, string(input.Side), string(input.Attendance), now,
		).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PostgresGuestRepository) List(ctx context.Context) (guests []*model.Guest, err error) {
	ctx, span := startSpan(ctx, "postgresql", "List")
	defer func() { endSpan(span, err) }()

	query := `
		SELECT id, name, count, side, attendance, created_at, updated_at
		FROM guests
		ORDER BY name COLLATE "C" ASC, id ASC
	`
	guests = make([]*model.Guest, 0)
	err = r.withTx(ctx, "list guests", func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			guest, err := scanPostgresGuest(rows)
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

func (r *PostgresGuestRepository) FindByID(ctx context.Context, id int64) (guest *model.Guest, err error) {
	ctx, span := startSpan(ctx, "postgresql", "FindByID")
	defer func() { endSpan(span, err) }()

	query := `
		SELECT id, name, count, side, attendance, created_at, updated_at
		FROM guests
		WHERE id = $1
	`
	err = r.withTx(ctx, "find guest", func(tx pgx.Tx) error {
		var err error
		guest, err = scanPostgresGuest(tx.QueryRow(ctx, query, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrGuestNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return guest, nil
}

func (r *PostgresGuestRepository) Update(ctx context.Context, id int64, input model.GuestInput) (found bool, err error) {
	ctx, span := startSpan(ctx, "postgresql", "Update")
	defer func() { endSpan(span, err) }()

	if err := input.Validate(); err != nil {
		return false, err
	}

	query := `
		UPDATE guests
		SET name = $1, count = $2, side = $3, attendance = $4,
			updated_at = GREATEST($5, updated_at)
		WHERE id = $6
	`
	now := r.timestamp()
	err = r.withTx(ctx, "update guest", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query,
			input.Name, input.Count, string(input.Side), string(input.Attendance), now, id,
		)
		if err != nil {
			return err
		}
		found = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *PostgresGuestRepository) Delete(ctx context.Context, id int64) (found bool, err error) {
	ctx, span := startSpan(ctx, "postgresql", "Delete")
	defer func() { endSpan(span, err) }()

	err = r.withTx(ctx, "delete guest", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM guests WHERE id = $1`, id)
		if err != nil {
			return err
		}
		found = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *PostgresGuestRepository) Statistics(ctx context.Context) (stats model.Statistics, err error) {
	ctx, span := startSpan(ctx, "postgresql", "Statistics")
	defer func() { endSpan(span, err) }()

	query := `
		SELECT
			COALESCE(SUM(count), 0),
			COALESCE(SUM(count) FILTER (WHERE attendance = 'likely'), 0),
			COALESCE(SUM(count) FILTER (WHERE side = 'groom'), 0),
			COALESCE(SUM(count) FILTER (WHERE side = 'bride'), 0)
		FROM guests
	`
	err = r.withTx(ctx, "guest statistics", func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, query).Scan(&stats.Total, &stats.Likely, &stats.Groom, &stats.Bride)
	})
	if err != nil {
		return model.Statistics{}, err
	}
	return stats, nil
}

// withTx runs fn in a transaction, committing on success and rolling back otherwise.
func (r *PostgresGuestRepository) withTx(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return storageError(op, err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return classifyPostgresError(op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return classifyPostgresError(op, err)
	}
	return nil
}

// timestamp matches the microsecond precision of TIMESTAMPTZ.
func (r *PostgresGuestRepository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

func classifyPostgresError(op string, err error) error {
	if errors.Is(err, apperrors.ErrGuestNotFound) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCheckViolation, pgNotNullViolation:
			return constraintError(op, err)
		}
	}
	return storageError(op, err)
}

func scanPostgresGuest(row pgx.Row) (*model.Guest, error) {
	var (
		guest      model.Guest
		side       string
		attendance string
	)
	err := row.Scan(
		&guest.ID,
		&guest.Name,
		&guest.Count,
		&side,
		&attendance,
		&guest.CreatedAt,
		&guest.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	guest.Side = model.Side(side)
	guest.Attendance = model.Attendance(attendance)
	guest.CreatedAt = guest.CreatedAt.UTC()
	guest.UpdatedAt = guest.UpdatedAt.UTC()
	return &guest, nil
}
