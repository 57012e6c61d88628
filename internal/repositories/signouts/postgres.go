package signouts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/signout/internal/dbx"
	"github.com/dmitrijs2005/signout/internal/models"
	"github.com/dmitrijs2005/signout/internal/timex"
)

// PostgresRepository stores sign-outs in PostgreSQL with JSONB lists and
// TIMESTAMP (local wall clock) columns.
type PostgresRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresRepository returns a repository over db. The schema must
// already be migrated.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, now: time.Now}
}

// Create locks the table against concurrent creators, reads the current
// maximum and inserts in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, s *models.SignOut) (*models.SignOut, error) {
	out := s.Clone()
	out.CreatedAt = timex.NewISOTime(r.now())
	out.LastModified = nil

	soldiers, categories, err := listArgs(out)
	if err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `LOCK TABLE signouts IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		var seq int
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM signouts`).Scan(&seq); err != nil {
			return fmt.Errorf("failed to select next id: %w", err)
		}
		out.ID = models.FormatID(seq)

		query := `INSERT INTO signouts (seq, id, soldiers, destination, phone, categories, signed_out_at, notes, ds, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
		_, err := tx.ExecContext(ctx, query, seq, out.ID, soldiers, out.Destination, out.Phone, categories,
			out.DateTime.Time, out.Notes, out.DS, out.CreatedAt.Time)
		if err != nil {
			return fmt.Errorf("failed to insert sign-out: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, s *models.SignOut) error {
	soldiers, categories, err := listArgs(s)
	if err != nil {
		return err
	}

	var lastModified sql.NullTime
	if s.LastModified != nil {
		lastModified = sql.NullTime{Time: s.LastModified.Time, Valid: true}
	}

	query := `UPDATE signouts SET soldiers=$1, destination=$2, phone=$3, categories=$4, signed_out_at=$5,
		notes=$6, ds=$7, last_modified=$8 WHERE id=$9`
	res, err := r.db.ExecContext(ctx, query, soldiers, s.Destination, s.Phone, categories,
		s.DateTime.Time, s.Notes, s.DS, lastModified, s.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return affected(res, s.ID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (*models.SignOut, error) {
	row := r.db.QueryRowContext(ctx, `DELETE FROM signouts WHERE id=$1 RETURNING `+columns, id)
	s, err := scanPostgres(row)
	if err != nil {
		return nil, mapNoRows(err, id)
	}
	return s, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.SignOut, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM signouts WHERE id=$1`, id)
	s, err := scanPostgres(row)
	if err != nil {
		return nil, mapNoRows(err, id)
	}
	return s, nil
}

func (r *PostgresRepository) GetAll(ctx context.Context) ([]models.SignOut, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM signouts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to select sign-outs: %w", err)
	}
	defer rows.Close()

	result := []models.SignOut{}
	for rows.Next() {
		s, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanPostgres(row scanner) (*models.SignOut, error) {
	var (
		s                      models.SignOut
		soldiers, categories   []byte
		signedOutAt, createdAt time.Time
		lastModified           sql.NullTime
	)
	if err := row.Scan(&s.ID, &soldiers, &s.Destination, &s.Phone, &categories,
		&signedOutAt, &s.Notes, &s.DS, &createdAt, &lastModified); err != nil {
		return nil, err
	}

	var err error
	if s.Soldiers, err = decodeList(soldiers); err != nil {
		return nil, err
	}
	if s.Categories, err = decodeList(categories); err != nil {
		return nil, err
	}
	s.DateTime = wallClock(signedOutAt)
	s.CreatedAt = wallClock(createdAt)
	if lastModified.Valid {
		lm := wallClock(lastModified.Time)
		s.LastModified = &lm
	}
	return &s, nil
}
