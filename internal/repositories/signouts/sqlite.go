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

// SQLiteRepository stores sign-outs in a SQLite table. Times are kept as
// ISO-8601 text, lists as JSON arrays.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository returns a repository over db. The schema must already
// be migrated.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// Create reads the current maximum and inserts inside one transaction.
func (r *SQLiteRepository) Create(ctx context.Context, s *models.SignOut) (*models.SignOut, error) {
	out := s.Clone()
	out.CreatedAt = timex.NewISOTime(r.now())
	out.LastModified = nil

	soldiers, categories, err := listArgs(out)
	if err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var seq int
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM signouts`).Scan(&seq); err != nil {
			return fmt.Errorf("failed to select next id: %w", err)
		}
		out.ID = models.FormatID(seq)

		query := `INSERT INTO signouts (seq, id, soldiers, destination, phone, categories, signed_out_at, notes, ds, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, query, seq, out.ID, soldiers, out.Destination, out.Phone, categories,
			out.DateTime.String(), out.Notes, out.DS, out.CreatedAt.String())
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

func (r *SQLiteRepository) Update(ctx context.Context, s *models.SignOut) error {
	soldiers, categories, err := listArgs(s)
	if err != nil {
		return err
	}

	var lastModified sql.NullString
	if s.LastModified != nil {
		lastModified = sql.NullString{String: s.LastModified.String(), Valid: true}
	}

	query := `UPDATE signouts SET soldiers=?, destination=?, phone=?, categories=?, signed_out_at=?, notes=?, ds=?, last_modified=?
		WHERE id=?`
	res, err := r.db.ExecContext(ctx, query, soldiers, s.Destination, s.Phone, categories,
		s.DateTime.String(), s.Notes, s.DS, lastModified, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update sign-out: %w", err)
	}
	return affected(res, s.ID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) (*models.SignOut, error) {
	row := r.db.QueryRowContext(ctx, `DELETE FROM signouts WHERE id=? RETURNING `+columns, id)
	s, err := scanSQLite(row)
	if err != nil {
		return nil, mapNoRows(err, id)
	}
	return s, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.SignOut, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM signouts WHERE id=?`, id)
	s, err := scanSQLite(row)
	if err != nil {
		return nil, mapNoRows(err, id)
	}
	return s, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.SignOut, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM signouts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to select sign-outs: %w", err)
	}
	defer rows.Close()

	result := []models.SignOut{}
	for rows.Next() {
		s, err := scanSQLite(rows)
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

func scanSQLite(row scanner) (*models.SignOut, error) {
	var (
		s                      models.SignOut
		soldiers, categories   []byte
		signedOutAt, createdAt string
		lastModified           sql.NullString
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
	if s.DateTime, err = parseStored(signedOutAt); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseStored(createdAt); err != nil {
		return nil, err
	}
	if lastModified.Valid && lastModified.String != "" {
		lm, err := parseStored(lastModified.String)
		if err != nil {
			return nil, err
		}
		s.LastModified = &lm
	}
	return &s, nil
}

func parseStored(v string) (timex.ISOTime, error) {
	if v == "" {
		return timex.ISOTime{}, nil
	}
	t, err := timex.ParseISOTime(v)
	if err != nil {
		return timex.ISOTime{}, fmt.Errorf("stored time: %w", err)
	}
	return t, nil
}
