package signouts

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/signout/internal/dbx"
	"github.com/dmitrijs2005/signout/internal/models"
	"github.com/dmitrijs2005/signout/internal/timex"
)

const columns = `id, soldiers, destination, phone, categories, signed_out_at, notes, ds, created_at, last_modified`

type scanner interface {
	Scan(dest ...any) error
}

func encodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

func decodeList(b []byte) ([]string, error) {
	if len(b) == 0 {
		return []string{}, nil
	}
	var v []string
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return v, nil
}

// mapNoRows turns sql.ErrNoRows into common.ErrorNotFound for id.
func mapNoRows(err error, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(id)
	}
	return err
}

// wallClock reinterprets the wall clock of t in the local zone. TIMESTAMP
// columns without a zone come back from the driver as UTC.
func wallClock(t time.Time) timex.ISOTime {
	if t.IsZero() {
		return timex.ISOTime{}
	}
	return timex.NewISOTime(time.Date(t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.Local))
}

// affected maps an UPDATE that matched nothing to common.ErrorNotFound for id.
func affected(res sql.Result, id string) error {
	err := dbx.CheckAffected(res)
	if errors.Is(err, dbx.ErrNoRowsAffected) {
		return notFound(id)
	}
	return err
}

func listArgs(s *models.SignOut) (soldiers, categories string, err error) {
	if soldiers, err = encodeList(s.Soldiers); err != nil {
		return "", "", err
	}
	if categories, err = encodeList(s.Categories); err != nil {
		return "", "", err
	}
	return soldiers, categories, nil
}
