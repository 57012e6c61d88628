package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/signout/internal/common"
	"github.com/dmitrijs2005/signout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "current_signouts.json")

	l, err := Open(context.Background(), Options{Backend: BackendJSON, Path: path})
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, BackendJSON, l.Backend())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_DefaultsToJSON(t *testing.T) {
	l, err := Open(context.Background(), Options{Path: filepath.Join(t.TempDir(), "ledger.json")})
	require.NoError(t, err)
	assert.Equal(t, BackendJSON, l.Backend())
	assert.NoError(t, l.Close())
}

func TestOpen_SQLiteMigratesAndWorks(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "signouts.db")

	l, err := Open(ctx, Options{Backend: BackendSQLite, Path: path})
	require.NoError(t, err)
	defer l.Close()

	s, err := l.SignOuts().Create(ctx, &models.SignOut{
		Soldiers: []string{"PVT A"}, Destination: "Fort Liberty", Phone: "(555) 123-4567",
	})
	require.NoError(t, err)
	assert.Equal(t, "001", s.ID)

	require.NoError(t, l.Close())

	again, err := Open(ctx, Options{Backend: BackendSQLite, Path: path})
	require.NoError(t, err)
	defer again.Close()

	all, err := again.SignOuts().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOpen_PostgresRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: BackendPostgres})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "mongo"})
	assert.ErrorIs(t, err, common.ErrorUnknownBackend)
}
