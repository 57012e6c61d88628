package signouts

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/signout/internal/common"
	"github.com/dmitrijs2005/signout/internal/models"
	"github.com/dmitrijs2005/signout/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 25, 12, 30, 0, 0, time.Local)

func newEntry(dest string, soldiers ...string) *models.SignOut {
	return &models.SignOut{
		Soldiers:    soldiers,
		Destination: dest,
		Phone:       "(555) 123-4567",
		Categories:  []string{"Leave"},
		DateTime:    timex.NewISOTime(time.Date(2025, 6, 25, 8, 0, 0, 0, time.Local)),
		Notes:       "back by 1800",
		DS:          "DS Smith",
	}
}

// runContract exercises the behaviour every Repository must share.
func runContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Run("empty", func(t *testing.T) {
		repo := newRepo(t)
		all, err := repo.GetAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("create assigns sequential ids", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		in := newEntry("Fort Liberty", "SGT Smith, J.", "PFC Brown, D.")
		a, err := repo.Create(ctx, in)
		require.NoError(t, err)
		b, err := repo.Create(ctx, newEntry("Womack", "CPL Wilson, S."))
		require.NoError(t, err)

		assert.Equal(t, "001", a.ID)
		assert.Equal(t, "002", b.ID)
		assert.Empty(t, in.ID, "argument must not be modified")
		assert.True(t, a.CreatedAt.Equal(fixedNow))

		got, err := repo.GetByID(ctx, "001")
		require.NoError(t, err)
		assert.Equal(t, []string{"SGT Smith, J.", "PFC Brown, D."}, got.Soldiers)
		assert.Equal(t, "Fort Liberty", got.Destination)
		assert.Equal(t, []string{"Leave"}, got.Categories)
		assert.True(t, got.DateTime.Equal(in.DateTime.Time))
		assert.Equal(t, "DS Smith", got.DS)
		assert.Nil(t, got.LastModified)

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "001", all[0].ID)
		assert.Equal(t, "002", all[1].ID)
	})

	t.Run("removal does not renumber", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		for _, d := range []string{"A", "B", "C"} {
			_, err := repo.Create(ctx, newEntry(d, "PVT X"))
			require.NoError(t, err)
		}

		removed, err := repo.Delete(ctx, "001")
		require.NoError(t, err)
		assert.Equal(t, "A", removed.Destination)

		c, err := repo.Create(ctx, newEntry("D", "PVT Y"))
		require.NoError(t, err)
		assert.Equal(t, "004", c.ID)

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		var ids []string
		for _, s := range all {
			ids = append(ids, s.ID)
		}
		assert.Equal(t, []string{"002", "003", "004"}, ids)
	})

	t.Run("update replaces fields and keeps created_at", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		created, err := repo.Create(ctx, newEntry("Fort Liberty", "SGT Smith, J."))
		require.NoError(t, err)

		upd := created.Clone()
		upd.Destination = "Raleigh"
		upd.Soldiers = []string{"SGT Smith, J.", "SPC Lee"}
		upd.CreatedAt = timex.ISOTime{}
		lm := timex.NewISOTime(fixedNow.Add(time.Hour))
		upd.LastModified = &lm
		require.NoError(t, repo.Update(ctx, upd))

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Raleigh", got.Destination)
		assert.Equal(t, []string{"SGT Smith, J.", "SPC Lee"}, got.Soldiers)
		assert.True(t, got.CreatedAt.Equal(fixedNow))
		require.NotNil(t, got.LastModified)
		assert.True(t, got.LastModified.Equal(lm.Time))
	})

	t.Run("unknown id", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)

		_, err := repo.GetByID(ctx, "042")
		assert.ErrorIs(t, err, common.ErrorNotFound)

		_, err = repo.Delete(ctx, "042")
		assert.ErrorIs(t, err, common.ErrorNotFound)

		s := newEntry("X", "PVT Z")
		s.ID = "042"
		assert.ErrorIs(t, repo.Update(ctx, s), common.ErrorNotFound)
	})
}
