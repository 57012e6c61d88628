package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/signout/internal/backup"
	"github.com/dmitrijs2005/signout/internal/common"
	"github.com/dmitrijs2005/signout/internal/logging"
	"github.com/dmitrijs2005/signout/internal/models"
	"github.com/dmitrijs2005/signout/internal/repositories/signouts"
	"github.com/dmitrijs2005/signout/internal/services"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// fakeAuth is an in-memory AuthService with the default roster.
type fakeAuth struct {
	ids  []string
	pins map[string]string
	log  []string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		ids: []string{"DS Smith", "DS Johnson", "DS Williams"},
		pins: map[string]string{
			"DS Smith":    "1234",
			"DS Johnson":  "2345",
			"DS Williams": "3456",
		},
	}
}

func (f *fakeAuth) Roster(context.Context) []string { return slices.Clone(f.ids) }

func (f *fakeAuth) Authenticate(_ context.Context, id, pin string) error {
	if want, ok := f.pins[id]; !ok || want != pin {
		return common.ErrorUnauthorized
	}
	return nil
}

func (f *fakeAuth) AddSupervisor(_ context.Context, operator, id, pin string) error {
	if err := services.ValidatePIN(pin); err != nil {
		return err
	}
	f.ids = append(f.ids, id)
	f.pins[id] = pin
	f.log = append(f.log, fmt.Sprintf("add %s by %s", id, operator))
	return nil
}

func (f *fakeAuth) RemoveSupervisor(_ context.Context, operator, id string) error {
	if _, ok := f.pins[id]; !ok {
		return common.ErrorNotFound
	}
	f.ids = slices.DeleteFunc(f.ids, func(s string) bool { return s == id })
	delete(f.pins, id)
	f.log = append(f.log, fmt.Sprintf("remove %s by %s", id, operator))
	return nil
}

func (f *fakeAuth) ChangePIN(_ context.Context, operator, id, oldPIN, newPIN string) error {
	if f.pins[id] != oldPIN {
		return common.ErrorUnauthorized
	}
	f.pins[id] = newPIN
	f.log = append(f.log, fmt.Sprintf("pin %s by %s", id, operator))
	return nil
}

type fakeBackup struct {
	operator string
	err      error
}

func (f *fakeBackup) Create(_ context.Context, operator string) (*backup.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.operator = operator
	return &backup.Result{
		Destination: "/srv/backups",
		Prefix:      "backups/x",
		Keys:        []string{"backups/x/current_signouts.json", "backups/x/ds_pins.dat"},
	}, nil
}

type harness struct {
	app    *App
	out    *bytes.Buffer
	auth   *fakeAuth
	ledger services.LedgerService
	backup *fakeBackup
	logDir string
}

// newHarness builds an App signed in as DS Smith reading input from lines.
func newHarness(t *testing.T, lines ...string) *harness {
	t.Helper()
	dir := t.TempDir()
	repo, err := signouts.NewJSONRepository(filepath.Join(dir, "current_signouts.json"))
	require.NoError(t, err)

	h := &harness{
		out:    &bytes.Buffer{},
		auth:   newFakeAuth(),
		ledger: services.NewLedgerService(repo, nil),
		backup: &fakeBackup{},
		logDir: filepath.Join(dir, "logs"),
	}
	h.app = NewApp(Options{
		Auth:           h.auth,
		Ledger:         h.ledger,
		Backup:         h.backup,
		LogDir:         h.logDir,
		MaxPINAttempts: 3,
		In:             strings.NewReader(input(lines...)),
		Out:            h.out,
	})
	h.app.operator = "DS Smith"
	return h
}

func input(lines ...string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func (h *harness) seed(t *testing.T, dest string, soldiers ...string) *models.SignOut {
	t.Helper()
	s, err := h.ledger.SignOut(context.Background(), "DS Johnson", models.Draft{
		Soldiers:    soldiers,
		Destination: dest,
		Phone:       "5551234567",
	})
	require.NoError(t, err)
	return s
}

func TestRun_StartupLogin(t *testing.T) {
	h := newHarness(t, "2", "2345", "whoami", "exit")
	h.app.operator = ""

	require.NoError(t, h.app.Run(context.Background()))
	assert.Equal(t, "DS Johnson", h.app.Operator())
	assert.Contains(t, h.out.String(), "Signed in as DS Johnson.")
	assert.Contains(t, h.out.String(), "Bye!")
}

func TestRun_TooManyAttempts(t *testing.T) {
	h := newHarness(t,
		"1", "0000",
		"DS Nobody", "1234",
		"2", "1234",
		"list",
	)
	h.app.operator = ""

	err := h.app.Run(context.Background())
	assert.ErrorIs(t, err, ErrTooManyAttempts)
	assert.Equal(t, 3, strings.Count(h.out.String(), invalidPINMessage))
	assert.Empty(t, h.app.Operator())
	assert.NotContains(t, h.out.String(), "signout")
}

func TestRun_RetryThenSucceed(t *testing.T) {
	h := newHarness(t, "1", "9999", "1", "1234", "quit")
	h.app.operator = ""

	require.NoError(t, h.app.Run(context.Background()))
	assert.Equal(t, 1, strings.Count(h.out.String(), invalidPINMessage))
	assert.Equal(t, "DS Smith", h.app.Operator())
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("authorised by the operator", func(t *testing.T) {
		h := newHarness(t,
			"PVT Jones, PVT Lee", "Fort Liberty", "555.123.4567", "Leave", "back by 2200",
			"", "1234",
		)
		require.NoError(t, h.app.New(ctx, nil))

		list, err := h.ledger.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "001", list[0].ID)
		assert.Equal(t, []string{"PVT Jones", "PVT Lee"}, list[0].Soldiers)
		assert.Equal(t, "(555) 123-4567", list[0].Phone)
		assert.Equal(t, []string{"Leave"}, list[0].Categories)
		assert.Equal(t, "DS Smith", list[0].DS)
		assert.Contains(t, h.out.String(), "Signed out PVT Jones, PVT Lee (ID 001).")
	})

	t.Run("authorised by another supervisor", func(t *testing.T) {
		h := newHarness(t,
			"PVT Jones", "PX", "5551234567", "", "",
			"DS Williams", "3456",
		)
		require.NoError(t, h.app.New(ctx, nil))
		list, err := h.ledger.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "DS Williams", list[0].DS)
	})

	t.Run("wrong PIN stores nothing", func(t *testing.T) {
		h := newHarness(t, "PVT Jones", "PX", "5551234567", "", "", "", "0000")
		err := h.app.New(ctx, nil)
		assert.ErrorIs(t, err, common.ErrorUnauthorized)

		h.app.report(err)
		assert.Contains(t, h.out.String(), invalidPINMessage)

		list, err := h.ledger.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("invalid draft is rejected before the PIN", func(t *testing.T) {
		h := newHarness(t, "", "", "12", "", "")
		err := h.app.New(ctx, nil)

		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Problems, 3)
		assert.NotContains(t, h.out.String(), "PIN")

		h.app.report(err)
		assert.Contains(t, h.out.String(), "  - Destination is required")
	})
}

func TestEdit(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "", "Range 7", "", "-", "", "", "1234")
	s := h.seed(t, "PX", "PVT Jones")

	require.NoError(t, h.app.Edit(ctx, []string{s.ID}))

	got, err := h.ledger.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"PVT Jones"}, got.Soldiers, "empty answer keeps the value")
	assert.Equal(t, "Range 7", got.Destination)
	assert.Equal(t, "(555) 123-4567", got.Phone)
	assert.Equal(t, "DS Smith", got.DS)
	assert.NotNil(t, got.LastModified)
	assert.Contains(t, h.out.String(), "Soldiers (comma separated) [PVT Jones]")

	assert.ErrorIs(t, h.app.Edit(ctx, []string{"999"}), common.ErrorNotFound)

	var uerr *usageError
	assert.ErrorAs(t, h.app.Edit(ctx, nil), &uerr)
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed", func(t *testing.T) {
		h := newHarness(t, "y", "", "1234")
		s := h.seed(t, "PX", "PVT Jones")
		h.app.now = func() time.Time { return s.DateTime.Add(2*time.Hour + 5*time.Minute) }

		require.NoError(t, h.app.SignIn(ctx, []string{s.ID}))
		assert.Contains(t, h.out.String(), "Signed in PVT Jones after 2h 5m.")

		_, err := h.ledger.Get(ctx, s.ID)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("declined", func(t *testing.T) {
		h := newHarness(t, "n")
		s := h.seed(t, "PX", "PVT Jones")

		err := h.app.SignIn(ctx, []string{s.ID})
		assert.ErrorIs(t, err, errCancelled)
		_, err = h.ledger.Get(ctx, s.ID)
		assert.NoError(t, err)
	})

	t.Run("wrong PIN", func(t *testing.T) {
		h := newHarness(t, "y", "", "4321")
		s := h.seed(t, "PX", "PVT Jones")

		assert.ErrorIs(t, h.app.SignIn(ctx, []string{s.ID}), common.ErrorUnauthorized)
		_, err := h.ledger.Get(ctx, s.ID)
		assert.NoError(t, err)
	})
}

func TestListSearchSortStats(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	require.NoError(t, h.app.List(ctx, nil))
	assert.Contains(t, h.out.String(), "No active sign-outs.")

	h.seed(t, "PX", "PVT Jones")
	h.seed(t, "Fort Liberty", "PVT Lee", "PVT Kim", "PVT Park", "PVT Cho")
	h.seed(t, "Airport", "SPC Diaz")

	h.out.Reset()
	require.NoError(t, h.app.List(ctx, nil))
	out := h.out.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "PVT Lee, PVT Kim, PVT Park and 1 more")
	assert.Contains(t, out, "3 sign-out(s), 6 soldier(s) out.")

	h.out.Reset()
	require.NoError(t, h.app.Search(ctx, []string{"fort"}))
	assert.Contains(t, h.out.String(), "Fort Liberty")
	assert.NotContains(t, h.out.String(), "Airport")

	h.out.Reset()
	require.NoError(t, h.app.Sort(ctx, []string{"dest"}))
	out = h.out.String()
	assert.Less(t, strings.Index(out, "Airport"), strings.Index(out, "Fort Liberty"))
	assert.Less(t, strings.Index(out, "Fort Liberty"), strings.Index(out, "PX"))

	h.out.Reset()
	require.NoError(t, h.app.Sort(ctx, []string{"id", "desc"}))
	out = h.out.String()
	assert.Less(t, strings.Index(out, "003"), strings.Index(out, "001"))

	var uerr *usageError
	assert.ErrorAs(t, h.app.Sort(ctx, []string{"id", "sideways"}), &uerr)
	assert.Error(t, h.app.Sort(ctx, []string{"rank"}))

	h.out.Reset()
	require.NoError(t, h.app.Stats(ctx, nil))
	out = h.out.String()
	assert.Contains(t, out, "Active sign-outs: 3")
	assert.Contains(t, out, "Soldiers out:     6")
	assert.Less(t, strings.Index(out, "Fort Liberty"), strings.Index(out, "Airport"))
}

func TestShowAndExport(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	s := h.seed(t, "PX", "PVT Jones")

	require.NoError(t, h.app.Show(ctx, []string{s.ID}))
	assert.Contains(t, h.out.String(), "PVT Jones")
	assert.Contains(t, h.out.String(), "DS Johnson")

	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, h.app.Export(ctx, []string{path}))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"signouts"`)
	assert.Contains(t, string(b), `"PVT Jones"`)
}

func TestDS(t *testing.T) {
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.app.DS(ctx, []string{"list"}))
		assert.Contains(t, h.out.String(), "1) DS Smith (you)")
		assert.Contains(t, h.out.String(), "2) DS Johnson\n")
	})

	t.Run("add", func(t *testing.T) {
		h := newHarness(t, "", "1234", "DS Miller", "0420", "0420")
		require.NoError(t, h.app.DS(ctx, []string{"add"}))
		assert.Equal(t, []string{"add DS Miller by DS Smith"}, h.auth.log)
		assert.NoError(t, h.auth.Authenticate(ctx, "DS Miller", "0420"))
	})

	t.Run("add with mismatched PINs", func(t *testing.T) {
		h := newHarness(t, "", "1234", "DS Miller", "0420", "0421")
		assert.ErrorIs(t, h.app.DS(ctx, []string{"add"}), errPINConfirm)
		assert.Empty(t, h.auth.log)
	})

	t.Run("remove", func(t *testing.T) {
		h := newHarness(t, "", "1234", "3", "y")
		require.NoError(t, h.app.DS(ctx, []string{"remove"}))
		assert.Equal(t, []string{"remove DS Williams by DS Smith"}, h.auth.log)
	})

	t.Run("pin", func(t *testing.T) {
		h := newHarness(t, "", "1234", "8765", "8765")
		require.NoError(t, h.app.DS(ctx, []string{"pin"}))
		assert.NoError(t, h.auth.Authenticate(ctx, "DS Smith", "8765"))
	})

	t.Run("pin with wrong current PIN", func(t *testing.T) {
		h := newHarness(t, "", "1111", "8765", "8765")
		assert.ErrorIs(t, h.app.DS(ctx, []string{"pin"}), common.ErrorUnauthorized)
		assert.NoError(t, h.auth.Authenticate(ctx, "DS Smith", "1234"))
	})

	t.Run("usage", func(t *testing.T) {
		h := newHarness(t)
		var uerr *usageError
		assert.ErrorAs(t, h.app.DS(ctx, nil), &uerr)
		assert.ErrorAs(t, h.app.DS(ctx, []string{"promote"}), &uerr)
	})
}

func TestLogs(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	require.NoError(t, h.app.Logs(ctx, nil))
	assert.Contains(t, h.out.String(), "No log files.")

	day := time.Date(2025, 6, 25, 9, 0, 0, 0, time.Local)
	f, err := logging.OpenDailyFile(h.logDir, day)
	require.NoError(t, err)
	_, err = f.WriteString("level=INFO msg=sign-out id=001\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	h.out.Reset()
	require.NoError(t, h.app.Logs(ctx, nil))
	assert.Contains(t, h.out.String(), logging.DailyFileName(day))

	h.out.Reset()
	require.NoError(t, h.app.Logs(ctx, []string{logging.DailyFileName(day)}))
	assert.Equal(t, "level=INFO msg=sign-out id=001\n", h.out.String())

	assert.ErrorIs(t, h.app.Logs(ctx, []string{"../ds_pins.dat"}), common.ErrorNotFound)
}

func TestBackup(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, "2", "2345")
	require.NoError(t, h.app.Backup(ctx, nil))
	assert.Equal(t, "DS Johnson", h.backup.operator)
	assert.Contains(t, h.out.String(), "backups/x/ds_pins.dat")

	h = newHarness(t, "", "0000")
	assert.ErrorIs(t, h.app.Backup(ctx, nil), common.ErrorUnauthorized)
	assert.Empty(t, h.backup.operator)

	h = newHarness(t, "", "1234")
	h.backup.err = errors.New("bucket unavailable")
	assert.EqualError(t, h.app.Backup(ctx, nil), "bucket unavailable")
}

func TestSwitch(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, "3", "3456")
	require.NoError(t, h.app.Switch(ctx, nil))
	assert.Equal(t, "DS Williams", h.app.Operator())

	h = newHarness(t, "2", "0", "2", "1", "2", "2")
	err := h.app.Switch(ctx, nil)
	assert.ErrorIs(t, err, ErrTooManyAttempts)
	assert.Equal(t, "DS Smith", h.app.Operator())
}

func TestReport(t *testing.T) {
	h := newHarness(t)
	h.app.report(fmt.Errorf("wrapped: %w", common.ErrorUnauthorized))
	h.app.report(usage("show <id>"))
	h.app.report(errCancelled)
	h.app.report(errors.New("disk full"))

	out := h.out.String()
	assert.Contains(t, out, invalidPINMessage)
	assert.Contains(t, out, "Usage: show <id>")
	assert.Contains(t, out, "Cancelled.")
	assert.Contains(t, out, "Error: disk full")
}
