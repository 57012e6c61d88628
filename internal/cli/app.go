package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/signout/internal/backup"
	"github.com/dmitrijs2005/signout/internal/common"
	"github.com/dmitrijs2005/signout/internal/logging"
	"github.com/dmitrijs2005/signout/internal/models"
	"github.com/dmitrijs2005/signout/internal/services"
	"github.com/fatih/color"
)

// ErrTooManyAttempts ends the session when no supervisor authenticated at
// startup.
var ErrTooManyAttempts = errors.New("too many failed PIN attempts")

var (
	errColor    = color.New(color.FgRed)
	okColor     = color.New(color.FgGreen)
	noticeColor = color.New(color.FgCyan)
)

// Backuper creates backups on behalf of a supervisor. *backup.Service
// implements it.
type Backuper interface {
	Create(ctx context.Context, operator string) (*backup.Result, error)
}

// Options wires the console to its services. In and Out default to the
// process's standard streams.
type Options struct {
	Auth           services.AuthService
	Ledger         services.LedgerService
	Backup         Backuper
	LogDir         string
	MaxPINAttempts int
	Logger         logging.Logger
	In             io.Reader
	Out            io.Writer
}

type App struct {
	auth        services.AuthService
	ledger      services.LedgerService
	backup      Backuper
	logDir      string
	maxAttempts int
	logger      logging.Logger

	reader *bufio.Reader
	pinFd  int
	out    io.Writer
	now    func() time.Time

	// operator is the supervisor signed in to the console.
	operator string
}

func NewApp(o Options) *App {
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	if o.MaxPINAttempts < 1 {
		o.MaxPINAttempts = 1
	}
	return &App{
		auth:        o.Auth,
		ledger:      o.Ledger,
		backup:      o.Backup,
		logDir:      o.LogDir,
		maxAttempts: o.MaxPINAttempts,
		logger:      o.Logger,
		reader:      bufio.NewReader(o.In),
		pinFd:       terminalFd(o.In),
		out:         o.Out,
		now:         time.Now,
	}
}

// Run authenticates a supervisor and serves commands until the operator
// exits or input ends. It returns ErrTooManyAttempts when startup
// authentication fails.
func (a *App) Run(ctx context.Context) error {
	noticeColor.Fprintf(a.out, "%s (type 'help' for commands)\n", common.AppName)

	if err := a.Login(ctx); err != nil {
		a.logger.Warn(ctx, "console locked", "error", err)
		return err
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	a.logger.Info(ctx, "session ended", "ds", a.operator)
	return nil
}

// Operator returns the supervisor signed in to the console.
func (a *App) Operator() string {
	return a.operator
}

func (a *App) getStatus() string {
	if a.operator == "" {
		return ""
	}
	return "(" + a.operator + ")"
}

// report prints err in the console's terms.
func (a *App) report(err error) {
	var (
		verr *models.ValidationError
		uerr *usageError
	)
	switch {
	case errors.As(err, &verr):
		errColor.Fprintln(a.out, "Please correct the following:")
		for _, p := range verr.Problems {
			errColor.Fprintln(a.out, "  - "+p)
		}
	case errors.As(err, &uerr):
		fmt.Fprintln(a.out, uerr.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		errColor.Fprintln(a.out, invalidPINMessage)
	case errors.Is(err, errCancelled):
		fmt.Fprintln(a.out, "Cancelled.")
	default:
		errColor.Fprintln(a.out, "Error:", err)
	}
}

type usageError struct {
	usage string
}

func (e *usageError) Error() string {
	return "Usage: " + e.usage
}

func usage(u string) error {
	return &usageError{usage: u}
}

var errCancelled = errors.New("cancelled")
