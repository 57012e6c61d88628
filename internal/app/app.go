// Package app wires the sign-out console together: configuration, the daily
// log file, the credential vault, the ledger backend, the services and the
// operator console.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/signout/internal/backup"
	"github.com/dmitrijs2005/signout/internal/cli"
	"github.com/dmitrijs2005/signout/internal/config"
	"github.com/dmitrijs2005/signout/internal/logging"
	"github.com/dmitrijs2005/signout/internal/services"
	"github.com/dmitrijs2005/signout/internal/storage"
	"github.com/dmitrijs2005/signout/internal/vault"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	logFile *os.File
	vault   *vault.Vault
	ledger  *storage.Ledger
	console *cli.App
}

// NewApp opens every resource the console needs. The vault is initialised
// with the default roster when it does not exist yet; failing that is fatal.
// in and out are the operator's terminal streams.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.NoColor {
		color.NoColor = true
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	now := time.Now()
	logFile, err := logging.OpenDailyFile(c.LogDir, now)
	if err != nil {
		return nil, err
	}
	logger := logging.NewTextLogger(logFile, level).With("session", uuid.NewString())
	logger.Info(ctx, "session started", "data_dir", c.DataDir, "ledger", c.LedgerBackend)

	app := &App{config: c, logger: logger, logFile: logFile}

	if removed, err := logging.CleanupOld(c.LogDir, c.LogRetention, now); err != nil {
		logger.Warn(ctx, "log cleanup failed", "error", err)
	} else if len(removed) > 0 {
		logger.Info(ctx, "old logs removed", "files", len(removed))
	}

	app.vault = vault.New(c.VaultPath,
		vault.WithLogger(logger),
		vault.WithPassphrase(vault.EnvPassphrase{Name: c.PassphraseEnv, Fallback: vault.LegacyPassphrase}),
	)
	if err := app.vault.EnsureInitialized(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("credential vault: %w", err)
	}

	app.ledger, err = storage.Open(ctx, storage.Options{
		Backend: storage.Backend(c.LedgerBackend),
		Path:    c.LedgerPath,
		DSN:     c.LedgerDSN,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("ledger: %w", err)
	}

	dest, err := newBackupDestination(ctx, c)
	if err != nil {
		app.Close()
		return nil, err
	}

	authService := services.NewAuthService(app.vault, logger)
	ledgerService := services.NewLedgerService(app.ledger.SignOuts(), logger)

	app.console = cli.NewApp(cli.Options{
		Auth:           authService,
		Ledger:         ledgerService,
		Backup:         backup.NewService(ledgerService, c.VaultPath, dest, logger),
		LogDir:         c.LogDir,
		MaxPINAttempts: c.MaxPINAttempts,
		Logger:         logger,
		In:             in,
		Out:            out,
	})
	return app, nil
}

func newBackupDestination(ctx context.Context, c *config.Config) (backup.Destination, error) {
	switch c.BackupTarget {
	case config.BackupS3:
		d, err := backup.NewS3Destination(ctx, backup.S3Options{
			Bucket:    c.S3Bucket,
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("backup destination: %w", err)
		}
		return d, nil
	default:
		return backup.LocalDestination{Dir: c.BackupDir}, nil
	}
}

func (app *App) initSignalHandler(ctx context.Context) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigs
		app.logger.Info(ctx, "session interrupted", "signal", sig.String())
		app.Close()
		os.Exit(130)
	}()
}

// Run serves the console until the operator exits, then releases resources.
func (app *App) Run(ctx context.Context) error {
	app.initSignalHandler(ctx)
	defer app.Close()

	err := app.console.Run(ctx)
	if errors.Is(err, cli.ErrTooManyAttempts) {
		app.logger.Warn(ctx, "startup authentication failed")
	}
	return err
}

// Close releases the ledger and the log file. It is safe to call twice.
func (app *App) Close() {
	if app.ledger != nil {
		if err := app.ledger.Close(); err != nil {
			app.logger.Error(context.Background(), "closing ledger", "error", err)
		}
		app.ledger = nil
	}
	if app.logFile != nil {
		app.logger.Info(context.Background(), "session closed")
		app.logFile.Close()
		app.logFile = nil
	}
}
