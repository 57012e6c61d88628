package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/signout/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   data directory
//	-v string   vault file
//	-b string   ledger backend
//	-f string   ledger file
//	-dsn string PostgreSQL DSN
//	-l string   log directory
//	-r int      log retention (in days)
//	-p int      PIN attempts at startup
//
// os.Args is filtered with flagx.FilterArgs first so flags owned by other
// components do not interfere. Malformed values panic.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-v", "-b", "-f", "-dsn", "-l", "-r", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.VaultPath, "v", cfg.VaultPath, "credential vault file")
	fs.StringVar(&cfg.LedgerBackend, "b", cfg.LedgerBackend, "ledger backend: json, sqlite or postgres")
	fs.StringVar(&cfg.LedgerPath, "f", cfg.LedgerPath, "ledger file (JSON document or SQLite database)")
	fs.StringVar(&cfg.LedgerDSN, "dsn", cfg.LedgerDSN, "PostgreSQL connection string")
	fs.StringVar(&cfg.LogDir, "l", cfg.LogDir, "log directory")
	retention := fs.Int("r", int(cfg.LogRetention/(24*time.Hour)), "log retention (in days)")
	fs.IntVar(&cfg.MaxPINAttempts, "p", cfg.MaxPINAttempts, "PIN attempts allowed at startup")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.LogRetention = time.Duration(*retention) * 24 * time.Hour
}
