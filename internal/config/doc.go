// Package config loads runtime configuration for the sign-out console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected with -c/-config or the
//     SIGNOUT_CONFIG environment variable.
//  3. Command-line flags (see parseFlags).
//  4. Environment overrides (see parseEnv).
//
// Paths left empty after all sources are derived from DataDir (see
// (*Config).ResolvePaths).
//
// Supported flags
//
//	-d string   data directory
//	-v string   vault file
//	-b string   ledger backend: json, sqlite or postgres
//	-f string   ledger file (JSON document or SQLite database)
//	-dsn string PostgreSQL connection string
//	-l string   log directory
//	-r int      log retention in days
//	-p int      PIN attempts allowed at startup
//
// Environment
//
//	SIGNOUT_DATA_DIR, SIGNOUT_LEDGER_DSN, SIGNOUT_S3_ACCESS_KEY,
//	SIGNOUT_S3_SECRET_KEY
//
// # JSON schema
//
// Durations use timex.Duration, so "720h" and integer nanoseconds both work:
//
//	{
//	  "data_dir": "data",
//	  "ledger_backend": "sqlite",
//	  "log_retention": "720h",
//	  "max_pin_attempts": 3,
//	  "backup_target": "s3",
//	  "s3_bucket": "signout-backups",
//	  "s3_endpoint": "http://127.0.0.1:9000"
//	}
package config
