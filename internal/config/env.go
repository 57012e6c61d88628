package config

import "os"

const (
	EnvDataDir     = "SIGNOUT_DATA_DIR"
	EnvLedgerDSN   = "SIGNOUT_LEDGER_DSN"
	EnvS3AccessKey = "SIGNOUT_S3_ACCESS_KEY"
	EnvS3SecretKey = "SIGNOUT_S3_SECRET_KEY"
	EnvNoColor     = "NO_COLOR"
)

// parseEnv applies environment overrides. Secrets are best supplied this way
// rather than in the JSON file.
func parseEnv(cfg *Config) {
	setString(&cfg.DataDir, os.Getenv(EnvDataDir))
	setString(&cfg.LedgerDSN, os.Getenv(EnvLedgerDSN))
	setString(&cfg.S3AccessKey, os.Getenv(EnvS3AccessKey))
	setString(&cfg.S3SecretKey, os.Getenv(EnvS3SecretKey))
	if os.Getenv(EnvNoColor) != "" {
		cfg.NoColor = true
	}
}
