package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/signout/internal/flagx"
	"github.com/dmitrijs2005/signout/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent fields
// keep the value set by earlier sources.
type JsonConfig struct {
	DataDir        string         `json:"data_dir"`
	VaultPath      string         `json:"vault_path"`
	PassphraseEnv  string         `json:"passphrase_env"`
	LedgerBackend  string         `json:"ledger_backend"`
	LedgerPath     string         `json:"ledger_path"`
	LedgerDSN      string         `json:"ledger_dsn"`
	LogDir         string         `json:"log_dir"`
	LogLevel       string         `json:"log_level"`
	LogRetention   timex.Duration `json:"log_retention"`
	MaxPINAttempts int            `json:"max_pin_attempts"`
	NoColor        bool           `json:"no_color"`
	BackupTarget   string         `json:"backup_target"`
	BackupDir      string         `json:"backup_dir"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3Endpoint     string         `json:"s3_endpoint"`
	S3AccessKey    string         `json:"s3_access_key"`
	S3SecretKey    string         `json:"s3_secret_key"`
}

// parseJson overlays cfg with the file named by flagx.ConfigFile. It panics
// on read or decode errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFile()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.VaultPath, jc.VaultPath)
	setString(&cfg.PassphraseEnv, jc.PassphraseEnv)
	setString(&cfg.LedgerBackend, jc.LedgerBackend)
	setString(&cfg.LedgerPath, jc.LedgerPath)
	setString(&cfg.LedgerDSN, jc.LedgerDSN)
	setString(&cfg.LogDir, jc.LogDir)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.LogRetention.Duration != 0 {
		cfg.LogRetention = jc.LogRetention.Duration
	}
	if jc.MaxPINAttempts != 0 {
		cfg.MaxPINAttempts = jc.MaxPINAttempts
	}
	if jc.NoColor {
		cfg.NoColor = true
	}
	setString(&cfg.BackupTarget, jc.BackupTarget)
	setString(&cfg.BackupDir, jc.BackupDir)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
