package vault

import (
	"errors"
	"os"
)

// LegacyPassphrase is the master passphrase vault files have always been
// encrypted with. Anyone holding the binary can derive the key; deployments
// that do not need to read existing files should supply their own through
// EnvPassphrase.
const LegacyPassphrase = "DrillSergeantAccess2025"

var ErrNoPassphrase = errors.New("no master passphrase configured")

// PassphraseSource supplies the master passphrase. It is consulted on every
// key derivation.
type PassphraseSource interface {
	Passphrase() (string, error)
}

// StaticPassphrase is a fixed passphrase.
type StaticPassphrase string

func (p StaticPassphrase) Passphrase() (string, error) {
	if p == "" {
		return "", ErrNoPassphrase
	}
	return string(p), nil
}

// EnvPassphrase reads the passphrase from the environment variable Name and
// falls back to Fallback when the variable is unset or empty.
type EnvPassphrase struct {
	Name     string
	Fallback string
}

func (p EnvPassphrase) Passphrase() (string, error) {
	if p.Name != "" {
		if v := os.Getenv(p.Name); v != "" {
			return v, nil
		}
	}
	if p.Fallback == "" {
		return "", ErrNoPassphrase
	}
	return p.Fallback, nil
}
