package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/signout/internal/cryptox"
	"github.com/dmitrijs2005/signout/internal/filex"
	"github.com/dmitrijs2005/signout/internal/logging"
	"github.com/fernet/fernet-go"
)

var (
	// ErrVaultUnavailable wraps every failure to read, decrypt, decode or
	// write the vault file.
	ErrVaultUnavailable   = errors.New("vault unavailable")
	ErrIdentifierNotFound = errors.New("identifier not found")
	ErrPINMismatch        = errors.New("pin does not match")
	ErrInvalidIdentifier  = errors.New("identifier must not be empty")
)

// Vault is a handle on one vault file. It holds no decrypted state.
type Vault struct {
	path       string
	passphrase PassphraseSource
	logger     logging.Logger
	iterations int
}

type Option func(*Vault)

// WithLogger sets the logger for diagnostics. PINs and digests are never logged.
func WithLogger(l logging.Logger) Option {
	return func(v *Vault) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithPassphrase replaces the legacy master passphrase.
func WithPassphrase(p PassphraseSource) Option {
	return func(v *Vault) {
		if p != nil {
			v.passphrase = p
		}
	}
}

// New returns a Vault for the file at path. The file is not touched until an
// operation is called.
func New(path string, opts ...Option) *Vault {
	v := &Vault{
		path:       path,
		passphrase: StaticPassphrase(LegacyPassphrase),
		logger:     logging.Nop(),
		iterations: cryptox.DefaultIterations,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With("component", "vault")
	return v
}

func (v *Vault) Path() string {
	return v.path
}

// EnsureInitialized writes the default roster when the vault file does not
// exist. An existing file, readable or not, is left alone.
func (v *Vault) EnsureInitialized(ctx context.Context) error {
	ok, err := filex.Exists(v.path)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", ErrVaultUnavailable, v.path, err)
	}
	if ok {
		return nil
	}

	if err := v.store(defaultRoster()); err != nil {
		return err
	}
	v.logger.Info(ctx, "vault created with default roster", "path", v.path, "accounts", len(DefaultRoster))
	return nil
}

// Verify reports whether id exists and pin hashes to its stored digest.
// Every failure, including an unreadable file, is reported as false.
func (v *Vault) Verify(ctx context.Context, id, pin string) bool {
	r, err := v.load()
	if err != nil {
		v.logger.Warn(ctx, "verify: vault unreadable", "error", err)
		return false
	}
	if err := check(r, id, pin); err != nil {
		v.logger.Debug(ctx, "verify failed", "id", id, "reason", err)
		return false
	}
	return true
}

// Add stores id with the digest of pin, replacing any existing entry. A new
// identifier is appended to the end of the roster.
func (v *Vault) Add(ctx context.Context, id, pin string) error {
	if id == "" {
		return ErrInvalidIdentifier
	}

	r, err := v.load()
	if err != nil {
		v.logger.Error(ctx, "add: vault unreadable", "id", id, "error", err)
		return err
	}

	_, replaced := r.get(id)
	r.set(id, cryptox.HashPIN(pin))

	if err := v.store(r); err != nil {
		v.logger.Error(ctx, "add: write failed", "id", id, "error", err)
		return err
	}
	v.logger.Info(ctx, "identifier stored", "id", id, "replaced", replaced)
	return nil
}

// Remove deletes id from the roster.
func (v *Vault) Remove(ctx context.Context, id string) error {
	r, err := v.load()
	if err != nil {
		v.logger.Error(ctx, "remove: vault unreadable", "id", id, "error", err)
		return err
	}

	if !r.delete(id) {
		v.logger.Debug(ctx, "remove: unknown identifier", "id", id)
		return fmt.Errorf("%w: %q", ErrIdentifierNotFound, id)
	}

	if err := v.store(r); err != nil {
		v.logger.Error(ctx, "remove: write failed", "id", id, "error", err)
		return err
	}
	v.logger.Info(ctx, "identifier removed", "id", id)
	return nil
}

// ChangePIN replaces the PIN of id after checking oldPIN. An unknown id and a
// wrong oldPIN both return ErrPINMismatch and leave the file untouched.
func (v *Vault) ChangePIN(ctx context.Context, id, oldPIN, newPIN string) error {
	r, err := v.load()
	if err != nil {
		v.logger.Error(ctx, "change pin: vault unreadable", "id", id, "error", err)
		return err
	}

	if err := check(r, id, oldPIN); err != nil {
		v.logger.Debug(ctx, "change pin: verification failed", "id", id, "reason", err)
		return ErrPINMismatch
	}

	r.set(id, cryptox.HashPIN(newPIN))
	if err := v.store(r); err != nil {
		v.logger.Error(ctx, "change pin: write failed", "id", id, "error", err)
		return err
	}
	v.logger.Info(ctx, "pin changed", "id", id)
	return nil
}

// ListIDs returns the identifiers in insertion order, or an empty slice when
// the vault cannot be read.
func (v *Vault) ListIDs(ctx context.Context) []string {
	r, err := v.load()
	if err != nil {
		v.logger.Warn(ctx, "list: vault unreadable", "error", err)
		return []string{}
	}
	return r.list()
}

func check(r *roster, id, pin string) error {
	stored, ok := r.get(id)
	if !ok {
		return ErrIdentifierNotFound
	}
	if !cryptox.EqualHash(stored, cryptox.HashPIN(pin)) {
		return ErrPINMismatch
	}
	return nil
}

func (v *Vault) load() (*roster, error) {
	blob, err := os.ReadFile(v.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %w", ErrVaultUnavailable, err)
	}
	return v.decode(blob)
}

func (v *Vault) store(r *roster) error {
	blob, err := v.encode(r)
	if err != nil {
		return err
	}
	if err := filex.WriteAtomic(v.path, blob); err != nil {
		return fmt.Errorf("%w: write: %w", ErrVaultUnavailable, err)
	}
	return nil
}

func (v *Vault) decode(blob []byte) (*roster, error) {
	if len(blob) <= cryptox.SaltSize {
		return nil, fmt.Errorf("%w: file too short (%d bytes)", ErrVaultUnavailable, len(blob))
	}
	salt, token := blob[:cryptox.SaltSize], blob[cryptox.SaltSize:]

	key, err := v.deriveKey(salt)
	if err != nil {
		return nil, err
	}

	payload, err := cryptox.Open(token, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultUnavailable, err)
	}

	r := newRoster()
	if err := json.Unmarshal(payload, r); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %w", ErrVaultUnavailable, err)
	}
	return r, nil
}

func (v *Vault) encode(r *roster) ([]byte, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %w", ErrVaultUnavailable, err)
	}

	salt, err := cryptox.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("%w: salt: %w", ErrVaultUnavailable, err)
	}

	key, err := v.deriveKey(salt)
	if err != nil {
		return nil, err
	}

	token, err := cryptox.Seal(payload, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultUnavailable, err)
	}

	blob := make([]byte, 0, len(salt)+len(token))
	blob = append(blob, salt...)
	return append(blob, token...), nil
}

func (v *Vault) deriveKey(salt []byte) (*fernet.Key, error) {
	pass, err := v.passphrase.Passphrase()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultUnavailable, err)
	}
	key, err := cryptox.DeriveKey(pass, salt, v.iterations)
	if err != nil {
		return nil, fmt.Errorf("%w: derive key: %w", ErrVaultUnavailable, err)
	}
	return key, nil
}
