// Package services contains the application services behind the console.
// This file defines the authentication service: the PIN gate in front of
// every mutation and the administration of the supervisor roster.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/signout/internal/common"
	"github.com/dmitrijs2005/signout/internal/logging"
	"github.com/dmitrijs2005/signout/internal/vault"
)

const (
	MinPINLength = 4
	MaxPINLength = 8
)

// Credentials is the part of the credential vault the services use.
// *vault.Vault implements it.
type Credentials interface {
	Verify(ctx context.Context, id, pin string) bool
	Add(ctx context.Context, id, pin string) error
	Remove(ctx context.Context, id string) error
	ChangePIN(ctx context.Context, id, oldPIN, newPIN string) error
	ListIDs(ctx context.Context) []string
}

// AuthService defines supervisor authentication and roster administration.
//
// Contract:
//   - Authenticate returns common.ErrorUnauthorized for every failure, whatever
//     the cause (unknown supervisor, wrong PIN, unreadable vault).
//   - Roster lists supervisors in the order they were added.
//   - AddSupervisor, RemoveSupervisor and ChangePIN are audited with the
//     operator that performed them.
type AuthService interface {
	Roster(ctx context.Context) []string
	Authenticate(ctx context.Context, id, pin string) error
	AddSupervisor(ctx context.Context, operator, id, pin string) error
	RemoveSupervisor(ctx context.Context, operator, id string) error
	ChangePIN(ctx context.Context, operator, id, oldPIN, newPIN string) error
}

type authService struct {
	creds  Credentials
	logger logging.Logger
}

// NewAuthService constructs an AuthService over the given credential store.
func NewAuthService(creds Credentials, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &authService{creds: creds, logger: logger}
}

// ValidatePIN enforces the policy for newly chosen PINs: 4 to 8 digits.
func ValidatePIN(pin string) error {
	if len(pin) < MinPINLength || len(pin) > MaxPINLength {
		return fmt.Errorf("%w: PIN must be %d to %d digits", common.ErrorValidation, MinPINLength, MaxPINLength)
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: PIN must contain digits only", common.ErrorValidation)
		}
	}
	return nil
}

func (a *authService) Roster(ctx context.Context) []string {
	return a.creds.ListIDs(ctx)
}

func (a *authService) Authenticate(ctx context.Context, id, pin string) error {
	if id == "" || pin == "" || !a.creds.Verify(ctx, id, pin) {
		a.logger.Warn(ctx, "authentication failed", "ds", id)
		return common.ErrorUnauthorized
	}
	a.logger.Info(ctx, "authentication succeeded", "ds", id)
	return nil
}

func (a *authService) AddSupervisor(ctx context.Context, operator, id, pin string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: supervisor name is required", common.ErrorValidation)
	}
	if err := ValidatePIN(pin); err != nil {
		return err
	}
	if slices.Contains(a.creds.ListIDs(ctx), id) {
		return fmt.Errorf("%w: supervisor %q already exists, change the PIN instead", common.ErrorValidation, id)
	}

	if err := a.creds.Add(ctx, id, pin); err != nil {
		return mapVaultError(err)
	}
	a.logger.Info(ctx, "supervisor added", "ds", id, "by", operator)
	return nil
}

// RemoveSupervisor refuses to remove the operator's own entry and the last
// remaining supervisor, either of which would lock the console.
func (a *authService) RemoveSupervisor(ctx context.Context, operator, id string) error {
	if id == operator {
		return fmt.Errorf("%w: cannot remove the signed-in supervisor", common.ErrorValidation)
	}
	roster := a.creds.ListIDs(ctx)
	if len(roster) == 0 {
		return fmt.Errorf("%w: %w", common.ErrorInternal, vault.ErrVaultUnavailable)
	}
	if !slices.Contains(roster, id) {
		return fmt.Errorf("supervisor %q: %w", id, common.ErrorNotFound)
	}
	if len(roster) == 1 {
		return fmt.Errorf("%w: cannot remove the last supervisor", common.ErrorValidation)
	}

	if err := a.creds.Remove(ctx, id); err != nil {
		return mapVaultError(err)
	}
	a.logger.Info(ctx, "supervisor removed", "ds", id, "by", operator)
	return nil
}

func (a *authService) ChangePIN(ctx context.Context, operator, id, oldPIN, newPIN string) error {
	if err := ValidatePIN(newPIN); err != nil {
		return err
	}

	if err := a.creds.ChangePIN(ctx, id, oldPIN, newPIN); err != nil {
		if errors.Is(err, vault.ErrPINMismatch) {
			a.logger.Warn(ctx, "pin change rejected", "ds", id, "by", operator)
		}
		return mapVaultError(err)
	}
	a.logger.Info(ctx, "pin changed", "ds", id, "by", operator)
	return nil
}

func mapVaultError(err error) error {
	switch {
	case errors.Is(err, vault.ErrPINMismatch):
		return common.ErrorUnauthorized
	case errors.Is(err, vault.ErrIdentifierNotFound):
		return fmt.Errorf("%w: %w", common.ErrorNotFound, err)
	case errors.Is(err, vault.ErrInvalidIdentifier):
		return fmt.Errorf("%w: %w", common.ErrorValidation, err)
	default:
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
}
