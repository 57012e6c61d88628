package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/signout/internal/common"
)

const invalidPINMessage = "Invalid PIN. Please try again."

// Login asks for a supervisor and PIN until one authenticates or the allowed
// attempts run out. On success the supervisor becomes the console operator.
func (a *App) Login(ctx context.Context) error {
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		id, err := a.authenticate(ctx, "Supervisor")
		if err == nil {
			a.operator = id
			okColor.Fprintf(a.out, "Signed in as %s.\n", id)
			return nil
		}
		if !errors.Is(err, common.ErrorUnauthorized) {
			return err
		}
		errColor.Fprintln(a.out, invalidPINMessage)
	}
	return ErrTooManyAttempts
}

// authorize re-authenticates before a change: one attempt, the supervisor
// defaulting to the operator. It returns the supervisor who authorised the
// change.
func (a *App) authorize(ctx context.Context, action string) (string, error) {
	noticeColor.Fprintf(a.out, "PIN required to %s.\n", action)
	return a.authenticate(ctx, "Authorising supervisor")
}

func (a *App) authenticate(ctx context.Context, prompt string) (string, error) {
	id, err := a.chooseSupervisor(ctx, prompt, a.operator)
	if err != nil {
		return "", err
	}

	pin, err := GetPIN(a.reader, "PIN", a.out, a.pinFd)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pin)

	if err := a.auth.Authenticate(ctx, id, string(pin)); err != nil {
		return "", err
	}
	return id, nil
}

// chooseSupervisor offers the roster. An unreadable vault yields an empty
// roster; the operator may still type a name and will be refused like any
// other failed attempt.
func (a *App) chooseSupervisor(ctx context.Context, prompt, def string) (string, error) {
	roster := a.auth.Roster(ctx)
	return GetChoice(a.reader, prompt, roster, def, a.out)
}

// Switch signs in another supervisor. A failed switch keeps the current one.
func (a *App) Switch(ctx context.Context, _ []string) error {
	prev := a.operator
	a.operator = ""
	if err := a.Login(ctx); err != nil {
		a.operator = prev
		return fmt.Errorf("switch failed, still signed in as %s: %w", prev, err)
	}
	return nil
}

func (a *App) WhoAmI(context.Context, []string) error {
	fmt.Fprintf(a.out, "Signed in as %s.\n", a.operator)
	return nil
}
