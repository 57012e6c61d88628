package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/dmitrijs2005/signout/internal/common"
	"github.com/dmitrijs2005/signout/internal/logging"
)

var errPINConfirm = errors.New("the PINs entered do not match")

// DS dispatches the supervisor administration subcommands.
func (a *App) DS(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("ds list|add|remove|pin")
	}
	switch args[0] {
	case "list":
		return a.listSupervisors(ctx)
	case "add":
		return a.addSupervisor(ctx)
	case "remove":
		return a.removeSupervisor(ctx)
	case "pin":
		return a.changePIN(ctx)
	default:
		return usage("ds list|add|remove|pin")
	}
}

func (a *App) listSupervisors(ctx context.Context) error {
	roster := a.auth.Roster(ctx)
	if len(roster) == 0 {
		return fmt.Errorf("%w: the supervisor roster could not be read", common.ErrorInternal)
	}
	for i, id := range roster {
		marker := ""
		if id == a.operator {
			marker = " (you)"
		}
		fmt.Fprintf(a.out, "  %d) %s%s\n", i+1, id, marker)
	}
	return nil
}

func (a *App) addSupervisor(ctx context.Context) error {
	operator, err := a.authorize(ctx, "add a supervisor")
	if err != nil {
		return err
	}

	id, err := GetSimpleText(a.reader, "New supervisor name", a.out)
	if err != nil {
		return err
	}
	pin, err := a.readNewPIN()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	if err := a.auth.AddSupervisor(ctx, operator, id, string(pin)); err != nil {
		return err
	}
	okColor.Fprintf(a.out, "Supervisor %s added.\n", id)
	return nil
}

func (a *App) removeSupervisor(ctx context.Context) error {
	operator, err := a.authorize(ctx, "remove a supervisor")
	if err != nil {
		return err
	}

	id, err := GetChoice(a.reader, "Supervisor to remove", a.auth.Roster(ctx), "", a.out)
	if err != nil {
		return err
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Remove %s?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}

	if err := a.auth.RemoveSupervisor(ctx, operator, id); err != nil {
		return err
	}
	okColor.Fprintf(a.out, "Supervisor %s removed.\n", id)
	return nil
}

// changePIN is gated by the current PIN of the supervisor being changed.
func (a *App) changePIN(ctx context.Context) error {
	id, err := a.chooseSupervisor(ctx, "Supervisor", a.operator)
	if err != nil {
		return err
	}
	oldPIN, err := GetPIN(a.reader, "Current PIN", a.out, a.pinFd)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(oldPIN)

	newPIN, err := a.readNewPIN()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPIN)

	if err := a.auth.ChangePIN(ctx, a.operator, id, string(oldPIN), string(newPIN)); err != nil {
		return err
	}
	okColor.Fprintf(a.out, "PIN changed for %s.\n", id)
	return nil
}

func (a *App) readNewPIN() ([]byte, error) {
	pin, err := GetPIN(a.reader, "New PIN", a.out, a.pinFd)
	if err != nil {
		return nil, err
	}
	again, err := GetPIN(a.reader, "Confirm new PIN", a.out, a.pinFd)
	if err != nil {
		common.WipeByteArray(pin)
		return nil, err
	}
	defer common.WipeByteArray(again)

	if string(pin) != string(again) {
		common.WipeByteArray(pin)
		return nil, errPINConfirm
	}
	return pin, nil
}

// Logs lists the daily log files, or prints the one named in args.
func (a *App) Logs(_ context.Context, args []string) error {
	names, err := logging.ListFiles(a.logDir)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if len(names) == 0 {
			fmt.Fprintln(a.out, "No log files.")
			return nil
		}
		for _, n := range names {
			fmt.Fprintln(a.out, "  "+n)
		}
		return nil
	}

	if len(args) != 1 {
		return usage("logs [file]")
	}
	if !slices.Contains(names, args[0]) {
		return fmt.Errorf("log file %q: %w", args[0], common.ErrorNotFound)
	}
	b, err := os.ReadFile(filepath.Join(a.logDir, args[0]))
	if err != nil {
		return err
	}
	_, err = a.out.Write(b)
	return err
}

func (a *App) Backup(ctx context.Context, _ []string) error {
	if a.backup == nil {
		return errors.New("backups are not configured")
	}
	operator, err := a.authorize(ctx, "create a backup")
	if err != nil {
		return err
	}

	res, err := a.backup.Create(ctx, operator)
	if err != nil {
		return err
	}
	okColor.Fprintf(a.out, "Backup written to %s:\n", res.Destination)
	for _, k := range res.Keys {
		fmt.Fprintln(a.out, "  "+k)
	}
	return nil
}
