package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/signout/internal/models"
)

// soldiersInTable is how many names a table row shows before summarising.
const soldiersInTable = 3

func (a *App) List(ctx context.Context, _ []string) error {
	list, err := a.ledger.List(ctx)
	if err != nil {
		return err
	}
	a.printTable(list)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("show <id>")
	}
	s, err := a.ledger.Get(ctx, args[0])
	if err != nil {
		return err
	}
	a.printDetails(s)
	return nil
}

// New reads a draft, validates it, then asks for a PIN and stores it.
func (a *App) New(ctx context.Context, _ []string) error {
	d, err := a.readDraft(nil)
	if err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}

	operator, err := a.authorize(ctx, "sign soldiers out")
	if err != nil {
		return err
	}
	s, err := a.ledger.SignOut(ctx, operator, d)
	if err != nil {
		return err
	}
	okColor.Fprintf(a.out, "Signed out %s (ID %s).\n", models.FormatSoldiers(s.Soldiers, 0), s.ID)
	return nil
}

// Edit shows the current values as defaults; an empty answer keeps them.
func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("edit <id>")
	}
	existing, err := a.ledger.Get(ctx, args[0])
	if err != nil {
		return err
	}

	d, err := a.readDraft(existing)
	if err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}

	operator, err := a.authorize(ctx, "edit sign-out "+existing.ID)
	if err != nil {
		return err
	}
	if _, err := a.ledger.Update(ctx, operator, existing.ID, d); err != nil {
		return err
	}
	okColor.Fprintf(a.out, "Sign-out %s updated.\n", existing.ID)
	return nil
}

func (a *App) SignIn(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("signin <id>")
	}
	s, err := a.ledger.Get(ctx, args[0])
	if err != nil {
		return err
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Sign in %s from %s?",
		models.FormatSoldiers(s.Soldiers, 0), s.Destination), a.out)
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}

	operator, err := a.authorize(ctx, "sign soldiers in")
	if err != nil {
		return err
	}
	removed, err := a.ledger.SignIn(ctx, operator, s.ID)
	if err != nil {
		return err
	}
	okColor.Fprintf(a.out, "Signed in %s after %s.\n",
		models.FormatSoldiers(removed.Soldiers, 0), models.FormatDuration(removed.DateTime, a.now()))
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("search <term>")
	}
	found, err := a.ledger.Search(ctx, strings.Join(args, " "), "", false)
	if err != nil {
		return err
	}
	a.printTable(found)
	return nil
}

func (a *App) Sort(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return usage("sort <datetime|destination|id> [desc]")
	}
	key, err := models.ParseSortKey(args[0])
	if err != nil {
		return err
	}
	reverse := false
	if len(args) == 2 {
		switch strings.ToLower(args[1]) {
		case "desc", "reverse":
			reverse = true
		case "asc":
		default:
			return usage("sort <datetime|destination|id> [desc]")
		}
	}

	sorted, err := a.ledger.Search(ctx, "", key, reverse)
	if err != nil {
		return err
	}
	a.printTable(sorted)
	return nil
}

func (a *App) Stats(ctx context.Context, _ []string) error {
	st, err := a.ledger.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Active sign-outs: %d\n", st.TotalEntries)
	fmt.Fprintf(a.out, "Soldiers out:     %d\n", st.TotalSoldiers)
	rows := st.ByDestination()
	if len(rows) == 0 {
		return nil
	}
	fmt.Fprintln(a.out, "By destination:")
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "  %s\t%d\n", r.Destination, r.Soldiers)
	}
	return tw.Flush()
}

func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("export <file>")
	}
	if err := a.ledger.Export(ctx, args[0]); err != nil {
		return err
	}
	okColor.Fprintf(a.out, "Exported to %s.\n", args[0])
	return nil
}

// readDraft prompts for every field. When cur is set its values are offered
// as defaults and "-" clears the optional fields.
func (a *App) readDraft(cur *models.SignOut) (models.Draft, error) {
	var def models.SignOut
	if cur != nil {
		def = *cur
	}

	soldiers, err := GetTextDefault(a.reader, "Soldiers (comma separated)", strings.Join(def.Soldiers, ", "), a.out)
	if err != nil {
		return models.Draft{}, err
	}
	dest, err := GetTextDefault(a.reader, "Destination", def.Destination, a.out)
	if err != nil {
		return models.Draft{}, err
	}
	phone, err := GetTextDefault(a.reader, "Phone", def.Phone, a.out)
	if err != nil {
		return models.Draft{}, err
	}
	cats, err := GetTextDefault(a.reader, "Categories (comma separated, optional)", strings.Join(def.Categories, ", "), a.out)
	if err != nil {
		return models.Draft{}, err
	}
	notes, err := GetTextDefault(a.reader, "Notes (optional)", def.Notes, a.out)
	if err != nil {
		return models.Draft{}, err
	}

	return models.Draft{
		Soldiers:    models.SplitList(soldiers),
		Destination: dest,
		Phone:       phone,
		Categories:  models.SplitList(clearable(cats)),
		Notes:       clearable(notes),
	}, nil
}

func clearable(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

func (a *App) printTable(list []models.SignOut) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No active sign-outs.")
		return
	}

	now := a.now()
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOLDIERS\tDESTINATION\tPHONE\tOUT SINCE\tDURATION\tDS")
	soldiers := 0
	for _, s := range list {
		soldiers += len(s.Soldiers)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID,
			models.FormatSoldiers(s.Soldiers, soldiersInTable),
			s.Destination,
			s.Phone,
			models.FormatTime(s.DateTime),
			models.FormatDuration(s.DateTime, now),
			s.DS)
	}
	tw.Flush()
	fmt.Fprintf(a.out, "%d sign-out(s), %d soldier(s) out.\n", len(list), soldiers)
}

func (a *App) printDetails(s *models.SignOut) {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", s.ID)
	fmt.Fprintf(tw, "Soldiers:\t%s\n", models.FormatSoldiers(s.Soldiers, 0))
	fmt.Fprintf(tw, "Destination:\t%s\n", s.Destination)
	fmt.Fprintf(tw, "Phone:\t%s\n", s.Phone)
	fmt.Fprintf(tw, "Categories:\t%s\n", strings.Join(s.Categories, ", "))
	fmt.Fprintf(tw, "Signed out:\t%s (%s ago)\n", models.FormatTime(s.DateTime), models.FormatDuration(s.DateTime, a.now()))
	fmt.Fprintf(tw, "DS:\t%s\n", s.DS)
	fmt.Fprintf(tw, "Notes:\t%s\n", s.Notes)
	fmt.Fprintf(tw, "Created:\t%s\n", models.FormatTime(s.CreatedAt))
	if s.LastModified != nil {
		fmt.Fprintf(tw, "Last modified:\t%s\n", models.FormatTime(*s.LastModified))
	}
	tw.Flush()
}
