package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const helpText = `Available commands:
  list | l                         list active sign-outs
  show <id>                        show one sign-out
  new                              sign soldiers out
  edit <id>                        edit a sign-out
  signin <id>                      sign soldiers back in
  search <term>                    search soldiers, destinations and IDs
  sort <datetime|destination|id> [desc]
  stats                            sign-out statistics
  export <file>                    export the ledger as JSON
  logs [file]                      list log files or print one
  backup                           back up the ledger and the vault
  ds list | add | remove | pin     supervisor administration
  whoami                           show the signed-in supervisor
  switch                           sign in as another supervisor
  exit | quit                      leave the program`

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	New(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	SignIn(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Sort(ctx context.Context, args []string) error
	Stats(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Logs(ctx context.Context, args []string) error
	Backup(ctx context.Context, args []string) error
	DS(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context, args []string) error
	Switch(ctx context.Context, args []string) error
	report(err error)
}

// runREPL starts a simple read–eval–print loop for the console.
//
// It reads a line from reader, parses the first token as the command and
// dispatches the remaining tokens to methods on 'a'. Errors returned by
// command handlers are reported through a.report and the loop goes on. The
// loop exits on EOF or when the operator types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "signout %s> ", statusFn())
		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(out)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var handler func(context.Context, []string) error
		switch strings.ToLower(cmd) {
		case "help", "?":
			fmt.Fprintln(out, helpText)
			continue
		case "l", "list":
			handler = a.List
		case "show":
			handler = a.Show
		case "new":
			handler = a.New
		case "edit":
			handler = a.Edit
		case "signin":
			handler = a.SignIn
		case "search":
			handler = a.Search
		case "sort":
			handler = a.Sort
		case "stats":
			handler = a.Stats
		case "export":
			handler = a.Export
		case "logs":
			handler = a.Logs
		case "backup":
			handler = a.Backup
		case "ds":
			handler = a.DS
		case "whoami":
			handler = a.WhoAmI
		case "switch":
			handler = a.Switch
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
			continue
		}

		if err := handler(ctx, args); err != nil {
			a.report(err)
		}
	}
}
