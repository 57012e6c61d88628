package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// readPassword and isTerminal are test seams for golang.org/x/term.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// noTerminal is passed to GetPIN when input does not come from a terminal.
const noTerminal = -1

// terminalFd returns the descriptor of in when it is a terminal, noTerminal
// otherwise.
func terminalFd(in io.Reader) int {
	f, ok := in.(*os.File)
	if !ok || !isTerminal(int(f.Fd())) {
		return noTerminal
	}
	return int(f.Fd())
}

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	return readLine(reader)
}

// GetTextDefault works like GetSimpleText but shows def in brackets and
// returns it when the operator enters an empty line.
func GetTextDefault(reader *bufio.Reader, prompt, def string, w io.Writer) (string, error) {
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]", prompt, def)
	}
	s, err := GetSimpleText(reader, prompt, w)
	if err != nil {
		return "", err
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

// GetPIN prints a PIN prompt to w and reads the PIN. When fd is a terminal
// descriptor the PIN is read from it without echo; with noTerminal (piped
// input) a line is read from reader.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPIN(reader *bufio.Reader, prompt string, w io.Writer, fd int) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}

	if fd == noTerminal {
		line, err := readLine(reader)
		if err != nil {
			return nil, err
		}
		return []byte(line), nil
	}

	pin, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pin, nil
}

// GetChoice lists options numbered from 1 and reads the operator's choice,
// given either as a number or as the option text itself. An empty answer
// selects def. Text that matches no option is returned as entered.
func GetChoice(reader *bufio.Reader, prompt string, options []string, def string, w io.Writer) (string, error) {
	for i, o := range options {
		if _, err := fmt.Fprintf(w, "  %d) %s\n", i+1, o); err != nil {
			return "", err
		}
	}

	answer, err := GetTextDefault(reader, prompt, def, w)
	if err != nil {
		return "", err
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], nil
	}
	return answer, nil
}

// Confirm asks a yes/no question. Anything but "y" or "yes" is a no.
func Confirm(reader *bufio.Reader, prompt string, w io.Writer) (bool, error) {
	answer, err := GetSimpleText(reader, prompt+" [y/N]", w)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
