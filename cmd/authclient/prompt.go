package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

type terminalNotifier struct {
	out    io.Writer
	errOut io.Writer
}

func (n terminalNotifier) Success(message string) { fmt.Fprintln(n.out, message) }
func (n terminalNotifier) Error(message string)   { fmt.Fprintln(n.errOut, "error: "+message) }

// readSecret returns flagValue when set. Otherwise it prompts on the
// terminal with echo disabled, or reads one line from in when stdin is not
// a terminal.
func readSecret(prompt, flagValue string, in io.Reader, errOut io.Writer) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	fd := int(os.Stdin.Fd())
	if in == os.Stdin && term.IsTerminal(fd) {
		fmt.Fprint(errOut, prompt+": ")
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(errOut)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", strings.ToLower(prompt), err)
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(prompt), err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(prompt))
	}
	return line, nil
}
