package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"nexus-pusher/internal/relay"
)

// Test seams for terminal handling.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
)

// passwordSource describes where the push command gets the registry
// password from.
type passwordSource struct {
	flag      string
	fromStdin bool
}

// resolvePassword returns the password from, in order: --password-stdin,
// --password, the resolved settings, or an interactive prompt when stdin is
// a terminal. Only the trailing line break is removed; the password is
// otherwise passed through as typed.
func resolvePassword(src passwordSource, configured relay.Secret, stdin io.Reader, prompt io.Writer) (relay.Secret, error) {
	if src.fromStdin && src.flag != "" {
		return "", newWithSentinel(ErrPasswordFlagsConflict, "--password and --password-stdin are mutually exclusive")
	}
	if src.fromStdin {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", wrapWithSentinel(ErrReadPasswordFailed, err, fmt.Sprintf("failed to read password from stdin: %v", err))
		}
		return relay.Secret(strings.TrimRight(line, "\r\n")), nil
	}
	if src.flag != "" {
		return relay.Secret(src.flag), nil
	}
	if configured != "" {
		return configured, nil
	}
	fd := stdinFd()
	if !isTerminal(fd) {
		return "", nil
	}
	_, _ = fmt.Fprint(prompt, "Password: ")
	pw, err := readPassword(fd)
	_, _ = fmt.Fprintln(prompt)
	if err != nil {
		return "", wrapWithSentinel(ErrReadPasswordFailed, err, fmt.Sprintf("failed to read password: %v", err))
	}
	return relay.Secret(pw), nil
}
