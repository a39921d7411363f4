package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus-pusher/internal/relay"
)

func stubTerminal(t *testing.T, terminal bool, pw string, err error) {
	t.Helper()
	origIs, origRead, origFd := isTerminal, readPassword, stdinFd
	t.Cleanup(func() { isTerminal, readPassword, stdinFd = origIs, origRead, origFd })

	stdinFd = func() int { return 0 }
	isTerminal = func(int) bool { return terminal }
	readPassword = func(int) ([]byte, error) { return []byte(pw), err }
}

func TestResolvePassword(t *testing.T) {
	tests := []struct {
		name       string
		src        passwordSource
		configured relay.Secret
		stdin      string
		terminal   bool
		typed      string
		want       relay.Secret
	}{
		{name: "stdin keeps inner spaces", src: passwordSource{fromStdin: true}, stdin: " p w \r\n", want: " p w "},
		{name: "stdin without newline", src: passwordSource{fromStdin: true}, stdin: "pw", want: "pw"},
		{name: "flag wins over configured", src: passwordSource{flag: "flag-pw"}, configured: "env-pw", want: "flag-pw"},
		{name: "configured", configured: "env-pw", want: "env-pw"},
		{name: "prompt on terminal", terminal: true, typed: "typed-pw", want: "typed-pw"},
		{name: "no terminal no prompt", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubTerminal(t, tt.terminal, tt.typed, nil)
			var prompt bytes.Buffer

			got, err := resolvePassword(tt.src, tt.configured, strings.NewReader(tt.stdin), &prompt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.terminal {
				assert.Contains(t, prompt.String(), "Password: ")
			} else {
				assert.Empty(t, prompt.String())
			}
		})
	}
}

func TestResolvePasswordConflict(t *testing.T) {
	_, err := resolvePassword(passwordSource{flag: "a", fromStdin: true}, "", strings.NewReader("b\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrPasswordFlagsConflict)
}

func TestResolvePasswordPromptError(t *testing.T) {
	stubTerminal(t, true, "", errors.New("inappropriate ioctl"))

	_, err := resolvePassword(passwordSource{}, "", strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrReadPasswordFailed)
}
