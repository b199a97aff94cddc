package terminal_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/sapauto/internal/terminal"
)

func reveal(t *testing.T, p interface{ Reveal() (string, error) }) string {
	t.Helper()
	s, err := p.Reveal()
	require.NoError(t, err)
	return s
}

func TestReadUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		current string
		want    string
		wantErr error
	}{
		{name: "typed", input: "alice\n", want: "alice"},
		{name: "trimmed", input: "  bob \r\n", want: "bob"},
		{name: "default_kept", input: "\n", current: "carol", want: "carol"},
		{name: "no_trailing_newline", input: "dave", want: "dave"},
		{name: "empty_without_default", input: "\n", wantErr: terminal.ErrEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			p := terminal.NewScripted(strings.NewReader(tt.input), &out)

			got, err := p.ReadUsername(tt.current)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Username")
		})
	}
}

func TestReadPasswordConfirm(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := terminal.NewScripted(strings.NewReader("s3cret!\ns3cret!\n"), &out)

	buf, err := p.ReadPasswordConfirm("Password: ", "Confirm password: ")
	require.NoError(t, err)
	defer buf.Destroy()

	assert.Equal(t, "s3cret!", reveal(t, buf))
	assert.Contains(t, out.String(), "Confirm password: ")
	assert.NotContains(t, out.String(), "s3cret!")
}

func TestReadPasswordConfirm_Mismatch(t *testing.T) {
	t.Parallel()

	p := terminal.NewScripted(strings.NewReader("one\ntwo\n"), &bytes.Buffer{})

	_, err := p.ReadPasswordConfirm("Password: ", "Confirm password: ")
	assert.ErrorIs(t, err, terminal.ErrMismatch)
}

func TestReadPassword_Errors(t *testing.T) {
	t.Parallel()

	p := terminal.NewScripted(strings.NewReader("\n"), &bytes.Buffer{})
	_, err := p.ReadPassword("Password: ")
	assert.ErrorIs(t, err, terminal.ErrEmpty)

	p = terminal.NewScripted(strings.NewReader(""), &bytes.Buffer{})
	_, err = p.ReadPassword("Password: ")
	assert.Error(t, err)
}

func TestReadPasswordLine(t *testing.T) {
	t.Parallel()

	p := terminal.NewScripted(strings.NewReader("piped-pass\r\nignored\n"), &bytes.Buffer{})

	buf, err := p.ReadPasswordLine()
	require.NoError(t, err)
	assert.Equal(t, "piped-pass", reveal(t, buf))
}

func TestResolvePassword_Order(t *testing.T) {
	t.Setenv(terminal.PasswordEnvVar, "from-env")

	p := terminal.NewScripted(strings.NewReader("from-stdin\n"), &bytes.Buffer{})
	buf, err := p.ResolvePassword(true, false)
	require.NoError(t, err)
	assert.Equal(t, "from-stdin", reveal(t, buf))

	p = terminal.NewScripted(strings.NewReader("from-prompt\n"), &bytes.Buffer{})
	buf, err = p.ResolvePassword(false, false)
	require.NoError(t, err)
	assert.Equal(t, "from-env", reveal(t, buf))

	t.Setenv(terminal.PasswordEnvVar, "")
	buf, err = p.ResolvePassword(false, false)
	require.NoError(t, err)
	assert.Equal(t, "from-prompt", reveal(t, buf))
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"y\n":     true,
		"YES\n":   true,
		"n\n":     false,
		"\n":      false,
		"maybe\n": false,
	}

	for input, want := range tests {
		t.Run(strings.TrimSpace(input), func(t *testing.T) {
			t.Parallel()

			p := terminal.NewScripted(strings.NewReader(input), &bytes.Buffer{})
			got, err := p.Confirm("Delete?")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}
