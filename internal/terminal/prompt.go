// Package terminal collects credentials from the user: a username line and
// a password read without echo. Passwords are handed back in a
// secure.SecureBuffer and the raw bytes read from the terminal are wiped.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awnumar/memguard"
	"golang.org/x/term"

	"github.com/systmms/sapauto/internal/secure"
)

// PasswordEnvVar supplies the password for non-interactive runs.
const PasswordEnvVar = "SAPAUTO_PASSWORD"

var (
	// ErrNotTerminal is returned when a prompt is needed but stdin is not
	// a terminal.
	ErrNotTerminal = errors.New("cannot prompt: stdin is not a terminal")
	// ErrMismatch is returned when the confirmation differs.
	ErrMismatch = errors.New("passwords do not match")
	// ErrEmpty is returned for an empty username or password.
	ErrEmpty = errors.New("value must not be empty")
)

// Prompter reads answers from one input and writes prompts to another.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
	readSecret  func() ([]byte, error)
}

// New returns a prompter on stdin that writes prompts to stderr.
func New() *Prompter {
	fd := int(os.Stdin.Fd())
	return &Prompter{
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stderr,
		interactive: term.IsTerminal(fd),
		readSecret:  func() ([]byte, error) { return term.ReadPassword(fd) },
	}
}

// NewScripted returns an interactive prompter that reads every answer,
// passwords included, as lines from in.
func NewScripted(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: true,
	}
	p.readSecret = func() ([]byte, error) {
		line, err := p.readLine()
		return []byte(line), err
	}
	return p
}

// IsInteractive reports whether prompting is possible.
func (p *Prompter) IsInteractive() bool {
	return p.interactive
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadUsername asks for a username, offering current as the default.
func (p *Prompter) ReadUsername(current string) (string, error) {
	if !p.interactive {
		return "", ErrNotTerminal
	}

	if current != "" {
		fmt.Fprintf(p.out, "Username [%s]: ", current)
	} else {
		fmt.Fprint(p.out, "Username: ")
	}
	input, err := p.readLine()
	if err != nil {
		return "", err
	}

	input = strings.TrimSpace(input)
	if input == "" {
		input = current
	}
	if input == "" {
		return "", fmt.Errorf("username: %w", ErrEmpty)
	}
	return input, nil
}

// ReadPassword prompts for a password without echoing input.
func (p *Prompter) ReadPassword(prompt string) (*secure.SecureBuffer, error) {
	if !p.interactive {
		return nil, ErrNotTerminal
	}

	fmt.Fprint(p.out, prompt)
	raw, err := p.readSecret()
	fmt.Fprintln(p.out)
	defer memguard.WipeBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("password: %w", ErrEmpty)
	}
	return secure.NewSecureBuffer(raw)
}

// ReadPasswordConfirm prompts twice and fails if the answers differ.
func (p *Prompter) ReadPasswordConfirm(prompt, confirmPrompt string) (*secure.SecureBuffer, error) {
	password, err := p.ReadPassword(prompt)
	if err != nil {
		return nil, err
	}
	confirm, err := p.ReadPassword(confirmPrompt)
	if err != nil {
		password.Destroy()
		return nil, err
	}
	defer confirm.Destroy()

	a, err := password.Open()
	if err != nil {
		password.Destroy()
		return nil, err
	}
	defer a.Destroy()
	b, err := confirm.Open()
	if err != nil {
		password.Destroy()
		return nil, err
	}
	defer b.Destroy()

	if !a.EqualTo(b.Bytes()) {
		password.Destroy()
		return nil, ErrMismatch
	}
	return password, nil
}

// ReadPasswordLine reads a single password line from the input without a
// prompt, for --password-stdin.
func (p *Prompter) ReadPasswordLine() (*secure.SecureBuffer, error) {
	line, err := p.readLine()
	if err != nil {
		return nil, fmt.Errorf("failed to read password from stdin: %w", err)
	}
	if line == "" {
		return nil, fmt.Errorf("password: %w", ErrEmpty)
	}
	return secure.NewSecureString(line)
}

// PasswordFromEnv returns the password from SAPAUTO_PASSWORD, if set.
func PasswordFromEnv() (*secure.SecureBuffer, bool) {
	env := os.Getenv(PasswordEnvVar)
	if env == "" {
		return nil, false
	}
	buf, err := secure.NewSecureString(env)
	if err != nil {
		return nil, false
	}
	return buf, true
}

// ResolvePassword tries, in order, a line from the input when useStdin is
// set, the SAPAUTO_PASSWORD environment variable and an interactive prompt
// with confirmation.
func (p *Prompter) ResolvePassword(useStdin bool, confirm bool) (*secure.SecureBuffer, error) {
	if useStdin {
		return p.ReadPasswordLine()
	}
	if buf, ok := PasswordFromEnv(); ok {
		return buf, nil
	}
	if confirm {
		return p.ReadPasswordConfirm("Password: ", "Confirm password: ")
	}
	return p.ReadPassword("Password: ")
}

// Confirm asks a yes/no question that defaults to no.
func (p *Prompter) Confirm(question string) (bool, error) {
	if !p.interactive {
		return false, ErrNotTerminal
	}
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	input, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
