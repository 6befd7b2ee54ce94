// Package runner executes external commands. Every process the bootstrap
// starts goes through a Runner so tests can substitute a fake.
package runner

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"

	"bootstrap/internal/logger"
)

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Stdin is fed to the process when set.
	Stdin io.Reader
	// Sudo prefixes the command with sudo unless the process is already root.
	Sudo bool
	// Interactive attaches the terminal so prompts (sudo, chsh) reach the user.
	// Output is not captured in this mode.
	Interactive bool
}

// String renders the command line for logs.
func (c Command) String() string {
	parts := append([]string{c.Name}, c.Args...)
	if c.Sudo {
		parts = append([]string{"sudo"}, parts...)
	}
	return strings.Join(parts, " ")
}

// Runner runs commands and resolves executables on PATH.
type Runner interface {
	Run(ctx context.Context, cmd Command) ([]byte, error)
	LookPath(name string) (string, error)
}

// Exec runs commands on the host with os/exec.
type Exec struct{}

// New returns a host runner.
func New() *Exec {
	return &Exec{}
}

// LookPath resolves name against PATH.
func (e *Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run executes cmd and blocks until it exits. A non-zero exit is returned as
// an error carrying the command line and its combined output.
func (e *Exec) Run(ctx context.Context, cmd Command) ([]byte, error) {
	name, args := cmd.Name, cmd.Args
	if cmd.Sudo && os.Geteuid() != 0 {
		name, args = "sudo", append([]string{cmd.Name}, cmd.Args...)
	}

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = cmd.Dir
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(c.Args, " "))

	if cmd.Interactive {
		c.Stdin = os.Stdin
		if cmd.Stdin != nil {
			c.Stdin = cmd.Stdin
		}
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return nil, errors.Wrapf(err, "command %q failed", cmd.String())
		}
		return nil, nil
	}

	var buf bytes.Buffer
	c.Stdin = cmd.Stdin
	c.Stdout = &buf
	c.Stderr = &buf
	err := c.Run()
	out := buf.Bytes()
	if err != nil {
		return out, errors.Wrapf(err, "command %q failed\nOutput: %s", cmd.String(), strings.TrimSpace(string(out)))
	}
	logger.Debug("[DEBUG] Command output: %s\n", strings.TrimSpace(string(out)))
	return out, nil
}
