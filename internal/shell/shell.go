// Package shell makes the configured shell the user's login shell.
package shell

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"bootstrap/internal/logger"
	"bootstrap/internal/runner"
)

// ShellsFile is the registry of permitted login shells.
const ShellsFile = "/etc/shells"

// ShellChangeError is a failure to register or switch to a login shell.
type ShellChangeError struct {
	Shell string
	Op    string
	Err   error
}

func (e *ShellChangeError) Error() string {
	return fmt.Sprintf("set default shell %s: %s: %v", e.Shell, e.Op, e.Err)
}

func (e *ShellChangeError) Unwrap() error { return e.Err }

// Status is the outcome of SetDefaultShell.
type Status int

const (
	Unchanged Status = iota
	Changed
)

// Result describes what SetDefaultShell did. Registered is true when the
// shell had to be added to the shells file.
type Result struct {
	Shell      string
	Status     Status
	Registered bool
}

// Finalizer changes the login shell. Current is the value of $SHELL for the
// running session.
type Finalizer struct {
	fs      afero.Fs
	run     runner.Runner
	current string
}

// New returns a Finalizer.
func New(fs afero.Fs, r runner.Runner, current string) *Finalizer {
	return &Finalizer{fs: fs, run: r, current: current}
}

// SetDefaultShell makes shell the login shell. A bare name is resolved on
// PATH. Nothing happens when the session already runs that shell.
func (f *Finalizer) SetDefaultShell(ctx context.Context, shell string) (Result, error) {
	path := shell
	if !filepath.IsAbs(path) {
		resolved, err := f.run.LookPath(shell)
		if err != nil {
			return Result{Shell: shell}, &ShellChangeError{Shell: shell, Op: "lookup", Err: err}
		}
		path = resolved
	}
	res := Result{Shell: path}

	if f.current == path || (f.current != "" && f.current == shell) {
		logger.Info("[INFO] %s is already the default shell\n", path)
		return res, nil
	}

	listed, err := f.registered(path)
	if err != nil {
		return res, &ShellChangeError{Shell: path, Op: "read " + ShellsFile, Err: err}
	}
	if !listed {
		logger.Info("[INFO] Adding %s to %s\n", path, ShellsFile)
		cmd := runner.Command{Name: "tee", Args: []string{"-a", ShellsFile}, Stdin: strings.NewReader(path + "\n"), Sudo: true}
		if _, err := f.run.Run(ctx, cmd); err != nil {
			return res, &ShellChangeError{Shell: path, Op: "register", Err: err}
		}
		res.Registered = true
	}

	if _, err := f.run.Run(ctx, runner.Command{Name: "chsh", Args: []string{"-s", path}, Interactive: true}); err != nil {
		return res, &ShellChangeError{Shell: path, Op: "chsh", Err: err}
	}
	res.Status = Changed
	logger.Info("[INFO] Default shell set to %s. It takes effect on your next login.\n", path)
	return res, nil
}

func (f *Finalizer) registered(path string) (bool, error) {
	data, err := afero.ReadFile(f.fs, ShellsFile)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == path {
			return true, nil
		}
	}
	return false, scanner.Err()
}
