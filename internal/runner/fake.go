package runner

import (
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Fake is an in-memory Runner. It records every command it receives and
// answers LookPath from a fixed table.
type Fake struct {
	mu sync.Mutex
	// Paths maps executable names to the path LookPath reports.
	Paths map[string]string
	// Handler, when set, decides the outcome of each command.
	Handler func(cmd Command, stdin []byte) ([]byte, error)
	calls   []Call
}

// Call is one recorded invocation.
type Call struct {
	Command Command
	Stdin   []byte
}

// NewFake returns a Fake that knows the given executables.
func NewFake(paths map[string]string) *Fake {
	if paths == nil {
		paths = map[string]string{}
	}
	return &Fake{Paths: paths}
}

// LookPath implements Runner.
func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.Paths[name]; ok {
		return p, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// Run implements Runner.
func (f *Fake) Run(_ context.Context, cmd Command) ([]byte, error) {
	var stdin []byte
	if cmd.Stdin != nil {
		stdin, _ = io.ReadAll(cmd.Stdin)
	}
	f.mu.Lock()
	f.calls = append(f.calls, Call{Command: cmd, Stdin: stdin})
	h := f.Handler
	f.mu.Unlock()
	if h == nil {
		return nil, nil
	}
	return h(cmd, stdin)
}

// Calls returns the recorded invocations.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CommandLines returns each recorded call rendered with Command.String.
func (f *Fake) CommandLines() []string {
	var lines []string
	for _, c := range f.Calls() {
		lines = append(lines, c.Command.String())
	}
	return lines
}

// Ran reports whether a recorded command line starts with prefix.
func (f *Fake) Ran(prefix string) bool {
	for _, l := range f.CommandLines() {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}
