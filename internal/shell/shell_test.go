package shell

import (
	"context"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bootstrap/internal/logger"
	"bootstrap/internal/runner"
)

func init() {
	logger.SetOutput(io.Discard)
}

func newFinalizer(t *testing.T, shells, current string) (*Finalizer, *runner.Fake) {
	t.Helper()
	fs := afero.NewMemMapFs()
	if shells != "" {
		require.NoError(t, afero.WriteFile(fs, ShellsFile, []byte(shells), 0o644))
	}
	fake := runner.NewFake(map[string]string{"zsh": "/usr/bin/zsh"})
	return New(fs, fake, current), fake
}

func TestAlreadyDefaultIsNoop(t *testing.T) {
	f, fake := newFinalizer(t, "/bin/bash\n", "/usr/bin/zsh")
	res, err := f.SetDefaultShell(context.Background(), "zsh")
	require.NoError(t, err)
	assert.Equal(t, Unchanged, res.Status)
	assert.Empty(t, fake.Calls())
}

func TestRegistersAndChanges(t *testing.T) {
	f, fake := newFinalizer(t, "/bin/sh\n/bin/bash\n", "/bin/bash")
	res, err := f.SetDefaultShell(context.Background(), "zsh")
	require.NoError(t, err)
	assert.Equal(t, Result{Shell: "/usr/bin/zsh", Status: Changed, Registered: true}, res)

	assert.Equal(t, []string{"sudo tee -a /etc/shells", "chsh -s /usr/bin/zsh"}, fake.CommandLines())
	calls := fake.Calls()
	assert.Equal(t, "/usr/bin/zsh\n", string(calls[0].Stdin))
	assert.True(t, calls[1].Command.Interactive)
}

func TestListedShellSkipsRegistration(t *testing.T) {
	f, fake := newFinalizer(t, "/bin/bash\n  /usr/bin/zsh  \n", "/bin/bash")
	res, err := f.SetDefaultShell(context.Background(), "/usr/bin/zsh")
	require.NoError(t, err)
	assert.False(t, res.Registered)
	assert.Equal(t, []string{"chsh -s /usr/bin/zsh"}, fake.CommandLines())
}

func TestMissingShellsFileMeansUnlisted(t *testing.T) {
	f, fake := newFinalizer(t, "", "")
	_, err := f.SetDefaultShell(context.Background(), "zsh")
	require.NoError(t, err)
	assert.True(t, fake.Ran("sudo tee -a /etc/shells"))
}

func TestChshFailure(t *testing.T) {
	f, fake := newFinalizer(t, "/usr/bin/zsh\n", "/bin/bash")
	fake.Handler = func(runner.Command, []byte) ([]byte, error) { return nil, assert.AnError }

	_, err := f.SetDefaultShell(context.Background(), "zsh")
	var shErr *ShellChangeError
	require.ErrorAs(t, err, &shErr)
	assert.Equal(t, "chsh", shErr.Op)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestUnknownShell(t *testing.T) {
	f, fake := newFinalizer(t, "", "/bin/bash")
	_, err := f.SetDefaultShell(context.Background(), "fish")
	var shErr *ShellChangeError
	require.ErrorAs(t, err, &shErr)
	assert.Equal(t, "lookup", shErr.Op)
	assert.Empty(t, fake.Calls())
}
