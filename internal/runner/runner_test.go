package runner

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandString(t *testing.T) {
	assert.Equal(t, "apt-get install -y git", Command{Name: "apt-get", Args: []string{"install", "-y", "git"}}.String())
	assert.Equal(t, "sudo tee -a /etc/shells", Command{Name: "tee", Args: []string{"-a", "/etc/shells"}, Sudo: true}.String())
}

func TestExecRunCapturesOutput(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	out, err := New().Run(context.Background(), Command{
		Name:  "sh",
		Args:  []string{"-c", "cat; echo done"},
		Stdin: strings.NewReader("hello\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello\ndone\n", string(out))
}

func TestExecRunReportsFailure(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	out, err := New().Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo boom; exit 3"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, "boom\n", string(out))
}

func TestFakeRecordsCalls(t *testing.T) {
	f := NewFake(map[string]string{"git": "/usr/bin/git"})
	p, err := f.LookPath("git")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/git", p)
	_, err = f.LookPath("nvim")
	assert.Error(t, err)

	_, err = f.Run(context.Background(), Command{Name: "tee", Args: []string{"-a", "/etc/shells"}, Sudo: true, Stdin: strings.NewReader("/bin/zsh\n")})
	require.NoError(t, err)
	calls := f.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/bin/zsh\n", string(calls[0].Stdin))
	assert.True(t, f.Ran("sudo tee"))
	assert.False(t, f.Ran("chsh"))
}
