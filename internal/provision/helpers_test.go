package provision

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"bootstrap/internal/logger"
)

func init() {
	logger.SetOutput(io.Discard)
}

// commitFile writes content to name in the worktree at dir and commits it.
func commitFile(t *testing.T, r *git.Repository, dir, name, content string) plumbing.Hash {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	wt, err := r.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	h, err := wt.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return h
}

// initRepo creates a repository at dir with two commits of file "init.lua"
// and returns their hashes, oldest first.
func initRepo(t *testing.T, dir string) (*git.Repository, plumbing.Hash, plumbing.Hash) {
	t.Helper()
	r, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	first := commitFile(t, r, dir, "init.lua", "-- v1\n")
	second := commitFile(t, r, dir, "init.lua", "-- v2\n")
	return r, first, second
}
