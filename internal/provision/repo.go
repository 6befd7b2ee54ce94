package provision

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"bootstrap/internal/config"
	"bootstrap/internal/logger"
	"bootstrap/internal/runner"
)

// RepoStatus is the outcome of SyncRepo.
type RepoStatus int

const (
	Unchanged RepoStatus = iota
	Cloned
	Updated
)

func (s RepoStatus) String() string {
	switch s {
	case Cloned:
		return "cloned"
	case Updated:
		return "updated"
	}
	return "unchanged"
}

// RepoResult describes what SyncRepo did.
type RepoResult struct {
	Name        string
	Path        string
	Status      RepoStatus
	Revision    string
	PostSyncRan bool
}

// SyncRepo clones repo when its path is missing and updates it otherwise.
// A pinned repository always ends checked out at its pin, discarding local
// changes; an unpinned one is fast-forwarded to its remote. The post-sync
// action runs once per call after a successful sync.
func (p *Provisioner) SyncRepo(ctx context.Context, repo config.Repo) (RepoResult, error) {
	res := RepoResult{Name: repo.Name, Path: repo.Path}

	r, status, err := p.openOrClone(ctx, repo)
	if err != nil {
		return res, err
	}
	res.Status = status

	if repo.Pin != "" {
		changed, err := checkoutPin(ctx, r, repo)
		if err != nil {
			return res, err
		}
		if changed && res.Status == Unchanged {
			res.Status = Updated
		}
	} else if res.Status != Cloned {
		changed, err := pull(ctx, r, repo)
		if err != nil {
			return res, err
		}
		if changed {
			res.Status = Updated
		}
	}

	head, err := r.Head()
	if err != nil {
		return res, &GitError{Repo: repo.Name, Op: "head", Err: err}
	}
	res.Revision = head.Hash().String()
	logger.Info("[INFO] Repository %s is %s at %s\n", repo.Name, res.Status, short(res.Revision))

	if len(repo.PostSync) > 0 {
		if err := p.runPostSync(ctx, repo); err != nil {
			return res, err
		}
		res.PostSyncRan = true
	}
	return res, nil
}

func (p *Provisioner) openOrClone(ctx context.Context, repo config.Repo) (*git.Repository, RepoStatus, error) {
	if _, err := os.Stat(repo.Path); err == nil {
		r, err := git.PlainOpen(repo.Path)
		if err != nil {
			return nil, Unchanged, &GitError{Repo: repo.Name, Op: "open", Err: err}
		}
		return r, Unchanged, nil
	} else if !os.IsNotExist(err) {
		return nil, Unchanged, &GitError{Repo: repo.Name, Op: "stat", Err: err}
	}

	logger.Info("[INFO] Cloning %s into %s\n", repo.URL, repo.Path)
	if err := os.MkdirAll(filepath.Dir(repo.Path), 0o755); err != nil {
		return nil, Unchanged, &GitError{Repo: repo.Name, Op: "clone", Err: err}
	}
	r, err := git.PlainCloneContext(ctx, repo.Path, false, &git.CloneOptions{
		URL:               repo.URL,
		RecurseSubmodules: git.NoRecurseSubmodules,
		Tags:              git.AllTags,
	})
	if err != nil {
		return nil, Unchanged, &GitError{Repo: repo.Name, Op: "clone", Err: err}
	}
	return r, Cloned, nil
}

// checkoutPin moves the worktree to the pinned revision. The remote is only
// fetched when the pin is not yet known locally.
func checkoutPin(ctx context.Context, r *git.Repository, repo config.Repo) (bool, error) {
	hash, err := resolve(r, repo.Pin)
	if err != nil {
		logger.Debug("[DEBUG] Pin %s of %s not present locally, fetching\n", repo.Pin, repo.Name)
		err = r.FetchContext(ctx, &git.FetchOptions{RemoteName: git.DefaultRemoteName, Tags: git.AllTags})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return false, &GitError{Repo: repo.Name, Op: "fetch", Err: err}
		}
		if hash, err = resolve(r, repo.Pin); err != nil {
			return false, &GitError{Repo: repo.Name, Op: "resolve pin " + repo.Pin, Err: err}
		}
	}

	before := headHash(r)
	wt, err := r.Worktree()
	if err != nil {
		return false, &GitError{Repo: repo.Name, Op: "worktree", Err: err}
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return false, &GitError{Repo: repo.Name, Op: "checkout " + repo.Pin, Err: err}
	}
	return before != hash, nil
}

// pull fast-forwards the current branch from origin.
func pull(ctx context.Context, r *git.Repository, repo config.Repo) (bool, error) {
	wt, err := r.Worktree()
	if err != nil {
		return false, &GitError{Repo: repo.Name, Op: "worktree", Err: err}
	}
	err = wt.PullContext(ctx, &git.PullOptions{RemoteName: git.DefaultRemoteName})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return false, nil
	}
	if err != nil {
		return false, &GitError{Repo: repo.Name, Op: "pull", Err: err}
	}
	return true, nil
}

// resolve turns a commit hash, tag or branch name into a commit hash present
// in the local object store.
func resolve(r *git.Repository, rev string) (plumbing.Hash, error) {
	h, err := r.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if _, err := r.CommitObject(*h); err != nil {
		return plumbing.ZeroHash, err
	}
	return *h, nil
}

func headHash(r *git.Repository) plumbing.Hash {
	head, err := r.Head()
	if err != nil {
		return plumbing.ZeroHash
	}
	return head.Hash()
}

// runPostSync runs the repo's action inside the repository. A first element
// naming a file in the repo is run from there.
func (p *Provisioner) runPostSync(ctx context.Context, repo config.Repo) error {
	name, args := repo.PostSync[0], repo.PostSync[1:]
	if local := filepath.Join(repo.Path, name); !filepath.IsAbs(name) {
		if _, err := os.Stat(local); err == nil {
			name = local
		}
	}
	logger.Info("[INFO] Running post-sync action for %s: %s\n", repo.Name, name)
	if _, err := p.run.Run(ctx, runner.Command{Name: name, Args: args, Dir: repo.Path}); err != nil {
		return &GitError{Repo: repo.Name, Op: "post-sync", Err: err}
	}
	return nil
}

func short(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
