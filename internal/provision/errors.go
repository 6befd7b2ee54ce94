package provision

import "fmt"

// GitError is a failed clone, fetch, checkout, pull or post-sync action.
type GitError struct {
	Repo string
	Op   string
	Err  error
}

func (e *GitError) Error() string {
	return fmt.Sprintf("repo %s: %s: %v", e.Repo, e.Op, e.Err)
}

func (e *GitError) Unwrap() error { return e.Err }

// IOError is a failed filesystem operation while linking, backing up or
// editing a shell rc file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
