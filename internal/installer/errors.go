package installer

import "fmt"

// InstallError is a fatal failure to install a tool: network, permission or a
// package manager exiting non-zero.
type InstallError struct {
	Tool   string
	Method string
	Err    error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("install %s (%s): %v", e.Tool, e.Method, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

// AssetNotFoundError reports that a release carries no asset for the platform.
// It is the one install failure the bootstrap tolerates.
type AssetNotFoundError struct {
	Tool    string
	Repo    string
	Tag     string
	Pattern string
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("no asset matching %q in %s release %s for %s", e.Pattern, e.Repo, e.Tag, e.Tool)
}
