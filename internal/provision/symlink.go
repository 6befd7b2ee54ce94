package provision

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"bootstrap/internal/config"
	"bootstrap/internal/logger"
)

// LinkStatus is the outcome of EnsureSymlink.
type LinkStatus int

const (
	AlreadyLinked LinkStatus = iota
	Linked
	BackedUpAndLinked
	Replaced
)

func (s LinkStatus) String() string {
	switch s {
	case Linked:
		return "linked"
	case BackedUpAndLinked:
		return "backed up and linked"
	case Replaced:
		return "replaced"
	}
	return "already linked"
}

// LinkResult describes what EnsureSymlink did. Backup is set when existing
// content was moved aside.
type LinkResult struct {
	Target string
	Source string
	Status LinkStatus
	Backup string
}

// EnsureSymlink makes link.Target a symlink to link.Source. Real files and
// directories at the target are renamed to a .bak sibling first; a symlink
// that resolves somewhere else is left untouched, a dangling one is replaced.
func (p *Provisioner) EnsureSymlink(link config.Link) (LinkResult, error) {
	res := LinkResult{Target: link.Target, Source: link.Source}
	sl, ok := p.fs.(afero.Symlinker)
	if !ok {
		return res, &IOError{Op: "symlink", Path: link.Target, Err: afero.ErrNoSymlink}
	}

	info, _, err := sl.LstatIfPossible(link.Target)
	switch {
	case os.IsNotExist(err):
		res.Status = Linked
	case err != nil:
		return res, &IOError{Op: "lstat", Path: link.Target, Err: err}
	case info.Mode()&os.ModeSymlink != 0:
		dest, err := sl.ReadlinkIfPossible(link.Target)
		if err != nil {
			return res, &IOError{Op: "readlink", Path: link.Target, Err: err}
		}
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(filepath.Dir(link.Target), dest)
		}
		if filepath.Clean(dest) == filepath.Clean(link.Source) {
			logger.Debug("[DEBUG] %s already links to %s\n", link.Target, link.Source)
			res.Status = AlreadyLinked
			return res, nil
		}
		if _, err := p.fs.Stat(link.Target); err == nil {
			logger.Warn("[WARN] %s links to %s, not %s. Leaving it alone.\n", link.Target, dest, link.Source)
			res.Status = AlreadyLinked
			return res, nil
		}
		logger.Info("[INFO] Replacing dangling link %s\n", link.Target)
		if err := p.fs.Remove(link.Target); err != nil {
			return res, &IOError{Op: "remove", Path: link.Target, Err: err}
		}
		res.Status = Replaced
	default:
		backup, err := p.backupPath(sl, link.Target)
		if err != nil {
			return res, err
		}
		if err := p.fs.Rename(link.Target, backup); err != nil {
			return res, &IOError{Op: "backup", Path: link.Target, Err: err}
		}
		logger.Warn("[WARN] Moved existing %s to %s\n", link.Target, backup)
		res.Backup = backup
		res.Status = BackedUpAndLinked
	}

	if _, err := p.fs.Stat(link.Source); err != nil {
		logger.Warn("[WARN] Link source %s does not exist yet\n", link.Source)
	}
	if err := p.fs.MkdirAll(filepath.Dir(link.Target), 0o755); err != nil {
		return res, &IOError{Op: "mkdir", Path: filepath.Dir(link.Target), Err: err}
	}
	if err := sl.SymlinkIfPossible(link.Source, link.Target); err != nil {
		return res, &IOError{Op: "symlink", Path: link.Target, Err: err}
	}
	logger.Info("[INFO] Linked %s -> %s\n", link.Target, link.Source)
	return res, nil
}

// backupPath returns target.bak, or target.bak.N when earlier backups exist.
func (p *Provisioner) backupPath(sl afero.Lstater, target string) (string, error) {
	candidate := target + ".bak"
	for n := 1; ; n++ {
		_, _, err := sl.LstatIfPossible(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", &IOError{Op: "lstat", Path: candidate, Err: err}
		}
		candidate = fmt.Sprintf("%s.bak.%d", target, n)
	}
}
