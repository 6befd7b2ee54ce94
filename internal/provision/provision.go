// Package provision keeps configuration repositories in the canonical store,
// links them into the user's configuration tree and appends shell
// integration lines.
package provision

import (
	"github.com/spf13/afero"

	"bootstrap/internal/runner"
)

// Provisioner performs the configuration steps. Repositories are handled on
// the host filesystem through go-git; links and rc files go through fs.
type Provisioner struct {
	fs  afero.Fs
	run runner.Runner
}

// New returns a Provisioner.
func New(fs afero.Fs, r runner.Runner) *Provisioner {
	return &Provisioner{fs: fs, run: r}
}
