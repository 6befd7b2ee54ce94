package installer

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"bootstrap/internal/logger"
	"bootstrap/internal/platform"
	"bootstrap/internal/runner"
)

// PackageManager knows how to query and install packages with one system
// package manager.
type PackageManager struct {
	Name    string
	binary  string
	install []string
	query   []string
	refresh []string
	sudo    bool

	refreshed bool
}

func newPackageManager(name string) *PackageManager {
	switch name {
	case "apt":
		return &PackageManager{Name: name, binary: "apt-get",
			install: []string{"apt-get", "install", "-y"},
			query:   []string{"dpkg", "-s"},
			refresh: []string{"apt-get", "update"},
			sudo:    true}
	case "dnf":
		return &PackageManager{Name: name, binary: "dnf",
			install: []string{"dnf", "install", "-y"},
			query:   []string{"rpm", "-q"},
			sudo:    true}
	case "pacman":
		return &PackageManager{Name: name, binary: "pacman",
			install: []string{"pacman", "-S", "--noconfirm", "--needed"},
			query:   []string{"pacman", "-Q"},
			sudo:    true}
	case "brew":
		return &PackageManager{Name: name, binary: "brew",
			install: []string{"brew", "install"},
			query:   []string{"brew", "list", "--versions"}}
	}
	return nil
}

// linuxManagers is the probe order on Linux.
var linuxManagers = []string{"apt", "dnf", "pacman"}

// detectPackageManager picks the package manager for the platform:
// Homebrew on macOS, the first of apt, dnf and pacman found on Linux.
func detectPackageManager(r runner.Runner, info platform.Info) (*PackageManager, error) {
	candidates := linuxManagers
	if info.OS == platform.MacOS {
		candidates = []string{"brew"}
	}
	for _, name := range candidates {
		pm := newPackageManager(name)
		if _, err := r.LookPath(pm.binary); err == nil {
			logger.Debug("[DEBUG] Using package manager %s\n", pm.Name)
			return pm, nil
		}
	}
	return nil, errors.Newf("no supported package manager found for %s (tried %s)", info, strings.Join(candidates, ", "))
}

// Installed asks the package manager whether pkg is installed.
func (pm *PackageManager) Installed(ctx context.Context, r runner.Runner, pkg string) bool {
	args := append(append([]string{}, pm.query[1:]...), pkg)
	out, err := r.Run(ctx, runner.Command{Name: pm.query[0], Args: args})
	if err != nil {
		return false
	}
	if pm.Name == "brew" {
		return strings.TrimSpace(string(out)) != ""
	}
	return true
}

// Install installs pkg. apt refreshes its index once before the first install.
func (pm *PackageManager) Install(ctx context.Context, r runner.Runner, pkg string) error {
	if len(pm.refresh) > 0 && !pm.refreshed {
		logger.Info("[INFO] Refreshing %s package index...\n", pm.Name)
		if _, err := r.Run(ctx, runner.Command{Name: pm.refresh[0], Args: pm.refresh[1:], Sudo: pm.sudo, Interactive: true}); err != nil {
			return errors.Wrapf(err, "%s index refresh failed", pm.Name)
		}
		pm.refreshed = true
	}
	args := append(append([]string{}, pm.install[1:]...), pkg)
	if _, err := r.Run(ctx, runner.Command{Name: pm.install[0], Args: args, Sudo: pm.sudo, Interactive: true}); err != nil {
		return errors.Wrapf(err, "%s install %s failed", pm.Name, pkg)
	}
	return nil
}
