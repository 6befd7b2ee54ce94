// Package bootstrap runs the provisioning stages in order and stops at the
// first failure. There is no rollback: completed stages stay applied and a
// later run picks up where the machine is.
package bootstrap

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"bootstrap/internal/config"
	"bootstrap/internal/installer"
	"bootstrap/internal/logger"
	"bootstrap/internal/platform"
	"bootstrap/internal/provision"
	"bootstrap/internal/shell"
	"bootstrap/internal/state"
)

// ToolInstaller makes a single tool present.
type ToolInstaller interface {
	EnsureInstalled(ctx context.Context, tool config.Tool, info platform.Info) (installer.Result, error)
}

// ConfigProvisioner syncs repositories, links and shell rc lines.
type ConfigProvisioner interface {
	SyncRepo(ctx context.Context, repo config.Repo) (provision.RepoResult, error)
	EnsureSymlink(link config.Link) (provision.LinkResult, error)
	EnsureShellIntegration(cfg config.ShellConfig) (int, error)
}

// ShellFinalizer switches the login shell.
type ShellFinalizer interface {
	SetDefaultShell(ctx context.Context, name string) (shell.Result, error)
}

// Bootstrap wires the components of one run.
type Bootstrap struct {
	Catalog     *config.Catalog
	Detect      func() (platform.Info, error)
	Installer   ToolInstaller
	Provisioner ConfigProvisioner
	Finalizer   ShellFinalizer

	// StateFs and StateFile locate the install receipts. Receipts are
	// written after the run, successful or not, when StateFile is set.
	StateFs   afero.Fs
	StateFile string

	// Out receives the completion banner. Defaults to stdout.
	Out io.Writer
	Now func() time.Time
}

type run struct {
	*Bootstrap
	ctx     context.Context
	info    platform.Info
	st      *state.State
	effects []Effect
}

// Run executes every stage in order. It returns the effects observed so
// far, and on failure an error naming the stage that failed. A release with
// no asset for this platform is logged and skipped.
func (b *Bootstrap) Run(ctx context.Context) ([]Effect, error) {
	r := &run{Bootstrap: b, ctx: ctx, st: state.New()}
	if b.StateFile != "" {
		r.st = state.Load(b.StateFs, b.StateFile)
		defer r.saveState()
	}

	info, err := b.Detect()
	if err != nil {
		logger.Error("[ERROR] %v\n", err)
		return r.effects, errors.Wrapf(err, "stage %s", StageDetect)
	}
	r.info = info
	r.record(StageDetect, info.String(), Detected)
	logger.Info("[INFO] Detected platform %s\n", info)

	stages := []struct {
		stage Stage
		fn    func() error
	}{
		{StageCoreTools, func() error { return r.installAll(StageCoreTools, b.Catalog.Tools.Core) }},
		{StageShell, func() error { return r.installAll(StageShell, b.Catalog.Tools.Shell) }},
		{StageEditor, func() error { return r.installAll(StageEditor, b.Catalog.Tools.Editor) }},
		{StageTerminal, func() error { return r.installAll(StageTerminal, b.Catalog.Tools.Terminal) }},
		{StageRuntime, func() error { return r.installAll(StageRuntime, b.Catalog.Tools.Runtime) }},
		{StageHelper, func() error { return r.installAll(StageHelper, b.Catalog.Tools.Helper) }},
		{StageConfigs, r.provisionConfigs},
		{StageIntegration, r.shellIntegration},
		{StageDefaultShell, r.defaultShell},
	}
	for _, s := range stages {
		logger.Debug("[DEBUG] Entering stage %s\n", s.stage)
		if err := s.fn(); err != nil {
			logger.Error("[ERROR] Stage %s failed: %v\n", s.stage, err)
			return r.effects, errors.Wrapf(err, "stage %s", s.stage)
		}
	}

	out := b.Out
	if out == nil {
		out = os.Stdout
	}
	_, _ = io.WriteString(out, Banner(r.effects)+"\n")
	return r.effects, nil
}

func (r *run) record(stage Stage, subject string, kind Kind) {
	r.effects = append(r.effects, Effect{Stage: stage, Subject: subject, Kind: kind})
}

func (r *run) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *run) installAll(stage Stage, tools []config.Tool) error {
	for _, tool := range tools {
		res, err := r.Installer.EnsureInstalled(r.ctx, tool, r.info)
		var anf *installer.AssetNotFoundError
		if errors.As(err, &anf) {
			logger.Error("[ERROR] %v. Continuing without %s.\n", err, tool.Name)
			r.record(stage, tool.Name, SkippedAsset)
			continue
		}
		if err != nil {
			return err
		}
		if res.Status == installer.AlreadyPresent {
			r.record(stage, tool.Name, AlreadyPresent)
			continue
		}
		r.record(stage, tool.Name, Installed)
		r.st.Tools[tool.Name] = state.ToolState{
			Version:     res.Version,
			InstallPath: res.Path,
			Method:      res.Method,
			InstalledAt: r.now(),
		}
	}
	return nil
}

func (r *run) provisionConfigs() error {
	for _, repo := range r.Catalog.Repos {
		res, err := r.Provisioner.SyncRepo(r.ctx, repo)
		if err != nil {
			return err
		}
		kind := map[provision.RepoStatus]Kind{
			provision.Cloned:    Cloned,
			provision.Updated:   Updated,
			provision.Unchanged: Unchanged,
		}[res.Status]
		r.record(StageConfigs, repo.Name, kind)
		r.st.Repos[repo.Name] = state.RepoState{Path: res.Path, Revision: res.Revision, SyncedAt: r.now()}
	}
	for _, link := range r.Catalog.Links {
		res, err := r.Provisioner.EnsureSymlink(link)
		if err != nil {
			return err
		}
		kind := map[provision.LinkStatus]Kind{
			provision.Linked:            Linked,
			provision.AlreadyLinked:     AlreadyLinked,
			provision.BackedUpAndLinked: BackedUp,
			provision.Replaced:          Relinked,
		}[res.Status]
		r.record(StageConfigs, link.Target, kind)
	}
	return nil
}

func (r *run) shellIntegration() error {
	added, err := r.Provisioner.EnsureShellIntegration(r.Catalog.Shell)
	if err != nil {
		return err
	}
	if added > 0 {
		r.record(StageIntegration, r.Catalog.Shell.RCFile, LinesAdded)
	}
	return nil
}

func (r *run) defaultShell() error {
	if r.Catalog.Shell.Default == "" {
		return nil
	}
	res, err := r.Finalizer.SetDefaultShell(r.ctx, r.Catalog.Shell.Default)
	if err != nil {
		return err
	}
	kind := ShellCurrent
	if res.Status == shell.Changed {
		kind = ShellChanged
	}
	r.record(StageDefaultShell, res.Shell, kind)
	return nil
}

func (r *run) saveState() {
	if err := state.Save(r.StateFs, r.StateFile, r.st); err != nil {
		logger.Warn("[WARN] Could not save install receipts: %v\n", err)
	}
}
