package bootstrap

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bootstrap/internal/config"
	"bootstrap/internal/installer"
	"bootstrap/internal/platform"
	"bootstrap/internal/state"
)

func testCatalog() *config.Catalog {
	return &config.Catalog{
		Tools: config.Tools{
			Core:     []config.Tool{{Name: "git", Method: config.MethodPackage}, {Name: "ripgrep", Command: "rg", Method: config.MethodPackage}},
			Shell:    []config.Tool{{Name: "zsh", Method: config.MethodPackage}},
			Editor:   []config.Tool{{Name: "neovim", Command: "nvim", Method: config.MethodRelease}},
			Terminal: []config.Tool{{Name: "kitty", Method: config.MethodScript}},
			Runtime:  []config.Tool{{Name: "node", Method: config.MethodPackage}},
			Helper:   []config.Tool{{Name: "pnpm", Method: config.MethodRelease}},
		},
		Repos: []config.Repo{{Name: "tpm", Path: "/store/tpm", Pin: "v3.1.0"}, {Name: "nvim", Path: "/store/nvim"}},
		Links: []config.Link{{Target: "/cfg/nvim", Source: "/store/nvim"}},
		Shell: config.ShellConfig{Default: "zsh", RCFile: "/home/me/.zshrc"},
	}
}

type harness struct {
	b    *Bootstrap
	inst *fakeInstaller
	prov *fakeProvisioner
	fin  *fakeFinalizer
	fs   afero.Fs
	out  *bytes.Buffer
}

func newHarness() *harness {
	h := &harness{
		inst: &fakeInstaller{errs: map[string]error{}},
		prov: &fakeProvisioner{},
		fin:  &fakeFinalizer{current: "/bin/bash"},
		fs:   afero.NewMemMapFs(),
		out:  &bytes.Buffer{},
	}
	h.b = &Bootstrap{
		Catalog:     testCatalog(),
		Detect:      func() (platform.Info, error) { return platform.Resolve("linux", "aarch64") },
		Installer:   h.inst,
		Provisioner: h.prov,
		Finalizer:   h.fin,
		StateFs:     h.fs,
		StateFile:   "/state/state.json",
		Out:         h.out,
		Now:         func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) },
	}
	return h
}

func TestFirstRunEffects(t *testing.T) {
	h := newHarness()
	effects, err := h.b.Run(context.Background())
	require.NoError(t, err)

	want := []Effect{
		{StageDetect, "linux/aarch64", Detected},
		{StageCoreTools, "git", Installed},
		{StageCoreTools, "ripgrep", Installed},
		{StageShell, "zsh", Installed},
		{StageEditor, "neovim", Installed},
		{StageTerminal, "kitty", Installed},
		{StageRuntime, "node", Installed},
		{StageHelper, "pnpm", Installed},
		{StageConfigs, "tpm", Cloned},
		{StageConfigs, "nvim", Cloned},
		{StageConfigs, "/cfg/nvim", Linked},
		{StageIntegration, "/home/me/.zshrc", LinesAdded},
		{StageDefaultShell, "/usr/bin/zsh", ShellChanged},
	}
	if diff := cmp.Diff(want, effects); diff != "" {
		t.Errorf("effects mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, h.out.String(), "Bootstrap complete")
	assert.Contains(t, h.out.String(), "12 change(s) applied.")
}

func TestSecondRunChangesNothing(t *testing.T) {
	h := newHarness()
	_, err := h.b.Run(context.Background())
	require.NoError(t, err)
	h.out.Reset()

	effects, err := h.b.Run(context.Background())
	require.NoError(t, err)
	for _, e := range effects {
		assert.False(t, e.Kind.changes(), "unexpected change %+v", e)
	}
	assert.Contains(t, h.out.String(), "Nothing to do")
}

func TestMissingAssetIsTolerated(t *testing.T) {
	h := newHarness()
	h.inst.errs["neovim"] = &installer.AssetNotFoundError{Tool: "neovim", Repo: "neovim/neovim", Tag: "v0.10.0", Pattern: "nvim-linux-arm64"}

	effects, err := h.b.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, effects, Effect{StageEditor, "neovim", SkippedAsset})
	assert.Contains(t, effects, Effect{StageHelper, "pnpm", Installed})
	assert.Equal(t, 1, h.fin.calls)
	assert.Contains(t, h.out.String(), "Skipped (no release asset): neovim")
}

func TestInstallFailureAborts(t *testing.T) {
	h := newHarness()
	h.inst.errs["zsh"] = &installer.InstallError{Tool: "zsh", Method: config.MethodPackage, Err: errors.New("apt-get exited 100")}

	effects, err := h.b.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage shell")

	var installErr *installer.InstallError
	require.True(t, errors.As(err, &installErr))
	assert.Equal(t, "zsh", installErr.Tool)

	assert.Equal(t, []string{"git", "ripgrep", "zsh"}, h.inst.calls)
	assert.Zero(t, h.prov.repoRuns)
	assert.Zero(t, h.fin.calls)
	assert.Equal(t, Effect{StageCoreTools, "ripgrep", Installed}, effects[len(effects)-1])
	assert.Empty(t, h.out.String())

	st := state.Load(h.fs, "/state/state.json")
	assert.Contains(t, st.Tools, "git")
	assert.Contains(t, st.Tools, "ripgrep")
	assert.NotContains(t, st.Tools, "zsh")
}

func TestUnsupportedPlatformStopsBeforeInstalling(t *testing.T) {
	h := newHarness()
	h.b.Detect = func() (platform.Info, error) { return platform.Resolve("windows", "x86_64") }

	effects, err := h.b.Run(context.Background())
	var unsupported *platform.UnsupportedPlatformError
	require.True(t, errors.As(err, &unsupported))
	assert.Empty(t, effects)
	assert.Empty(t, h.inst.calls)
}

func TestRepoFailureAbortsBeforeShell(t *testing.T) {
	h := newHarness()
	h.prov.repoErr = errors.New("clone refused")

	_, err := h.b.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage configs")
	assert.False(t, h.prov.rcDone)
	assert.Zero(t, h.fin.calls)
}

func TestReceiptsRecordInstallsAndRepos(t *testing.T) {
	h := newHarness()
	h.inst.present = map[string]bool{"git": true}
	_, err := h.b.Run(context.Background())
	require.NoError(t, err)

	st := state.Load(h.fs, "/state/state.json")
	assert.NotContains(t, st.Tools, "git")
	assert.Equal(t, state.ToolState{
		Version:     "1.0.0",
		InstallPath: "/bin/pnpm",
		Method:      config.MethodRelease,
		InstalledAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}, st.Tools["pnpm"])
	assert.Equal(t, "abc123", st.Repos["tpm"].Revision)
}

func TestNoDefaultShellSkipsFinalizer(t *testing.T) {
	h := newHarness()
	h.b.Catalog.Shell.Default = ""
	_, err := h.b.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, h.fin.calls)
}
