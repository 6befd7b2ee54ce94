// Package installer makes catalog tools present on the machine, using the
// system package manager, a GitHub release download or a vendor install script.
package installer

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"bootstrap/internal/config"
	"bootstrap/internal/logger"
	"bootstrap/internal/platform"
	"bootstrap/internal/runner"
)

// Status is the outcome of EnsureInstalled.
type Status int

const (
	AlreadyPresent Status = iota
	Installed
)

func (s Status) String() string {
	if s == Installed {
		return "installed"
	}
	return "already present"
}

// Result describes what EnsureInstalled did for one tool.
type Result struct {
	Tool    string
	Method  string
	Status  Status
	Path    string
	Version string
}

// Options configures an Installer.
type Options struct {
	Fs         afero.Fs
	Runner     runner.Runner
	HTTPClient *http.Client
	// APIBase is the GitHub API root, e.g. https://api.github.com.
	APIBase string
	Token   string
	BinDir  string
	OptDir  string
	// PathEnv is the PATH value used for the BinDir advisory.
	PathEnv string
}

// Installer installs tools idempotently.
type Installer struct {
	fs      afero.Fs
	run     runner.Runner
	client  *http.Client
	apiBase string
	token   string
	binDir  string
	optDir  string
	pathEnv string

	pm         *PackageManager
	pathWarned bool
}

// New builds an Installer from opts.
func New(opts Options) *Installer {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &Installer{
		fs:      opts.Fs,
		run:     opts.Runner,
		client:  client,
		apiBase: opts.APIBase,
		token:   opts.Token,
		binDir:  opts.BinDir,
		optDir:  opts.OptDir,
		pathEnv: opts.PathEnv,
	}
}

// EnsureInstalled installs tool unless a probe finds it already present.
// A missing release asset is returned as *AssetNotFoundError; every other
// failure as *InstallError.
func (i *Installer) EnsureInstalled(ctx context.Context, tool config.Tool, info platform.Info) (Result, error) {
	logger.Debug("[DEBUG] EnsureInstalled: %s via %s on %s\n", tool.Name, tool.Method, info)

	if path, ok := i.probe(ctx, tool, info); ok {
		logger.Info("[INFO] %s is already installed (%s). Skipping.\n", tool.Name, path)
		return Result{Tool: tool.Name, Method: tool.Method, Status: AlreadyPresent, Path: path}, nil
	}

	var (
		res Result
		err error
	)
	switch tool.Method {
	case config.MethodPackage:
		logger.Info("[INFO] Installing %s with the system package manager...\n", tool.Name)
		res, err = i.installPackage(ctx, tool, info)
	case config.MethodRelease:
		logger.Info("[INFO] Installing %s from GitHub releases...\n", tool.Name)
		res, err = i.installRelease(ctx, tool, info)
	case config.MethodScript:
		logger.Info("[INFO] Installing %s with its vendor install script...\n", tool.Name)
		res, err = i.installScript(ctx, tool, info)
	default:
		err = errors.Newf("unknown install method %q", tool.Method)
	}
	if err != nil {
		var anf *AssetNotFoundError
		if errors.As(err, &anf) {
			return Result{}, err
		}
		return Result{}, &InstallError{Tool: tool.Name, Method: tool.Method, Err: err}
	}

	res.Tool, res.Method, res.Status = tool.Name, tool.Method, Installed
	logger.Info("[INFO] Installed %s\n", tool.Name)
	return res, nil
}

// probe reports whether tool is present: on PATH, at one of its probe paths,
// in the bin directory, or (package method) known to the package manager.
func (i *Installer) probe(ctx context.Context, tool config.Tool, info platform.Info) (string, bool) {
	if p, err := i.run.LookPath(tool.Binary()); err == nil {
		return p, true
	}
	candidates := append(append([]string{}, tool.ProbePaths...), filepath.Join(i.binDir, tool.Binary()))
	for _, p := range candidates {
		if _, err := i.fs.Stat(p); err == nil {
			return p, true
		}
	}
	if tool.Method == config.MethodPackage {
		pm, err := i.packageManager(info)
		if err != nil {
			return "", false
		}
		pkg := tool.PackageFor(pm.Name)
		if pm.Installed(ctx, i.run, pkg) {
			return pm.Name + ":" + pkg, true
		}
	}
	return "", false
}

func (i *Installer) packageManager(info platform.Info) (*PackageManager, error) {
	if i.pm != nil {
		return i.pm, nil
	}
	pm, err := detectPackageManager(i.run, info)
	if err != nil {
		return nil, err
	}
	i.pm = pm
	return pm, nil
}

func (i *Installer) installPackage(ctx context.Context, tool config.Tool, info platform.Info) (Result, error) {
	pm, err := i.packageManager(info)
	if err != nil {
		return Result{}, err
	}
	if err := pm.Install(ctx, i.run, tool.PackageFor(pm.Name)); err != nil {
		return Result{}, err
	}
	path, _ := i.run.LookPath(tool.Binary())
	return Result{Path: path}, nil
}

// warnIfBinDirNotOnPath emits a one-time advisory when binaries land in a
// directory the shell will not search.
func (i *Installer) warnIfBinDirNotOnPath() {
	if i.pathWarned {
		return
	}
	i.pathWarned = true
	if slices.Contains(filepath.SplitList(i.pathEnv), i.binDir) {
		return
	}
	logger.Warn("[WARN] %s is not on your PATH; add it to use the installed binaries\n", i.binDir)
}

func (i *Installer) ensureBinDir() error {
	if err := i.fs.MkdirAll(i.binDir, 0o755); err != nil {
		return errors.Wrapf(err, "cannot create bin directory %s", i.binDir)
	}
	return nil
}

func removeIfExists(fs afero.Fs, path string) error {
	if err := fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
