package config

// Install methods a Tool can declare.
const (
	MethodPackage = "package"
	MethodRelease = "release"
	MethodScript  = "script"
)

// Tool represents a CLI tool to be present on the machine.
// - Name: Logical name for the tool, also the default package name.
// - Command: Executable probed on PATH to decide whether the tool is already installed.
// - Method: One of "package", "release" or "script".
// - ProbePaths: Extra locations that count as installed (e.g. app bundles outside PATH).
type Tool struct {
	Name       string            `yaml:"name"`
	Command    string            `yaml:"command"`
	Method     string            `yaml:"method"`
	Packages   map[string]string `yaml:"packages"` // package manager name -> package name
	Release    *Release          `yaml:"release"`
	Script     *Script           `yaml:"script"`
	ProbePaths []string          `yaml:"probe_paths"`
}

// PackageFor returns the package name used with the given package manager.
func (t Tool) PackageFor(manager string) string {
	if p, ok := t.Packages[manager]; ok && p != "" {
		return p
	}
	return t.Name
}

// Binary returns the executable name, falling back to Name.
func (t Tool) Binary() string {
	if t.Command != "" {
		return t.Command
	}
	return t.Name
}

// Release describes a GitHub-release download.
// - Repo: owner/name on GitHub.
// - Asset: Regular expression matched against asset names. {{os}} and {{arch}} are
//   replaced with the tool's tokens for the detected platform.
// - OS/Arch: Canonical platform token -> token used in this project's asset names.
// - Binary: Path of the executable inside an archive asset. May use {{os}}/{{arch}}.
type Release struct {
	Repo   string            `yaml:"repo"`
	Asset  string            `yaml:"asset"`
	OS     map[string]string `yaml:"os"`
	Arch   map[string]string `yaml:"arch"`
	Binary string            `yaml:"binary"`
}

// Script describes a vendor-provided shell installer.
type Script struct {
	URL   string   `yaml:"url"`
	Shell string   `yaml:"shell"`
	Args  []string `yaml:"args"`
}

// Repo is a configuration repository kept under the canonical store.
// An empty Pin tracks the remote's default branch with fast-forward pulls.
// PostSync is run in the repository directory after every successful sync.
type Repo struct {
	Name     string   `yaml:"name"`
	URL      string   `yaml:"url"`
	Path     string   `yaml:"path"`
	Pin      string   `yaml:"pin"`
	PostSync []string `yaml:"post_sync"`
}

// Link makes Target (in the user config tree) a symlink to Source (in the store).
type Link struct {
	Target string `yaml:"target"`
	Source string `yaml:"source"`
}

// Alias defines a single shell alias (e.g., vim = nvim).
type Alias struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// ShellConfig holds the preferred interactive shell and its integration lines.
// - Default: Executable name of the shell to make the login shell.
// - RCFile: File the raw configs and aliases are appended to.
type ShellConfig struct {
	Default    string   `yaml:"default"`
	RCFile     string   `yaml:"rc_file"`
	RawConfigs []string `yaml:"raw_configs"`
	Aliases    []Alias  `yaml:"aliases"`
}

// Tools groups the catalog by bootstrap stage.
type Tools struct {
	Core     []Tool `yaml:"core"`
	Shell    []Tool `yaml:"shell"`
	Editor   []Tool `yaml:"editor"`
	Terminal []Tool `yaml:"terminal"`
	Runtime  []Tool `yaml:"runtime"`
	Helper   []Tool `yaml:"helper"`
}

// Catalog is the full, static description of the machine to bootstrap.
type Catalog struct {
	Tools Tools       `yaml:"tools"`
	Repos []Repo      `yaml:"repos"`
	Links []Link      `yaml:"links"`
	Shell ShellConfig `yaml:"shell"`
}
