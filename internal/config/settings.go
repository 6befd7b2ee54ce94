package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Settings are the machine-specific locations and endpoints of a run.
// All of them have defaults derived from HOME; each can be overridden with a
// BOOTSTRAP_ prefixed environment variable (e.g. BOOTSTRAP_BIN_DIR).
type Settings struct {
	Home        string
	BinDir      string
	OptDir      string
	StoreDir    string
	ConfigDir   string
	StateFile   string
	APIBase     string
	GitHubToken string
	CatalogFile string
	Debug       bool
}

// LoadSettings reads settings from the environment.
func LoadSettings() (*Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "cannot determine home directory")
	}

	v := viper.New()
	v.SetEnvPrefix("BOOTSTRAP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	v.SetDefault("bin_dir", filepath.Join(home, ".local", "bin"))
	v.SetDefault("opt_dir", filepath.Join(home, ".local", "opt"))
	v.SetDefault("store_dir", filepath.Join(home, ".local", "share", "bootstrap"))
	v.SetDefault("config_dir", configHome)
	v.SetDefault("state_file", filepath.Join(home, ".local", "state", "bootstrap", "state.json"))
	v.SetDefault("api_base", "https://api.github.com")
	v.SetDefault("catalog", "")
	v.SetDefault("debug", false)
	if err := v.BindEnv("github_token", "BOOTSTRAP_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, errors.Wrap(err, "failed to bind github token env")
	}

	return &Settings{
		Home:        home,
		BinDir:      v.GetString("bin_dir"),
		OptDir:      v.GetString("opt_dir"),
		StoreDir:    v.GetString("store_dir"),
		ConfigDir:   v.GetString("config_dir"),
		StateFile:   v.GetString("state_file"),
		APIBase:     strings.TrimRight(v.GetString("api_base"), "/"),
		GitHubToken: v.GetString("github_token"),
		CatalogFile: v.GetString("catalog"),
		Debug:       v.GetBool("debug"),
	}, nil
}

// Expand replaces path placeholders and a leading "~/" in s.
func (s *Settings) Expand(p string) string {
	if p == "~" {
		return s.Home
	}
	if strings.HasPrefix(p, "~/") {
		p = filepath.Join(s.Home, p[2:])
	}
	return strings.NewReplacer(
		"{{home}}", s.Home,
		"{{bin}}", s.BinDir,
		"{{opt}}", s.OptDir,
		"{{store}}", s.StoreDir,
		"{{config}}", s.ConfigDir,
	).Replace(p)
}
