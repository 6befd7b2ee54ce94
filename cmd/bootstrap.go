package cmd

import (
	"net/http"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"bootstrap/internal/bootstrap"
	"bootstrap/internal/config"
	"bootstrap/internal/installer"
	"bootstrap/internal/logger"
	"bootstrap/internal/platform"
	"bootstrap/internal/provision"
	"bootstrap/internal/runner"
	"bootstrap/internal/shell"
)

// loadCatalog reads settings from the environment and returns the catalog
// with every path placeholder expanded.
func loadCatalog() (*config.Settings, *config.Catalog, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, nil, err
	}
	if settings.Debug && !debug {
		debug = true
		logger.Init(true)
	}
	cat, err := config.LoadCatalog(settings.CatalogFile)
	if err != nil {
		return nil, nil, err
	}
	cat.Expand(settings)
	return settings, cat, nil
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	settings, cat, err := loadCatalog()
	if err != nil {
		return err
	}
	logger.Debug("[DEBUG] Settings: bin=%s opt=%s store=%s config=%s\n",
		settings.BinDir, settings.OptDir, settings.StoreDir, settings.ConfigDir)

	fs := afero.NewOsFs()
	run := runner.New()
	b := &bootstrap.Bootstrap{
		Catalog: cat,
		Detect:  platform.Detect,
		Installer: installer.New(installer.Options{
			Fs:         fs,
			Runner:     run,
			HTTPClient: http.DefaultClient,
			APIBase:    settings.APIBase,
			Token:      settings.GitHubToken,
			BinDir:     settings.BinDir,
			OptDir:     settings.OptDir,
			PathEnv:    os.Getenv("PATH"),
		}),
		Provisioner: provision.New(fs, run),
		Finalizer:   shell.New(fs, run, os.Getenv("SHELL")),
		StateFs:     fs,
		StateFile:   settings.StateFile,
		Out:         cmd.OutOrStdout(),
	}
	_, err = b.Run(cmd.Context())
	return err
}
