package provision

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"mvdan.cc/sh/v3/syntax"

	"bootstrap/internal/config"
	"bootstrap/internal/logger"
)

// EnsureShellIntegration appends the configured raw lines and aliases to the
// shell rc file. Lines already present are skipped, so repeated runs add
// nothing. It returns the number of lines written.
func (p *Provisioner) EnsureShellIntegration(cfg config.ShellConfig) (int, error) {
	if cfg.RCFile == "" {
		return 0, nil
	}
	wanted, err := integrationLines(cfg)
	if err != nil {
		return 0, err
	}

	existing := make(map[string]bool)
	endsWithNewline := true
	if data, err := afero.ReadFile(p.fs, cfg.RCFile); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			existing[strings.TrimSpace(line)] = true
		}
		endsWithNewline = len(data) == 0 || data[len(data)-1] == '\n'
	} else if !os.IsNotExist(err) {
		return 0, &IOError{Op: "read", Path: cfg.RCFile, Err: err}
	}

	var missing []string
	for _, line := range wanted {
		if existing[line] {
			logger.Debug("[DEBUG] Shell line already present: %s\n", line)
			continue
		}
		existing[line] = true
		missing = append(missing, line)
	}
	if len(missing) == 0 {
		return 0, nil
	}

	if err := p.fs.MkdirAll(filepath.Dir(cfg.RCFile), 0o755); err != nil {
		return 0, &IOError{Op: "mkdir", Path: filepath.Dir(cfg.RCFile), Err: err}
	}
	f, err := p.fs.OpenFile(cfg.RCFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, &IOError{Op: "open", Path: cfg.RCFile, Err: err}
	}
	defer f.Close()

	var buf strings.Builder
	if !endsWithNewline {
		buf.WriteString("\n")
	}
	for _, line := range missing {
		buf.WriteString(line + "\n")
		logger.Info("[INFO] Added shell config: %s\n", line)
	}
	if _, err := f.WriteString(buf.String()); err != nil {
		return 0, &IOError{Op: "write", Path: cfg.RCFile, Err: err}
	}
	return len(missing), nil
}

// integrationLines renders raw configs and aliases, one trimmed line each,
// and rejects anything that is not valid shell.
func integrationLines(cfg config.ShellConfig) ([]string, error) {
	var lines []string
	for _, raw := range cfg.RawConfigs {
		for _, line := range strings.Split(raw, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				lines = append(lines, trimmed)
			}
		}
	}
	for _, a := range cfg.Aliases {
		quoted, err := syntax.Quote(a.Value, syntax.LangBash)
		if err != nil {
			return nil, errors.Wrapf(err, "alias %s", a.Name)
		}
		lines = append(lines, "alias "+a.Name+"="+quoted)
	}

	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	for _, line := range lines {
		if _, err := parser.Parse(strings.NewReader(line), cfg.RCFile); err != nil {
			return nil, errors.Wrapf(err, "invalid shell line %q", line)
		}
	}
	return lines, nil
}
