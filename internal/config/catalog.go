package config

import (
	_ "embed"
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// LoadCatalog parses the catalog at path, or the embedded default when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	raw := defaultCatalog
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read catalog %s", path)
		}
		raw = data
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes a YAML catalog and validates it.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal catalog")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every entry carries what its install method or role needs.
func (c *Catalog) Validate() error {
	for _, t := range c.AllTools() {
		if t.Name == "" {
			return errors.New("catalog: tool without a name")
		}
		switch t.Method {
		case MethodPackage:
		case MethodRelease:
			if t.Release == nil || t.Release.Repo == "" || t.Release.Asset == "" {
				return errors.Newf("catalog: tool %s: release method needs release.repo and release.asset", t.Name)
			}
		case MethodScript:
			if t.Script == nil || t.Script.URL == "" {
				return errors.Newf("catalog: tool %s: script method needs script.url", t.Name)
			}
		default:
			return errors.Newf("catalog: tool %s: unknown install method %q", t.Name, t.Method)
		}
	}
	for _, r := range c.Repos {
		if r.URL == "" || r.Path == "" {
			return errors.Newf("catalog: repo %s needs url and path", r.Name)
		}
	}
	for _, l := range c.Links {
		if l.Target == "" || l.Source == "" {
			return errors.New("catalog: link needs target and source")
		}
	}
	return nil
}

// AllTools returns every tool in stage order.
func (c *Catalog) AllTools() []Tool {
	var all []Tool
	for _, group := range [][]Tool{c.Tools.Core, c.Tools.Shell, c.Tools.Editor, c.Tools.Terminal, c.Tools.Runtime, c.Tools.Helper} {
		all = append(all, group...)
	}
	return all
}

// Expand resolves path placeholders in every path-bearing field.
func (c *Catalog) Expand(s *Settings) {
	expandTools := func(tools []Tool) {
		for i := range tools {
			for j, p := range tools[i].ProbePaths {
				tools[i].ProbePaths[j] = s.Expand(p)
			}
		}
	}
	for _, group := range [][]Tool{c.Tools.Core, c.Tools.Shell, c.Tools.Editor, c.Tools.Terminal, c.Tools.Runtime, c.Tools.Helper} {
		expandTools(group)
	}
	for i := range c.Repos {
		c.Repos[i].Path = s.Expand(c.Repos[i].Path)
	}
	for i := range c.Links {
		c.Links[i].Target = s.Expand(c.Links[i].Target)
		c.Links[i].Source = s.Expand(c.Links[i].Source)
	}
	c.Shell.RCFile = s.Expand(c.Shell.RCFile)
	for i, line := range c.Shell.RawConfigs {
		c.Shell.RawConfigs[i] = s.Expand(line)
	}
}
