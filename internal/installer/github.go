package installer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-version"
	"github.com/spf13/afero"

	"bootstrap/internal/config"
	"bootstrap/internal/logger"
	"bootstrap/internal/platform"
)

// GitHubRelease represents the structure of a GitHub release JSON response.
type GitHubRelease struct {
	TagName string  `json:"tag_name"` // The release tag (e.g., v1.0.0)
	Assets  []Asset `json:"assets"`
}

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`                 // Asset filename
	BrowserDownloadURL string `json:"browser_download_url"` // Direct download URL for the asset
}

// latestRelease fetches the latest release metadata of repo.
func (i *Installer) latestRelease(ctx context.Context, repo string) (*GitHubRelease, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", i.apiBase, repo)
	logger.Debug("[DEBUG] Fetching GitHub release from URL: %s\n", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "bad release URL %s", url)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if i.token != "" {
		req.Header.Set("Authorization", "Bearer "+i.token)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "HTTP GET error fetching latest release of %s", repo)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close HTTP response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Newf("GitHub release fetch failed for %s: HTTP status %d: %s", repo, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, errors.Wrapf(err, "failed to decode GitHub release JSON for %s", repo)
	}
	logger.Debug("[DEBUG] Release tag: %s with %d assets\n", release.TagName, len(release.Assets))
	return &release, nil
}

// assetPattern renders the tool's asset expression for the platform. Canonical
// tokens are used for platforms the tool does not map.
func assetPattern(r *config.Release, info platform.Info) (*regexp.Regexp, error) {
	expr := strings.NewReplacer(
		"{{os}}", regexp.QuoteMeta(tokenFor(r.OS, info.OS)),
		"{{arch}}", regexp.QuoteMeta(tokenFor(r.Arch, info.Arch)),
	).Replace(r.Asset)
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid asset pattern %q", r.Asset)
	}
	return re, nil
}

// selectAsset returns the first asset of release whose name matches the
// tool's pattern for the platform.
func selectAsset(release *GitHubRelease, tool config.Tool, info platform.Info) (*Asset, error) {
	re, err := assetPattern(tool.Release, info)
	if err != nil {
		return nil, err
	}
	logger.Debug("[DEBUG] Looking for asset matching %s\n", re)
	for idx := range release.Assets {
		if re.MatchString(release.Assets[idx].Name) {
			logger.Debug("[DEBUG] Found matching asset: %s\n", release.Assets[idx].Name)
			return &release.Assets[idx], nil
		}
	}
	return nil, &AssetNotFoundError{Tool: tool.Name, Repo: tool.Release.Repo, Tag: release.TagName, Pattern: re.String()}
}

// installRelease downloads the platform asset of the latest release. Archives
// are unpacked under the opt directory and their executable is linked into
// the bin directory; bare binaries are written to the bin directory directly.
func (i *Installer) installRelease(ctx context.Context, tool config.Tool, info platform.Info) (Result, error) {
	release, err := i.latestRelease(ctx, tool.Release.Repo)
	if err != nil {
		return Result{}, err
	}
	asset, err := selectAsset(release, tool, info)
	if err != nil {
		return Result{}, err
	}

	tmpDir, err := afero.TempDir(i.fs, "", "bootstrap-"+tool.Name+"-")
	if err != nil {
		return Result{}, errors.Wrap(err, "cannot create download directory")
	}
	defer func() {
		if err := i.fs.RemoveAll(tmpDir); err != nil {
			logger.Warn("[WARN] Failed to remove %s: %v\n", tmpDir, err)
		}
	}()

	downloaded := filepath.Join(tmpDir, asset.Name)
	logger.Info("[INFO] Downloading asset %s\n", asset.Name)
	if err := downloadFile(ctx, i.client, i.fs, asset.BrowserDownloadURL, downloaded); err != nil {
		return Result{}, err
	}

	if err := i.ensureBinDir(); err != nil {
		return Result{}, err
	}
	binPath := filepath.Join(i.binDir, tool.Binary())

	if IsArchive(asset.Name) {
		dest := filepath.Join(i.optDir, tool.Name)
		if err := i.fs.RemoveAll(dest); err != nil {
			return Result{}, errors.Wrapf(err, "cannot clear %s", dest)
		}
		if err := ExtractArchive(i.fs, downloaded, dest); err != nil {
			return Result{}, errors.Wrapf(err, "failed to extract %s", asset.Name)
		}
		exe, err := i.locateExecutable(dest, tool, info)
		if err != nil {
			return Result{}, err
		}
		if err := i.fs.Chmod(exe, 0o755); err != nil {
			return Result{}, errors.Wrapf(err, "chmod failed for %s", exe)
		}
		if err := linkOrCopy(i.fs, exe, binPath); err != nil {
			return Result{}, err
		}
	} else {
		if err := copyFile(i.fs, downloaded, binPath, 0o755); err != nil {
			return Result{}, errors.Wrapf(err, "failed to install %s", binPath)
		}
	}
	i.warnIfBinDirNotOnPath()

	return Result{Path: binPath, Version: normalizeVersion(release.TagName)}, nil
}

// locateExecutable finds the tool's executable inside an unpacked archive,
// either at the configured path or by searching for the command name.
func (i *Installer) locateExecutable(root string, tool config.Tool, info platform.Info) (string, error) {
	if tool.Release.Binary != "" {
		rel := strings.NewReplacer(
			"{{os}}", tokenFor(tool.Release.OS, info.OS),
			"{{arch}}", tokenFor(tool.Release.Arch, info.Arch),
		).Replace(tool.Release.Binary)
		p := filepath.Join(root, rel)
		if _, err := i.fs.Stat(p); err != nil {
			return "", errors.Wrapf(err, "configured binary %s missing from archive", rel)
		}
		return p, nil
	}
	return findExecutable(i.fs, root, tool.Binary())
}

func tokenFor(m map[string]string, canonical string) string {
	if t, ok := m[canonical]; ok {
		return t
	}
	return canonical
}

// normalizeVersion turns a release tag into a plain version ("v0.11.0" ->
// "0.11.0"). Tags that are not versions ("nightly") are kept as they are.
func normalizeVersion(tag string) string {
	v, err := version.NewVersion(tag)
	if err != nil {
		return tag
	}
	return v.String()
}
