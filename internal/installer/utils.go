package installer

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"bootstrap/internal/logger"
)

// downloadFile downloads the content located at the specified URL and saves it to destPath.
func downloadFile(ctx context.Context, client *http.Client, fs afero.Fs, url, destPath string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, "bad download URL %s", url)
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to GET %s", url)
	}
	// Ensure the response body stream is closed when the function returns.
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Error("[ERROR] Failed to close response body: %s\n", cerr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return errors.Newf("GET %s: HTTP status %d", url, resp.StatusCode)
	}

	out, err := fs.Create(destPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create file %s", destPath)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "failed to close %s", destPath)
		}
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return errors.Wrap(err, "failed to write response to file")
	}

	logger.Debug("[DEBUG] Downloaded %s to: %s\n", url, destPath)
	return nil
}

// copyFile copies a file from src to dst, replacing dst and creating missing
// directories. modeOverride, when non-zero, is applied to dst; otherwise the
// source mode is kept.
func copyFile(fs afero.Fs, src, dst string, modeOverride os.FileMode) (err error) {
	in, err := fs.Open(src)
	if err != nil {
		return errors.Wrap(err, "open source failed")
	}
	defer in.Close()

	if err := fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrap(err, "mkdir failed")
	}
	if err := removeIfExists(fs, dst); err != nil {
		return errors.Wrap(err, "remove old target failed")
	}

	out, err := fs.Create(dst)
	if err != nil {
		return errors.Wrap(err, "create target failed")
	}
	defer func() {
		cerr := out.Close()
		if err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrap(err, "copy failed")
	}

	// Set permissions: use override if provided, otherwise preserve source mode
	if modeOverride != 0 {
		return fs.Chmod(dst, modeOverride)
	}
	if stat, err := fs.Stat(src); err == nil {
		return fs.Chmod(dst, stat.Mode())
	}
	return nil
}

// linkOrCopy points dst at src with a symlink when the filesystem supports
// it and falls back to a copy otherwise.
func linkOrCopy(fs afero.Fs, src, dst string) error {
	if err := removeIfExists(fs, dst); err != nil {
		return errors.Wrapf(err, "cannot replace %s", dst)
	}
	if linker, ok := fs.(afero.Linker); ok {
		if err := linker.SymlinkIfPossible(src, dst); err == nil {
			return nil
		} else if !errors.Is(err, afero.ErrNoSymlink) {
			return errors.Wrapf(err, "cannot link %s -> %s", dst, src)
		}
	}
	return copyFile(fs, src, dst, 0o755)
}
