package installer

import (
	"archive/tar"    // For reading .tar archives
	"archive/zip"    // For reading .zip archives
	"compress/bzip2" // For reading .bz2 compressed data
	"compress/gzip"  // For reading .gz compressed data
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip" // For reading .7z archives
	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/xi2/xz" // For reading .xz compressed data

	"bootstrap/internal/logger"
)

var archiveExtensions = []string{".tar.gz", ".tgz", ".tar.bz2", ".tar.xz", ".tar", ".zip", ".7z"}

// IsArchive reports whether name has an extension ExtractArchive understands.
func IsArchive(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ExtractArchive routes to the appropriate extraction function based on archive type
// and unpacks src into dest.
func ExtractArchive(fs afero.Fs, src, dest string) error {
	if err := fs.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	lower := strings.ToLower(src)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		logger.Debug("[DEBUG] compression type is zip\n")
		return extractZip(fs, src, dest)
	case strings.HasSuffix(lower, ".7z"):
		logger.Debug("[DEBUG] compression type is .7z\n")
		return extract7z(fs, src, dest)
	case strings.HasSuffix(lower, ".tar"), strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"),
		strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tar.xz"):
		logger.Debug("[DEBUG] compression type is .tar.*\n")
		return extractTarArchive(fs, src, dest)
	default:
		return errors.Newf("unsupported archive format: %s", src)
	}
}

// safeJoin joins an archive member name onto dest, refusing names that
// would escape it.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	if !within(dest, target) {
		return "", errors.Newf("archive entry %q escapes %s", name, dest)
	}
	return target, nil
}

func within(dest, path string) bool {
	root := filepath.Clean(dest)
	path = filepath.Clean(path)
	return path == root || strings.HasPrefix(path, root+string(os.PathSeparator))
}

// entryPath is safeJoin plus a walk of the already extracted tree: no
// component below dest, the entry itself included, may be a symlink, or a
// later write would follow it out of dest.
func entryPath(fs afero.Fs, dest, name string) (string, error) {
	target, err := safeJoin(dest, name)
	if err != nil {
		return "", err
	}
	lst, ok := fs.(afero.Lstater)
	if !ok {
		return target, nil
	}
	rel, err := filepath.Rel(filepath.Clean(dest), target)
	if err != nil || rel == "." {
		return target, err
	}
	cur := filepath.Clean(dest)
	for _, part := range strings.Split(rel, string(os.PathSeparator)) {
		cur = filepath.Join(cur, part)
		info, _, err := lst.LstatIfPossible(cur)
		if os.IsNotExist(err) {
			break
		}
		if err != nil {
			return "", err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return "", errors.Newf("archive entry %q goes through symlink %s", name, cur)
		}
	}
	return target, nil
}

// extractTarArchive handles tar and compressed tar variants
func extractTarArchive(fs afero.Fs, src, dest string) error {
	logger.Debug("[DEBUG] uncompressing %s to %s\n", src, dest)
	f, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	var reader io.Reader = f
	lower := strings.ToLower(src)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(lower, ".tar.bz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(lower, ".tar.xz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return err
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := entryPath(fs, dest, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fs.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(fs, target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			linker, ok := fs.(afero.Linker)
			if !ok {
				logger.Debug("[DEBUG] skipping symlink %s: filesystem has no symlinks\n", hdr.Name)
				continue
			}
			if filepath.IsAbs(hdr.Linkname) || !within(dest, filepath.Join(filepath.Dir(target), hdr.Linkname)) {
				return errors.Newf("archive symlink %q -> %q points outside %s", hdr.Name, hdr.Linkname, dest)
			}
			if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := linker.SymlinkIfPossible(hdr.Linkname, target); err != nil {
				return err
			}
		}
	}
}

// extractZip extracts a .zip archive
func extractZip(fs afero.Fs, src, dest string) error {
	f, size, err := openSized(fs, src)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := zip.NewReader(f, size)
	if err != nil {
		return err
	}
	for _, zf := range r.File {
		target, err := entryPath(fs, dest, zf.Name)
		if err != nil {
			return err
		}
		if zf.FileInfo().IsDir() {
			if err := fs.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return err
		}
		err = writeEntry(fs, target, rc, zf.Mode().Perm())
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// extract7z handles .7z extraction using the sevenzip library
func extract7z(fs afero.Fs, src, dest string) error {
	f, size, err := openSized(fs, src)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := sevenzip.NewReader(f, size)
	if err != nil {
		return errors.Wrap(err, "failed to open 7z archive")
	}
	for _, sf := range r.File {
		target, err := entryPath(fs, dest, sf.Name)
		if err != nil {
			return err
		}
		if sf.FileInfo().IsDir() {
			if err := fs.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		rc, err := sf.Open()
		if err != nil {
			return err
		}
		err = writeEntry(fs, target, rc, sf.FileInfo().Mode().Perm())
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func openSized(fs afero.Fs, src string) (afero.File, int64, error) {
	f, err := fs.Open(src)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func writeEntry(fs afero.Fs, target string, r io.Reader, perm os.FileMode) error {
	if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0o644
	}
	out, err := fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return fs.Chmod(target, perm)
}

// findExecutable walks root for a regular file named name. Files with an
// executable bit win over ones without.
func findExecutable(fs afero.Fs, root, name string) (string, error) {
	logger.Debug("[DEBUG] Scanning directory for executables: %s\n", root)
	var withExec, withoutExec string

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() || filepath.Base(path) != name {
			return nil
		}
		if info.Mode().Perm()&0o111 != 0 {
			if withExec == "" {
				withExec = path
			}
		} else if withoutExec == "" {
			withoutExec = path
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if withExec != "" {
		return withExec, nil
	}
	if withoutExec != "" {
		return withoutExec, nil
	}
	return "", errors.Newf("no executable named %s found in %s", name, root)
}
