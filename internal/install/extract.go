package install

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/pirakansa/appstack/internal/task"
)

const (
	EncodingZip     = "zip"
	EncodingTarGzip = "tar+gzip"
	EncodingTarXz   = "tar+xz"
	EncodingTarZstd = "tar+zstd"
)

// ArchiveEncoding derives the archive format from the file name.
func ArchiveEncoding(name string) (string, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return EncodingZip, nil
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return EncodingTarGzip, nil
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return EncodingTarXz, nil
	case strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tzst"):
		return EncodingTarZstd, nil
	default:
		return "", fmt.Errorf("unsupported archive %q", name)
	}
}

// ExtractTask returns e as a task resolving to the number of entries written.
func ExtractTask(e Extraction) task.Func {
	return func(ctx context.Context, report task.Reporter) (any, error) {
		n, err := Extract(ctx, e.Archive, e.Target)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
}

// Extract unpacks archive below target and returns the number of files
// written. Entries escaping target are rejected.
func Extract(ctx context.Context, archive, target string) (int, error) {
	encoding, err := ArchiveEncoding(archive)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return 0, err
	}
	if encoding == EncodingZip {
		return extractZip(ctx, archive, target)
	}

	f, err := os.Open(archive)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	reader, closer, err := openTarStream(f, encoding)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", filepath.Base(archive), err)
	}
	if closer != nil {
		defer closer.Close()
	}
	return extractTar(ctx, tar.NewReader(reader), target)
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }

func openTarStream(r io.Reader, encoding string) (io.Reader, io.Closer, error) {
	switch encoding {
	case EncodingTarGzip:
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return gzipReader, gzipReader, nil
	case EncodingTarXz:
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return xzReader, nil, nil
	case EncodingTarZstd:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return decoder, closerFunc(func() error { decoder.Close(); return nil }), nil
	default:
		return nil, nil, fmt.Errorf("unsupported archive encoding %q", encoding)
	}
}

func extractTar(ctx context.Context, tr *tar.Reader, target string) (int, error) {
	written := 0
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		header, err := tr.Next()
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
		name, err := normalizeArchiveEntryName(header.Name)
		if err != nil {
			if errors.Is(err, errRootEntry) {
				continue
			}
			return written, err
		}
		path, err := resolveArchiveTargetPath(target, name)
		if err != nil {
			return written, err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, dirMode(header.FileInfo().Mode())); err != nil {
				return written, err
			}
		case tar.TypeReg:
			if err := writeEntry(path, tr, header.FileInfo().Mode().Perm()); err != nil {
				return written, err
			}
			written++
		case tar.TypeSymlink:
			if err := writeSymlink(target, path, header.Linkname); err != nil {
				return written, err
			}
			written++
		case tar.TypeLink:
			linkName, err := normalizeArchiveEntryName(header.Linkname)
			if err != nil {
				return written, err
			}
			source, err := resolveArchiveTargetPath(target, linkName)
			if err != nil {
				return written, err
			}
			os.Remove(path)
			if err := os.Link(source, path); err != nil {
				return written, err
			}
			written++
		}
	}
}

func extractZip(ctx context.Context, archive, target string) (int, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", filepath.Base(archive), err)
	}
	defer zr.Close()

	written := 0
	for _, file := range zr.File {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		name, err := normalizeArchiveEntryName(file.Name)
		if err != nil {
			if errors.Is(err, errRootEntry) {
				continue
			}
			return written, err
		}
		path, err := resolveArchiveTargetPath(target, name)
		if err != nil {
			return written, err
		}
		mode := file.Mode()
		if mode.IsDir() {
			if err := os.MkdirAll(path, dirMode(mode)); err != nil {
				return written, err
			}
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return written, err
		}
		perm := mode.Perm()
		if perm == 0 {
			perm = 0o644
		}
		err = writeEntry(path, rc, perm)
		rc.Close()
		if err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func writeEntry(path string, body io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	_, copyErr := io.Copy(out, body)
	if err := errors.Join(copyErr, out.Close()); err != nil {
		return err
	}
	return os.Chmod(path, perm)
}

func writeSymlink(root, path, linkname string) error {
	resolved := linkname
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(path), linkname)
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil || filepath.IsAbs(linkname) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("archive symlink escapes target root: %q -> %q", path, linkname)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	os.Remove(path)
	return os.Symlink(linkname, path)
}

func dirMode(mode os.FileMode) os.FileMode {
	if perm := mode.Perm(); perm != 0 {
		return perm | 0o700
	}
	return 0o755
}

var errRootEntry = errors.New("archive root entry")

func normalizeArchiveEntryName(value string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(value))
	cleaned = strings.TrimPrefix(cleaned, "."+string(filepath.Separator))
	if cleaned == "." || cleaned == "" {
		return "", errRootEntry
	}
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry path escapes root: %q", value)
	}
	return filepath.ToSlash(cleaned), nil
}

func resolveArchiveTargetPath(root, rel string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(rel))
	cleanRoot := filepath.Clean(root)
	cleanTarget := filepath.Clean(target)
	if cleanTarget != cleanRoot && !strings.HasPrefix(cleanTarget, cleanRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry path escapes target root: %q", rel)
	}
	return target, nil
}
