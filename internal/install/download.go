package install

import (
	"context"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pirakansa/appstack/internal/cli/shared"
	"github.com/pirakansa/appstack/internal/task"
)

const (
	StatusAlreadyExisted = "Already existed"
	StatusDownloaded     = "Downloaded"
)

// DownloadProgress is reported while the body is streamed. Total is -1 when
// the server sent no length.
type DownloadProgress struct {
	Percentage int
	Downloaded int64
	Total      int64
}

// DownloadResult is the outcome of one download.
type DownloadResult struct {
	Status string
	Size   int64
}

// Fetcher downloads over HTTP.
type Fetcher struct {
	Client *http.Client
}

func (f *Fetcher) client() *http.Client {
	if f.Client == nil {
		return http.DefaultClient
	}
	return f.Client
}

// Task returns d as a task.
func (f *Fetcher) Task(d Download) task.Func {
	return func(ctx context.Context, report task.Reporter) (any, error) {
		res, err := f.Fetch(ctx, d, report)
		if err != nil {
			return nil, err
		}
		return res, nil
	}
}

// Fetch downloads d.URL to d.Path. A file already present with the length
// announced by the server, and matching the digest when one is set, is kept.
func (f *Fetcher) Fetch(ctx context.Context, d Download, report task.Reporter) (DownloadResult, error) {
	digest, err := shared.ParseDigest(d.Digest)
	if err != nil {
		return DownloadResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return DownloadResult{}, err
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return DownloadResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return DownloadResult{}, fmt.Errorf("download failed: %s status=%d", d.URL, resp.StatusCode)
	}

	total := resp.ContentLength
	if existing, ok := existingSize(d.Path); ok && total >= 0 && existing == total {
		if digest.VerifyFile(d.Path) == nil {
			return DownloadResult{Status: StatusAlreadyExisted, Size: existing}, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(d.Path), 0o755); err != nil {
		return DownloadResult{}, err
	}
	part := d.Path + ".part"
	out, err := os.Create(part)
	if err != nil {
		return DownloadResult{}, err
	}

	var h hash.Hash
	var dst io.Writer = out
	if !digest.IsZero() {
		h, _ = shared.NewHash(digest.Algorithm)
		dst = io.MultiWriter(out, h)
	}
	counter := &progressWriter{total: total, report: report, last: -1}
	n, copyErr := io.Copy(io.MultiWriter(dst, counter), resp.Body)
	if err := errors.Join(copyErr, out.Close()); err != nil {
		os.Remove(part)
		return DownloadResult{}, err
	}
	if total >= 0 && n != total {
		os.Remove(part)
		return DownloadResult{}, fmt.Errorf("download truncated: %s got %d of %d bytes", d.URL, n, total)
	}
	if h != nil {
		if err := digest.Verify(h); err != nil {
			os.Remove(part)
			return DownloadResult{}, fmt.Errorf("%s: %w", d.URL, err)
		}
	}
	if err := os.Rename(part, d.Path); err != nil {
		return DownloadResult{}, err
	}
	return DownloadResult{Status: StatusDownloaded, Size: n}, nil
}

func existingSize(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Size(), true
}

// progressWriter reports whenever the whole percentage changes, or every MiB
// when the length is unknown.
type progressWriter struct {
	total   int64
	written int64
	last    int64
	report  task.Reporter
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))
	if w.report == nil {
		return len(p), nil
	}
	var step int64
	percentage := -1
	if w.total > 0 {
		percentage = int(w.written * 100 / w.total)
		step = int64(percentage)
	} else {
		step = w.written / mib
	}
	if step != w.last {
		w.last = step
		w.report(DownloadProgress{Percentage: percentage, Downloaded: w.written, Total: w.total})
	}
	return len(p), nil
}

const mib = 1 << 20

func mebibytes(n int64) string {
	return fmt.Sprintf("%.1f", float64(n)/mib)
}
