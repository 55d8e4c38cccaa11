package clientcli

import (
	"context"
	"crypto/sha1" //#nosec G505 -- the API publishes sha1 digests
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sagarc03/neocities"
)

// Progress reports one processed listing entry during DownloadAll.
type Progress struct {
	Done      int
	Total     int
	Entry     neocities.FileEntry
	Bytes     int64 // 0 for directory markers
	Directory bool
}

// ProgressFunc receives download progress.
type ProgressFunc func(Progress)

type downloadOptions struct {
	progress ProgressFunc
	verify   bool
}

// DownloadOption configures DownloadAll.
type DownloadOption func(*downloadOptions)

// WithProgress calls fn after each listing entry is handled.
func WithProgress(fn ProgressFunc) DownloadOption {
	return func(o *downloadOptions) {
		o.progress = fn
	}
}

// WithChecksumVerify compares each downloaded file against the listing's
// sha1_hash and fails with ErrChecksumMismatch on a difference.
func WithChecksumVerify() DownloadOption {
	return func(o *downloadOptions) {
		o.verify = true
	}
}

// DownloadAll mirrors the authenticated site into saveTo, which must be an
// existing directory. Files are fetched from the public site URL without
// credentials and written atomically. Writes cannot escape saveTo.
func (c *Client) DownloadAll(ctx context.Context, saveTo string, opts ...DownloadOption) error {
	var o downloadOptions
	for _, opt := range opts {
		opt(&o)
	}

	st, err := os.Stat(saveTo)
	if err != nil || !st.IsDir() {
		return fmt.Errorf("download all: %w: %s is not an existing directory", neocities.ErrInvalidArgument, saveTo)
	}

	info, err := c.FetchInfo(ctx, "")
	if err != nil {
		return fmt.Errorf("download all: %w", err)
	}
	if info.Info == nil || info.Info.Sitename == "" {
		return fmt.Errorf("download all: %w: info response has no sitename", neocities.ErrAPI)
	}
	sitename := info.Info.Sitename

	list, err := c.FetchFileList(ctx, "")
	if err != nil {
		return fmt.Errorf("download all: %w", err)
	}

	root, err := os.OpenRoot(saveTo)
	if err != nil {
		return fmt.Errorf("download all: open %s: %w", saveTo, err)
	}
	defer func() { _ = root.Close() }()

	siteBase := strings.TrimSuffix(c.siteURL(sitename), "/")
	total := len(list.Files)

	for i, entry := range list.Files {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("download all: %w", err)
		}

		rel := path.Clean(strings.TrimPrefix(entry.Path, "/"))
		if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
			return fmt.Errorf("download all: %w: unsafe path %q in listing", neocities.ErrAPI, entry.Path)
		}

		if parent := path.Dir(rel); parent != "." {
			if err := root.MkdirAll(parent, 0o750); err != nil {
				return fmt.Errorf("download all: create directory %s: %w", parent, err)
			}
		}

		var written int64
		if !entry.IsDirectory {
			fileURL := siteBase + (&url.URL{Path: "/" + rel}).EscapedPath()
			c.echo("Downloading %s", fileURL)

			n, sum, err := c.fetchPublicFile(ctx, root, fileURL, rel)
			if err != nil {
				return fmt.Errorf("download all: %s: %w", entry.Path, err)
			}
			if o.verify && entry.SHA1Hash != "" && !strings.EqualFold(sum, entry.SHA1Hash) {
				return fmt.Errorf("download all: %s: %w: expected %s, got %s", entry.Path, ErrChecksumMismatch, entry.SHA1Hash, sum)
			}
			written = n
			c.logger.Debug("downloaded file", "path", rel, "bytes", n)
		}

		if o.progress != nil {
			o.progress(Progress{
				Done:      i + 1,
				Total:     total,
				Entry:     entry,
				Bytes:     written,
				Directory: entry.IsDirectory,
			})
		}
	}

	c.logger.Info("download complete", "sitename", sitename, "entries", total, "dir", saveTo)
	return nil
}

// fetchPublicFile streams fileURL into rel through a temp file and returns
// the size and sha1 of what was written.
func (c *Client) fetchPublicFile(ctx context.Context, root *os.Root, fileURL, rel string) (int64, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return 0, "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", &APIError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, "", &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			Message:    "download " + fileURL + " failed",
		}
	}

	tmpName := path.Join(path.Dir(rel), ".t"+uuid.NewString())
	tmp, err := root.OpenFile(tmpName, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return 0, "", fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		_ = tmp.Close()
		_ = root.Remove(tmpName)
	}

	hasher := sha1.New() //#nosec G401 -- matches the API's digest
	n, err := io.Copy(io.MultiWriter(tmp, hasher), resp.Body)
	if err != nil {
		cleanup()
		return 0, "", fmt.Errorf("write file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = root.Remove(tmpName)
		return 0, "", fmt.Errorf("close temp file: %w", err)
	}

	if err := root.Rename(tmpName, rel); err != nil {
		_ = root.Remove(tmpName)
		return 0, "", fmt.Errorf("rename temp file: %w", err)
	}

	return n, hex.EncodeToString(hasher.Sum(nil)), nil
}
