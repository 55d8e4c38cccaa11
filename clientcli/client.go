package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sagarc03/neocities"
)

// DefaultDeleteAllWait is the pause DeleteAll takes before deleting when
// callers have no preference.
const DefaultDeleteAllWait = 10 * time.Second

// Client performs operations against the hosting API for one site.
// Credentials are resolved once in New and never change.
type Client struct {
	config      *Config
	credentials Credentials
	baseURL     string
	httpClient  *http.Client
	logger      *slog.Logger
	out         io.Writer
	lookupEnv   LookupEnvFunc
	siteURL     func(sitename string) string
	userAgent   string
	throttle    *throttleConfig
}

type throttleConfig struct {
	rps   float64
	burst int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLookupEnv replaces os.LookupEnv for credential resolution.
func WithLookupEnv(lookup LookupEnvFunc) Option {
	return func(c *Client) {
		c.lookupEnv = lookup
	}
}

// WithLogger sets the structured logger (default: slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithOutput sets where verbose progress lines go (default: os.Stderr).
func WithOutput(w io.Writer) Option {
	return func(c *Client) {
		c.out = w
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithThrottle limits outgoing requests to rps per second with the given
// burst. New fails when either is not positive.
func WithThrottle(rps float64, burst int) Option {
	return func(c *Client) {
		c.throttle = &throttleConfig{rps: rps, burst: burst}
	}
}

// WithSiteURL overrides how the public base URL of a site is built. The
// default is https://{sitename}.{SiteDomain}.
func WithSiteURL(fn func(sitename string) string) Option {
	return func(c *Client) {
		c.siteURL = fn
	}
}

// New creates a new Client with the given config and options.
// It returns neocities.ErrCredentialsRequired when no API key or
// username/password pair resolves from cfg or the environment.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()

	c := &Client{
		config: &Config{
			BaseURL:    cfg.BaseURL,
			SiteDomain: cfg.SiteDomain,
			Timeout:    cfg.Timeout,
			Verbose:    cfg.Verbose,
		},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     slog.Default(),
		out:        os.Stderr,
		lookupEnv:  os.LookupEnv,
	}

	for _, opt := range opts {
		opt(c)
	}

	creds, err := ResolveCredentials(cfg.APIKey, cfg.Username, cfg.Password, c.lookupEnv)
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	c.credentials = creds

	if err := c.wrapTransport(); err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}

	if c.siteURL == nil {
		domain := cfg.SiteDomain
		c.siteURL = func(sitename string) string {
			return "https://" + sitename + "." + domain
		}
	}

	c.logger.Debug("client configured", "base_url", c.baseURL, "auth", creds.Mode().String())
	return c, nil
}

func (c *Client) wrapTransport() error {
	if c.userAgent == "" && c.throttle == nil {
		return nil
	}

	rt := c.httpClient.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	if c.userAgent != "" {
		rt = userAgent{value: c.userAgent, base: rt}
	}
	if c.throttle != nil {
		t, err := newThrottle(c.throttle.rps, c.throttle.burst, c.logger, rt)
		if err != nil {
			return err
		}
		rt = t
	}

	hc := *c.httpClient
	hc.Transport = rt
	c.httpClient = &hc
	return nil
}

// Credentials returns the resolved credentials.
func (c *Client) Credentials() Credentials {
	return c.credentials
}

// echo writes a progress line when the client is verbose.
func (c *Client) echo(format string, args ...any) {
	if !c.config.Verbose || c.out == nil {
		return
	}
	_, _ = fmt.Fprintf(c.out, format+"\n", args...)
}

// FileMapping pairs a local file with its destination path on the site.
type FileMapping struct {
	LocalPath  string
	RemotePath string // defaults to LocalPath with forward slashes
}

type uploadEntry struct {
	remote string
	data   []byte
}

// UploadFiles uploads files in a single request. Files whose local name has
// an extension outside the allow-list are skipped with a warning. The
// request is sent even when every file was skipped.
func (c *Client) UploadFiles(ctx context.Context, files []FileMapping) (*neocities.Response, error) {
	entries := make([]uploadEntry, 0, len(files))
	seen := make(map[string]int, len(files))

	for _, f := range files {
		if !neocities.IsValidExtension(f.LocalPath) {
			c.logger.Warn("skipping file with invalid extension", "path", f.LocalPath, "extension", neocities.Extension(f.LocalPath))
			c.echo("Skipping %s: invalid extension", f.LocalPath)
			continue
		}

		data, err := os.ReadFile(f.LocalPath) //#nosec G304 -- localPath is user-provided input
		if err != nil {
			return nil, fmt.Errorf("upload files: read %s: %w", f.LocalPath, err)
		}

		remote := f.RemotePath
		if remote == "" {
			remote = filepath.ToSlash(f.LocalPath)
		}

		if i, ok := seen[remote]; ok {
			entries[i].data = data
			continue
		}
		seen[remote] = len(entries)
		entries = append(entries, uploadEntry{remote: remote, data: data})
		c.echo("Uploading %s as %s", f.LocalPath, remote)
	}

	resp, err := c.upload(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("upload files: %w", err)
	}
	return resp, nil
}

func (c *Client) upload(ctx context.Context, entries []uploadEntry) (*neocities.Response, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for _, e := range entries {
		part, err := w.CreateFormFile(e.remote, e.remote)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(e.data); err != nil {
			return nil, fmt.Errorf("write form file: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	return c.do(ctx, http.MethodPost, "/upload", nil, &body, w.FormDataContentType())
}

// UploadDir uploads every regular file below dir. Destination paths keep the
// layout relative to dir, prefixed with dirOnServer (a trailing "/" is added
// when missing). Empty directories produce nothing.
func (c *Client) UploadDir(ctx context.Context, dir, dirOnServer string) (*neocities.Response, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload dir: %w", ErrEmptyPath)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("upload dir: %w: %w", neocities.ErrInvalidArgument, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("upload dir: %w: %s is not a directory", neocities.ErrInvalidArgument, dir)
	}

	prefix := dirOnServer
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var files []FileMapping
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, fileErr error) error {
		if fileErr != nil {
			return fileErr
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if !isRegularFile(path, d) {
			return nil
		}

		relPath, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return fmt.Errorf("calculate relative path: %w", relErr)
		}

		files = append(files, FileMapping{
			LocalPath:  path,
			RemotePath: prefix + filepath.ToSlash(relPath),
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("upload dir: walk directory: %w", walkErr)
	}

	return c.UploadFiles(ctx, files)
}

// isRegularFile follows symlinks so linked files upload like plain ones.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DeleteFiles deletes the named files in one request. An empty list returns
// a success response without contacting the server.
func (c *Client) DeleteFiles(ctx context.Context, filenames []string) (*neocities.Response, error) {
	if len(filenames) == 0 {
		return neocities.SuccessResponse(""), nil
	}

	form := url.Values{}
	for _, name := range filenames {
		form.Add("filenames[]", name)
		c.echo("Deleting %s", name)
	}

	resp, err := c.do(ctx, http.MethodPost, "/delete", nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, fmt.Errorf("delete files: %w", err)
	}
	return resp, nil
}

// DeleteAll deletes every file except index.html, then resets index.html to
// the default template. It pauses for wait between listing and deleting;
// cancelling ctx during the pause deletes nothing. The returned response is
// the one from the index.html upload.
func (c *Client) DeleteAll(ctx context.Context, wait time.Duration) (*neocities.Response, error) {
	list, err := c.FetchFileList(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("delete all: %w", err)
	}

	names := make([]string, 0, len(list.Files))
	for _, f := range list.Files {
		if f.Path != neocities.IndexFile {
			names = append(names, f.Path)
		}
	}

	c.logger.Info("deleting all files", "count", len(names), "wait", wait)
	c.echo("Deleting %d files in %s", len(names), wait)

	if err := sleep(ctx, wait); err != nil {
		return nil, fmt.Errorf("delete all: %w", err)
	}

	if _, err := c.DeleteFiles(ctx, names); err != nil {
		return nil, fmt.Errorf("delete all: %w", err)
	}

	resp, err := c.initializeIndexHTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("delete all: %w", err)
	}
	return resp, nil
}

func (c *Client) initializeIndexHTML(ctx context.Context) (*neocities.Response, error) {
	c.echo("Initializing %s", neocities.IndexFile)
	return c.upload(ctx, []uploadEntry{{remote: neocities.IndexFile, data: neocities.DefaultIndexHTML}})
}

// sleep blocks for d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FetchFileList lists the site's files, optionally only below pathOnServer.
func (c *Client) FetchFileList(ctx context.Context, pathOnServer string) (*neocities.Response, error) {
	var q url.Values
	if pathOnServer != "" {
		q = url.Values{"path": {pathOnServer}}
	}

	resp, err := c.do(ctx, http.MethodGet, "/list", q, nil, "")
	if err != nil {
		return nil, fmt.Errorf("fetch file list: %w", err)
	}
	return resp, nil
}

// FetchInfo returns site metadata for sitename, or for the authenticated
// site when sitename is empty.
func (c *Client) FetchInfo(ctx context.Context, sitename string) (*neocities.Response, error) {
	var q url.Values
	if sitename != "" {
		q = url.Values{"sitename": {sitename}}
	}

	resp, err := c.do(ctx, http.MethodGet, "/info", q, nil, "")
	if err != nil {
		return nil, fmt.Errorf("fetch info: %w", err)
	}
	return resp, nil
}

// FetchAPIKey returns the API key of the authenticated site.
func (c *Client) FetchAPIKey(ctx context.Context) (*neocities.Response, error) {
	resp, err := c.do(ctx, http.MethodGet, "/key", nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("fetch api key: %w", err)
	}
	return resp, nil
}

// do performs one authenticated API call. Only the HTTP status decides
// success; the body's result field is returned untouched.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*neocities.Response, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	c.echo("Calling Neocities API: %s %s", method, path)

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	c.credentials.Apply(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("api call", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp.StatusCode, data)
	}

	var out neocities.Response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data), Err: fmt.Errorf("decode response: %w", err)}
	}
	return &out, nil
}

// parseAPIError builds an APIError from a non-200 response, keeping the
// error_type and message when the body is a JSON error.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Body:       strings.TrimSpace(string(body)),
	}

	var resp neocities.Response
	if err := json.Unmarshal(body, &resp); err == nil {
		apiErr.ErrorType = resp.ErrorType
		apiErr.Message = resp.Message
	}

	return apiErr
}
