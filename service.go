package neocities

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SiteRepo defines the interface for site account persistence.
//
// All methods accept a context for cancellation and timeout control.
type SiteRepo interface {
	// Get retrieves a site by sitename.
	//
	// Returns:
	//   - Site: The stored account
	//   - error: ErrNotFound if no site has that name, or other database errors
	Get(ctx context.Context, sitename string) (Site, error)

	// GetByAPIKey retrieves the site owning the given API key.
	//
	// Returns:
	//   - error: ErrNotFound if no site has that key
	GetByAPIKey(ctx context.Context, apiKey string) (Site, error)

	// Create inserts a new site. CreatedAt is set by the repository.
	//
	// Returns:
	//   - Site: The stored account with timestamps populated
	//   - error: ErrSiteExists if the sitename is taken, or other database errors
	Create(ctx context.Context, site Site) (Site, error)

	// List returns every site ordered by sitename.
	List(ctx context.Context) ([]Site, error)

	// SetAPIKey replaces the API key of a site.
	//
	// Returns:
	//   - error: ErrNotFound if the site doesn't exist
	SetAPIKey(ctx context.Context, sitename, apiKey string) error

	// Touch records a content change at the given time.
	Touch(ctx context.Context, sitename string, at time.Time) error

	// RecordHit increments the hit counter of a site.
	RecordHit(ctx context.Context, sitename string) error
}

// FileStorage defines the interface for physical file storage operations.
//
// Paths are slash-separated and relative to the storage root. Implementations
// should respect context cancellation during long-running operations.
type FileStorage interface {
	// Get retrieves a file from storage for reading.
	//
	// Returns:
	//   - io.ReadSeekCloser: Reader for file content with seek capability
	//   - error: ErrNotFound if file doesn't exist, or other storage errors
	//
	// The caller is responsible for closing the returned ReadSeekCloser.
	Get(ctx context.Context, path string) (io.ReadSeekCloser, error)

	// Stat returns file information for a file or directory.
	//
	// Returns:
	//   - error: ErrNotFound if nothing exists at path
	Stat(ctx context.Context, path string) (fs.FileInfo, error)

	// Write stores content to a file at the specified path, overwriting any
	// existing file and creating parent directories.
	//
	// Implementations should:
	//   - Write atomically when possible (e.g., write to temp file then rename)
	//   - Compute the SHA1 hash during write
	//   - Clean up partial writes when the context is cancelled
	Write(ctx context.Context, path string, content io.Reader) (SaveResult, error)

	// Delete removes a file, or a directory with everything below it.
	//
	// Returns:
	//   - error: ErrNotFound if nothing exists at path
	Delete(ctx context.Context, path string) error

	// List walks dir recursively and returns every file and directory below
	// it. Entry paths are relative to dir. Returns an empty slice for an
	// empty or missing directory.
	List(ctx context.Context, dir string) ([]FileEntry, error)
}

// ServiceConfig holds configuration options for SiteService.
type ServiceConfig struct {
	// BcryptCost for new passwords (default: bcrypt.DefaultCost)
	BcryptCost int
	// Now overrides the clock (default: time.Now)
	Now func() time.Time
}

// SiteService implements the hosting API on top of a SiteRepo and a
// FileStorage. Files of a site live below "{sitename}/" in the storage.
type SiteService struct {
	repo       SiteRepo
	storage    FileStorage
	bcryptCost int
	now        func() time.Time
}

func NewSiteService(repo SiteRepo, storage FileStorage, cfg ServiceConfig) *SiteService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &SiteService{
		repo:       repo,
		storage:    storage,
		bcryptCost: cost,
		now:        now,
	}
}

// GenerateAPIKey returns a new random 32 character hex key.
func GenerateAPIKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// CreateSite registers a new site and seeds it with the default index.html.
//
// Error types returned:
//   - ErrInvalidInput: invalid sitename or empty password
//   - ErrSiteExists: sitename already taken
func (s *SiteService) CreateSite(ctx context.Context, ns NewSite) (Site, error) {
	if err := ctx.Err(); err != nil {
		return Site{}, fmt.Errorf("create site: %w", err)
	}

	if !IsValidSitename(ns.Sitename) {
		return Site{}, fmt.Errorf("create site %q: %w: invalid sitename", ns.Sitename, ErrInvalidInput)
	}

	if ns.Password == "" {
		return Site{}, fmt.Errorf("create site %q: %w: password cannot be empty", ns.Sitename, ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(ns.Password), s.bcryptCost)
	if err != nil {
		return Site{}, fmt.Errorf("create site %q: hash password: %w", ns.Sitename, err)
	}

	site, err := s.repo.Create(ctx, Site{
		Sitename:     ns.Sitename,
		PasswordHash: string(hash),
		APIKey:       ns.APIKey,
		Domain:       ns.Domain,
		Tags:         ns.Tags,
	})
	if err != nil {
		return Site{}, fmt.Errorf("create site %q: %w", ns.Sitename, err)
	}

	if _, err := s.storage.Write(ctx, sitePath(site.Sitename, IndexFile), bytes.NewReader(DefaultIndexHTML)); err != nil {
		return Site{}, fmt.Errorf("create site %q: write index: %w", ns.Sitename, err)
	}

	return site, nil
}

// ListSites returns every registered site.
func (s *SiteService) ListSites(ctx context.Context) ([]Site, error) {
	sites, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return sites, nil
}

// AuthenticateKey returns the site owning apiKey.
func (s *SiteService) AuthenticateKey(ctx context.Context, apiKey string) (Site, error) {
	if apiKey == "" {
		return Site{}, fmt.Errorf("authenticate: %w", ErrUnauthorized)
	}

	site, err := s.repo.GetByAPIKey(ctx, apiKey)
	if errors.Is(err, ErrNotFound) {
		return Site{}, fmt.Errorf("authenticate: %w", ErrUnauthorized)
	}
	if err != nil {
		return Site{}, fmt.Errorf("authenticate: %w", err)
	}
	return site, nil
}

// AuthenticatePassword checks a sitename/password pair.
func (s *SiteService) AuthenticatePassword(ctx context.Context, sitename, password string) (Site, error) {
	site, err := s.repo.Get(ctx, sitename)
	if errors.Is(err, ErrNotFound) {
		return Site{}, fmt.Errorf("authenticate: %w", ErrUnauthorized)
	}
	if err != nil {
		return Site{}, fmt.Errorf("authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(site.PasswordHash), []byte(password)); err != nil {
		return Site{}, fmt.Errorf("authenticate: %w", ErrUnauthorized)
	}
	return site, nil
}

// Upload validates every file first, then writes them in order. Nothing is
// written when any path or extension is rejected.
//
// Error types returned:
//   - ErrMissingFiles: no files
//   - ErrInvalidInput: a path fails IsValidPath
//   - ErrInvalidFileType: an extension is not allowed
func (s *SiteService) Upload(ctx context.Context, sitename string, files []UploadFile) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("upload: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("upload: %w: no files were uploaded", ErrMissingFiles)
	}

	for _, f := range files {
		if !IsValidPath(f.Path) {
			return fmt.Errorf("upload %s: %w", f.Path, ErrInvalidInput)
		}
		if !IsValidExtension(f.Path) {
			return fmt.Errorf("upload %s: %w", f.Path, ErrInvalidFileType)
		}
	}

	for _, f := range files {
		if _, err := s.storage.Write(ctx, sitePath(sitename, f.Path), f.Content); err != nil {
			return fmt.Errorf("upload %s: %w: %w", f.Path, ErrInternal, err)
		}
	}

	if err := s.repo.Touch(ctx, sitename, s.now()); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	return nil
}

// Delete removes the named files and directories. index.html can't be
// deleted. Names below a directory removed earlier in the same call are
// skipped.
//
// Error types returned:
//   - ErrMissingFiles: empty list, or a name that doesn't exist
//   - ErrCannotDeleteIndex: the list names index.html
//   - ErrInvalidInput: a name fails IsValidPath
func (s *SiteService) Delete(ctx context.Context, sitename string, names []string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if len(names) == 0 {
		return fmt.Errorf("delete: %w: no filenames provided", ErrMissingFiles)
	}

	for _, name := range names {
		name = strings.Trim(name, "/")
		if name == IndexFile {
			return fmt.Errorf("delete: %w", ErrCannotDeleteIndex)
		}
		if !IsValidPath(name) {
			return fmt.Errorf("delete %s: %w", name, ErrInvalidInput)
		}
		if _, err := s.storage.Stat(ctx, sitePath(sitename, name)); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("delete %s: %w: file does not exist", name, ErrMissingFiles)
			}
			return fmt.Errorf("delete %s: %w", name, err)
		}
	}

	var deleted []string
	for _, name := range names {
		name = strings.Trim(name, "/")
		if slices.ContainsFunc(deleted, func(d string) bool { return d == name || strings.HasPrefix(name, d+"/") }) {
			continue
		}

		if err := s.storage.Delete(ctx, sitePath(sitename, name)); err != nil {
			return fmt.Errorf("delete %s: %w: %w", name, ErrInternal, err)
		}
		deleted = append(deleted, name)
	}

	if err := s.repo.Touch(ctx, sitename, s.now()); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// List returns the files of a site, optionally restricted to the directory
// dir. Paths are always relative to the site root.
func (s *SiteService) List(ctx context.Context, sitename, dir string) ([]FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	dir = strings.Trim(dir, "/")
	if dir != "" && !IsValidPath(dir) {
		return nil, fmt.Errorf("list files %s: %w", dir, ErrInvalidInput)
	}

	entries, err := s.storage.List(ctx, sitePath(sitename, dir))
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	if dir != "" {
		for i := range entries {
			entries[i].Path = dir + "/" + entries[i].Path
		}
	}

	return entries, nil
}

// Info returns the public metadata of a site.
func (s *SiteService) Info(ctx context.Context, sitename string) (SiteInfo, error) {
	site, err := s.repo.Get(ctx, sitename)
	if err != nil {
		return SiteInfo{}, fmt.Errorf("info %s: %w", sitename, err)
	}
	return site.Info(), nil
}

// APIKey returns the site's API key, generating one on first use.
func (s *SiteService) APIKey(ctx context.Context, sitename string) (string, error) {
	site, err := s.repo.Get(ctx, sitename)
	if err != nil {
		return "", fmt.Errorf("api key %s: %w", sitename, err)
	}
	if site.APIKey != "" {
		return site.APIKey, nil
	}
	return s.RotateAPIKey(ctx, sitename)
}

// RotateAPIKey replaces the site's API key with a new one.
func (s *SiteService) RotateAPIKey(ctx context.Context, sitename string) (string, error) {
	key := GenerateAPIKey()
	if err := s.repo.SetAPIKey(ctx, sitename, key); err != nil {
		return "", fmt.Errorf("rotate api key %s: %w", sitename, err)
	}
	return key, nil
}

// Open serves a public file of a site. An empty path or a directory falls
// back to its index.html. Every successful open counts as a hit.
func (s *SiteService) Open(ctx context.Context, sitename, p string) (io.ReadSeekCloser, fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}

	if !IsValidSitename(sitename) {
		return nil, nil, fmt.Errorf("open %s: %w", sitename, ErrNotFound)
	}

	p = strings.Trim(p, "/")
	if p != "" && !IsValidPath(p) {
		return nil, nil, fmt.Errorf("open %s: %w", p, ErrInvalidInput)
	}

	full := sitePath(sitename, p)
	info, err := s.storage.Stat(ctx, full)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", p, err)
	}

	if info.IsDir() {
		full = path.Join(full, IndexFile)
		if info, err = s.storage.Stat(ctx, full); err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", p, err)
		}
	}

	f, err := s.storage.Get(ctx, full)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", p, err)
	}

	if err := s.repo.RecordHit(ctx, sitename); err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("open %s: %w", p, err)
	}

	return f, info, nil
}

func sitePath(sitename, p string) string {
	if p == "" {
		return sitename
	}
	return sitename + "/" + p
}
