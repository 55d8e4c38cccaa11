// Package filesystem provides the file system storage backend for hosted
// sites. It supports atomic writes using temp files, SHA1 hashes matching
// what the hosting API reports, and recursive listings with directory
// markers.
package filesystem

import (
	"context"
	"crypto/sha1" //#nosec G505 -- the API publishes sha1 digests
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sagarc03/neocities"
)

// Store provides file system storage operations.
type Store struct {
	root *os.Root
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root}
}

// Get opens a file for reading. Returns neocities.ErrNotFound if the file does not exist.
func (s *Store) Get(ctx context.Context, p string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(filepath.FromSlash(p))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, neocities.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, nil
}

// Stat returns information about a file or directory. Returns
// neocities.ErrNotFound if nothing exists at p.
func (s *Store) Stat(ctx context.Context, p string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := s.root.Stat(filepath.FromSlash(p))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, neocities.ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return info, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically writes content to the given path using a temp file and rename.
// It creates intermediate directories as needed and returns a SaveResult containing
// the number of bytes written and the SHA1 of the content. The operation respects
// context cancellation.
func (s *Store) Write(ctx context.Context, p string, content io.Reader) (neocities.SaveResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return neocities.SaveResult{}, ctxErr
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return neocities.SaveResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha1.New() //#nosec G401 -- matches the API's digest
	w := io.MultiWriter(h, t)

	fileSizeBytes, err := io.Copy(w, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return neocities.SaveResult{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	err = t.Sync()
	if err != nil {
		return neocities.SaveResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	dest := filepath.FromSlash(p)
	destDir := filepath.Dir(dest)
	if destDir != "." {
		if err := s.root.MkdirAll(destDir, 0o755); err != nil {
			return neocities.SaveResult{}, fmt.Errorf("could not create intermediate directories: %w", err)
		}
	}

	if renameErr := s.root.Rename(tmpFile, dest); renameErr != nil {
		return neocities.SaveResult{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	success = true

	return neocities.SaveResult{BytesWritten: fileSizeBytes, SHA1: hex.EncodeToString(h.Sum(nil))}, nil
}

// Delete removes a file, or a directory and everything below it. Returns
// neocities.ErrNotFound if nothing exists at p.
func (s *Store) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.FromSlash(p)
	if _, err := s.root.Lstat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return neocities.ErrNotFound
		}
		return fmt.Errorf("could not delete file: %w", err)
	}

	if err := s.root.RemoveAll(target); err != nil {
		return fmt.Errorf("could not delete file: %w", err)
	}
	return nil
}

// List recursively walks dir and returns every file and directory below it
// with paths relative to dir. Directories come before their contents. A
// missing dir yields an empty list.
func (s *Store) List(ctx context.Context, dir string) ([]neocities.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := []neocities.FileEntry{}

	err := s.walkDir(ctx, path.Clean(dir), "", &entries)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return entries, nil
}

func (s *Store) walkDir(ctx context.Context, base, rel string, entries *[]neocities.FileEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), path.Join(base, rel))
	if err != nil {
		return err
	}

	for _, entry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return err
		}

		entryRel := path.Join(rel, entry.Name())

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("walk dir: %w", err)
		}

		if entry.IsDir() {
			*entries = append(*entries, neocities.FileEntry{
				Path:        entryRel,
				IsDirectory: true,
				UpdatedAt:   neocities.NewRFC1123Time(info.ModTime()),
			})
			if err := s.walkDir(ctx, base, entryRel, entries); err != nil {
				return err
			}
			continue
		}

		if !entry.Type().IsRegular() {
			continue
		}

		sum, err := s.hashFile(path.Join(base, entryRel))
		if err != nil {
			return fmt.Errorf("walk dir: %w", err)
		}

		*entries = append(*entries, neocities.FileEntry{
			Path:      entryRel,
			Size:      info.Size(),
			UpdatedAt: neocities.NewRFC1123Time(info.ModTime()),
			SHA1Hash:  sum,
		})
	}

	return nil
}

func (s *Store) hashFile(p string) (string, error) {
	f, err := s.root.Open(filepath.FromSlash(p))
	if err != nil {
		return "", err
	}

	h := sha1.New() //#nosec G401 -- matches the API's digest
	_, copyErr := io.Copy(h, f)

	if closeErr := f.Close(); closeErr != nil {
		slog.Warn("failed to close file", "path", p, "err", closeErr)
	}

	if copyErr != nil {
		return "", copyErr
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
