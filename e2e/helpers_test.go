package e2e_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sagarc03/neocities"
	"github.com/sagarc03/neocities/clientcli"
	"github.com/sagarc03/neocities/database"
	"github.com/sagarc03/neocities/filesystem"
	nchttp "github.com/sagarc03/neocities/http"
	"github.com/sagarc03/neocities/keybackend"
)

const (
	testSitename = "e2esite"
	testPassword = "hunter22"
)

// devServer is a running dev server backed by a real sqlite database and
// a storage directory, both in temp dirs.
type devServer struct {
	URL         string
	StoragePath string
	Service     *neocities.SiteService
}

// startServer seeds accounts (or a single default account when none are
// given) and serves the full handler on an httptest server.
func startServer(t *testing.T, accounts ...keybackend.SiteAccount) *devServer {
	t.Helper()
	ctx := context.Background()

	repo, closeDB, err := database.Open(ctx, database.Config{
		Type:   "sqlite",
		DSN:    filepath.Join(t.TempDir(), "e2e.db"),
		Tables: neocities.Tables{Sites: "sites"},
	}, true)
	require.NoError(t, err)
	t.Cleanup(closeDB)

	storagePath := t.TempDir()
	root, err := os.OpenRoot(storagePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	service := neocities.NewSiteService(repo, filesystem.NewFileStorage(root), neocities.ServiceConfig{
		BcryptCost: 4,
	})

	if len(accounts) == 0 {
		accounts = []keybackend.SiteAccount{{Sitename: testSitename, Password: testPassword}}
	}
	store, err := keybackend.NewAccountStore(keybackend.AccountsConfig{Inline: accounts})
	require.NoError(t, err)
	_, err = store.Seed(ctx, service)
	require.NoError(t, err)

	handler := nchttp.NewHandler(&nchttp.HandlerConfig{MaxUploadSize: 10 << 20}, service)
	srv := httptest.NewServer(handler.Router())
	t.Cleanup(srv.Close)

	return &devServer{URL: srv.URL, StoragePath: storagePath, Service: service}
}

// newClient returns a client for the dev server. Credentials come from cfg
// only; the process environment is ignored.
func (s *devServer) newClient(t *testing.T, cfg clientcli.Config) *clientcli.Client {
	t.Helper()

	cfg.BaseURL = s.URL + "/api"
	client, err := clientcli.New(&cfg,
		clientcli.WithLookupEnv(func(string) (string, bool) { return "", false }),
		clientcli.WithSiteURL(func(sitename string) string { return s.URL + "/site/" + sitename }),
		clientcli.WithOutput(io.Discard),
		clientcli.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	return client
}

func (s *devServer) passwordClient(t *testing.T) *clientcli.Client {
	t.Helper()
	return s.newClient(t, clientcli.Config{Username: testSitename, Password: testPassword})
}

// writeTree creates files below a new temp dir and returns the dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func filePaths(entries []neocities.FileEntry) []string {
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	return paths
}
