package e2e_test

import (
	"context"
	"crypto/sha1" //#nosec G505
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/neocities"
	"github.com/sagarc03/neocities/clientcli"
	"github.com/sagarc03/neocities/keybackend"
)

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s)) //#nosec G401
	return hex.EncodeToString(sum[:])
}

func requireAPIError(t *testing.T, err error, status int, errorType string) {
	t.Helper()
	require.ErrorIs(t, err, neocities.ErrAPI)

	var apiErr *clientcli.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, status, apiErr.StatusCode)
	assert.Equal(t, errorType, apiErr.ErrorType)
}

func TestE2E_UploadListRoundTrip(t *testing.T) {
	srv := startServer(t)
	client := srv.passwordClient(t)
	ctx := context.Background()

	dir := writeTree(t, map[string]string{
		"about.html":       "<h1>about</h1>",
		"css/style.css":    "body { color: red; }",
		"img/icons/a.svg":  "<svg/>",
		"notes/readme.exe": "skipped",
	})

	resp, err := client.UploadDir(ctx, dir, "")
	require.NoError(t, err)
	assert.Equal(t, neocities.ResultSuccess, resp.Result)

	list, err := client.FetchFileList(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"about.html",
		"css",
		"css/style.css",
		"img",
		"img/icons",
		"img/icons/a.svg",
		"index.html",
	}, filePaths(list.Files))

	for _, f := range list.Files {
		if f.Path == "css/style.css" {
			assert.Equal(t, sha1Hex("body { color: red; }"), f.SHA1Hash)
			assert.Equal(t, int64(20), f.Size)
		}
		if f.Path == "css" {
			assert.True(t, f.IsDirectory)
			assert.Empty(t, f.SHA1Hash)
		}
	}

	data, err := os.ReadFile(filepath.Join(srv.StoragePath, testSitename, "img", "icons", "a.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
}

func TestE2E_UploadFiles_RemotePathAndSubdirList(t *testing.T) {
	srv := startServer(t)
	client := srv.passwordClient(t)
	ctx := context.Background()

	dir := writeTree(t, map[string]string{"local.html": "<p>hi</p>"})

	_, err := client.UploadFiles(ctx, []clientcli.FileMapping{
		{LocalPath: filepath.Join(dir, "local.html"), RemotePath: "blog/post.html"},
	})
	require.NoError(t, err)

	list, err := client.FetchFileList(ctx, "blog")
	require.NoError(t, err)
	assert.Equal(t, []string{"blog/post.html"}, filePaths(list.Files))

	res, err := http.Get(srv.URL + "/site/" + testSitename + "/blog/post.html")
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "<p>hi</p>", string(body))
}

func TestE2E_Info(t *testing.T) {
	srv := startServer(t, keybackend.SiteAccount{
		Sitename: testSitename,
		Password: testPassword,
		Domain:   "example.com",
		Tags:     []string{"art", "retro"},
	})
	client := srv.passwordClient(t)
	ctx := context.Background()

	t.Run("own site", func(t *testing.T) {
		resp, err := client.FetchInfo(ctx, "")
		require.NoError(t, err)
		require.NotNil(t, resp.Info)
		assert.Equal(t, testSitename, resp.Info.Sitename)
		require.NotNil(t, resp.Info.Domain)
		assert.Equal(t, "example.com", *resp.Info.Domain)
		assert.Equal(t, []string{"art", "retro"}, resp.Info.Tags)
	})

	t.Run("public lookup", func(t *testing.T) {
		anon := srv.newClient(t, clientcli.Config{APIKey: "not-checked-for-public-info"})
		resp, err := anon.FetchInfo(ctx, testSitename)
		require.NoError(t, err)
		assert.Equal(t, testSitename, resp.Info.Sitename)
	})

	t.Run("unknown site", func(t *testing.T) {
		_, err := client.FetchInfo(ctx, "nobody-here")
		requireAPIError(t, err, http.StatusBadRequest, "site_not_found")
	})

	t.Run("page views count as hits", func(t *testing.T) {
		before, err := client.FetchInfo(ctx, "")
		require.NoError(t, err)

		res, err := http.Get(srv.URL + "/site/" + testSitename + "/")
		require.NoError(t, err)
		_ = res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)

		after, err := client.FetchInfo(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, before.Info.Hits+1, after.Info.Hits)
	})
}

func TestE2E_APIKey(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	resp, err := srv.passwordClient(t).FetchAPIKey(ctx)
	require.NoError(t, err)
	require.Len(t, resp.APIKey, 32)

	again, err := srv.passwordClient(t).FetchAPIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, resp.APIKey, again.APIKey, "key is stable once generated")

	bearer := srv.newClient(t, clientcli.Config{APIKey: resp.APIKey})
	assert.Equal(t, clientcli.AuthBearer, bearer.Credentials().Mode())

	info, err := bearer.FetchInfo(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, testSitename, info.Info.Sitename)

	rotated, err := srv.Service.RotateAPIKey(ctx, testSitename)
	require.NoError(t, err)

	_, err = bearer.FetchInfo(ctx, "")
	requireAPIError(t, err, http.StatusForbidden, "invalid_auth")

	fresh := srv.newClient(t, clientcli.Config{APIKey: rotated})
	_, err = fresh.FetchFileList(ctx, "")
	require.NoError(t, err)
}

func TestE2E_InvalidAuth(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	t.Run("wrong password", func(t *testing.T) {
		client := srv.newClient(t, clientcli.Config{Username: testSitename, Password: "wrong"})
		_, err := client.FetchFileList(ctx, "")
		requireAPIError(t, err, http.StatusForbidden, "invalid_auth")
	})

	t.Run("unknown key", func(t *testing.T) {
		client := srv.newClient(t, clientcli.Config{APIKey: "deadbeefdeadbeefdeadbeefdeadbeef"})
		_, err := client.FetchAPIKey(ctx)
		requireAPIError(t, err, http.StatusForbidden, "invalid_auth")
	})
}

func TestE2E_DeleteFiles(t *testing.T) {
	srv := startServer(t)
	client := srv.passwordClient(t)
	ctx := context.Background()

	dir := writeTree(t, map[string]string{
		"a.html":       "a",
		"img/cat.png":  "meow",
		"img/dog.png":  "woof",
		"keep/me.html": "keep",
	})
	_, err := client.UploadDir(ctx, dir, "")
	require.NoError(t, err)

	t.Run("index.html is protected", func(t *testing.T) {
		_, err := client.DeleteFiles(ctx, []string{"a.html", neocities.IndexFile})
		requireAPIError(t, err, http.StatusBadRequest, "cannot_delete_index")

		list, err := client.FetchFileList(ctx, "")
		require.NoError(t, err)
		assert.Contains(t, filePaths(list.Files), "a.html", "nothing is deleted on error")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := client.DeleteFiles(ctx, []string{"nope.html"})
		requireAPIError(t, err, http.StatusBadRequest, "missing_files")
	})

	t.Run("file and directory", func(t *testing.T) {
		_, err := client.DeleteFiles(ctx, []string{"a.html", "img"})
		require.NoError(t, err)

		list, err := client.FetchFileList(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"index.html", "keep", "keep/me.html"}, filePaths(list.Files))
	})
}

func TestE2E_DeleteAll(t *testing.T) {
	srv := startServer(t)
	client := srv.passwordClient(t)
	ctx := context.Background()

	dir := writeTree(t, map[string]string{
		"index.html":    "<h1>custom</h1>",
		"a.html":        "a",
		"deep/er/b.txt": "b",
	})
	_, err := client.UploadDir(ctx, dir, "")
	require.NoError(t, err)

	resp, err := client.DeleteAll(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, neocities.ResultSuccess, resp.Result)

	list, err := client.FetchFileList(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{neocities.IndexFile}, filePaths(list.Files))

	data, err := os.ReadFile(filepath.Join(srv.StoragePath, testSitename, neocities.IndexFile))
	require.NoError(t, err)
	assert.Equal(t, neocities.DefaultIndexHTML, data)
}

func TestE2E_DownloadAll(t *testing.T) {
	srv := startServer(t)
	client := srv.passwordClient(t)
	ctx := context.Background()

	files := map[string]string{
		"about.html":      "<h1>about</h1>",
		"css/style.css":   "body {}",
		"img/icons/a.svg": "<svg/>",
	}
	_, err := client.UploadDir(ctx, writeTree(t, files), "")
	require.NoError(t, err)

	saveTo := t.TempDir()
	var progress []clientcli.Progress
	err = client.DownloadAll(ctx, saveTo,
		clientcli.WithChecksumVerify(),
		clientcli.WithProgress(func(p clientcli.Progress) { progress = append(progress, p) }),
	)
	require.NoError(t, err)

	for name, content := range files {
		data, err := os.ReadFile(filepath.Join(saveTo, filepath.FromSlash(name)))
		require.NoError(t, err, name)
		assert.Equal(t, content, string(data), name)
	}

	index, err := os.ReadFile(filepath.Join(saveTo, neocities.IndexFile))
	require.NoError(t, err)
	assert.Equal(t, neocities.DefaultIndexHTML, index)

	info, err := os.Stat(filepath.Join(saveTo, "img", "icons"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NotEmpty(t, progress)
	last := progress[len(progress)-1]
	assert.Equal(t, last.Total, last.Done)
}

func TestE2E_UploadRejected(t *testing.T) {
	srv := startServer(t)
	client := srv.passwordClient(t)
	ctx := context.Background()

	dir := writeTree(t, map[string]string{"ok.html": "ok"})

	_, err := client.UploadFiles(ctx, []clientcli.FileMapping{
		{LocalPath: filepath.Join(dir, "ok.html"), RemotePath: "../escape.html"},
	})
	requireAPIError(t, err, http.StatusBadRequest, "invalid_path")

	_, err = client.UploadFiles(ctx, []clientcli.FileMapping{
		{LocalPath: filepath.Join(dir, "ok.html"), RemotePath: "virus.exe"},
	})
	requireAPIError(t, err, http.StatusBadRequest, "invalid_file_type")
}
