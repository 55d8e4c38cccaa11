package neocities_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/sagarc03/neocities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type SpySiteRepo struct {
	mock.Mock
}

func (s *SpySiteRepo) Get(ctx context.Context, sitename string) (neocities.Site, error) {
	args := s.Called(ctx, sitename)
	return args.Get(0).(neocities.Site), args.Error(1)
}

func (s *SpySiteRepo) GetByAPIKey(ctx context.Context, apiKey string) (neocities.Site, error) {
	args := s.Called(ctx, apiKey)
	return args.Get(0).(neocities.Site), args.Error(1)
}

func (s *SpySiteRepo) Create(ctx context.Context, site neocities.Site) (neocities.Site, error) {
	args := s.Called(ctx, site)
	return args.Get(0).(neocities.Site), args.Error(1)
}

func (s *SpySiteRepo) List(ctx context.Context) ([]neocities.Site, error) {
	args := s.Called(ctx)
	return args.Get(0).([]neocities.Site), args.Error(1)
}

func (s *SpySiteRepo) SetAPIKey(ctx context.Context, sitename, apiKey string) error {
	return s.Called(ctx, sitename, apiKey).Error(0)
}

func (s *SpySiteRepo) Touch(ctx context.Context, sitename string, at time.Time) error {
	return s.Called(ctx, sitename, at).Error(0)
}

func (s *SpySiteRepo) RecordHit(ctx context.Context, sitename string) error {
	return s.Called(ctx, sitename).Error(0)
}

type SpyFileStorage struct {
	mock.Mock
}

func (s *SpyFileStorage) Get(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	args := s.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadSeekCloser), args.Error(1)
}

func (s *SpyFileStorage) Stat(ctx context.Context, path string) (fs.FileInfo, error) {
	args := s.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(fs.FileInfo), args.Error(1)
}

func (s *SpyFileStorage) Write(ctx context.Context, path string, content io.Reader) (neocities.SaveResult, error) {
	args := s.Called(ctx, path, content)
	return args.Get(0).(neocities.SaveResult), args.Error(1)
}

func (s *SpyFileStorage) Delete(ctx context.Context, path string) error {
	return s.Called(ctx, path).Error(0)
}

func (s *SpyFileStorage) List(ctx context.Context, dir string) ([]neocities.FileEntry, error) {
	args := s.Called(ctx, dir)
	return args.Get(0).([]neocities.FileEntry), args.Error(1)
}

type fakeInfo struct {
	fs.FileInfo
	dir bool
}

func (f fakeInfo) IsDir() bool { return f.dir }

type readSeekNopCloser struct {
	io.ReadSeeker
}

func (r readSeekNopCloser) Close() error { return nil }

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *SpySiteRepo, storage *SpyFileStorage) *neocities.SiteService {
	return neocities.NewSiteService(repo, storage, neocities.ServiceConfig{
		BcryptCost: bcrypt.MinCost,
		Now:        func() time.Time { return fixedNow },
	})
}

func TestSiteService_CreateSite(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds index.html", func(t *testing.T) {
		repo := new(SpySiteRepo)
		storage := new(SpyFileStorage)

		repo.On("Create", ctx, mock.MatchedBy(func(s neocities.Site) bool {
			return s.Sitename == "demo" &&
				bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte("secret")) == nil
		})).Return(neocities.Site{Sitename: "demo", CreatedAt: fixedNow}, nil)
		storage.On("Write", ctx, "demo/index.html", mock.Anything).
			Return(neocities.SaveResult{BytesWritten: int64(len(neocities.DefaultIndexHTML))}, nil)

		site, err := newTestService(repo, storage).CreateSite(ctx, neocities.NewSite{Sitename: "demo", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, "demo", site.Sitename)

		repo.AssertExpectations(t)
		storage.AssertExpectations(t)
	})

	t.Run("invalid sitename", func(t *testing.T) {
		_, err := newTestService(new(SpySiteRepo), new(SpyFileStorage)).
			CreateSite(ctx, neocities.NewSite{Sitename: "Not Valid", Password: "x"})
		assert.ErrorIs(t, err, neocities.ErrInvalidInput)
	})

	t.Run("empty password", func(t *testing.T) {
		_, err := newTestService(new(SpySiteRepo), new(SpyFileStorage)).
			CreateSite(ctx, neocities.NewSite{Sitename: "demo"})
		assert.ErrorIs(t, err, neocities.ErrInvalidInput)
	})

	t.Run("taken", func(t *testing.T) {
		repo := new(SpySiteRepo)
		repo.On("Create", ctx, mock.Anything).Return(neocities.Site{}, neocities.ErrSiteExists)

		_, err := newTestService(repo, new(SpyFileStorage)).
			CreateSite(ctx, neocities.NewSite{Sitename: "demo", Password: "x"})
		assert.ErrorIs(t, err, neocities.ErrSiteExists)
	})
}

func TestSiteService_Authenticate(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	site := neocities.Site{Sitename: "demo", PasswordHash: string(hash), APIKey: "k1"}

	repo := new(SpySiteRepo)
	repo.On("Get", ctx, "demo").Return(site, nil)
	repo.On("Get", ctx, "ghost").Return(neocities.Site{}, neocities.ErrNotFound)
	repo.On("GetByAPIKey", ctx, "k1").Return(site, nil)
	repo.On("GetByAPIKey", ctx, "nope").Return(neocities.Site{}, neocities.ErrNotFound)

	svc := newTestService(repo, new(SpyFileStorage))

	got, err := svc.AuthenticatePassword(ctx, "demo", "secret")
	require.NoError(t, err)
	assert.Equal(t, "demo", got.Sitename)

	_, err = svc.AuthenticatePassword(ctx, "demo", "wrong")
	assert.ErrorIs(t, err, neocities.ErrUnauthorized)

	_, err = svc.AuthenticatePassword(ctx, "ghost", "secret")
	assert.ErrorIs(t, err, neocities.ErrUnauthorized)

	got, err = svc.AuthenticateKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "demo", got.Sitename)

	_, err = svc.AuthenticateKey(ctx, "nope")
	assert.ErrorIs(t, err, neocities.ErrUnauthorized)

	_, err = svc.AuthenticateKey(ctx, "")
	assert.ErrorIs(t, err, neocities.ErrUnauthorized)
}

func TestSiteService_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("writes every file and touches the site", func(t *testing.T) {
		repo := new(SpySiteRepo)
		storage := new(SpyFileStorage)

		storage.On("Write", ctx, "demo/index.html", mock.Anything).Return(neocities.SaveResult{BytesWritten: 5}, nil)
		storage.On("Write", ctx, "demo/css/site.css", mock.Anything).Return(neocities.SaveResult{BytesWritten: 3}, nil)
		repo.On("Touch", ctx, "demo", fixedNow).Return(nil)

		err := newTestService(repo, storage).Upload(ctx, "demo", []neocities.UploadFile{
			{Path: "index.html", Content: strings.NewReader("hello")},
			{Path: "css/site.css", Content: strings.NewReader("a{}")},
		})
		require.NoError(t, err)

		repo.AssertExpectations(t)
		storage.AssertExpectations(t)
	})

	t.Run("rejects before writing anything", func(t *testing.T) {
		tt := []struct {
			Name string
			Path string
			Want error
		}{
			{Name: "bad extension", Path: "tool.exe", Want: neocities.ErrInvalidFileType},
			{Name: "bad path", Path: "../escape.html", Want: neocities.ErrInvalidInput},
		}

		for _, tc := range tt {
			t.Run(tc.Name, func(t *testing.T) {
				storage := new(SpyFileStorage)
				err := newTestService(new(SpySiteRepo), storage).Upload(ctx, "demo", []neocities.UploadFile{
					{Path: "index.html", Content: strings.NewReader("ok")},
					{Path: tc.Path, Content: strings.NewReader("bad")},
				})
				assert.ErrorIs(t, err, tc.Want)
				storage.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("storage failure is internal", func(t *testing.T) {
		repo := new(SpySiteRepo)
		storage := new(SpyFileStorage)
		storage.On("Write", ctx, "demo/index.html", mock.Anything).Return(neocities.SaveResult{}, errors.New("disk full"))

		err := newTestService(repo, storage).Upload(ctx, "demo", []neocities.UploadFile{
			{Path: "index.html", Content: strings.NewReader("hello")},
		})
		assert.ErrorIs(t, err, neocities.ErrInternal)
		repo.AssertNotCalled(t, "Touch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no files", func(t *testing.T) {
		err := newTestService(new(SpySiteRepo), new(SpyFileStorage)).Upload(ctx, "demo", nil)
		assert.ErrorIs(t, err, neocities.ErrMissingFiles)
	})
}

func TestSiteService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("skips names below a deleted directory", func(t *testing.T) {
		repo := new(SpySiteRepo)
		storage := new(SpyFileStorage)

		storage.On("Stat", ctx, "demo/blog").Return(fakeInfo{dir: true}, nil)
		storage.On("Stat", ctx, "demo/blog/post.html").Return(fakeInfo{}, nil)
		storage.On("Stat", ctx, "demo/about.html").Return(fakeInfo{}, nil)
		storage.On("Delete", ctx, "demo/blog").Return(nil).Once()
		storage.On("Delete", ctx, "demo/about.html").Return(nil).Once()
		repo.On("Touch", ctx, "demo", fixedNow).Return(nil)

		err := newTestService(repo, storage).Delete(ctx, "demo", []string{"blog", "blog/post.html", "about.html"})
		require.NoError(t, err)

		storage.AssertExpectations(t)
		storage.AssertNotCalled(t, "Delete", ctx, "demo/blog/post.html")
	})

	t.Run("index.html is protected", func(t *testing.T) {
		storage := new(SpyFileStorage)
		storage.On("Stat", ctx, "demo/about.html").Return(fakeInfo{}, nil)

		err := newTestService(new(SpySiteRepo), storage).Delete(ctx, "demo", []string{"about.html", "index.html"})
		assert.ErrorIs(t, err, neocities.ErrCannotDeleteIndex)
		storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing file", func(t *testing.T) {
		storage := new(SpyFileStorage)
		storage.On("Stat", ctx, "demo/ghost.html").Return(nil, neocities.ErrNotFound)

		err := newTestService(new(SpySiteRepo), storage).Delete(ctx, "demo", []string{"ghost.html"})
		assert.ErrorIs(t, err, neocities.ErrMissingFiles)
	})

	t.Run("empty list", func(t *testing.T) {
		err := newTestService(new(SpySiteRepo), new(SpyFileStorage)).Delete(ctx, "demo", nil)
		assert.ErrorIs(t, err, neocities.ErrMissingFiles)
	})
}

func TestSiteService_List(t *testing.T) {
	ctx := context.Background()
	storage := new(SpyFileStorage)
	storage.On("List", ctx, "demo/blog").Return([]neocities.FileEntry{
		{Path: "post.html", Size: 10},
		{Path: "img", IsDirectory: true},
	}, nil)

	entries, err := newTestService(new(SpySiteRepo), storage).List(ctx, "demo", "/blog/")
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "blog/post.html", entries[0].Path)
	assert.Equal(t, "blog/img", entries[1].Path)

	_, err = newTestService(new(SpySiteRepo), storage).List(ctx, "demo", "../other")
	assert.ErrorIs(t, err, neocities.ErrInvalidInput)
}

func TestSiteService_APIKey(t *testing.T) {
	ctx := context.Background()

	t.Run("existing key", func(t *testing.T) {
		repo := new(SpySiteRepo)
		repo.On("Get", ctx, "demo").Return(neocities.Site{Sitename: "demo", APIKey: "abc"}, nil)

		key, err := newTestService(repo, new(SpyFileStorage)).APIKey(ctx, "demo")
		require.NoError(t, err)
		assert.Equal(t, "abc", key)
		repo.AssertNotCalled(t, "SetAPIKey", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("generated on first use", func(t *testing.T) {
		repo := new(SpySiteRepo)
		repo.On("Get", ctx, "demo").Return(neocities.Site{Sitename: "demo"}, nil)
		repo.On("SetAPIKey", ctx, "demo", mock.AnythingOfType("string")).Return(nil)

		key, err := newTestService(repo, new(SpyFileStorage)).APIKey(ctx, "demo")
		require.NoError(t, err)
		assert.Len(t, key, 32)
		repo.AssertExpectations(t)
	})
}

func TestSiteService_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("directory falls back to index.html", func(t *testing.T) {
		repo := new(SpySiteRepo)
		storage := new(SpyFileStorage)

		storage.On("Stat", ctx, "demo").Return(fakeInfo{dir: true}, nil)
		storage.On("Stat", ctx, "demo/index.html").Return(fakeInfo{}, nil)
		storage.On("Get", ctx, "demo/index.html").Return(readSeekNopCloser{bytes.NewReader([]byte("hi"))}, nil)
		repo.On("RecordHit", ctx, "demo").Return(nil)

		f, _, err := newTestService(repo, storage).Open(ctx, "demo", "")
		require.NoError(t, err)
		defer func() { _ = f.Close() }()

		body, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "hi", string(body))
		repo.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		storage := new(SpyFileStorage)
		storage.On("Stat", ctx, "demo/nope.html").Return(nil, neocities.ErrNotFound)

		_, _, err := newTestService(new(SpySiteRepo), storage).Open(ctx, "demo", "nope.html")
		assert.ErrorIs(t, err, neocities.ErrNotFound)
	})

	t.Run("invalid sitename", func(t *testing.T) {
		_, _, err := newTestService(new(SpySiteRepo), new(SpyFileStorage)).Open(ctx, "../etc", "passwd")
		assert.ErrorIs(t, err, neocities.ErrNotFound)
	})
}
