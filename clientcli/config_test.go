package clientcli_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sagarc03/neocities/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_WithDefaults(t *testing.T) {
	t.Run("empty config", func(t *testing.T) {
		cfg := (&clientcli.Config{}).WithDefaults()

		assert.Equal(t, clientcli.DefaultBaseURL, cfg.BaseURL)
		assert.Equal(t, clientcli.DefaultSiteDomain, cfg.SiteDomain)
		assert.Equal(t, clientcli.DefaultTimeout, cfg.Timeout)
	})

	t.Run("keeps set values and does not mutate receiver", func(t *testing.T) {
		orig := &clientcli.Config{BaseURL: "http://localhost:5709/api", Timeout: time.Second}
		cfg := orig.WithDefaults()

		assert.Equal(t, "http://localhost:5709/api", cfg.BaseURL)
		assert.Equal(t, time.Second, cfg.Timeout)
		assert.Empty(t, orig.SiteDomain)
	})
}

func TestConfigFile_Profiles(t *testing.T) {
	cf := &clientcli.ConfigFile{}

	_, err := cf.GetProfile("")
	require.ErrorIs(t, err, clientcli.ErrNoProfiles)

	require.NoError(t, cf.AddProfile(clientcli.Profile{Name: "main", APIKey: "k1"}))
	require.NoError(t, cf.AddProfile(clientcli.Profile{Name: "alt", Username: "alice", Password: "pw"}))
	assert.ErrorIs(t, cf.AddProfile(clientcli.Profile{Name: "main"}), clientcli.ErrProfileExists)

	p, err := cf.GetProfile("")
	require.NoError(t, err)
	assert.Equal(t, "main", p.Name, "first profile is the default when none is marked")

	require.NoError(t, cf.SetDefault("alt"))
	p, err = cf.GetDefaultProfile()
	require.NoError(t, err)
	assert.Equal(t, "alt", p.Name)

	require.NoError(t, cf.UpdateProfile(clientcli.Profile{Name: "alt", APIKey: "k2", Default: true}))
	p, err = cf.GetProfile("alt")
	require.NoError(t, err)
	assert.Equal(t, "k2", p.APIKey)

	assert.Equal(t, []string{"main", "alt"}, cf.ProfileNames())

	require.NoError(t, cf.RemoveProfile("main"))
	_, err = cf.GetProfile("main")
	assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
	assert.ErrorIs(t, cf.RemoveProfile("main"), clientcli.ErrProfileNotFound)
	assert.ErrorIs(t, cf.SetDefault("missing"), clientcli.ErrProfileNotFound)
}

func TestConfigFile_SaveLoad(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "config.yaml")
		cf := &clientcli.ConfigFile{Profiles: []clientcli.Profile{
			{Name: "main", APIKey: "k1", Default: true},
			{Name: "local", Username: "alice", Password: "pw", BaseURL: "http://localhost:5709/api"},
		}}

		require.NoError(t, cf.Save(path))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		loaded, err := clientcli.LoadConfigFile(path)
		require.NoError(t, err)
		assert.Equal(t, cf, loaded)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := clientcli.LoadConfigFile(filepath.Join(t.TempDir(), "none.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("profiles: [\n"), 0o600))

		_, err := clientcli.LoadConfigFile(path)
		assert.Error(t, err)
	})
}

func TestConfigFromProfile(t *testing.T) {
	assert.Equal(t, &clientcli.Config{}, clientcli.ConfigFromProfile(nil))

	cfg := clientcli.ConfigFromProfile(&clientcli.Profile{
		Name:     "main",
		APIKey:   "k",
		Username: "alice",
		Password: "pw",
		BaseURL:  "http://localhost:5709/api",
	})
	assert.Equal(t, &clientcli.Config{
		APIKey:   "k",
		Username: "alice",
		Password: "pw",
		BaseURL:  "http://localhost:5709/api",
	}, cfg)
}

func TestMergeConfig(t *testing.T) {
	tests := []struct {
		name     string
		configs  []*clientcli.Config
		expected *clientcli.Config
	}{
		{
			name:     "empty configs",
			configs:  []*clientcli.Config{},
			expected: &clientcli.Config{},
		},
		{
			name: "later config overrides",
			configs: []*clientcli.Config{
				{BaseURL: "http://a.com", APIKey: "key1", Username: "alice"},
				{BaseURL: "http://b.com", APIKey: "key2"},
			},
			expected: &clientcli.Config{BaseURL: "http://b.com", APIKey: "key2", Username: "alice"},
		},
		{
			name: "empty strings do not override",
			configs: []*clientcli.Config{
				{APIKey: "key1", Password: "pw", Timeout: time.Second},
				{APIKey: "", Password: "", Timeout: 0},
			},
			expected: &clientcli.Config{APIKey: "key1", Password: "pw", Timeout: time.Second},
		},
		{
			name: "nil config is skipped and verbose is sticky",
			configs: []*clientcli.Config{
				{Verbose: true},
				nil,
				{SiteDomain: "example.test"},
			},
			expected: &clientcli.Config{SiteDomain: "example.test", Verbose: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := clientcli.MergeConfig(tt.configs...)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(clientcli.EnvAPIKey, "env-key")
	t.Setenv(clientcli.EnvUsername, "env-user")
	t.Setenv(clientcli.EnvPassword, "env-pass")
	t.Setenv("NEOCITIES_BASE_URL", "http://test.example.com/api")
	t.Setenv("NEOCITIES_PROFILE", "alt")
	t.Setenv("NEOCITIES_CONFIG", "/tmp/neocities.yaml")

	cfg := clientcli.ConfigFromEnv()

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "env-user", cfg.Username)
	assert.Equal(t, "env-pass", cfg.Password)
	assert.Equal(t, "http://test.example.com/api", cfg.BaseURL)
	assert.Equal(t, "alt", clientcli.ProfileFromEnv())
	assert.Equal(t, "/tmp/neocities.yaml", clientcli.ConfigPathFromEnv())
}
