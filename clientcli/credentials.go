package clientcli

import (
	"net/http"
	"os"

	"github.com/sagarc03/neocities"
)

// Environment variables consulted when a credential is not given explicitly.
const (
	EnvAPIKey   = "NEOCITIES_API_KEY"
	EnvUsername = "NEOCITIES_USERNAME"
	EnvPassword = "NEOCITIES_PASSWORD"
)

// AuthMode identifies the active credential variant.
type AuthMode int

const (
	AuthBearer AuthMode = iota + 1
	AuthBasic
)

func (m AuthMode) String() string {
	switch m {
	case AuthBearer:
		return "bearer"
	case AuthBasic:
		return "basic"
	default:
		return "none"
	}
}

// Credentials is either a bearer token or a username/password pair. The zero
// value is unusable; build one with BearerToken, BasicAuth or
// ResolveCredentials.
type Credentials struct {
	mode     AuthMode
	token    string
	username string
	password string
}

// BearerToken returns API key credentials.
func BearerToken(token string) Credentials {
	return Credentials{mode: AuthBearer, token: token}
}

// BasicAuth returns username/password credentials.
func BasicAuth(username, password string) Credentials {
	return Credentials{mode: AuthBasic, username: username, password: password}
}

// Mode reports which variant is active.
func (c Credentials) Mode() AuthMode {
	return c.mode
}

// Username returns the basic auth username, empty for bearer credentials.
func (c Credentials) Username() string {
	return c.username
}

// Apply sets exactly one authentication scheme on req.
func (c Credentials) Apply(req *http.Request) {
	switch c.mode {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+c.token)
	case AuthBasic:
		req.SetBasicAuth(c.username, c.password)
	}
}

// LookupEnvFunc matches os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// ResolveCredentials picks the authentication mode. Each of apiKey, username
// and password falls back to its environment variable independently when
// empty. An API key wins over a username/password pair.
//
// Returns neocities.ErrCredentialsRequired when neither resolves.
func ResolveCredentials(apiKey, username, password string, lookup LookupEnvFunc) (Credentials, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	apiKey = orEnv(apiKey, EnvAPIKey, lookup)
	if apiKey != "" {
		return BearerToken(apiKey), nil
	}

	username = orEnv(username, EnvUsername, lookup)
	password = orEnv(password, EnvPassword, lookup)
	if username != "" && password != "" {
		return BasicAuth(username, password), nil
	}

	return Credentials{}, neocities.ErrCredentialsRequired
}

func orEnv(explicit, key string, lookup LookupEnvFunc) string {
	if explicit != "" {
		return explicit
	}
	v, _ := lookup(key)
	return v
}
