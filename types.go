package neocities

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Result values carried by every API response.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// TimeLayout is the timestamp format used by the API.
const TimeLayout = "Mon, 02 Jan 2006 15:04:05 -0700"

// RFC1123Time is a time encoded as "Sun, 05 Dec 2021 12:13:28 -0000".
type RFC1123Time struct{ time.Time }

// NewRFC1123Time truncates t to whole seconds in UTC.
func NewRFC1123Time(t time.Time) RFC1123Time {
	return RFC1123Time{t.UTC().Truncate(time.Second)}
}

func (t RFC1123Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format("Mon, 02 Jan 2006 15:04:05") + " -0000")
}

func (t *RFC1123Time) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("decode time: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := time.Parse(TimeLayout, s)
	if err != nil {
		return fmt.Errorf("decode time %q: %w", s, err)
	}
	t.Time = parsed.UTC()
	return nil
}

// FileEntry is one entry of a site listing. Directory markers carry no size
// or hash.
type FileEntry struct {
	Path        string      `json:"path"`
	IsDirectory bool        `json:"is_directory"`
	Size        int64       `json:"size,omitempty"`
	UpdatedAt   RFC1123Time `json:"updated_at"`
	SHA1Hash    string      `json:"sha1_hash,omitempty"`
}

// SiteInfo is the public metadata of a site.
type SiteInfo struct {
	Sitename       string       `json:"sitename"`
	Views          int64        `json:"views"`
	Hits           int64        `json:"hits"`
	CreatedAt      RFC1123Time  `json:"created_at"`
	LastUpdated    *RFC1123Time `json:"last_updated"`
	Domain         *string      `json:"domain"`
	Tags           []string     `json:"tags"`
	LatestIPFSHash *string      `json:"latest_ipfs_hash"`
}

// Response is a decoded API response. The typed fields cover what callers
// inspect; Raw keeps every field the server sent.
type Response struct {
	Result    string      `json:"result"`
	ErrorType string      `json:"error_type,omitempty"`
	Message   string      `json:"message,omitempty"`
	Files     []FileEntry `json:"files,omitempty"`
	Info      *SiteInfo   `json:"info,omitempty"`
	APIKey    string      `json:"api_key,omitempty"`

	Raw map[string]any `json:"-"`
}

// responseFields breaks the MarshalJSON/UnmarshalJSON recursion.
type responseFields Response

func (r *Response) UnmarshalJSON(b []byte) error {
	var fields responseFields
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*r = Response(fields)
	r.Raw = raw
	return nil
}

func (r Response) MarshalJSON() ([]byte, error) {
	if r.Raw != nil {
		return json.Marshal(r.Raw)
	}
	return json.Marshal(responseFields(r))
}

// Success reports whether the body says result == "success".
func (r *Response) Success() bool {
	return r.Result == ResultSuccess
}

// SuccessResponse builds a success body with an optional message.
func SuccessResponse(message string) *Response {
	r := &Response{Result: ResultSuccess, Message: message}
	r.Raw = map[string]any{"result": ResultSuccess}
	if message != "" {
		r.Raw["message"] = message
	}
	return r
}

// ErrorResponse builds an error body.
func ErrorResponse(errorType, message string) *Response {
	return &Response{
		Result:    ResultError,
		ErrorType: errorType,
		Message:   message,
		Raw: map[string]any{
			"result":     ResultError,
			"error_type": errorType,
			"message":    message,
		},
	}
}

// Site is a hosted site account.
type Site struct {
	Sitename     string
	PasswordHash string
	APIKey       string
	Views        int64
	Hits         int64
	Domain       string
	Tags         []string
	IPFSHash     string
	CreatedAt    time.Time
	LastUpdated  *time.Time
}

// Info converts the account into its public metadata.
func (s Site) Info() SiteInfo {
	info := SiteInfo{
		Sitename:  s.Sitename,
		Views:     s.Views,
		Hits:      s.Hits,
		CreatedAt: NewRFC1123Time(s.CreatedAt),
		Tags:      s.Tags,
	}
	if info.Tags == nil {
		info.Tags = []string{}
	}
	if s.LastUpdated != nil {
		lu := NewRFC1123Time(*s.LastUpdated)
		info.LastUpdated = &lu
	}
	if s.Domain != "" {
		domain := s.Domain
		info.Domain = &domain
	}
	if s.IPFSHash != "" {
		hash := s.IPFSHash
		info.LatestIPFSHash = &hash
	}
	return info
}

// NewSite holds the input for creating a site.
type NewSite struct {
	Sitename string
	Password string
	APIKey   string // optional, generated on first request when empty
	Domain   string
	Tags     []string
}

// UploadFile is one file of an upload request.
type UploadFile struct {
	Path    string
	Content io.Reader
}

type SaveResult struct {
	BytesWritten int64
	SHA1         string
}

// Tables holds configurable table names for the site account store.
type Tables struct {
	Sites string `mapstructure:"sites"`
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if strings.TrimSpace(t.Sites) == "" {
		return fmt.Errorf("validate tables: %w: sites table name cannot be empty", ErrInvalidInput)
	}

	if !IsValidTableName(t.Sites) {
		return fmt.Errorf("validate tables: %w: invalid sites table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", ErrInvalidInput, t.Sites)
	}

	return nil
}
