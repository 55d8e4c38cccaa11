package clientcli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sagarc03/neocities"
)

// Formatter formats results for output.
type Formatter interface {
	FormatResponse(w io.Writer, action string, resp *neocities.Response) error
	FormatDownload(w io.Writer, p Progress) error
	FormatList(w io.Writer, resp *neocities.Response) error
	FormatInfo(w io.Writer, resp *neocities.Response) error
	FormatKey(w io.Writer, key string) error
	FormatExtensions(w io.Writer, exts []string) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
	Long  bool // list with size and update time
}

// FormatResponse prints the outcome of a mutating call.
func (f *HumanFormatter) FormatResponse(w io.Writer, action string, resp *neocities.Response) error {
	if f.Quiet || resp == nil {
		return nil
	}
	if !resp.Success() {
		_, _ = fmt.Fprintf(w, "%s: %s (%s)\n", action, resp.Message, resp.ErrorType)
		return nil
	}
	if resp.Message != "" {
		_, _ = fmt.Fprintf(w, "%s: %s\n", action, resp.Message)
		return nil
	}
	_, _ = fmt.Fprintf(w, "%s: done\n", action)
	return nil
}

// FormatDownload prints one processed listing entry.
func (f *HumanFormatter) FormatDownload(w io.Writer, p Progress) error {
	if f.Quiet {
		return nil
	}
	if p.Directory {
		_, _ = fmt.Fprintf(w, "[%d/%d] %s/\n", p.Done, p.Total, p.Entry.Path)
		return nil
	}
	_, _ = fmt.Fprintf(w, "[%d/%d] %s (%s)\n", p.Done, p.Total, p.Entry.Path, formatSize(p.Bytes))
	return nil
}

// FormatList prints one path per line, or a table when Long is set.
func (f *HumanFormatter) FormatList(w io.Writer, resp *neocities.Response) error {
	var files []neocities.FileEntry
	if resp != nil {
		files = resp.Files
	}

	if !f.Long {
		for i := range files {
			_, _ = fmt.Fprintln(w, files[i].Path)
		}
		return nil
	}

	if len(files) == 0 {
		_, _ = fmt.Fprintln(w, "No files found")
		return nil
	}

	maxPathLen := 4 // "PATH"
	for i := range files {
		if len(files[i].Path) > maxPathLen {
			maxPathLen = len(files[i].Path)
		}
	}
	if maxPathLen > 60 {
		maxPathLen = 60
	}

	_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n", maxPathLen, "PATH", "SIZE", "UPDATED")
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n", strings.Repeat("-", maxPathLen), strings.Repeat("-", 10), strings.Repeat("-", 19))

	var total int64
	for i := range files {
		item := &files[i]
		path := item.Path
		if len(path) > maxPathLen {
			path = path[:maxPathLen-3] + "..."
		}

		size := "DIR"
		if !item.IsDirectory {
			size = formatSize(item.Size)
			total += item.Size
		}

		updated := ""
		if !item.UpdatedAt.IsZero() {
			updated = item.UpdatedAt.Format("2006-01-02 15:04:05")
		}

		_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n", maxPathLen, path, size, updated)
	}

	_, _ = fmt.Fprintf(w, "\n%d entries (%s total)\n", len(files), formatSize(total))
	return nil
}

// FormatInfo prints "key: value" lines in a fixed order.
func (f *HumanFormatter) FormatInfo(w io.Writer, resp *neocities.Response) error {
	if resp == nil || resp.Info == nil {
		return nil
	}
	info := resp.Info

	lines := []struct {
		key, value string
	}{
		{"sitename", info.Sitename},
		{"views", fmt.Sprint(info.Views)},
		{"hits", fmt.Sprint(info.Hits)},
		{"created_at", formatTime(&info.CreatedAt)},
		{"last_updated", formatTime(info.LastUpdated)},
		{"domain", optional(info.Domain)},
		{"tags", strings.Join(info.Tags, ", ")},
		{"latest_ipfs_hash", optional(info.LatestIPFSHash)},
	}

	for _, l := range lines {
		_, _ = fmt.Fprintf(w, "%s: %s\n", l.key, l.value)
	}
	return nil
}

// FormatKey prints the API key alone.
func (f *HumanFormatter) FormatKey(w io.Writer, key string) error {
	_, _ = fmt.Fprintln(w, key)
	return nil
}

// FormatExtensions prints one extension per line.
func (f *HumanFormatter) FormatExtensions(w io.Writer, exts []string) error {
	for _, ext := range exts {
		_, _ = fmt.Fprintln(w, ext)
	}
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

func formatTime(t *neocities.RFC1123Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(neocities.TimeLayout)
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatResponse writes the server's response body as received.
func (f *JSONFormatter) FormatResponse(w io.Writer, _ string, resp *neocities.Response) error {
	return writeJSON(w, resp)
}

// FormatDownload writes one JSON object per processed entry.
func (f *JSONFormatter) FormatDownload(w io.Writer, p Progress) error {
	output := struct {
		Path        string `json:"path"`
		IsDirectory bool   `json:"is_directory"`
		Bytes       int64  `json:"bytes"`
		Done        int    `json:"done"`
		Total       int    `json:"total"`
	}{
		Path:        p.Entry.Path,
		IsDirectory: p.Directory,
		Bytes:       p.Bytes,
		Done:        p.Done,
		Total:       p.Total,
	}

	data, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// FormatList writes the files array exactly as the server sent it.
func (f *JSONFormatter) FormatList(w io.Writer, resp *neocities.Response) error {
	if resp == nil {
		return writeJSON(w, []neocities.FileEntry{})
	}
	if raw, ok := resp.Raw["files"]; ok && raw != nil {
		return writeJSON(w, raw)
	}
	if resp.Files == nil {
		return writeJSON(w, []neocities.FileEntry{})
	}
	return writeJSON(w, resp.Files)
}

// FormatInfo writes the info object exactly as the server sent it.
func (f *JSONFormatter) FormatInfo(w io.Writer, resp *neocities.Response) error {
	if resp == nil {
		return writeJSON(w, nil)
	}
	if raw, ok := resp.Raw["info"]; ok {
		return writeJSON(w, raw)
	}
	return writeJSON(w, resp.Info)
}

// FormatKey writes {"api_key": key}.
func (f *JSONFormatter) FormatKey(w io.Writer, key string) error {
	output := struct {
		APIKey string `json:"api_key"`
	}{
		APIKey: key,
	}
	return writeJSON(w, output)
}

// FormatExtensions writes the extensions as an array.
func (f *JSONFormatter) FormatExtensions(w io.Writer, exts []string) error {
	return writeJSON(w, exts)
}

// FormatError formats an error as JSON. API errors keep their status and
// error type.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error     string `json:"error"`
		Status    int    `json:"status,omitempty"`
		ErrorType string `json:"error_type,omitempty"`
	}{
		Error: err.Error(),
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		output.Status = apiErr.StatusCode
		output.ErrorType = apiErr.ErrorType
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	maxNameLen := 4 // "NAME"
	for i := range profiles {
		if len(profiles[i].Name) > maxNameLen {
			maxNameLen = len(profiles[i].Name)
		}
	}
	if maxNameLen > 20 {
		maxNameLen = 20
	}

	_, _ = fmt.Fprintf(w, "  %-*s  %-6s  %s\n", maxNameLen, "NAME", "AUTH", "CREDENTIAL")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 6), strings.Repeat("-", 20))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		auth, credential := profileAuth(p, showSecrets)
		_, _ = fmt.Fprintf(w, "%s %-*s  %-6s  %s\n", marker, maxNameLen, name, auth, credential)
	}

	return nil
}

// profileAuth names the credential kind a profile stores and a printable
// form of it.
func profileAuth(p *Profile, showSecrets bool) (string, string) {
	if p.APIKey != "" {
		return AuthBearer.String(), maskSecret(p.APIKey, showSecrets)
	}
	if p.Username != "" {
		return AuthBasic.String(), p.Username
	}
	return "none", "(not set)"
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:     %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)

	baseURL := profile.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	_, _ = fmt.Fprintf(w, "Base URL: %s\n", baseURL)
	_, _ = fmt.Fprintf(w, "API Key:  %s\n", maskSecret(profile.APIKey, showSecrets))
	_, _ = fmt.Fprintf(w, "Username: %s\n", orNotSet(profile.Username))
	_, _ = fmt.Fprintf(w, "Password: %s\n", maskSecret(profile.Password, showSecrets))
	return nil
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	type jsonProfile struct {
		Name     string `json:"name"`
		BaseURL  string `json:"base_url,omitempty"`
		APIKey   string `json:"api_key,omitempty"`
		Username string `json:"username,omitempty"`
		Password string `json:"password,omitempty"`
		Default  bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		p := &profiles[i]
		output.Profiles[i] = jsonProfile{
			Name:     p.Name,
			BaseURL:  p.BaseURL,
			APIKey:   maskSecret(p.APIKey, showSecrets),
			Username: p.Username,
			Password: maskSecret(p.Password, showSecrets),
			Default:  p.Name == defaultName,
		}
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	output := struct {
		Name     string `json:"name"`
		BaseURL  string `json:"base_url"`
		APIKey   string `json:"api_key"`
		Username string `json:"username"`
		Password string `json:"password"`
		Default  bool   `json:"default"`
	}{
		Name:     profile.Name,
		BaseURL:  profile.BaseURL,
		APIKey:   maskSecret(profile.APIKey, showSecrets),
		Username: profile.Username,
		Password: maskSecret(profile.Password, showSecrets),
		Default:  isDefault,
	}

	return writeJSON(w, output)
}

// maskSecret masks a secret string, showing only first 4 and last 4 characters.
// If showSecrets is true, returns the original value.
// If the secret is too short, returns all asterisks.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
