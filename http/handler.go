package http

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sagarc03/neocities"
)

// Service is the hosting API the handlers serve. *neocities.SiteService
// implements it.
type Service interface {
	Authenticator
	Upload(ctx context.Context, sitename string, files []neocities.UploadFile) error
	Delete(ctx context.Context, sitename string, names []string) error
	List(ctx context.Context, sitename, dir string) ([]neocities.FileEntry, error)
	Info(ctx context.Context, sitename string) (neocities.SiteInfo, error)
	APIKey(ctx context.Context, sitename string) (string, error)
	Open(ctx context.Context, sitename, path string) (io.ReadSeekCloser, fs.FileInfo, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	CORS CORSConfig
	// MaxUploadSize caps the request body of /api/upload; 0 means no limit
	MaxUploadSize int64
}

// Handler provides the hosting API and the public site host.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// maxMemory bounds the multipart parts held in memory; larger parts spill
// to temp files.
const maxMemory = 32 << 20

// Router returns an http.Handler serving /api/* and /site/{sitename}/*.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.NotFound(handleAPINotFound)
		r.MethodNotAllowed(handleAPINotFound)

		r.Get("/info", h.handleInfo)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.service))
			r.Post("/upload", h.handleUpload)
			r.Post("/delete", h.handleDelete)
			r.Get("/list", h.handleList)
			r.Get("/key", h.handleKey)
		})
	})

	r.Get("/site/{sitename}", h.handleSite)
	r.Get("/site/{sitename}/*", h.handleSite)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeDefaultNotFound(w)
	})

	return r
}

func handleAPINotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, ErrorTypeNotFound, "the requested api call does not exist")
}

func mustSite(r *http.Request) neocities.Site {
	site, _ := SiteFromContext(r.Context())
	return site
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.config.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, ErrorTypeTooLarge, "upload is too large")
			return
		}
		if errors.Is(err, http.ErrNotMultipart) {
			WriteError(w, http.StatusBadRequest, ErrorTypeMissingFiles, "no files were uploaded")
			return
		}
		HandleError(w, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files, closeAll, err := uploadFiles(r.MultipartForm)
	defer closeAll()
	if err != nil {
		HandleError(w, err)
		return
	}

	if err := h.service.Upload(r.Context(), mustSite(r).Sitename, files); err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, neocities.SuccessResponse("your file(s) have been successfully uploaded"))
}

// uploadFiles opens every part of the form in field name order. The field
// name is the destination path.
func uploadFiles(form *multipart.Form) ([]neocities.UploadFile, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	names := make([]string, 0, len(form.File))
	for name := range form.File {
		names = append(names, name)
	}
	slices.Sort(names)

	files := make([]neocities.UploadFile, 0, len(names))
	for _, name := range names {
		headers := form.File[name]
		if len(headers) == 0 {
			continue
		}
		// a repeated field keeps the last part
		f, err := headers[len(headers)-1].Open()
		if err != nil {
			return nil, closeAll, err
		}
		opened = append(opened, f)
		files = append(files, neocities.UploadFile{Path: strings.TrimPrefix(name, "/"), Content: f})
	}

	return files, closeAll, nil
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		WriteError(w, http.StatusBadRequest, ErrorTypeMissingFiles, "could not parse form")
		return
	}

	names := r.PostForm["filenames[]"]
	if err := h.service.Delete(r.Context(), mustSite(r).Sitename, names); err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, neocities.SuccessResponse("file(s) have been deleted"))
}

type listResponse struct {
	Result string                `json:"result"`
	Files  []neocities.FileEntry `json:"files"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context(), mustSite(r).Sitename, r.URL.Query().Get("path"))
	if err != nil {
		HandleError(w, err)
		return
	}
	if entries == nil {
		entries = []neocities.FileEntry{}
	}

	_ = WriteJSON(w, http.StatusOK, listResponse{Result: neocities.ResultSuccess, Files: entries})
}

type infoResponse struct {
	Result string             `json:"result"`
	Info   neocities.SiteInfo `json:"info"`
}

// handleInfo is public when the sitename query is set and falls back to the
// authenticated site otherwise.
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	sitename := r.URL.Query().Get("sitename")
	if sitename == "" {
		site, err := Authenticate(r, h.service)
		if err != nil {
			HandleError(w, err)
			return
		}
		sitename = site.Sitename
	}

	info, err := h.service.Info(r.Context(), sitename)
	if err != nil {
		if errors.Is(err, neocities.ErrNotFound) {
			WriteError(w, http.StatusBadRequest, ErrorTypeSiteNotFound, "site not found")
			return
		}
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, infoResponse{Result: neocities.ResultSuccess, Info: info})
}

type keyResponse struct {
	Result string `json:"result"`
	APIKey string `json:"api_key"`
}

func (h *Handler) handleKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.service.APIKey(r.Context(), mustSite(r).Sitename)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, keyResponse{Result: neocities.ResultSuccess, APIKey: key})
}

// handleSite serves the public files of a site. Missing files, bad paths
// and unknown sites all get the HTML 404 page.
func (h *Handler) handleSite(w http.ResponseWriter, r *http.Request) {
	sitename := chi.URLParam(r, "sitename")
	p := chi.URLParam(r, "*")

	content, info, err := h.service.Open(r.Context(), sitename, p)
	if err != nil {
		if errors.Is(err, neocities.ErrNotFound) || errors.Is(err, neocities.ErrInvalidInput) {
			writeDefaultNotFound(w)
			return
		}
		HandleError(w, err)
		return
	}
	defer func() { _ = content.Close() }()

	http.ServeContent(w, r, info.Name(), info.ModTime(), content)
}
