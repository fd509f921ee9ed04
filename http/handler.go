package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sagarc03/relay"
)

const (
	DefaultBasePath  = "/upload/"
	DefaultChunkSize = 8 * 1024
)

type Service interface {
	Upload(ctx context.Context, req relay.UploadRequest, content io.Reader) (relay.FileInfo, error)
	Download(ctx context.Context, name string) (relay.FileInfo, io.ReadSeekCloser, error)
}

// CORSConfig restricts cross-origin access. With no origins, or only "*",
// every response carries the wildcard headers.
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int
}

type HandlerConfig struct {
	// BasePath is the mount point; everything after it is the file name.
	BasePath string
	// ChunkSize is the number of bytes written per flush on GET.
	ChunkSize int
	CORS      CORSConfig
}

// Handler serves uploads and downloads for a single base path.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
// Zero values in config are replaced by DefaultBasePath and DefaultChunkSize.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	cfg.BasePath = normalizeBasePath(cfg.BasePath)
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	return &Handler{
		config:  cfg,
		service: service,
	}
}

func normalizeBasePath(p string) string {
	if p == "" {
		return DefaultBasePath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// Router returns an http.Handler serving OPTIONS, HEAD, GET and PUT below the
// base path. Any other method answers 400.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	pattern := h.config.BasePath + "*"

	r.Group(func(r chi.Router) {
		r.Use(CORSMiddleware(h.config.CORS))
		r.Options(pattern, h.handleOptions)
		r.Head(pattern, h.handleHead)
		r.Get(pattern, h.handleGet)
		r.Put(pattern, h.handlePut)
	})

	return r
}

// fileName returns the decoded path below the base path.
func (h *Handler) fileName(r *http.Request) string {
	return strings.TrimPrefix(r.URL.Path, h.config.BasePath)
}

func (h *Handler) handleOptions(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleHead(w http.ResponseWriter, r *http.Request) {
	info, content, err := h.service.Download(r.Context(), h.fileName(r))
	if err != nil {
		HandleError(w, err)
		return
	}
	_ = content.Close()

	writeFileHeaders(w, info)
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	info, content, err := h.service.Download(r.Context(), h.fileName(r))
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = content.Close() }()

	rc := http.NewResponseController(w)
	// Large files may take arbitrarily long to transfer.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		slog.Debug("failed to clear write deadline", "error", err)
	}

	writeFileHeaders(w, info)
	w.WriteHeader(http.StatusOK)

	written, err := streamChunks(w, rc, content, h.config.ChunkSize)
	if err != nil {
		slog.Debug("download aborted",
			"key", info.Key,
			"written", written,
			"size", info.Size,
			"error", err,
		)
	}
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has(relay.TokenQueryParam) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	req := relay.UploadRequest{
		Name:  h.fileName(r),
		Size:  r.ContentLength,
		Token: query.Get(relay.TokenQueryParam),
	}

	if _, err := h.service.Upload(r.Context(), req, r.Body); err != nil {
		HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func writeFileHeaders(w http.ResponseWriter, info relay.FileInfo) {
	header := w.Header()
	header.Set("X-Content-Type-Options", "nosniff")
	header.Set("Content-Type", info.ContentType)
	header.Set("Content-Disposition", "attachment")
	header.Set("Content-Length", strconv.FormatInt(info.Size, 10))
}

// streamChunks copies src to w one chunk at a time, flushing after each
// chunk. The first failed write ends the transfer.
func streamChunks(w io.Writer, rc *http.ResponseController, src io.Reader, chunkSize int) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			wn, err := w.Write(buf[:n])
			written += int64(wn)
			if err != nil {
				return written, err
			}
			if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
				return written, err
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}
