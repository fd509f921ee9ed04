package clientcli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sagarc03/relay"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Minute

// Client performs operations against a relay.
type Client struct {
	config     *Config
	httpClient *http.Client
	signer     *relay.Signer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	// Apply defaults
	cfg = cfg.WithDefaults()

	// Normalize endpoint URL (single trailing slash)
	endpoint := strings.TrimRight(cfg.Endpoint, "/") + "/"

	c := &Client{
		config: &Config{
			Endpoint: endpoint,
			Secret:   cfg.Secret,
		},
		httpClient: &http.Client{Timeout: DefaultTimeout},
		signer:     relay.NewSigner(cfg.Secret),
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Sign returns the upload URL for size bytes stored as name.
func (c *Client) Sign(name string, size int64) string {
	return c.signer.UploadURL(c.config.Endpoint, NormalizeName(name), size)
}

// Upload uploads file(s) to the relay.
// For recursive uploads, walks directory and preserves relative paths below RemotePath.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}
	if err := c.config.ValidateWithAuth(); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	if opts.Recursive {
		return c.uploadRecursive(ctx, opts)
	}

	remotePath := opts.RemotePath
	if remotePath == "" {
		remotePath = filepath.Base(opts.LocalPath)
	}

	result, err := c.uploadSingle(ctx, opts.LocalPath, remotePath)
	if err != nil {
		return nil, err
	}
	return []UploadResult{result}, nil
}

// uploadRecursive walks a directory and uploads all files.
func (c *Client) uploadRecursive(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	info, err := os.Stat(opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("stat local path: %w", err)
	}

	if !info.IsDir() {
		// Not a directory, just upload single file
		remotePath := opts.RemotePath
		if remotePath == "" {
			remotePath = filepath.Base(opts.LocalPath)
		}
		result, uploadErr := c.uploadSingle(ctx, opts.LocalPath, remotePath)
		if uploadErr != nil {
			return nil, uploadErr
		}
		return []UploadResult{result}, nil
	}

	var results []UploadResult
	baseDir := opts.LocalPath
	remotePrefix := strings.TrimSuffix(opts.RemotePath, "/")

	walkErr := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, fileErr error) error {
		if fileErr != nil {
			return fileErr
		}

		// Check context cancellation
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if !d.Type().IsRegular() {
			return nil
		}

		relPath, relErr := filepath.Rel(baseDir, path)
		if relErr != nil {
			results = append(results, UploadResult{
				LocalPath: path,
				Err:       fmt.Errorf("calculate relative path: %w", relErr),
			})
			return nil
		}

		remotePath := filepath.ToSlash(relPath)
		if remotePrefix != "" {
			remotePath = remotePrefix + "/" + remotePath
		}

		result, uploadErr := c.uploadSingle(ctx, path, remotePath)
		if uploadErr != nil {
			result = UploadResult{
				LocalPath:  path,
				RemotePath: remotePath,
				Err:        uploadErr,
			}
		}
		results = append(results, result)
		return nil
	})

	if walkErr != nil {
		return results, fmt.Errorf("walk directory: %w", walkErr)
	}

	return results, nil
}

// uploadSingle uploads a single file to the relay.
func (c *Client) uploadSingle(ctx context.Context, localPath, remotePath string) (UploadResult, error) {
	file, err := os.Open(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return UploadResult{}, fmt.Errorf("stat file: %w", err)
	}

	name := NormalizeName(remotePath)
	if name == "" {
		return UploadResult{}, fmt.Errorf("upload %s: %w", localPath, ErrEmptyPath)
	}

	// The token covers the exact byte count, so the length must be sent as is.
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.signer.UploadURL(c.config.Endpoint, name, info.Size()), file)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	req.ContentLength = info.Size()
	if info.Size() == 0 {
		req.Body = http.NoBody
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return UploadResult{}, parseServerError(resp.StatusCode, body)
	}

	return UploadResult{
		LocalPath:  localPath,
		RemotePath: name,
		URL:        c.FileURL(name),
		Size:       info.Size(),
	}, nil
}

// FileURL returns the download URL for a logical name.
func (c *Client) FileURL(name string) string {
	return relay.FileURL(c.config.Endpoint, NormalizeName(name))
}

// Info fetches the headers of a stored file with a HEAD request.
func (c *Client) Info(ctx context.Context, remotePath string) (*FileInfo, error) {
	name := NormalizeName(remotePath)
	if name == "" {
		return nil, fmt.Errorf("info: %w", ErrEmptyPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.FileURL(name), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, parseServerError(resp.StatusCode, nil)
	}

	return &FileInfo{
		RemotePath:  name,
		URL:         c.FileURL(name),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}, nil
}

// Download downloads a file from the relay.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	name := NormalizeName(opts.RemotePath)
	if name == "" {
		return nil, nil, fmt.Errorf("download: %w", ErrEmptyPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.FileURL(name), http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	result := &DownloadResult{
		RemotePath:  name,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}

	// If stdout requested, return the body for the caller to handle
	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = filepath.Base(filepath.FromSlash(name))
	}
	result.LocalPath = localPath

	// Create parent directories if needed
	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	file, createErr := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if createErr != nil {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("create file: %w", createErr)
	}

	written, copyErr := io.Copy(file, resp.Body)
	_ = resp.Body.Close()
	if copyErr != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}

	if closeErr := file.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("close file: %w", closeErr)
	}

	if resp.ContentLength >= 0 && written != resp.ContentLength {
		return nil, nil, fmt.Errorf("write file: got %d of %d bytes", written, resp.ContentLength)
	}

	result.Size = written
	return result, nil, nil
}

// HasUploadErrors returns true if any upload failed.
func HasUploadErrors(results []UploadResult) bool {
	for i := range results {
		if results[i].Err != nil {
			return true
		}
	}
	return false
}

// NormalizeName strips leading slashes from a logical name. The relay takes
// names verbatim, so nothing else is changed.
func NormalizeName(name string) string {
	return strings.TrimLeft(name, "/")
}

// parseServerError builds the error for a non-200 response.
func parseServerError(statusCode int, body []byte) error {
	return &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}
}

// APIError represents an error response from the relay.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	msg := "server error: " + strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode)
	if e.Body != "" {
		msg += " - " + e.Body
	}
	return msg
}

// Unwrap maps the status code back to the relay error it stands for,
// so callers can use errors.Is(err, relay.ErrConflict).
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusForbidden:
		return relay.ErrUnauthorized
	case http.StatusConflict:
		return relay.ErrConflict
	case http.StatusInsufficientStorage:
		return relay.ErrInsufficientStorage
	case http.StatusNotFound:
		return relay.ErrNotFound
	case http.StatusBadRequest:
		return relay.ErrBadRequest
	case http.StatusInternalServerError:
		return relay.ErrInternal
	default:
		return nil
	}
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
