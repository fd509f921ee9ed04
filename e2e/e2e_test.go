package e2e_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/sagarc03/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func put(t *testing.T, url string, body []byte) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func do(t *testing.T, method, url string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, http.NoBody)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// TestE2E_UploadDownload covers the lifecycle of one file against the built server.
func TestE2E_UploadDownload(t *testing.T) {
	storageDir := t.TempDir()
	baseURL := startServer(t, ServerConfig{StoragePath: storageDir})

	signer := relay.NewSigner(testSecret)
	name := "uuid-1/hello world.txt"
	content := []byte("hello world")
	uploadURL := signer.UploadURL(baseURL, name, int64(len(content)))

	t.Run("GET before upload is 404", func(t *testing.T) {
		resp := do(t, http.MethodGet, relay.FileURL(baseURL, name))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("PUT with wrong secret is 403", func(t *testing.T) {
		wrong := relay.NewSigner("wrong").UploadURL(baseURL, name, int64(len(content)))
		resp := put(t, wrong, content)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("PUT without token is 400", func(t *testing.T) {
		resp := put(t, relay.FileURL(baseURL, name), content)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("PUT stores the file", func(t *testing.T) {
		resp := put(t, uploadURL, content)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

		sum := sha256.Sum256([]byte(name))
		stored, err := os.ReadFile(filepath.Join(storageDir, "store-"+hex.EncodeToString(sum[:])))
		require.NoError(t, err)
		assert.Equal(t, content, stored)
	})

	t.Run("second PUT is 409", func(t *testing.T) {
		resp := put(t, uploadURL, []byte("HELLO WORLD"))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("GET returns the content", func(t *testing.T) {
		resp := do(t, http.MethodGet, relay.FileURL(baseURL, name))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, content, body)
		assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
		assert.Equal(t, "attachment", resp.Header.Get("Content-Disposition"))
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	})

	t.Run("HEAD returns headers only", func(t *testing.T) {
		resp := do(t, http.MethodHead, relay.FileURL(baseURL, name))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, strconv.Itoa(len(content)), resp.Header.Get("Content-Length"))
	})

	t.Run("OPTIONS answers preflight", func(t *testing.T) {
		resp := do(t, http.MethodOptions, relay.FileURL(baseURL, name))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "OPTIONS, HEAD, GET, PUT", resp.Header.Get("Access-Control-Allow-Methods"))
	})

	t.Run("DELETE is 400", func(t *testing.T) {
		resp := do(t, http.MethodDelete, relay.FileURL(baseURL, name))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

// TestE2E_LargeUpload sends a body spanning many chunks.
func TestE2E_LargeUpload(t *testing.T) {
	baseURL := startServer(t, ServerConfig{})

	content := bytes.Repeat([]byte("0123456789abcdef"), 64*1024)
	name := "uuid-2/blob.bin"

	resp := put(t, relay.NewSigner(testSecret).UploadURL(baseURL, name, int64(len(content))), content)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	get := do(t, http.MethodGet, relay.FileURL(baseURL, name))
	require.Equal(t, http.StatusOK, get.StatusCode)

	body, err := io.ReadAll(get.Body)
	require.NoError(t, err)
	assert.Equal(t, len(content), len(body))
	assert.True(t, bytes.Equal(content, body))
}

// TestE2E_RestrictedOrigins checks that a configured origin list is enforced.
func TestE2E_RestrictedOrigins(t *testing.T) {
	baseURL := startServer(t, ServerConfig{AllowedOrigins: []string{"https://chat.example.com"}})

	req, err := http.NewRequest(http.MethodGet, relay.FileURL(baseURL, "missing.txt"), http.NoBody)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://chat.example.com")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "https://chat.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example.com")
	other, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = other.Body.Close() }()

	assert.Empty(t, other.Header.Get("Access-Control-Allow-Origin"))
}

// TestE2E_CLI drives the server with the relay-cli binary.
func TestE2E_CLI(t *testing.T) {
	baseURL := startServer(t, ServerConfig{})

	localDir := t.TempDir()
	localPath := filepath.Join(localDir, "report.txt")
	require.NoError(t, os.WriteFile(localPath, []byte("quarterly numbers"), 0o600))

	out, err := runCLI(t, baseURL, "upload", localPath, "uuid-3/report.txt")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Uploaded: uuid-3/report.txt")

	out, err = runCLI(t, baseURL, "upload", localPath, "uuid-3/report.txt")
	require.Error(t, err)
	assert.Contains(t, out, "409")

	out, err = runCLI(t, baseURL, "info", "-q", "uuid-3/report.txt")
	require.NoError(t, err, out)
	assert.Equal(t, "17\n", out)

	downloadPath := filepath.Join(localDir, "copy.txt")
	out, err = runCLI(t, baseURL, "download", "uuid-3/report.txt", downloadPath)
	require.NoError(t, err, out)

	downloaded, err := os.ReadFile(downloadPath)
	require.NoError(t, err)
	assert.Equal(t, "quarterly numbers", string(downloaded))

	out, err = runCLI(t, baseURL, "download", "--stdout", "uuid-3/report.txt")
	require.NoError(t, err, out)
	assert.Equal(t, "quarterly numbers", out)
}

// TestE2E_SignedURLFromCLI checks that relay-cli sign produces a URL the server accepts.
func TestE2E_SignedURLFromCLI(t *testing.T) {
	baseURL := startServer(t, ServerConfig{})

	content := []byte("signed elsewhere")
	out, err := runCLI(t, baseURL, "sign", "uuid-4/a.txt", strconv.Itoa(len(content)))
	require.NoError(t, err, out)

	resp := put(t, string(bytes.TrimSpace([]byte(out))), content)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
