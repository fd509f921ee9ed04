package relay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// TokenQueryParam is the query parameter carrying the upload token.
const TokenQueryParam = "v"

// TokenVerifier checks upload tokens.
type TokenVerifier interface {
	Verify(name string, size int64, token string) error
}

// Signer computes and verifies upload tokens with a secret shared with the
// issuing messaging server.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer for the given shared secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the hex encoded HMAC-SHA256 of "<name> <size>".
func (s *Signer) Sign(name string, size int64) string {
	return hex.EncodeToString(hmacSHA256(s.secret, []byte(tokenPayload(name, size))))
}

// Verify returns an error wrapping ErrUnauthorized unless token is the token
// for name and size. The comparison runs in constant time.
func (s *Signer) Verify(name string, size int64, token string) error {
	if token == "" {
		return fmt.Errorf("missing token: %w", ErrUnauthorized)
	}

	if size < 0 {
		return fmt.Errorf("unknown content length: %w", ErrUnauthorized)
	}

	expected := s.Sign(name, size)
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return fmt.Errorf("token mismatch: %w", ErrUnauthorized)
	}

	return nil
}

// UploadURL builds the PUT URL an issuing server hands out for name and size.
// baseURL is the relay's public mount point, e.g. "https://share.example.com/upload/".
func (s *Signer) UploadURL(baseURL, name string, size int64) string {
	query := url.Values{TokenQueryParam: []string{s.Sign(name, size)}}
	return FileURL(baseURL, name) + "?" + query.Encode()
}

// FileURL returns the URL name is served at below baseURL. Each path segment
// of name is escaped separately so "/" keeps separating segments.
func FileURL(baseURL, name string) string {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	segments := strings.Split(name, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}

	return baseURL + strings.Join(segments, "/")
}

func tokenPayload(name string, size int64) string {
	return name + " " + strconv.FormatInt(size, 10)
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}
