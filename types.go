package relay

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// StorageKeyPrefix prefixes every key the relay stores.
const StorageKeyPrefix = "store-"

// StorageKey derives the name a logical filename is stored under.
// The result depends only on name.
func StorageKey(name string) string {
	sum := sha256.Sum256([]byte(name))
	return StorageKeyPrefix + hex.EncodeToString(sum[:])
}

// IsStorageKey reports whether key has the shape produced by StorageKey.
func IsStorageKey(key string) bool {
	digest, ok := strings.CutPrefix(key, StorageKeyPrefix)
	if !ok || len(digest) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(digest)
	return err == nil
}

// FileInfo describes a stored file.
type FileInfo struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size_bytes"`
	ContentType string    `json:"content_type,omitempty"`
	ModTime     time.Time `json:"mod_time"`
}

// UploadRequest carries what the relay needs to authorize and store an upload.
type UploadRequest struct {
	// Name is the logical filename taken from the request path.
	Name string
	// Size is the declared Content-Length, or -1 when unknown.
	Size int64
	// Token is the value of the "v" query parameter.
	Token string
}
