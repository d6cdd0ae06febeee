package object

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid storage key")
)

// ObjectStore defines the contract for saving and retrieving procedure files.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Provider names the backend ("local", "s3", "minio") for the procedure record.
	Provider() string
}

// ProcedureKey lays files out as <hashed owner>/<procedure id>_<file name>.
func ProcedureKey(ownerID, procedureID, fileName string) (string, error) {
	name, err := sanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(procedureID) == "" {
		return "", fmt.Errorf("%w: empty procedure id", ErrInvalidKey)
	}
	return path.Join(ownerDir(ownerID), procedureID+"_"+name), nil
}

// ownerDir keeps raw user IDs (emails, provider-prefixed subjects) out of keys.
func ownerDir(ownerID string) string {
	sum := sha256.Sum256([]byte(ownerID))
	return hex.EncodeToString(sum[:])
}

func sanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: file name %q", ErrInvalidKey, name)
	}
	s := strings.TrimSpace(name)
	s = strings.NewReplacer("/", "_", "\\", "_").Replace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty file name", ErrInvalidKey)
	}
	return s, nil
}

// CleanKey rejects absolute keys and keys escaping the store root.
func CleanKey(key string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(strings.TrimSpace(key), "\\", "/"))
	if clean == "." || clean == "" || strings.HasPrefix(clean, "/") || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return clean, nil
}
