package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/boardstack/boardstack/pkg/errors"
)

// Blob categories, used as subdirectories under the blob root.
const (
	BlobPDF         = "pdfs"
	BlobHandwriting = "handwriting"
)

// BlobStore stores raw uploads (PDF bytes, handwriting captures) on disk
// and maps them to public URL paths served by the HTTP server.
type BlobStore struct {
	root       string
	publicBase string
}

// NewBlobStore creates the blob root if needed. publicBase is the URL
// prefix blobs are served under, e.g. "/files".
func NewBlobStore(root, publicBase string) (*BlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "creating blob directory")
	}
	return &BlobStore{root: root, publicBase: strings.TrimSuffix(publicBase, "/")}, nil
}

// Root returns the blob root directory, for serving it over HTTP.
func (b *BlobStore) Root() string { return b.root }

// Save writes data under category/name and returns the storage path
// relative to the blob root. name must be a plain filename: anything with
// path separators or traversal components is rejected, since names are
// derived from client-supplied identifiers.
func (b *BlobStore) Save(category, name string, data []byte) (string, error) {
	if !safeName(name) {
		return "", errors.New(errors.ErrCodeInvalidInput, "unsafe blob name: "+name)
	}
	dir := filepath.Join(b.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorage, "creating category directory")
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorage, "writing blob")
	}
	return filepath.ToSlash(filepath.Join(category, name)), nil
}

// safeName reports whether name stays inside its category directory.
func safeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return name == filepath.Clean(name)
}

// Read loads a blob by its storage path.
func (b *BlobStore) Read(storagePath string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(b.root, filepath.FromSlash(storagePath)))
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeNotFound, "blob not found: "+storagePath)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "reading blob")
	}
	return data, nil
}

// PublicURL maps a storage path to the URL path it is served under.
func (b *BlobStore) PublicURL(storagePath string) string {
	return b.publicBase + "/" + storagePath
}
