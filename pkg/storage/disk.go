// Package storage abstracts where Bazaar keeps generated files — invoice
// PDFs, product images and their thumbnails.
//
// Two drivers are available:
//   - "local" — local filesystem (default)
//   - "s3"    — S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// The driver is chosen by the STORAGE_DISK config key:
//
//	disk, err := storage.FromConfig()
//	disk.Put("invoices/invoice_17.pdf", data)
//	url := disk.URL("invoices/invoice_17.pdf")
package storage

import (
	"fmt"
	"io"

	"github.com/shashiranjanraj/bazaar/config"
)

// Disk is the filesystem driver interface.
type Disk interface {
	// Put writes content to path, creating parents as needed.
	Put(path string, content []byte) error

	// PutStream writes from r to path.
	PutStream(path string, r io.Reader) error

	// Get returns the full content of the file at path.
	Get(path string) ([]byte, error)

	// GetStream returns a ReadCloser for the file. Caller must close it.
	GetStream(path string) (io.ReadCloser, error)

	// Exists reports whether a file exists at path.
	Exists(path string) bool

	// Delete removes a file. Deleting an absent file is not an error.
	Delete(path string) error

	// URL returns the public URL for path.
	URL(path string) string
}

// FromConfig builds the disk named by STORAGE_DISK.
func FromConfig() (Disk, error) {
	switch name := config.StorageDisk(); name {
	case "local":
		return NewLocal(config.StorageLocalRoot(), config.StorageURL()), nil
	case "s3":
		return NewS3()
	default:
		return nil, fmt.Errorf("storage: unknown STORAGE_DISK %q (supported: local, s3)", name)
	}
}
