package utils

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Image uploads are restricted to a small MIME allow-list and a 5MB cap.
// Files are written under the configured upload directory with a random
// name; the returned path is what gets stored in the database and served
// back to clients.

const MaxUploadBytes = 5 * 1024 * 1024

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

var (
	ErrUploadTooLarge   = errors.New("image exceeds 5MB limit")
	ErrUploadBadType    = errors.New("unsupported image type")
	ErrUploadUnreadable = errors.New("could not read uploaded file")
)

// ValidateImageHeader checks size and declared content type without
// opening the file.  It returns the file extension to use for storage.
func ValidateImageHeader(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxUploadBytes {
		return "", ErrUploadTooLarge
	}
	ext, ok := allowedImageTypes[fh.Header.Get("Content-Type")]
	if !ok {
		return "", ErrUploadBadType
	}
	return ext, nil
}

// SaveImage validates and persists one uploaded image under dir, returning
// the stored relative path.  The directory is created on first use.
func SaveImage(fh *multipart.FileHeader, dir string) (string, error) {
	ext, err := ValidateImageHeader(fh)
	if err != nil {
		return "", err
	}
	src, err := fh.Open()
	if err != nil {
		return "", ErrUploadUnreadable
	}
	defer src.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	// Copy with a hard cap so a lying Content-Length cannot blow the limit.
	n, err := io.Copy(dst, io.LimitReader(src, MaxUploadBytes+1))
	if err != nil {
		os.Remove(path)
		return "", err
	}
	if n > MaxUploadBytes {
		os.Remove(path)
		return "", ErrUploadTooLarge
	}
	return path, nil
}
