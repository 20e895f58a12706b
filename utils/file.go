// utils/file.go
package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrFileTooLarge = errors.New("file too large")
	ErrNotImage     = errors.New("file is not an image")
)

var extPattern = regexp.MustCompile(`^[a-z0-9]{1,5}$`)

// Upload is an uploaded image held in memory.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReadImageUpload reads an uploaded file, enforcing maxBytes and an image/* type.
// The declared type must be an image; the sniffed type must agree unless the
// format is one net/http cannot sniff (e.g. HEIC), in which case the declared type is kept.
func ReadImageUpload(fileHeader *multipart.FileHeader, maxBytes int64) (*Upload, error) {
	if fileHeader.Size > maxBytes {
		return nil, ErrFileTooLarge
	}
	declared := strings.ToLower(strings.TrimSpace(fileHeader.Header.Get("Content-Type")))
	if !strings.HasPrefix(declared, "image/") {
		return nil, ErrNotImage
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrFileTooLarge
	}

	contentType := declared
	sniffed := http.DetectContentType(data)
	switch {
	case strings.HasPrefix(sniffed, "image/"):
		contentType = sniffed
	case sniffed == "application/octet-stream":
	default:
		return nil, ErrNotImage
	}

	return &Upload{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// ResolveExtension picks the object extension: the original file's, else the
// MIME subtype, else "png".
func ResolveExtension(filename, contentType string) string {
	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")); extPattern.MatchString(ext) {
		return ext
	}
	if _, subtype, ok := strings.Cut(contentType, "/"); ok {
		subtype, _, _ = strings.Cut(subtype, ";")
		subtype, _, _ = strings.Cut(subtype, "+")
		subtype = strings.ToLower(strings.TrimSpace(subtype))
		if extPattern.MatchString(subtype) {
			return subtype
		}
	}
	return "png"
}

// NewObjectName returns "<folder>/<uuid>.<ext>".
func NewObjectName(folder, ext string) string {
	return folder + "/" + uuid.NewString() + "." + ext
}
