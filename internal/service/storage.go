package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
)

// FileStorage abstracts the object storage gateway. Destroy is best-effort;
// callers log failures instead of aborting.
type FileStorage interface {
	Upload(ctx context.Context, folder, name string, reader io.Reader) (string, error)
	Destroy(ctx context.Context, fileURL string) error
}

// ErrUnsupportedFileType flags an upload whose detected MIME type is not in
// the allowed set for its slot.
var ErrUnsupportedFileType = errors.New("unsupported file type")

var (
	documentMimeTypes = []string{"application/pdf", "image/jpeg", "image/png"}
	imageMimeTypes    = []string{"image/jpeg", "image/png", "image/webp"}
)

func validateDocumentFile(file *multipart.FileHeader) error {
	return validateFileType(file, documentMimeTypes)
}

func validateImageFile(file *multipart.FileHeader) error {
	return validateFileType(file, imageMimeTypes)
}

func validateFileType(file *multipart.FileHeader, allowed []string) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	for _, a := range allowed {
		if mime.Is(a) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedFileType, mime.String())
}
