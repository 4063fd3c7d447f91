package validation

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/username/finbook/backend/src/logger"
)

// AllowedClientContentTypes is a map for quick lookup of allowed
// client-declared MIME types for statement uploads.
var AllowedClientContentTypes = map[string]bool{
	"application/pdf":          true,
	"application/octet-stream": true, // some browsers fall back to this; magic bytes decide
}

var pdfMagic = []byte("%PDF-")

// ValidateClientContentType checks the Content-Type header provided by
// the client.
func ValidateClientContentType(contentType string) error {
	if allowed, exists := AllowedClientContentTypes[strings.ToLower(contentType)]; !exists || !allowed {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("client-declared file type '%s' is not allowed for statement upload", contentType)
	}
	return nil
}

// ValidateFileContentByMagicBytes checks the actual file content
// signature. The parser service only accepts PDFs, so anything without
// a PDF header is rejected before the upload is forwarded. It returns
// the detected content type and resets the read pointer.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}

	// Reset so the upload forwarded to the parser contains the whole file.
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}

	if !bytes.HasPrefix(buffer[:n], pdfMagic) {
		detected := strings.ToLower(strings.Split(http.DetectContentType(buffer[:n]), ";")[0])
		logger.L.Warn("Uploaded file is not a PDF", "detectedContentType", detected)
		return detected, fmt.Errorf("detected file content type '%s' is not a PDF", detected)
	}

	logger.L.Debug("File content validated as PDF")
	return "application/pdf", nil
}
