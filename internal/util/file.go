package util

import (
	"bytes"
	"io"
	"net/http"
	"strings"
)

// SniffSpreadsheet checks that the upload looks like an xlsx workbook (a zip
// container) and returns a reader that still yields the sniffed bytes.
func SniffSpreadsheet(reader io.Reader) (io.Reader, error) {
	buffer := make([]byte, 512)
	n, err := io.ReadFull(reader, buffer)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	buffer = buffer[:n]

	mimeType := http.DetectContentType(buffer)
	if !IsSpreadsheet(mimeType) {
		return nil, NewValidationError("invalid file type %s: an .xlsx workbook is required", mimeType)
	}
	return io.MultiReader(bytes.NewReader(buffer), reader), nil
}

func IsSpreadsheet(mimeType string) bool {
	return mimeType == MimeZip || mimeType == MimeXLSX || strings.HasPrefix(mimeType, "application/x-zip")
}
