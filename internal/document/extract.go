// Package document implements C13: PDF/TXT extraction, used by the upload
// HTTP handler and by ragctl's upload command. The core ingest pipeline always receives
// pre-extracted UTF-8 text and never imports this package, per the
// spec's explicit non-goal on extraction libraries. Grounded on
// ledongthuc/pdf, the PDF dependency already present in the retrieval
// pack's go.mod surface.
package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText extracts UTF-8 text from raw file bytes based on contentType.
// "application/pdf" runs the PDF reader; anything else is treated as
// plain text.
func ExtractText(data []byte, contentType string) (string, error) {
	if strings.Contains(contentType, "pdf") {
		return extractPDF(data)
	}
	return string(data), nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// ReaderFrom wraps raw bytes for callers that need an io.Reader. Nothing
// in this repository calls it.
func ReaderFrom(data []byte) io.Reader { return bytes.NewReader(data) }
