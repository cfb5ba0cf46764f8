package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Text converts a fetched document into plain text. PDF payloads go through
// the PDF extractor; everything else is treated as UTF-8 text.
func Text(data []byte) (string, error) {
	if isPDF(data) {
		return pdfText(data)
	}
	return CleanText(string(data)), nil
}

func isPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	out, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	return CleanText(string(out)), nil
}

// CleanText trims each line and drops empty ones, collapsing the extracted
// text while preserving line structure.
func CleanText(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, "\n")
}
