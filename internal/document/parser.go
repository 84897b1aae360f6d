package document

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// accepted upload extensions; anything else is rejected at ingest time
var acceptedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// Supported reports whether the filename carries an accepted resume
// document extension.
func Supported(filename string) bool {
	return acceptedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// TextExtractor turns raw document bytes into plain text.
type TextExtractor interface {
	Text(filename string, data []byte) (string, error)
}

// Parser extracts text from resume documents held in memory. PDF and
// DOCX are decoded natively; legacy DOC goes through docconv. Plain text
// passes through, which keeps the rule-based extractors testable without
// binary fixtures.
type Parser struct{}

func NewParser() Parser {
	return Parser{}
}

func (Parser) Text(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return extractPDFText(data)
	case ".docx":
		return extractDocxText(data)
	case ".doc":
		res, err := docconv.Convert(bytes.NewReader(data), "application/msword", true)
		if err != nil {
			return "", fmt.Errorf("failed to parse doc: %w", err)
		}
		return res.Body, nil
	case ".txt":
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	var textBuilder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, _ := page.GetPlainText(nil)
		textBuilder.WriteString(text)
	}
	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return doc.Editable().GetContent(), nil
}
