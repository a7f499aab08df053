// Package extract converts uploaded resume files into plain text.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/jobgenie/jobgenie/internal/domain"
)

// Text extracts plain text from an uploaded resume. The format is chosen by
// the filename extension: .pdf and .docx are parsed, anything else is treated
// as plain UTF-8 text. Binary uploads of unknown formats are rejected with
// domain.ErrUnsupportedFile.
func Text(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return pdfText(data)
	case ".docx":
		return docxText(data)
	default:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s: %w", filename, domain.ErrUnsupportedFile)
		}
		return string(data), nil
	}
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	defer doc.Close()

	return doc.Editable().GetContent(), nil
}
