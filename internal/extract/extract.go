// Package extract reads uploaded PDF, DOCX and plain-text documents into text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "txt"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyDocument     = errors.New("no text could be extracted")
)

// Document is the plain-text content of one uploaded file.
type Document struct {
	Filename string
	Format   Format
	Text     string
	// Pages is only set for PDFs.
	Pages int
}

// DetectFormat picks the document format from the filename extension,
// falling back to the declared MIME type when the extension is unknown.
func DetectFormat(filename, mime string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".txt":
		return FormatText, nil
	}

	// Content-Type headers may carry parameters ("text/plain; charset=utf-8").
	mime, _, _ = strings.Cut(mime, ";")
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case MimePDF:
		return FormatPDF, nil
	case MimeDOCX:
		return FormatDOCX, nil
	case MimeText:
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
}

// Extract converts data into a Document. It returns ErrUnsupportedFormat for
// anything that is not a PDF, DOCX or text file and ErrEmptyDocument when
// the file holds no text.
func Extract(filename, mime string, data []byte) (Document, error) {
	format, err := DetectFormat(filename, mime)
	if err != nil {
		return Document{}, err
	}

	doc := Document{Filename: filename, Format: format}
	switch format {
	case FormatPDF:
		doc.Text, doc.Pages, err = extractPDFText(bytes.NewReader(data))
	case FormatDOCX:
		doc.Text, err = extractDocxText(bytes.NewReader(data))
	case FormatText:
		doc.Text = decodeText(data)
	}
	if err != nil {
		return Document{}, fmt.Errorf("extract %s: %w", filename, err)
	}

	if strings.TrimSpace(doc.Text) == "" {
		return Document{}, fmt.Errorf("%w: %s", ErrEmptyDocument, filename)
	}
	return doc, nil
}

func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), " ")
}
