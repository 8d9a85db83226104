package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

func extractPDFText(reader *bytes.Reader) (text string, pages int, err error) {
	// ledongthuc/pdf panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, pages, err = "", 0, fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return "", 0, fmt.Errorf("failed to read pdf: %w", err)
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}
	return textBuilder.String(), numPages, nil
}
