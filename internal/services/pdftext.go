package services

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFTextService reads the embedded text layer of a born-digital PDF. When a
// diploma PDF was generated rather than scanned, its text layer is exact and
// OCR can be skipped entirely.
type PDFTextService interface {
	ExtractText(filePath string) (string, error)
}

type pdfTextService struct{}

func NewPDFTextService() PDFTextService {
	return &pdfTextService{}
}

// ExtractText returns the text layer of page 1, or an error when the PDF has
// no usable text layer (scanned documents), in which case the caller falls
// back to OCR.
func (p *pdfTextService) ExtractText(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	if r.NumPage() < 1 {
		return "", fmt.Errorf("PDF has no pages")
	}

	page := r.Page(1)
	if page.V.IsNull() {
		return "", fmt.Errorf("page 1 is empty")
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("failed to read text layer: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content found in PDF")
	}

	return CleanText(text), nil
}

// CleanText normalizes extracted text: trims lines and drops blank ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
