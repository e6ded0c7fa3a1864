package parsers

import (
	"fmt"
	"strings"

	"baliance.com/gooxml/document"
)

// DocxExtractor handles extracting text from DOCX resumes
type DocxExtractor struct{}

// NewDocxExtractor creates a new DOCX text extractor
func NewDocxExtractor() *DocxExtractor {
	return &DocxExtractor{}
}

// ExtractText reads all paragraph text from a DOCX file
func (e *DocxExtractor) ExtractText(filePath string) (string, error) {
	doc, err := document.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %v", err)
	}

	var sb strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			sb.WriteString(run.Text())
		}
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no text found in docx")
	}
	return text, nil
}
