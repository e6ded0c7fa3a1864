package parsers

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// PDFExtractor handles extracting text from PDF files
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDF text extractor
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractText extracts text from a PDF file using multiple fallback methods
func (e *PDFExtractor) ExtractText(filePath string) (string, error) {
	// Method 1: Try pdftotext (poppler-utils)
	if text, err := e.extractWithPdfToText(filePath); err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}

	// Method 2: Try ps2ascii if available
	if text, err := e.extractWithPs2Ascii(filePath); err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}

	return "", fmt.Errorf("failed to extract text from PDF using all available methods")
}

// extractWithPdfToText uses pdftotext command (most reliable)
func (e *PDFExtractor) extractWithPdfToText(filePath string) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("pdftotext not available: %v", err)
	}

	tempFile := filePath + ".txt"
	defer os.Remove(tempFile)

	cmd := exec.Command("pdftotext", "-layout", filePath, tempFile)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed: %v", err)
	}

	content, err := os.ReadFile(tempFile)
	if err != nil {
		return "", fmt.Errorf("failed to read extracted text: %v", err)
	}

	return string(content), nil
}

// extractWithPs2Ascii uses ps2ascii as another fallback
func (e *PDFExtractor) extractWithPs2Ascii(filePath string) (string, error) {
	if _, err := exec.LookPath("ps2ascii"); err != nil {
		return "", fmt.Errorf("ps2ascii not available: %v", err)
	}

	cmd := exec.Command("ps2ascii", filePath)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("ps2ascii failed: %v", err)
	}

	return string(output), nil
}
