package extractor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// ocrLang is the Tesseract language pack for the statements.
const ocrLang = "spa"

// IsOCRAvailable reports whether the external OCR toolchain is installed.
func IsOCRAvailable() bool {
	_, err := exec.LookPath("tesseract")
	return err == nil
}

// ExtractImageText runs Tesseract on a single statement image (jpg/png)
// and returns its raw text. This is the input path for the savings
// account, which arrives as phone photos of the printed statement.
func ExtractImageText(filePath string) (string, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return "", fmt.Errorf("tesseract not available (install tesseract-ocr and the %s language pack): %v", ocrLang, err)
	}

	// PSM 4 = single column of text of variable sizes, a good fit for
	// statement tables.
	out, err := exec.Command("tesseract", filePath, "stdout", "-l", ocrLang, "--psm", "4").Output()
	if err != nil {
		return "", fmt.Errorf("tesseract failed for %s: %v", filePath, err)
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", fmt.Errorf("tesseract produced no text for %s", filePath)
	}
	return text, nil
}

// ExtractTextOCR converts PDF pages to images and OCRs each of them.
// This handles scanned PDFs with no text layer.
// Requires: pdftoppm (poppler-utils) and tesseract (tesseract-ocr).
func ExtractTextOCR(filePath string) ([]string, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("pdftoppm not available (install poppler-utils): %v", err)
	}
	if _, err := exec.LookPath("tesseract"); err != nil {
		return nil, fmt.Errorf("tesseract not available (install tesseract-ocr): %v", err)
	}

	tmpDir, err := os.MkdirTemp("", "eecc-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// 300 DPI is enough for the statement fonts
	imgPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.Command("pdftoppm", "-r", "300", "-png", filePath, imgPrefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %v (output: %s)", err, string(out))
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %v", err)
	}

	var imageFiles []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			imageFiles = append(imageFiles, filepath.Join(tmpDir, e.Name()))
		}
	}
	sort.Strings(imageFiles)

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}

	var pages []string
	for _, imgFile := range imageFiles {
		text, err := ExtractImageText(imgFile)
		if err != nil {
			// some pages may still work
			fmt.Fprintf(os.Stderr, "ocr warning for %s: %v\n", imgFile, err)
			continue
		}
		pages = append(pages, text)
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("OCR produced no text from %d page images", len(imageFiles))
	}

	return pages, nil
}
