// Package document loads input files for the summarizer and measures text.
package document

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"docsum/internal/domain"
)

// Extensions lists the supported file extensions.
var Extensions = []string{".txt", ".md", ".markdown", ".pdf"}

// Load reads a text, markdown or PDF file.
func Load(path string) (domain.Document, error) {
	var (
		content string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		var data []byte
		data, err = os.ReadFile(path)
		if err == nil && !utf8.Valid(data) {
			err = fmt.Errorf("%s is not valid UTF-8", path)
		}
		content = string(data)
	case ".pdf":
		content, err = loadPDF(path)
	default:
		return domain.Document{}, fmt.Errorf("unsupported file type %q (want one of %s)", filepath.Ext(path), strings.Join(Extensions, ", "))
	}
	if err != nil {
		return domain.Document{}, err
	}
	return domain.Document{ID: hashString(path), Path: path, Content: content}, nil
}

// Read loads a document from r, e.g. standard input.
func Read(name string, r io.Reader) (domain.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Document{}, err
	}
	return domain.Document{ID: hashString(name + "\x00" + string(data)), Path: name, Content: string(data)}, nil
}

func loadPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()
	text, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(text); err != nil {
		return "", fmt.Errorf("read pdf text %s: %w", path, err)
	}
	return buf.String(), nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

// Metrics are simple size measures of a text.
type Metrics struct {
	Words      int `json:"words"`
	Characters int `json:"characters"`
	Paragraphs int `json:"paragraphs"`
}

// Measure counts whitespace-separated words, runes and non-empty paragraphs.
func Measure(text string) Metrics {
	paragraphs := 0
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}
	return Metrics{
		Words:      len(strings.Fields(text)),
		Characters: utf8.RuneCountInString(text),
		Paragraphs: paragraphs,
	}
}

// Reduction returns the relative word-count reduction from source to summary, in percent.
func Reduction(source, summary Metrics) float64 {
	if source.Words == 0 {
		return 0
	}
	return 100 * float64(source.Words-summary.Words) / float64(source.Words)
}
