package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/ocr"
)

// ErrUnsupportedFormat is returned by ForFile for extensions no parser handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Parser converts raw document bytes into pages of lines.
type Parser interface {
	Parse(r io.Reader, filename string) (*model.Document, error)
}

// LineRecognizer turns a page image into text lines. *ocr.Client satisfies it.
type LineRecognizer interface {
	RecognizeLines(imageData []byte) ([]ocr.Line, error)
}

// Options configures the parsers ForFile returns.
type Options struct {
	FallbackPdftotext bool
	// OCR is used for image input. Nil disables image parsing.
	OCR LineRecognizer
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".json":     true,
	".xml":      true,
	".tetml":    true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".png":      true,
	".jpg":      true,
	".jpeg":     true,
	".tif":      true,
	".tiff":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}, nil
	case ".xml", ".tetml":
		return &TETMLParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		return &ImageParser{OCR: opts.OCR}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
