package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Supported formats. JPEG files normalize to "jpg".
const (
	FormatPDF = "pdf"
	FormatPNG = "png"
	FormatJPG = "jpg"
	FormatTXT = "txt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoText            = errors.New("no usable text extracted")
)

// Input describes an uploaded file to extract text from.
type Input struct {
	Filename string
	Format   string
	Content  []byte
}

// Extractor converts raw file bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, in Input) (string, error)
}

// OCR recognizes text in an image. Implemented by the Tesseract engine;
// kept as an interface so extraction dispatch is testable without cgo calls.
type OCR interface {
	Recognize(ctx context.Context, image []byte, languages []string) (string, error)
}

// FormatFromFilename maps a filename extension to a supported format tag.
func FormatFromFilename(filename string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch ext {
	case "pdf":
		return FormatPDF, nil
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPG, nil
	case "txt":
		return FormatTXT, nil
	default:
		return "", fmt.Errorf("%w: .%s", ErrUnsupportedFormat, ext)
	}
}

// TextExtractor dispatches extraction by format: PDFs get a page-by-page
// text pass, images go through OCR, and text files are read directly.
type TextExtractor struct {
	ocr       OCR
	languages []string
}

// New builds a TextExtractor backed by the Tesseract OCR engine.
func New(languages []string) *TextExtractor {
	return &TextExtractor{ocr: NewTesseract(), languages: languages}
}

// NewWithOCR builds a TextExtractor with a custom OCR implementation.
func NewWithOCR(ocr OCR, languages []string) *TextExtractor {
	return &TextExtractor{ocr: ocr, languages: languages}
}

func (e *TextExtractor) Extract(ctx context.Context, in Input) (string, error) {
	switch in.Format {
	case FormatPDF:
		text, err := extractPDF(in.Content)
		if err != nil {
			return "", fmt.Errorf("unreadable PDF file: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("%w from PDF", ErrNoText)
		}
		return text, nil

	case FormatPNG, FormatJPG:
		text, err := e.ocr.Recognize(ctx, in.Content, e.languages)
		if err != nil {
			return "", fmt.Errorf("OCR failed: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("%w from image", ErrNoText)
		}
		return text, nil

	case FormatTXT:
		if !utf8.Valid(in.Content) {
			return "", fmt.Errorf("text file is not valid UTF-8")
		}
		text := string(in.Content)
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("%w from text file", ErrNoText)
		}
		return text, nil

	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, in.Format)
	}
}
