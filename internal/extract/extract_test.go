package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
)

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
		wantErr  bool
	}{
		{"invoice.pdf", FormatPDF, false},
		{"scan.PNG", FormatPNG, false},
		{"photo.jpg", FormatJPG, false},
		{"photo.jpeg", FormatJPG, false},
		{"notes.txt", FormatTXT, false},
		{"REPORT.PDF", FormatPDF, false},
		{"contract.docx", "", true},
		{"contract.doc", "", true},
		{"noextension", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := FormatFromFilename(tt.filename)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromFilename(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("expected ErrUnsupportedFormat, got %v", err)
			}
			if got != tt.want {
				t.Errorf("FormatFromFilename(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestExtractText(t *testing.T) {
	e := NewWithOCR(new(MockOCR), []string{"eng"})
	ctx := context.Background()

	text, err := e.Extract(ctx, Input{Filename: "notes.txt", Format: FormatTXT, Content: []byte("hello world")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello world" {
		t.Errorf("got %q, want %q", text, "hello world")
	}
}

func TestExtractTextInvalidUTF8(t *testing.T) {
	e := NewWithOCR(new(MockOCR), nil)

	_, err := e.Extract(context.Background(), Input{Format: FormatTXT, Content: []byte{0xff, 0xfe, 0xfd}})
	if err == nil {
		t.Fatal("expected error for invalid UTF-8")
	}
}

func TestExtractTextEmpty(t *testing.T) {
	e := NewWithOCR(new(MockOCR), nil)

	_, err := e.Extract(context.Background(), Input{Format: FormatTXT, Content: []byte("   \n\t ")})
	if !errors.Is(err, ErrNoText) {
		t.Errorf("expected ErrNoText, got %v", err)
	}
}

func TestExtractImage(t *testing.T) {
	img := []byte("fake-image-bytes")

	tests := []struct {
		name    string
		ocrText string
		ocrErr  error
		want    string
		wantErr error
	}{
		{"successful OCR", "Recognized line", nil, "Recognized line", nil},
		{"empty OCR output", "", nil, "", ErrNoText},
		{"OCR failure", "", errors.New("tesseract: cannot read image"), "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ocr := new(MockOCR)
			ocr.On("Recognize", mock.Anything, img, []string{"eng"}).Return(tt.ocrText, tt.ocrErr).Once()

			e := NewWithOCR(ocr, []string{"eng"})
			got, err := e.Extract(context.Background(), Input{Format: FormatPNG, Content: img})

			if tt.ocrErr != nil {
				if err == nil || !strings.Contains(err.Error(), tt.ocrErr.Error()) {
					t.Errorf("expected OCR error surfaced, got %v", err)
				}
			} else if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("got %q, want %q", got, tt.want)
				}
			}
			ocr.AssertExpectations(t)
		})
	}
}

func TestExtractPDFGarbage(t *testing.T) {
	e := NewWithOCR(new(MockOCR), nil)

	_, err := e.Extract(context.Background(), Input{Format: FormatPDF, Content: []byte("not a pdf at all")})
	if err == nil {
		t.Fatal("expected error for corrupt PDF")
	}
	if !strings.Contains(err.Error(), "unreadable PDF") {
		t.Errorf("expected unreadable PDF error, got %v", err)
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	e := NewWithOCR(new(MockOCR), nil)

	_, err := e.Extract(context.Background(), Input{Format: "docx", Content: []byte("x")})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
