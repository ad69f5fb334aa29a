package extract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockExtractor is a mock implementation of Extractor using testify/mock.
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, in Input) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

// MockOCR is a mock implementation of the OCR interface.
type MockOCR struct {
	mock.Mock
}

func (m *MockOCR) Recognize(ctx context.Context, image []byte, languages []string) (string, error) {
	args := m.Called(ctx, image, languages)
	return args.String(0), args.Error(1)
}
