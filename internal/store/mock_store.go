package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateDocument(ctx context.Context, filename, format string) (Document, error) {
	args := m.Called(ctx, filename, format)
	return args.Get(0).(Document), args.Error(1)
}

func (m *MockStore) GetDocument(ctx context.Context, id uuid.UUID) (Document, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Document), args.Error(1)
}

func (m *MockStore) ListDocuments(ctx context.Context) ([]Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Document), args.Error(1)
}

func (m *MockStore) UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockStore) SaveText(ctx context.Context, id uuid.UUID, text string) error {
	args := m.Called(ctx, id, text)
	return args.Error(0)
}

func (m *MockStore) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}

func (m *MockStore) SaveAnswer(ctx context.Context, docID uuid.UUID, question, answer string) (Answer, error) {
	args := m.Called(ctx, docID, question, answer)
	return args.Get(0).(Answer), args.Error(1)
}

func (m *MockStore) LatestAnswer(ctx context.Context, docID uuid.UUID) (Answer, error) {
	args := m.Called(ctx, docID)
	return args.Get(0).(Answer), args.Error(1)
}

func (m *MockStore) SaveSummary(ctx context.Context, docID uuid.UUID, summary Summary) error {
	args := m.Called(ctx, docID, summary)
	return args.Error(0)
}

func (m *MockStore) GetSummary(ctx context.Context, docID uuid.UUID) (Summary, error) {
	args := m.Called(ctx, docID)
	return args.Get(0).(Summary), args.Error(1)
}

func (m *MockStore) SaveAnalysis(ctx context.Context, analysis Analysis) (Analysis, error) {
	args := m.Called(ctx, analysis)
	return args.Get(0).(Analysis), args.Error(1)
}

func (m *MockStore) LatestAnalysis(ctx context.Context) (Analysis, error) {
	args := m.Called(ctx)
	return args.Get(0).(Analysis), args.Error(1)
}
