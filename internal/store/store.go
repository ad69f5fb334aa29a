package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Supported document formats.
const (
	FormatPDF = "pdf"
	FormatPNG = "png"
	FormatJPG = "jpg"
	FormatTXT = "txt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrSummaryNotFound  = errors.New("summary not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrAnalysisNotFound = errors.New("analysis not found")
)

type Document struct {
	ID        uuid.UUID
	Filename  string
	Format    string
	Status    DocumentStatus
	Text      string
	CharCount int
	Error     string
	CreatedAt time.Time
}

type Answer struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Question   string
	Answer     string
	CreatedAt  time.Time
}

type Summary struct {
	DocumentID uuid.UUID
	Summary    string
	KeyPoints  []string
}

// IntermediaryAnswer is the per-document result within a holistic analysis.
type IntermediaryAnswer struct {
	DocumentID uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
	Answer     string    `json:"answer"`
}

type Analysis struct {
	ID             uuid.UUID
	Prompt         string
	FinalSynthesis string
	Intermediary   []IntermediaryAnswer
	CreatedAt      time.Time
}

// Store defines persistence contract; an external DB implementation can replace this.
type Store interface {
	CreateDocument(ctx context.Context, filename, format string) (Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (Document, error)
	ListDocuments(ctx context.Context) ([]Document, error)
	UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error
	SaveText(ctx context.Context, id uuid.UUID, text string) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
	SaveAnswer(ctx context.Context, docID uuid.UUID, question, answer string) (Answer, error)
	LatestAnswer(ctx context.Context, docID uuid.UUID) (Answer, error)
	SaveSummary(ctx context.Context, docID uuid.UUID, summary Summary) error
	GetSummary(ctx context.Context, docID uuid.UUID) (Summary, error)
	SaveAnalysis(ctx context.Context, analysis Analysis) (Analysis, error)
	LatestAnalysis(ctx context.Context) (Analysis, error)
}
