package report

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"form-agent/internal/store"
)

func TestBuildOneEntryPerDocument(t *testing.T) {
	doc1 := uuid.New()
	doc2 := uuid.New()
	doc3 := uuid.New()

	mockStore := new(store.MockStore)
	mockStore.On("ListDocuments", mock.Anything).Return([]store.Document{
		{ID: doc1, Filename: "invoice.pdf", Format: store.FormatPDF, Status: store.StatusReady, CharCount: 1200},
		{ID: doc2, Filename: "scan.png", Format: store.FormatPNG, Status: store.StatusFailed, Error: "no usable text extracted from image"},
		{ID: doc3, Filename: "invoice.pdf", Format: store.FormatPDF, Status: store.StatusReady, CharCount: 800},
	}, nil).Once()

	mockStore.On("GetSummary", mock.Anything, doc1).
		Return(store.Summary{DocumentID: doc1, Summary: "An invoice.", KeyPoints: []string{"99 EUR"}}, nil).Once()
	mockStore.On("LatestAnswer", mock.Anything, doc1).
		Return(store.Answer{Question: "Total?", Answer: "99 EUR"}, nil).Once()
	mockStore.On("GetSummary", mock.Anything, doc3).
		Return(store.Summary{}, store.ErrSummaryNotFound).Once()
	mockStore.On("LatestAnswer", mock.Anything, doc3).
		Return(store.Answer{}, store.ErrAnswerNotFound).Once()
	mockStore.On("LatestAnalysis", mock.Anything).
		Return(store.Analysis{}, store.ErrAnalysisNotFound).Once()

	rep, err := Build(context.Background(), mockStore)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One entry per uploaded document, even with duplicate filenames
	if len(rep.Forms) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(rep.Forms))
	}

	entry1 := rep.Forms[doc1.String()]
	if entry1.Summary == nil || entry1.Summary.Summary != "An invoice." {
		t.Errorf("expected summary for doc1, got %+v", entry1.Summary)
	}
	if entry1.LatestQA == nil || entry1.LatestQA.Answer != "99 EUR" {
		t.Errorf("expected latest QA for doc1, got %+v", entry1.LatestQA)
	}
	if entry1.TextLength != 1200 {
		t.Errorf("expected text_length 1200, got %d", entry1.TextLength)
	}

	entry2 := rep.Forms[doc2.String()]
	if entry2.Status != string(store.StatusFailed) || entry2.Error == "" {
		t.Errorf("expected failed entry with error message, got %+v", entry2)
	}
	if entry2.Summary != nil {
		t.Error("failed document should not carry a summary")
	}

	entry3 := rep.Forms[doc3.String()]
	if entry3.Summary != nil || entry3.LatestQA != nil {
		t.Errorf("expected bare entry for doc3, got %+v", entry3)
	}

	if rep.HolisticAnalysis != nil {
		t.Error("expected no holistic analysis")
	}

	mockStore.AssertExpectations(t)
}

func TestBuildIncludesLatestAnalysis(t *testing.T) {
	mockStore := new(store.MockStore)
	mockStore.On("ListDocuments", mock.Anything).Return([]store.Document{}, nil).Once()
	mockStore.On("LatestAnalysis", mock.Anything).Return(store.Analysis{
		Prompt:         "compare dates",
		FinalSynthesis: "the earliest date is March 1st",
		Intermediary: []store.IntermediaryAnswer{
			{Filename: "a.pdf", Answer: "March 1st"},
			{Filename: "b.pdf", Answer: "April 2nd"},
		},
	}, nil).Once()

	rep, err := Build(context.Background(), mockStore)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.HolisticAnalysis == nil {
		t.Fatal("expected holistic analysis in report")
	}
	if rep.HolisticAnalysis.FinalSynthesis != "the earliest date is March 1st" {
		t.Errorf("got %q", rep.HolisticAnalysis.FinalSynthesis)
	}
	if len(rep.HolisticAnalysis.Intermediary) != 2 {
		t.Errorf("expected 2 intermediary answers, got %d", len(rep.HolisticAnalysis.Intermediary))
	}
}

func TestBuildStoreError(t *testing.T) {
	mockStore := new(store.MockStore)
	mockStore.On("ListDocuments", mock.Anything).Return(nil, errors.New("db error")).Once()

	_, err := Build(context.Background(), mockStore)
	if err == nil {
		t.Fatal("expected error")
	}
}
