package report

import (
	"context"
	"errors"
	"time"

	"form-agent/internal/store"
)

// Report is the downloadable JSON artifact: one entry per uploaded
// document plus the latest holistic analysis.
type Report struct {
	GeneratedAt      time.Time            `json:"generated_at"`
	Forms            map[string]FormEntry `json:"forms_data"`
	HolisticAnalysis *HolisticEntry       `json:"holistic_analysis_result,omitempty"`
}

// FormEntry is keyed by document ID so duplicate filenames each keep
// their own entry.
type FormEntry struct {
	Filename   string        `json:"filename"`
	FileType   string        `json:"file_type"`
	Status     string        `json:"status"`
	TextLength int           `json:"text_length"`
	Error      string        `json:"error,omitempty"`
	Summary    *SummaryEntry `json:"summary,omitempty"`
	LatestQA   *QAEntry      `json:"latest_qa,omitempty"`
}

type SummaryEntry struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
}

type QAEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type HolisticEntry struct {
	Prompt         string                     `json:"prompt"`
	FinalSynthesis string                     `json:"final_synthesis"`
	Intermediary   []store.IntermediaryAnswer `json:"intermediary_results"`
}

// Build assembles the report from everything persisted so far. Missing
// summaries or answers are simply omitted from the entry.
func Build(ctx context.Context, st store.Store) (Report, error) {
	docs, err := st.ListDocuments(ctx)
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		GeneratedAt: time.Now().UTC(),
		Forms:       make(map[string]FormEntry, len(docs)),
	}

	for _, doc := range docs {
		entry := FormEntry{
			Filename:   doc.Filename,
			FileType:   doc.Format,
			Status:     string(doc.Status),
			TextLength: doc.CharCount,
			Error:      doc.Error,
		}

		if doc.Status == store.StatusReady {
			sum, err := st.GetSummary(ctx, doc.ID)
			switch {
			case err == nil:
				entry.Summary = &SummaryEntry{Summary: sum.Summary, KeyPoints: sum.KeyPoints}
			case !errors.Is(err, store.ErrSummaryNotFound):
				return Report{}, err
			}

			ans, err := st.LatestAnswer(ctx, doc.ID)
			switch {
			case err == nil:
				entry.LatestQA = &QAEntry{Question: ans.Question, Answer: ans.Answer}
			case !errors.Is(err, store.ErrAnswerNotFound):
				return Report{}, err
			}
		}

		rep.Forms[doc.ID.String()] = entry
	}

	analysis, err := st.LatestAnalysis(ctx)
	switch {
	case err == nil:
		rep.HolisticAnalysis = &HolisticEntry{
			Prompt:         analysis.Prompt,
			FinalSynthesis: analysis.FinalSynthesis,
			Intermediary:   analysis.Intermediary,
		}
	case !errors.Is(err, store.ErrAnalysisNotFound):
		return Report{}, err
	}

	return rep, nil
}
