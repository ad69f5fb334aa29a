package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Gateway and extractor both migrate on boot; an advisory lock keeps
	// them from racing on the DDL.
	const lockID = 742810563

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !acquired {
		// The other service is migrating; give it a moment and move on.
		time.Sleep(2 * time.Second)
		return nil
	}
	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY,
			filename TEXT,
			format TEXT,
			status TEXT,
			text TEXT DEFAULT '',
			char_count INT DEFAULT 0,
			error TEXT DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS answers (
			id UUID PRIMARY KEY,
			document_id UUID REFERENCES documents(id) ON DELETE CASCADE,
			question TEXT,
			answer TEXT,
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS summaries (
			document_id UUID PRIMARY KEY REFERENCES documents(id) ON DELETE CASCADE,
			summary TEXT,
			key_points TEXT[]
		);`,
		`CREATE TABLE IF NOT EXISTS analyses (
			id UUID PRIMARY KEY,
			prompt TEXT,
			final_synthesis TEXT,
			intermediary JSONB,
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS answers_document_idx ON answers(document_id, created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) CreateDocument(ctx context.Context, filename, format string) (Document, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx, `INSERT INTO documents(id, filename, format, status) VALUES($1,$2,$3,$4)`,
		id, filename, format, StatusProcessing)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Filename: filename, Format: format, Status: StatusProcessing, CreatedAt: time.Now()}, nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, id uuid.UUID) (Document, error) {
	var d Document
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, format, status, text, char_count, error, created_at FROM documents WHERE id=$1`, id)
	if err := row.Scan(&d.ID, &d.Filename, &d.Format, &d.Status, &d.Text, &d.CharCount, &d.Error, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return d, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, format, status, text, char_count, error, created_at FROM documents ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Filename, &d.Format, &d.Status, &d.Text, &d.CharCount, &d.Error, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE documents SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (s *PostgresStore) SaveText(ctx context.Context, id uuid.UUID, text string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET text=$1, char_count=$2, status=$3, error='' WHERE id=$4`,
		text, len(text), StatusReady, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (s *PostgresStore) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status=$1, error=$2 WHERE id=$3`, StatusFailed, message, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (s *PostgresStore) SaveAnswer(ctx context.Context, docID uuid.UUID, question, answer string) (Answer, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO answers(id, document_id, question, answer) VALUES($1,$2,$3,$4)`,
		id, docID, question, answer)
	if err != nil {
		return Answer{}, err
	}
	return Answer{ID: id, DocumentID: docID, Question: question, Answer: answer, CreatedAt: time.Now()}, nil
}

func (s *PostgresStore) LatestAnswer(ctx context.Context, docID uuid.UUID) (Answer, error) {
	var a Answer
	row := s.db.QueryRowContext(ctx,
		`SELECT id, document_id, question, answer, created_at FROM answers
		 WHERE document_id=$1 ORDER BY created_at DESC LIMIT 1`, docID)
	if err := row.Scan(&a.ID, &a.DocumentID, &a.Question, &a.Answer, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Answer{}, ErrAnswerNotFound
		}
		return Answer{}, fmt.Errorf("failed to get latest answer for doc %s: %w", docID, err)
	}
	return a, nil
}

func (s *PostgresStore) SaveSummary(ctx context.Context, docID uuid.UUID, summary Summary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries(document_id, summary, key_points)
		VALUES($1,$2,$3)
		ON CONFLICT (document_id) DO UPDATE SET summary=excluded.summary, key_points=excluded.key_points`,
		docID, summary.Summary, pq.Array(pqStringArray(summary.KeyPoints)))
	return err
}

func (s *PostgresStore) GetSummary(ctx context.Context, docID uuid.UUID) (Summary, error) {
	var sum Summary
	var keyPoints []string
	row := s.db.QueryRowContext(ctx, `SELECT summary, key_points FROM summaries WHERE document_id=$1`, docID)
	if err := row.Scan(&sum.Summary, pq.Array(&keyPoints)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Summary{}, ErrSummaryNotFound
		}
		return Summary{}, fmt.Errorf("failed to get summary for doc %s: %w", docID, err)
	}
	sum.DocumentID = docID
	sum.KeyPoints = keyPoints
	return sum, nil
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, analysis Analysis) (Analysis, error) {
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	intermediary, err := json.Marshal(analysis.Intermediary)
	if err != nil {
		return Analysis{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses(id, prompt, final_synthesis, intermediary) VALUES($1,$2,$3,$4)`,
		analysis.ID, analysis.Prompt, analysis.FinalSynthesis, intermediary)
	if err != nil {
		return Analysis{}, err
	}
	analysis.CreatedAt = time.Now()
	return analysis, nil
}

func (s *PostgresStore) LatestAnalysis(ctx context.Context) (Analysis, error) {
	var a Analysis
	var intermediary []byte
	row := s.db.QueryRowContext(ctx,
		`SELECT id, prompt, final_synthesis, intermediary, created_at FROM analyses
		 ORDER BY created_at DESC LIMIT 1`)
	if err := row.Scan(&a.ID, &a.Prompt, &a.FinalSynthesis, &intermediary, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrAnalysisNotFound
		}
		return Analysis{}, fmt.Errorf("failed to get latest analysis: %w", err)
	}
	if len(intermediary) > 0 {
		if err := json.Unmarshal(intermediary, &a.Intermediary); err != nil {
			return Analysis{}, fmt.Errorf("failed to decode intermediary results: %w", err)
		}
	}
	return a, nil
}

func pqStringArray(items []string) []string {
	if len(items) == 0 {
		return []string{}
	}
	return items
}
