package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"form-agent/internal/agent"
	"form-agent/internal/app"
	"form-agent/internal/extract"
	"form-agent/internal/httputil"
	"form-agent/internal/queue"
	"form-agent/internal/report"
	"form-agent/internal/store"
)

type extractTaskPayload struct {
	DocumentID uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
	Format     string    `json:"format"`
	Content    []byte    `json:"content"`
}

type askRequest struct {
	Question string `json:"question" validate:"required,min=3,max=500"`
}

type analysisRequest struct {
	DocumentIDs []string `json:"document_ids" validate:"required,min=2,dive,uuid4"`
	Prompt      string   `json:"prompt" validate:"required,min=3,max=500"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	ag := agent.New(deps.Log, deps.Store, deps.Cache, deps.LLM,
		time.Duration(deps.Config.CacheTTL)*time.Second)

	r := httputil.NewRouter(deps.Log)

	r.Post("/api/forms/upload", uploadHandler(deps))
	r.Get("/api/forms", listFormsHandler(deps))
	r.Get("/api/forms/{id}", getFormHandler(deps))
	r.Post("/api/forms/{id}/ask", askHandler(deps, ag))
	r.Post("/api/forms/{id}/summary", summaryHandler(deps, ag))
	r.Post("/api/analysis", analysisHandler(deps, ag))
	r.Get("/api/report", reportHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps))

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("gateway listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Validate file size before parsing
		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		format, err := extract.FormatFromFilename(header.Filename)
		if err != nil {
			httputil.Fail(deps.Log, w, "unsupported file type (only PDF, PNG, JPG and TXT allowed)", err, http.StatusBadRequest)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}

		doc, err := deps.Store.CreateDocument(ctx, header.Filename, format)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to persist document", err, http.StatusInternalServerError)
			return
		}

		payload := extractTaskPayload{
			DocumentID: doc.ID,
			Filename:   header.Filename,
			Format:     format,
			Content:    content,
		}

		body, err := json.Marshal(payload)
		if err != nil {
			fail(deps, ctx, w, "marshal payload failed", err, doc.ID, http.StatusInternalServerError, true)
			return
		}
		task := queue.Task{Type: queue.TaskTypeExtract, Payload: body}
		if err := queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond); err != nil {
			fail(deps, ctx, w, "failed to enqueue document; please retry", err, doc.ID, http.StatusInternalServerError, true)
			return
		}

		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"document_id": doc.ID.String(),
			"status":      doc.Status,
		})
	}
}

// fail is gateway-specific error handler that can mark documents as failed
func fail(deps app.Deps, ctx context.Context, w http.ResponseWriter, message string, err error, docID uuid.UUID, status int, markFailed bool) {
	log := deps.Log.With("document_id", docID)
	if markFailed && docID != uuid.Nil {
		if upErr := deps.Store.MarkFailed(ctx, docID, message); upErr != nil {
			log.Error("failed to mark document failed", "err", upErr)
		}
	}

	httputil.Fail(log, w, message, err, status)
}

func listFormsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := deps.Store.ListDocuments(r.Context())
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to list documents", err, http.StatusInternalServerError)
			return
		}
		out := make([]map[string]any, 0, len(docs))
		for _, doc := range docs {
			out = append(out, documentJSON(doc))
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"forms": out})
	}
}

func getFormHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docID, ok := parseIDParam(deps, w, r)
		if !ok {
			return
		}
		doc, err := deps.Store.GetDocument(r.Context(), docID)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, store.ErrDocumentNotFound) {
				status = http.StatusNotFound
			}
			httputil.Fail(deps.Log, w, "document not found", err, status)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, documentJSON(doc))
	}
}

func askHandler(deps app.Deps, ag *agent.Agent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docID, ok := parseIDParam(deps, w, r)
		if !ok {
			return
		}
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		result, err := ag.Ask(r.Context(), docID, req.Question)
		if err != nil {
			failAnalysis(deps, w, "question failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, result)
	}
}

func summaryHandler(deps app.Deps, ag *agent.Agent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docID, ok := parseIDParam(deps, w, r)
		if !ok {
			return
		}
		result, err := ag.Summarize(r.Context(), docID)
		if err != nil {
			failAnalysis(deps, w, "summary failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, result)
	}
}

func analysisHandler(deps app.Deps, ag *agent.Agent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analysisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		ids := make([]uuid.UUID, 0, len(req.DocumentIDs))
		for _, s := range req.DocumentIDs {
			id, err := uuid.Parse(s)
			if err != nil {
				httputil.Fail(deps.Log, w, "invalid document id", err, http.StatusBadRequest)
				return
			}
			ids = append(ids, id)
		}

		result, err := ag.Holistic(r.Context(), ids, req.Prompt)
		if err != nil {
			failAnalysis(deps, w, "holistic analysis failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, result)
	}
}

func reportHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := report.Build(r.Context(), deps.Store)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to build report", err, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="intelligent_form_report.json"`)
		httputil.WriteJSON(w, http.StatusOK, rep)
	}
}

// failAnalysis maps agent errors to HTTP statuses, passing provider and
// extraction error text through to the user.
func failAnalysis(deps app.Deps, w http.ResponseWriter, message string, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, store.ErrDocumentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, agent.ErrDocumentNotReady):
		status = http.StatusConflict
	case errors.Is(err, agent.ErrTooFewDocuments):
		status = http.StatusBadRequest
	}
	httputil.Fail(deps.Log, w, fmt.Sprintf("%s: %v", message, err), err, status)
}

func parseIDParam(deps app.Deps, w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	docID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(deps.Log, w, "invalid document id", err, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return docID, true
}

func documentJSON(doc store.Document) map[string]any {
	out := map[string]any{
		"id":          doc.ID.String(),
		"filename":    doc.Filename,
		"format":      doc.Format,
		"status":      doc.Status,
		"text_length": doc.CharCount,
		"created_at":  doc.CreatedAt,
	}
	if doc.Error != "" {
		out["error"] = doc.Error
	}
	return out
}
