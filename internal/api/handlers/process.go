package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/ragcore/internal/document"
	"github.com/nikhilbhutani/ragcore/internal/ingest"
	"github.com/nikhilbhutani/ragcore/internal/storage"
)

const maxUploadBytes = 64 << 20 // 64MiB

type ProcessHandler struct {
	pipeline *ingest.Pipeline
	store    storage.Store
}

func NewProcessHandler(pipeline *ingest.Pipeline, store storage.Store) *ProcessHandler {
	return &ProcessHandler{pipeline: pipeline, store: store}
}

// Upload serves POST /api/process/upload (multipart: file, optional
// force). Extraction happens here, at the edge — the pipeline only ever
// sees pre-extracted UTF-8 text.
func (h *ProcessHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid multipart body: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	text, err := document.ExtractText(data, header.Header.Get("Content-Type"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "extract text: "+err.Error())
		return
	}

	force, _ := strconv.ParseBool(r.FormValue("force"))

	result, err := h.pipeline.Upload(r.Context(), ingest.UploadParams{
		Filename: header.Filename,
		Text:     text,
		Force:    force,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if h.store.Enabled() {
		contentType := header.Header.Get("Content-Type")
		if err := h.store.Upload(r.Context(), header.Filename, data, contentType); err != nil {
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename":     result.Filename,
		"chunk_count":  result.ChunkCount,
		"content_hash": result.ContentHash,
	})
}

// Summaries serves POST /api/process/{filename}/summaries.
func (h *ProcessHandler) Summaries(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	result, err := h.pipeline.Summaries(r.Context(), filename)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename":      result.Filename,
		"summary_count": result.SummaryCount,
	})
}

// Paragraphs serves POST /api/process/{filename}/paragraphs.
func (h *ProcessHandler) Paragraphs(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	result, err := h.pipeline.Paragraphs(r.Context(), filename)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename":      result.Filename,
		"summary_count": result.SummaryCount,
	})
}
