package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nikhilbhutani/ragcore/internal/models"
	"github.com/nikhilbhutani/ragcore/internal/qa"
	"github.com/nikhilbhutani/ragcore/internal/search"
)

type AskHandler struct {
	orchestrator *qa.Orchestrator
}

func NewAskHandler(orch *qa.Orchestrator) *AskHandler {
	return &AskHandler{orchestrator: orch}
}

type historyTurnBody struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type askRequestBody struct {
	Question            string            `json:"question"`
	TopK                int               `json:"top_k"`
	SearchID            string            `json:"search_id"`
	ChunkIDs            []string          `json:"chunk_ids"`
	Documents           []string          `json:"documents"`
	ExcludeDocuments    []string          `json:"exclude_documents"`
	ConversationHistory []historyTurnBody `json:"conversation_history"`
	SearchStrategy      string            `json:"search_strategy"`
	SystemPrompt        string            `json:"system_prompt"`
}

// Ask serves POST /api/ask.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var body askRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chunkIDs := make([]models.ChunkID, len(body.ChunkIDs))
	for i, id := range body.ChunkIDs {
		chunkIDs[i] = models.ChunkID(id)
	}

	history := make([]qa.HistoryTurn, len(body.ConversationHistory))
	for i, turn := range body.ConversationHistory {
		history[i] = qa.HistoryTurn{Question: turn.Question, Answer: turn.Answer}
	}

	resp, err := h.orchestrator.Ask(r.Context(), qa.Request{
		Question:             body.Question,
		TopK:                 body.TopK,
		SearchID:             body.SearchID,
		ChunkIDs:             chunkIDs,
		Documents:            body.Documents,
		ExcludeDocuments:     body.ExcludeDocuments,
		ConversationHistory:  history,
		SearchStrategy:       search.Strategy(body.SearchStrategy),
		SystemPrompt:         body.SystemPrompt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"answer":          resp.Answer,
		"sources":         resp.Sources,
		"raw_citations":   resp.RawCitations,
		"source_chunks":   resp.SourceChunks,
		"processing_time": resp.ProcessingTime.Seconds(),
	})
}
