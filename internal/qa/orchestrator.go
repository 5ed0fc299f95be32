// Package qa implements C8: context resolution, prompt construction, and
// citation filtering for question answering. Grounded on the teacher's
// internal/rag/chain.go prompt-assembly flow and internal/memory's
// sliding-window history trimming, adapted to the spec's strict
// separation of the base instruction from a caller-supplied system_prompt
// — the two are never concatenated into the question.
package qa

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nikhilbhutani/ragcore/internal/apperror"
	"github.com/nikhilbhutani/ragcore/internal/llm"
	"github.com/nikhilbhutani/ragcore/internal/models"
	"github.com/nikhilbhutani/ragcore/internal/search"
	"github.com/nikhilbhutani/ragcore/internal/searchcache"
	"github.com/nikhilbhutani/ragcore/internal/vectorstore"
)

const (
	defaultTopK = 8
	historyWindow = 3

	baseInstruction = "You are a careful research assistant. Answer only using the numbered passages " +
		"provided below; never invent facts beyond them. Cite the source filename and chunk_id for every " +
		"claim using its [cN] tag. If the passages do not contain enough information to answer, respond " +
		"exactly: \"I don't know based on the provided documents.\""
)

type HistoryTurn struct {
	Question string
	Answer   string
}

type Request struct {
	Question           string
	TopK               int
	SearchID           string
	ChunkIDs           []models.ChunkID
	Documents          []string
	ExcludeDocuments   []string
	ConversationHistory []HistoryTurn
	SearchStrategy     search.Strategy
	SystemPrompt       string
}

type Response struct {
	Answer         string
	Sources        []string
	RawCitations   []models.Citation
	SourceChunks   []models.Citation // deprecated alias of RawCitations, kept per spec.md §9
	ProcessingTime time.Duration
}

type Orchestrator struct {
	store             vectorstore.VectorStore
	engine            *search.Engine
	cache             *searchcache.Cache
	gateway           llm.Gateway
	citationThreshold float64
	maxChunks         int
}

func New(store vectorstore.VectorStore, engine *search.Engine, cache *searchcache.Cache, gateway llm.Gateway, citationThreshold float64, maxChunks int) *Orchestrator {
	return &Orchestrator{
		store:             store,
		engine:            engine,
		cache:             cache,
		gateway:           gateway,
		citationThreshold: citationThreshold,
		maxChunks:         maxChunks,
	}
}

type contextPassage struct {
	content  string
	document string
	chunkID  models.ChunkID
	collection models.Collection
	score    float64
}

func (o *Orchestrator) Ask(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	if strings.TrimSpace(req.Question) == "" {
		return nil, apperror.New(apperror.ErrInvalidQuery, apperror.StageQuery, fmt.Errorf("question must not be empty"))
	}
	if req.TopK <= 0 {
		req.TopK = defaultTopK
	}

	passages, err := o.resolveContext(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(passages) > o.maxChunks && o.maxChunks > 0 {
		passages = passages[:o.maxChunks]
	}

	if len(passages) == 0 {
		return &Response{
			Answer:         "I don't know based on the provided documents.",
			Sources:        nil,
			RawCitations:   []models.Citation{},
			SourceChunks:   []models.Citation{},
			ProcessingTime: time.Since(start),
		}, nil
	}

	prompt, citeCandidates := buildContextBlock(passages)
	userMessage := buildUserMessage(req.ConversationHistory, prompt, req.Question)

	systemPrompt := baseInstruction
	if req.SystemPrompt != "" {
		systemPrompt = systemPrompt + "\n\nAdditional formatting instructions: " + req.SystemPrompt
	}

	answer, err := o.gateway.Complete(ctx, systemPrompt, userMessage, llm.CompleteParams{})
	if err != nil {
		return nil, err
	}

	citations := filterCitations(answer, citeCandidates, o.citationThreshold)
	sources := distinctSources(citations)

	return &Response{
		Answer:         answer,
		Sources:        sources,
		RawCitations:   citations,
		SourceChunks:   citations,
		ProcessingTime: time.Since(start),
	}, nil
}

// resolveContext implements the precedence order from spec.md §4.8:
// chunk_ids > search_id (cache hit) > documents/exclude_documents filtered
// fresh search > unfiltered fresh search.
func (o *Orchestrator) resolveContext(ctx context.Context, req Request) ([]contextPassage, error) {
	if len(req.ChunkIDs) > 0 {
		return o.fetchByChunkIDs(ctx, req.ChunkIDs)
	}

	if req.SearchID != "" {
		if result, ok := o.cache.Get(req.SearchID); ok {
			return passagesFromResultSet(result), nil
		}
	}

	result, err := o.engine.Search(ctx, search.Request{
		Query:     req.Question,
		TopK:      req.TopK,
		Documents: req.Documents,
		Exclude:   req.ExcludeDocuments,
		Strategy:  req.SearchStrategy,
	})
	if err != nil {
		return nil, err
	}
	return passagesFromResultSet(result), nil
}

func (o *Orchestrator) fetchByChunkIDs(ctx context.Context, ids []models.ChunkID) ([]contextPassage, error) {
	byCollection := make(map[models.Collection][]models.ChunkID)
	for _, id := range ids {
		_, collection, _, err := id.Parse()
		if err != nil {
			return nil, apperror.New(apperror.ErrInvalidQuery, apperror.StageQuery, err)
		}
		byCollection[collection] = append(byCollection[collection], id)
	}

	var out []contextPassage
	for collection, wanted := range byCollection {
		hits, err := o.store.List(ctx, collection, vectorstore.Where{ChunkIDIn: wanted})
		if err != nil {
			return nil, err
		}
		for _, h := range hits {
			out = append(out, contextPassage{
				content: h.Content, document: h.Document, chunkID: h.ChunkID,
				collection: collection, score: 1.0,
			})
		}
	}
	return out, nil
}

func passagesFromResultSet(result *models.SearchResultSet) []contextPassage {
	out := make([]contextPassage, len(result.Results))
	for i, hit := range result.Results {
		out[i] = contextPassage{
			content: hit.Content, document: hit.Document, chunkID: hit.ChunkID,
			collection: hit.Collection, score: hit.Score,
		}
	}
	return out
}

// buildContextBlock renders passages as numbered [cN] blocks and returns
// the candidate citations in the same order, N starting at 1.
func buildContextBlock(passages []contextPassage) (string, []models.Citation) {
	var sb strings.Builder
	citations := make([]models.Citation, len(passages))
	for i, p := range passages {
		n := i + 1
		fmt.Fprintf(&sb, "[c%d] (%s / %s): %s\n\n", n, p.document, p.chunkID, p.content)
		citations[i] = models.Citation{
			Text:                p.content,
			Document:            p.document,
			Collection:          p.collection,
			ChunkID:             p.chunkID,
			RelevancyScore:      p.score,
			RelevancyPercentage: p.score * 100,
		}
	}
	return sb.String(), citations
}

// buildUserMessage trims conversation history to the last K pairs and
// inserts it before the new question, above the context block.
func buildUserMessage(history []HistoryTurn, contextBlock, question string) string {
	var sb strings.Builder

	if len(history) > 0 {
		trimmed := history
		if len(trimmed) > historyWindow {
			trimmed = trimmed[len(trimmed)-historyWindow:]
		}
		sb.WriteString("Conversation so far:\n")
		for _, turn := range trimmed {
			fmt.Fprintf(&sb, "Q: %s\nA: %s\n", turn.Question, turn.Answer)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Context passages:\n\n")
	sb.WriteString(contextBlock)
	sb.WriteString("Question: ")
	sb.WriteString(question)
	return sb.String()
}

// filterCitations keeps passages with relevancy ≥ threshold whose [cN] tag
// appears in the answer; if no passage is both cited and at or above the
// threshold, falls back to the top two passages (whatever their scores)
// so the caller can still report sources.
func filterCitations(answer string, candidates []models.Citation, threshold float64) []models.Citation {
	var cited []models.Citation
	for i, c := range candidates {
		tag := "[c" + strconv.Itoa(i+1) + "]"
		if strings.Contains(answer, tag) && c.RelevancyScore >= threshold {
			cited = append(cited, c)
		}
	}
	if len(cited) > 0 {
		return cited
	}

	if len(candidates) == 0 {
		return []models.Citation{}
	}
	n := 2
	if len(candidates) < n {
		n = len(candidates)
	}
	return append([]models.Citation{}, candidates[:n]...)
}

func distinctSources(citations []models.Citation) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range citations {
		if !seen[c.Document] {
			seen[c.Document] = true
			out = append(out, c.Document)
		}
	}
	return out
}
