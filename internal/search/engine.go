// Package search implements C6: strategy-selected, cross-collection vector
// search with similarity conversion, threshold filtering, deterministic
// tie-breaking, and result-set caching. Grounded on the teacher's
// internal/rag/retriever.go query-fanout pattern, generalized from a
// single collection to the documents/logical_summaries/paragraph_summaries
// trio named in the spec.
package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/ragcore/internal/apperror"
	"github.com/nikhilbhutani/ragcore/internal/embedding"
	"github.com/nikhilbhutani/ragcore/internal/models"
	"github.com/nikhilbhutani/ragcore/internal/registry"
	"github.com/nikhilbhutani/ragcore/internal/searchcache"
	"github.com/nikhilbhutani/ragcore/internal/vectorstore"
)

// Strategy names the collection-selection policy for a search request.
type Strategy string

const (
	StrategyBasic     Strategy = "basic"
	StrategyEnhanced  Strategy = "enhanced"
	StrategyParagraph Strategy = "paragraph"
)

// tieBreakEpsilon is how close two similarities must be before the
// deterministic tie-break (collection rank, then chunk_id) decides order.
const tieBreakEpsilon = 1e-6

// overFetchFactor widens each collection's per-collection query past TopK.
// With an exact scan, TopK per collection already contains the global
// top-k; the wider fetch guards against recall loss when the store answers
// from an approximate nearest-neighbor index.
const overFetchFactor = 3

type Request struct {
	Query      string
	Collections []models.Collection // explicit override; empty triggers strategy selection
	Strategy   Strategy
	Documents  []string // allow-list
	Exclude    []string // deny-list
	TopK       int
	Threshold  float64 // 0 means unset
}

type Engine struct {
	store    vectorstore.VectorStore
	embedder *embedding.Client
	registry *registry.Registry
	cache    *searchcache.Cache
}

func New(store vectorstore.VectorStore, embedder *embedding.Client, reg *registry.Registry, cache *searchcache.Cache) *Engine {
	return &Engine{store: store, embedder: embedder, registry: reg, cache: cache}
}

func (e *Engine) Search(ctx context.Context, req Request) (*models.SearchResultSet, error) {
	if req.Query == "" {
		return nil, apperror.New(apperror.ErrInvalidQuery, apperror.StageQuery, fmt.Errorf("query must not be empty"))
	}
	if req.TopK <= 0 {
		req.TopK = 10
	}

	collections := req.Collections
	if len(collections) == 0 {
		collections = e.selectCollections(req)
	}

	vec, err := e.embedder.EmbedSingle(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	where := vectorstore.Where{}
	if len(req.Documents) > 0 {
		where.DocumentIn = req.Documents
	}
	if len(req.Exclude) > 0 {
		where.DocumentNotIn = req.Exclude
	}

	var all []models.SearchHit
	for _, collection := range collections {
		hits, err := e.store.Query(ctx, collection, vec, req.TopK*overFetchFactor, where)
		if err != nil {
			return nil, err
		}
		for _, h := range hits {
			similarity := clampSimilarity(1 - h.Distance)
			if req.Threshold > 0 && similarity < req.Threshold {
				continue
			}
			all = append(all, models.SearchHit{
				Content:    h.Content,
				Score:      similarity,
				Document:   h.Document,
				ChunkID:    h.ChunkID,
				Collection: collection,
				Metadata:   h.Metadata,
			})
		}
	}

	sortHits(all)
	if len(all) > req.TopK {
		all = all[:req.TopK]
	}

	result := &models.SearchResultSet{
		SearchID:            uuid.NewString(),
		Query:               req.Query,
		Results:             all,
		UniqueDocuments:     uniqueDocuments(all),
		ChunkIDs:            chunkIDs(all),
		CollectionsSearched: collections,
		Timestamp:           time.Now(),
	}

	e.cache.Put(result)
	return result, nil
}

// selectCollections implements the default strategy policy from the spec:
// paragraph (if paragraph_summaries populated) > enhanced (if
// logical_summaries populated) > basic (documents only).
func (e *Engine) selectCollections(req Request) []models.Collection {
	switch req.Strategy {
	case StrategyBasic:
		return []models.Collection{models.CollectionDocuments}
	case StrategyEnhanced:
		return []models.Collection{models.CollectionDocuments, models.CollectionLogicalSummaries}
	case StrategyParagraph:
		return []models.Collection{models.CollectionDocuments, models.CollectionParagraphSummaries}
	}

	if e.anyDocumentHasCollection(req.Documents, models.CollectionParagraphSummaries) {
		return []models.Collection{models.CollectionDocuments, models.CollectionParagraphSummaries}
	}
	if e.anyDocumentHasCollection(req.Documents, models.CollectionLogicalSummaries) {
		return []models.Collection{models.CollectionDocuments, models.CollectionLogicalSummaries}
	}
	return []models.Collection{models.CollectionDocuments}
}

func (e *Engine) anyDocumentHasCollection(documents []string, collection models.Collection) bool {
	if len(documents) > 0 {
		for _, doc := range documents {
			if e.registry.HasCollection(doc, collection) {
				return true
			}
		}
		return false
	}
	for _, doc := range e.registry.List() {
		if doc.HasCollection(collection) {
			return true
		}
	}
	return false
}

func sortHits(hits []models.SearchHit) {
	sort.Slice(hits, func(i, j int) bool {
		if math.Abs(hits[i].Score-hits[j].Score) > tieBreakEpsilon {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Collection.Rank() != hits[j].Collection.Rank() {
			return hits[i].Collection.Rank() < hits[j].Collection.Rank()
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
}

func clampSimilarity(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func uniqueDocuments(hits []models.SearchHit) []string {
	seen := make(map[string]bool)
	var out []string
	for _, h := range hits {
		if !seen[h.Document] {
			seen[h.Document] = true
			out = append(out, h.Document)
		}
	}
	return out
}

func chunkIDs(hits []models.SearchHit) []models.ChunkID {
	out := make([]models.ChunkID, len(hits))
	for i, h := range hits {
		out[i] = h.ChunkID
	}
	return out
}

// FilterByCitationThreshold drops hits scoring below threshold, except it
// always keeps the single highest-scored hit so a caller can still report
// a source on an entirely weak match. hits must already be sorted
// descending by score.
func FilterByCitationThreshold(hits []models.SearchHit, threshold float64) []models.SearchHit {
	if len(hits) == 0 {
		return hits
	}
	var kept []models.SearchHit
	for _, h := range hits {
		if h.Score >= threshold {
			kept = append(kept, h)
		}
	}
	if len(kept) == 0 {
		return hits[:1]
	}
	return kept
}
