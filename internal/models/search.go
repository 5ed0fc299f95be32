package models

import "time"

// SearchHit is a single ranked result from the search engine.
type SearchHit struct {
	Content    string                 `json:"content"`
	Score      float64                `json:"score"`
	Document   string                 `json:"document"`
	ChunkID    ChunkID                `json:"chunk_id"`
	Collection Collection             `json:"collection"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// SearchResultSet is the cacheable, citable outcome of a single Search call.
type SearchResultSet struct {
	SearchID           string      `json:"search_id"`
	Query              string      `json:"query"`
	Results            []SearchHit `json:"results"`
	UniqueDocuments    []string    `json:"unique_documents"`
	ChunkIDs           []ChunkID   `json:"chunk_ids"`
	CollectionsSearched []Collection `json:"collections_searched"`
	Timestamp          time.Time   `json:"timestamp"`
}

// Citation is a passage reference emitted alongside an answer.
type Citation struct {
	Text                string     `json:"text"`
	Document            string     `json:"document"`
	Collection          Collection `json:"collection"`
	ChunkID             ChunkID    `json:"chunk_id"`
	RelevancyScore      float64    `json:"relevancy_score"`
	RelevancyPercentage float64    `json:"relevancy_percentage"`
}
