package models

import (
	"time"

	"github.com/google/uuid"
)

// ResultPayload is the provider record stored with each result. The provider
// contract is stable across Google CSE and Serper, so it is a fixed struct
// rather than an untyped map.
type ResultPayload struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"display_link"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SearchResult is one candidate produced by an execution run. Rows are
// append-only: re-executing a query adds new rows, and the only mutation
// after creation is stamping enriched_timestamp.
type SearchResult struct {
	ID                uuid.UUID     `json:"id"`
	SearchQueryID     uuid.UUID     `json:"search_query_id"`
	LinkedInURL       string        `json:"linkedin_url"`
	Name              string        `json:"name"`
	Snippet           string        `json:"snippet"`
	Description       string        `json:"description"`
	ResultPayload     ResultPayload `json:"result_payload"`
	SearchTimestamp   time.Time     `json:"search_timestamp"`
	EnrichedTimestamp *time.Time    `json:"enriched_timestamp,omitempty"`
	ExecutedByUserID  uuid.UUID     `json:"executed_by_user_id"`
	CreatedAt         time.Time     `json:"created_at"`
}

func (r *SearchResult) Prepare() {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.SearchTimestamp.IsZero() {
		r.SearchTimestamp = time.Now().UTC()
	}
}
