package models

import (
	"time"

	"github.com/google/uuid"
)

// SearchQuery pairs a user's natural-language request with the search-engine
// query string derived from it. user_input, generated_query and
// created_user_id are immutable after creation; only an execution run updates
// last_search_date and last_run_user_id.
type SearchQuery struct {
	ID             uuid.UUID  `json:"id"`
	UserInput      string     `json:"user_input"`
	GeneratedQuery string     `json:"generated_query"`
	LastSearchDate *time.Time `json:"last_search_date,omitempty"`
	CreatedUserID  uuid.UUID  `json:"created_user_id"`
	LastRunUserID  *uuid.UUID `json:"last_run_user_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (q *SearchQuery) Prepare() {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
}
