package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"sourcingagent/backend/internal/models"
)

// exportPageSize is how many results are read from the store per flush while
// streaming an export.
const exportPageSize = 500

// exportHeader is the fixed column order of the CSV export.
var exportHeader = []string{
	"user_input",
	"generated_query",
	"name",
	"snippet",
	"linkedin_url",
	"created_time",
}

// ExportService projects a query's results into a streamed CSV document.
type ExportService struct {
	search  *SearchService
	results ResultStore
}

func NewExportService(search *SearchService, results ResultStore) *ExportService {
	return &ExportService{search: search, results: results}
}

// Export writes the CSV document for queryID to w, header row first, one row
// per stored result. Rows are read and flushed in pages so memory use stays
// bounded regardless of result count.
func (s *ExportService) Export(ctx context.Context, ident models.Identity, queryID uuid.UUID, w io.Writer) error {
	query, err := s.search.GetQuery(ctx, ident, queryID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for skip := 0; ; skip += exportPageSize {
		page, err := s.results.ListByQuery(ctx, queryID, skip, exportPageSize)
		if err != nil {
			return err
		}

		for _, result := range page {
			if err := writer.Write(exportRow(query, &result)); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}

		writer.Flush()
		if err := writer.Error(); err != nil {
			return err
		}

		if len(page) < exportPageSize {
			return nil
		}
	}
}

func exportRow(query *models.SearchQuery, result *models.SearchResult) []string {
	name := result.Name
	if name == "" {
		name = result.ResultPayload.Title
	}

	return []string{
		query.UserInput,
		query.GeneratedQuery,
		name,
		result.Snippet,
		result.LinkedInURL,
		result.CreatedAt.Format(time.RFC3339),
	}
}
