// Package translate converts free-text hiring requirements into
// search-engine query strings.
package translate

import "context"

// Translator is the natural-language-to-query collaborator boundary.
type Translator interface {
	// Translate turns free text into a single optimized search query string.
	Translate(ctx context.Context, text string) (string, error)
	// Refine applies modification instructions to an existing query string.
	Refine(ctx context.Context, originalQuery, instructions string) (string, error)
}
