package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"askbot/internal/domain"
	"askbot/internal/metrics"

	"go.uber.org/zap"
)

// MaxSearchResults is the number of results shown for one query
const MaxSearchResults = 5

// SearchService proxies free text to the web search backend
type SearchService struct {
	searcher Searcher
	logger   *zap.Logger
}

// NewSearchService creates a new search service
func NewSearchService(searcher Searcher, logger *zap.Logger) *SearchService {
	return &SearchService{
		searcher: searcher,
		logger:   logger,
	}
}

// Search returns at most MaxSearchResults results for query.
// Backend failures are logged and reported as no results.
func (s *SearchService) Search(ctx context.Context, query string) []domain.SearchResult {
	results, err := s.searcher.Search(ctx, query)
	if err != nil {
		s.logger.Error("Search request failed",
			zap.String("query", query),
			zap.Error(newError(ErrorUpstream, "search", err)))
		metrics.IncSearch("error")
		return nil
	}

	if len(results) == 0 {
		metrics.IncSearch("empty")
		return nil
	}

	metrics.IncSearch("results")
	if len(results) > MaxSearchResults {
		results = results[:MaxSearchResults]
	}
	return results
}

// FormatResults renders results as Telegram HTML, one block per result
func FormatResults(results []domain.SearchResult) string {
	if len(results) > MaxSearchResults {
		results = results[:MaxSearchResults]
	}

	blocks := make([]string, 0, len(results))
	for _, r := range results {
		link := html.EscapeString(r.Link)
		blocks = append(blocks, fmt.Sprintf("<b>%s</b>\n<a href=\"%s\">%s</a>\n<i>%s</i>",
			html.EscapeString(r.Title), link, link, html.EscapeString(r.Snippet)))
	}
	return strings.Join(blocks, "\n\n")
}
