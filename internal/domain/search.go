package domain

// SearchResult is a single organic web search hit
type SearchResult struct {
	Title   string
	Link    string
	Snippet string
}
