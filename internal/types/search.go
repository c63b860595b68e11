package types

// SearchStatus tells "nothing matched" apart from "the search broke".
type SearchStatus string

const (
	SearchFound    SearchStatus = "found"
	SearchNotFound SearchStatus = "not_found"
	SearchFailed   SearchStatus = "failed"
	// SearchSkipped marks an aggregator that was not asked to run.
	SearchSkipped SearchStatus = "skipped"
)

// SearchResult is the outcome of one aggregator run.
type SearchResult[T any] struct {
	Status SearchStatus `json:"status"`
	Items  []T          `json:"items"`
	Err    error        `json:"-"`
}

func Found[T any](items []T) SearchResult[T] {
	return SearchResult[T]{Status: SearchFound, Items: items}
}

func NotFound[T any]() SearchResult[T] {
	return SearchResult[T]{Status: SearchNotFound, Items: []T{}}
}

func Failed[T any](err error) SearchResult[T] {
	return SearchResult[T]{Status: SearchFailed, Items: []T{}, Err: err}
}

func Skipped[T any]() SearchResult[T] {
	return SearchResult[T]{Status: SearchSkipped, Items: []T{}}
}

// OrEmpty returns the items, never nil.
func (r SearchResult[T]) OrEmpty() []T {
	if r.Items == nil {
		return []T{}
	}
	return r.Items
}

// SearchSummary is the JSON view of a SearchResult without its items.
type SearchSummary struct {
	Status SearchStatus `json:"status"`
	Count  int          `json:"count"`
	Error  string       `json:"error,omitempty"`
}

func (r SearchResult[T]) Summary() SearchSummary {
	s := SearchSummary{Status: r.Status, Count: len(r.Items)}
	if r.Err != nil {
		s.Error = r.Err.Error()
	}
	return s
}
