package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a catalog search.
type Params struct {
	Query string // Free text matched against title and author

	// Filters
	Genre    string // Exact canonical genre slug
	MinPages int
	MaxPages int

	// Pagination
	Limit  int
	Offset int
}

// DefaultLimit is the page size when Params.Limit is unset.
const DefaultLimit = 20

// Result holds one page of hits plus genre facet counts.
type Result struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []Hit        `json:"hits"`
	Genres []FacetCount `json:"genres,omitempty"`
}

// Hit is a single matching book.
type Hit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Author     string            `json:"author,omitempty"`
	Genre      string            `json:"genre,omitempty"`
	TotalPages int               `json:"total_pages,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// FacetCount is a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search runs a query against the index.
func (s *BookIndex) Search(ctx context.Context, params Params) (*Result, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	req.Fields = []string{"title", "author", "genre", "total_pages"}
	req.AddFacet("genres", bleve.NewFacetRequest("genre", 10))
	if strings.TrimSpace(params.Query) != "" {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("title")
		req.Highlight.AddField("author")
	} else {
		req.SortBy([]string{"title"})
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}

	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := h.Fields["author"].(string); ok {
			hit.Author = v
		}
		if v, ok := h.Fields["genre"].(string); ok {
			hit.Genre = v
		}
		if v, ok := h.Fields["total_pages"].(float64); ok {
			hit.TotalPages = int(v)
		}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		out.Hits = append(out.Hits, hit)
	}

	if facet, ok := res.Facets["genres"]; ok && facet.Terms != nil {
		for _, term := range facet.Terms.Terms() {
			out.Genres = append(out.Genres, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return out, nil
}

// buildQuery combines the text query with the filters.
func buildQuery(params Params) query.Query {
	var must []query.Query

	if text := strings.TrimSpace(params.Query); text != "" {
		title := bleve.NewMatchQuery(text)
		title.SetField("title")
		title.SetBoost(2)

		author := bleve.NewMatchQuery(text)
		author.SetField("author")

		// Typeahead on the last word the user typed.
		words := strings.Fields(strings.ToLower(text))
		prefix := bleve.NewPrefixQuery(words[len(words)-1])
		prefix.SetField("title")

		must = append(must, bleve.NewDisjunctionQuery(title, author, prefix))
	}

	if params.Genre != "" {
		genre := bleve.NewTermQuery(params.Genre)
		genre.SetField("genre")
		must = append(must, genre)
	}

	if params.MinPages > 0 || params.MaxPages > 0 {
		var minPtr, maxPtr *float64
		if params.MinPages > 0 {
			v := float64(params.MinPages)
			minPtr = &v
		}
		if params.MaxPages > 0 {
			v := float64(params.MaxPages)
			maxPtr = &v
		}
		inclusive := true
		pages := bleve.NewNumericRangeInclusiveQuery(minPtr, maxPtr, &inclusive, &inclusive)
		pages.SetField("total_pages")
		must = append(must, pages)
	}

	switch len(must) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return must[0]
	default:
		return bleve.NewConjunctionQuery(must...)
	}
}
