package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for book documents:
// stemmed English text on title and author, exact keyword on genre, and a
// numeric page count for range filters.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName
	indexMapping.TypeField = "type"

	docMapping := bleve.NewDocumentMapping()

	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = en.AnalyzerName
	titleField.Store = true
	titleField.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("title", titleField)

	authorField := bleve.NewTextFieldMapping()
	authorField.Analyzer = en.AnalyzerName
	authorField.Store = true
	authorField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("author", authorField)

	genreField := bleve.NewTextFieldMapping()
	genreField.Analyzer = keyword.Name
	genreField.Store = true
	docMapping.AddFieldMappingsAt("genre", genreField)

	pagesField := bleve.NewNumericFieldMapping()
	pagesField.Store = true
	docMapping.AddFieldMappingsAt("total_pages", pagesField)

	idField := bleve.NewKeywordFieldMapping()
	idField.Store = true
	docMapping.AddFieldMappingsAt("id", idField)

	typeField := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("type", typeField)

	indexMapping.AddDocumentMapping("book", docMapping)
	indexMapping.DefaultMapping = docMapping

	return indexMapping
}
