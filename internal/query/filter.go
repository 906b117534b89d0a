// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query filters year snapshots in memory and exposes the query
// service the web layer calls.
package query

import (
	"errors"
	"strings"

	"github.com/pdiddy/paper-atlas/pkg/types"
)

// ErrInvalidPage is returned when a page number below 1 is requested.
var ErrInvalidPage = errors.New("page number must be 1 or greater")

// ErrInvalidPageSize is returned when a page size below 1 is requested.
var ErrInvalidPageSize = errors.New("page size must be 1 or greater")

// Search field names accepted by SearchFields.
const (
	FieldTitle    = "title"
	FieldAbstract = "abstract"
	FieldAuthors  = "authors"
)

// Search returns the papers matching the text query and category filter.
// The text filter is a case-insensitive substring match against title or
// abstract; a trimmed-empty query applies no text filter. An empty
// category list means all categories. Both filters combine with AND.
// Output order is stable: bucket order, then source order within a bucket.
func Search(snap *types.YearSnapshot, queryText string, categories []string) []types.Paper {
	return SearchFields(snap, queryText, categories, nil)
}

// SearchFields is Search with an explicit list of text-match fields
// (title, abstract, authors). A nil or empty list means title and abstract.
func SearchFields(snap *types.YearSnapshot, queryText string, categories, fields []string) []types.Paper {
	needle := strings.ToLower(strings.TrimSpace(queryText))

	var catSet map[string]bool
	if len(categories) > 0 {
		catSet = make(map[string]bool, len(categories))
		for _, c := range categories {
			catSet[c] = true
		}
	}

	matchTitle, matchAbstract, matchAuthors := fieldSet(fields)

	var results []types.Paper
	for _, bucket := range snap.Buckets {
		if catSet != nil && !catSet[bucket.Name] {
			continue
		}
		for _, p := range bucket.Papers {
			if needle != "" && !matches(p, needle, matchTitle, matchAbstract, matchAuthors) {
				continue
			}
			results = append(results, p)
		}
	}
	return results
}

func fieldSet(fields []string) (title, abstract, authors bool) {
	if len(fields) == 0 {
		return true, true, false
	}
	for _, f := range fields {
		switch f {
		case FieldTitle:
			title = true
		case FieldAbstract:
			abstract = true
		case FieldAuthors:
			authors = true
		}
	}
	return title, abstract, authors
}

func matches(p types.Paper, needle string, title, abstract, authors bool) bool {
	if title && strings.Contains(strings.ToLower(p.Title), needle) {
		return true
	}
	if abstract && strings.Contains(strings.ToLower(p.Abstract), needle) {
		return true
	}
	if authors {
		for _, a := range p.Authors {
			if strings.Contains(strings.ToLower(a), needle) {
				return true
			}
		}
	}
	return false
}

// Paginate returns the 1-indexed page of results along with the total
// result count and page count. A page past the end is a valid, empty
// result; a page below 1 fails with ErrInvalidPage.
func Paginate(results []types.Paper, page, pageSize int) ([]types.Paper, int, int, error) {
	if page < 1 {
		return nil, 0, 0, ErrInvalidPage
	}
	if pageSize < 1 {
		return nil, 0, 0, ErrInvalidPageSize
	}

	total := len(results)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start >= total {
		return []types.Paper{}, total, totalPages, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return results[start:end], total, totalPages, nil
}

// CategoryCounts returns the paper count per category label for the
// unfiltered snapshot.
func CategoryCounts(snap *types.YearSnapshot) map[string]int {
	counts := make(map[string]int, len(snap.Buckets))
	for _, b := range snap.Buckets {
		counts[b.Name] = b.Count
	}
	return counts
}
