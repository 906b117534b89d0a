// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/paper-atlas/internal/catalog"
	"github.com/pdiddy/paper-atlas/pkg/types"
)

// Request holds one query against a year of the catalog.
type Request struct {
	Year       int      `json:"year"`
	Text       string   `json:"q"`
	Categories []string `json:"categories,omitempty"`
	Fields     []string `json:"fields,omitempty"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}

// Result is the complete answer to one Request. It is always well-formed:
// failures surface through the Error field, never as a raw error.
type Result struct {
	Year           int            `json:"year"`
	Papers         []types.Paper  `json:"papers"`
	TotalCount     int            `json:"total_count"`
	TotalPages     int            `json:"total_pages"`
	Page           int            `json:"page"`
	PageSize       int            `json:"page_size"`
	CategoryCounts map[string]int `json:"category_counts"`
	Error          string         `json:"error,omitempty"`
}

// Service combines the catalog store and the in-memory filter behind a
// stable request/response contract. It owns the per-year snapshot cache;
// snapshots are shared read-only and replaced, never mutated, so cached
// entries are safe for concurrent readers.
type Service struct {
	store *catalog.Store
	cfg   types.QueryConfig
	warn  io.Writer

	mu        sync.RWMutex
	snapshots map[int]*types.YearSnapshot
}

// NewService returns a Service over store. Load-time warnings are written
// to warn.
func NewService(store *catalog.Store, cfg types.QueryConfig, warn io.Writer) *Service {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if warn == nil {
		warn = io.Discard
	}
	return &Service{
		store:     store,
		cfg:       cfg,
		warn:      warn,
		snapshots: make(map[int]*types.YearSnapshot),
	}
}

// Years returns the available catalog years, most recent first.
func (s *Service) Years() []int {
	return s.store.ListYears()
}

// Snapshot returns the cached snapshot for year, loading it on first use.
func (s *Service) Snapshot(year int) (*types.YearSnapshot, error) {
	s.mu.RLock()
	snap, ok := s.snapshots[year]
	s.mu.RUnlock()
	if ok {
		return snap, nil
	}
	return s.Reload(year)
}

// Reload builds a fresh snapshot for year and swaps it into the cache.
// In-flight readers keep the snapshot they already hold.
func (s *Service) Reload(year int) (*types.YearSnapshot, error) {
	snap, err := s.store.LoadSnapshot(year, s.warn)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.snapshots[year] = snap
	s.mu.Unlock()
	return snap, nil
}

// HandleQuery resolves the snapshot for req.Year and applies the text and
// category filters and pagination. It never returns an error: an absent
// year, a failed load, or a bad page number produce a Result with an
// explanatory Error field and an empty paper list.
func (s *Service) HandleQuery(req Request) Result {
	res := Result{
		Year:           req.Year,
		Papers:         []types.Paper{},
		CategoryCounts: map[string]int{},
		Page:           req.Page,
		PageSize:       req.PageSize,
	}

	if res.PageSize <= 0 {
		res.PageSize = s.cfg.DefaultPageSize
	}
	if res.PageSize > s.cfg.MaxPageSize {
		res.PageSize = s.cfg.MaxPageSize
	}

	snap, err := s.Snapshot(req.Year)
	if err != nil {
		if errors.Is(err, catalog.ErrYearNotFound) {
			res.Error = "year unavailable"
		} else {
			fmt.Fprintf(s.warn, "warning: loading year %d: %v\n", req.Year, err)
			res.Error = "failed to load catalog data"
		}
		return res
	}

	res.CategoryCounts = CategoryCounts(snap)

	matched := SearchFields(snap, req.Text, req.Categories, req.Fields)

	pageSlice, total, pages, err := Paginate(matched, res.Page, res.PageSize)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Papers = pageSlice
	res.TotalCount = total
	res.TotalPages = pages
	return res
}
