// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog discovers classification runs on disk and loads them
// into immutable per-year snapshots.
//
// The classification pipeline writes one directory per run under
// <data-dir>/<year>/<keyword>_<unix-ts>/, containing a manifest
// (00_classification_summary.json) and one JSON file per category.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-atlas/pkg/types"
)

const manifestFile = "00_classification_summary.json"

// ErrYearNotFound is returned when the requested year has no run
// directory under the data root.
var ErrYearNotFound = errors.New("year not found in catalog")

// ErrMalformedData marks a category file that cannot be parsed as the
// expected structure. It is recovered during loading: the file is skipped
// and a warning recorded, so it never surfaces from LoadSnapshot directly.
var ErrMalformedData = errors.New("malformed category file")

// Store reads classification output from the configured data directory.
// It holds no mutable state; every load builds a fresh snapshot.
type Store struct {
	cfg types.CatalogConfig
}

// NewStore returns a Store over cfg.DataDir.
func NewStore(cfg types.CatalogConfig) *Store {
	if cfg.RunSelection == "" {
		cfg.RunSelection = types.SelectByTimestamp
	}
	return &Store{cfg: cfg}
}

// ListYears scans the data root for year directories (all-digit names)
// and returns them sorted descending, most recent first. A missing data
// root is a configuration condition, not an error: the result is empty.
func (s *Store) ListYears() []int {
	entries, err := os.ReadDir(s.cfg.DataDir)
	if err != nil {
		return nil
	}

	var years []int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		year, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		years = append(years, year)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// manifest mirrors 00_classification_summary.json. Unknown fields in the
// file are ignored for forward compatibility.
type manifest struct {
	Keyword     string `json:"keyword"`
	Provider    string `json:"provider"`
	Timestamp   int64  `json:"timestamp"`
	TotalPapers int    `json:"total_papers"`
	Categories  []struct {
		Name       string `json:"name"`
		PaperCount int    `json:"paper_count"`
		Summary    string `json:"summary"`
		File       string `json:"file"`
	} `json:"categories"`
}

// categoryFile mirrors one NN_<category>.json file.
type categoryFile struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
	Papers  []struct {
		Title    string   `json:"title"`
		Abstract string   `json:"abstract"`
		Venue    string   `json:"venue"`
		Authors  []string `json:"authors"`
		PaperID  string   `json:"paper_id"`
		PDFURL   string   `json:"pdf_url"`
		ForumURL string   `json:"forum_url"`
	} `json:"papers"`
}

// LoadSnapshot reads the selected run for year and assembles an immutable
// snapshot. It returns ErrYearNotFound when the year has no run directory.
// A category file that cannot be parsed is skipped with a warning written
// to w and recorded on the snapshot; one bad file never hides the rest of
// the year's data.
func (s *Store) LoadSnapshot(year int, w io.Writer) (*types.YearSnapshot, error) {
	if w == nil {
		w = io.Discard
	}

	runDir, runID, err := s.selectRun(year)
	if err != nil {
		return nil, err
	}

	m, err := readManifest(runDir)
	if err != nil {
		return nil, fmt.Errorf("loading year %d run %s: %w", year, runID, err)
	}

	snap := &types.YearSnapshot{
		Year:  year,
		RunID: runID,
	}

	// Papers keep their first bucket; a duplicate source ID in a later
	// category is dropped so each paper lands in exactly one bucket.
	seen := make(map[string]bool)

	for _, cat := range m.Categories {
		bucket, err := readCategory(runDir, cat.File, cat.Name, seen)
		if err != nil {
			warn := fmt.Sprintf("skipping category %q (%s): %v", cat.Name, cat.File, err)
			fmt.Fprintf(w, "warning: %s\n", warn)
			snap.Warnings = append(snap.Warnings, warn)
			continue
		}
		if bucket.Summary == "" {
			bucket.Summary = cat.Summary
		}
		snap.Buckets = append(snap.Buckets, bucket)
		snap.TotalCount += bucket.Count
	}

	if m.TotalPapers != 0 && m.TotalPapers != snap.TotalCount {
		warn := fmt.Sprintf("manifest reports %d papers, loaded %d", m.TotalPapers, snap.TotalCount)
		fmt.Fprintf(w, "warning: %s\n", warn)
		snap.Warnings = append(snap.Warnings, warn)
	}

	return snap, nil
}

// selectRun locates the run directory for year according to the configured
// selection rule.
func (s *Store) selectRun(year int) (string, string, error) {
	yearDir := filepath.Join(s.cfg.DataDir, strconv.Itoa(year))
	entries, err := os.ReadDir(yearDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", fmt.Errorf("year %d: %w", year, ErrYearNotFound)
		}
		return "", "", fmt.Errorf("reading year directory %s: %w", yearDir, err)
	}

	var runs []os.DirEntry
	for _, entry := range entries {
		if entry.IsDir() {
			runs = append(runs, entry)
		}
	}
	if len(runs) == 0 {
		return "", "", fmt.Errorf("year %d has no runs: %w", year, ErrYearNotFound)
	}

	var best os.DirEntry
	switch s.cfg.RunSelection {
	case types.SelectByModTime:
		best = latestByModTime(runs)
	default:
		best = latestByTimestamp(runs)
	}

	return filepath.Join(yearDir, best.Name()), best.Name(), nil
}

// latestByTimestamp picks the run with the largest numeric suffix in its
// name. Runs without a parseable suffix sort before any run with one;
// among themselves they fall back to name order.
func latestByTimestamp(runs []os.DirEntry) os.DirEntry {
	best := runs[0]
	bestTS, bestOK := runTimestamp(best.Name())
	for _, run := range runs[1:] {
		ts, ok := runTimestamp(run.Name())
		switch {
		case ok && !bestOK:
			best, bestTS, bestOK = run, ts, true
		case ok == bestOK && (ts > bestTS || (ts == bestTS && run.Name() > best.Name())):
			best, bestTS = run, ts
		}
	}
	return best
}

// runTimestamp extracts the unix timestamp suffix from a run directory
// name like "agent_1730000000".
func runTimestamp(name string) (int64, bool) {
	idx := strings.LastIndex(name, "_")
	if idx < 0 || idx == len(name)-1 {
		return 0, false
	}
	ts, err := strconv.ParseInt(name[idx+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

func latestByModTime(runs []os.DirEntry) os.DirEntry {
	best := runs[0]
	bestInfo, _ := best.Info()
	for _, run := range runs[1:] {
		info, err := run.Info()
		if err != nil {
			continue
		}
		if bestInfo == nil || info.ModTime().After(bestInfo.ModTime()) {
			best, bestInfo = run, info
		}
	}
	return best
}

func readManifest(runDir string) (*manifest, error) {
	data, err := os.ReadFile(filepath.Join(runDir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// readCategory parses one category file into a bucket. Optional paper
// fields (abstract, authors, URLs) default to empty; a missing papers
// array or a type mismatch makes the whole file malformed.
func readCategory(runDir, file, name string, seen map[string]bool) (types.CategoryBucket, error) {
	data, err := os.ReadFile(filepath.Join(runDir, file))
	if err != nil {
		return types.CategoryBucket{}, fmt.Errorf("reading category file: %w", err)
	}

	var cf categoryFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return types.CategoryBucket{}, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	if cf.Papers == nil {
		return types.CategoryBucket{}, fmt.Errorf("%w: no papers array", ErrMalformedData)
	}

	if cf.Name != "" {
		name = cf.Name
	}

	bucket := types.CategoryBucket{
		Name:    name,
		Summary: cf.Summary,
		Papers:  make([]types.Paper, 0, len(cf.Papers)),
	}

	for _, p := range cf.Papers {
		if p.PaperID != "" {
			if seen[p.PaperID] {
				continue
			}
			seen[p.PaperID] = true
		}
		bucket.Papers = append(bucket.Papers, types.Paper{
			ID:       p.PaperID,
			Title:    p.Title,
			Authors:  p.Authors,
			Abstract: p.Abstract,
			Venue:    p.Venue,
			Category: name,
			PDFURL:   p.PDFURL,
			ForumURL: p.ForumURL,
		})
	}
	bucket.Count = len(bucket.Papers)

	return bucket, nil
}
