// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Paper holds the metadata for one classified paper as read from a
// category file. Records are immutable once loaded.
type Paper struct {
	// ID is the opaque source identifier carried over from the
	// classification pipeline (e.g. an OpenReview forum ID). It is used
	// only for stable ordering and deduplication and may be empty.
	ID string `json:"paper_id,omitempty" yaml:"paper_id,omitempty"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order. Empty when the
	// source omits them.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Abstract is the paper abstract. Empty when the source omits it.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Venue is the source conference label (e.g. "ICLR").
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Category is the topical label the classification run assigned.
	// Filled from the owning bucket at load time.
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// PDFURL and ForumURL link to the paper sources when available.
	PDFURL   string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`
	ForumURL string `json:"forum_url,omitempty" yaml:"forum_url,omitempty"`
}

// CategoryBucket groups the papers assigned to one topical label within
// a year, in the order the classification run emitted them.
type CategoryBucket struct {
	// Name is the category label.
	Name string `json:"name" yaml:"name"`

	// Summary is the generated description of the category, if any.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Count is the number of papers in the bucket.
	Count int `json:"count" yaml:"count"`

	// Papers holds the bucket members in source order.
	Papers []Paper `json:"papers" yaml:"papers"`
}

// YearSnapshot is the immutable in-memory representation of one year's
// classified papers. A snapshot is never mutated after construction;
// a reload builds a fresh snapshot and swaps the reference.
type YearSnapshot struct {
	// Year is the catalog year the snapshot was loaded for.
	Year int `json:"year" yaml:"year"`

	// RunID names the classification run directory the data came from.
	RunID string `json:"run_id" yaml:"run_id"`

	// TotalCount is the number of papers across all buckets. It always
	// equals the sum of the bucket counts.
	TotalCount int `json:"total_count" yaml:"total_count"`

	// Buckets holds the category buckets in manifest order.
	Buckets []CategoryBucket `json:"categories" yaml:"categories"`

	// Warnings records per-file problems recovered during loading
	// (skipped category files, count mismatches).
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Bucket returns the bucket with the given label, or nil if the snapshot
// has no such category.
func (s *YearSnapshot) Bucket(name string) *CategoryBucket {
	for i := range s.Buckets {
		if s.Buckets[i].Name == name {
			return &s.Buckets[i]
		}
	}
	return nil
}

// CategoryNames returns the category labels in bucket order.
func (s *YearSnapshot) CategoryNames() []string {
	names := make([]string, len(s.Buckets))
	for i, b := range s.Buckets {
		names[i] = b.Name
	}
	return names
}
