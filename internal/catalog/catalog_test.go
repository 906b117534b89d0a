package catalog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-atlas/pkg/types"
)

// --- fixtures ---

type paperFixture struct {
	Title    string   `json:"title"`
	Abstract string   `json:"abstract,omitempty"`
	Venue    string   `json:"venue,omitempty"`
	Authors  []string `json:"authors,omitempty"`
	PaperID  string   `json:"paper_id,omitempty"`
}

type catFixture struct {
	name    string
	summary string
	papers  []paperFixture
}

// writeRun writes a manifest and category files for one classification run.
func writeRun(t *testing.T, root string, year int, runID string, cats []catFixture) string {
	t.Helper()
	runDir := filepath.Join(root, strconv.Itoa(year), runID)
	require.NoError(t, os.MkdirAll(runDir, 0o755))

	manifest := map[string]any{
		"keyword":    "agent",
		"provider":   "test",
		"timestamp":  1730000000,
		"categories": []map[string]any{},
	}

	total := 0
	var manifestCats []map[string]any
	for i, cat := range cats {
		file := catFileName(i+1, cat.name)
		total += len(cat.papers)
		manifestCats = append(manifestCats, map[string]any{
			"name":        cat.name,
			"paper_count": len(cat.papers),
			"summary":     cat.summary,
			"file":        file,
		})

		data, err := json.Marshal(map[string]any{
			"name":        cat.name,
			"paper_count": len(cat.papers),
			"summary":     cat.summary,
			"papers":      cat.papers,
		})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(runDir, file), data, 0o644))
	}
	manifest["total_papers"] = total
	manifest["categories"] = manifestCats

	data, err := json.Marshal(manifest)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(runDir, manifestFile), data, 0o644))

	return runDir
}

func catFileName(n int, name string) string {
	return "0" + strconv.Itoa(n) + "_" + name + ".json"
}

func testStore(root string) *Store {
	return NewStore(types.CatalogConfig{DataDir: root})
}

func defaultCats() []catFixture {
	return []catFixture{
		{
			name:    "planning",
			summary: "Papers on multi-agent planning.",
			papers: []paperFixture{
				{Title: "Multi-Agent Planning", Abstract: "Planning with many agents.", Venue: "ICLR", Authors: []string{"Ada Smith"}, PaperID: "p1"},
				{Title: "Hierarchical Task Networks", Abstract: "HTN revisited.", Venue: "ICLR", PaperID: "p2"},
			},
		},
		{
			name: "memory",
			papers: []paperFixture{
				{Title: "Episodic Memory for Agents", Abstract: "Remembering episodes.", Venue: "NeurIPS", PaperID: "p3"},
			},
		},
	}
}

// --- ListYears ---

func TestListYears(t *testing.T) {
	root := t.TempDir()
	writeRun(t, root, 2023, "agent_1690000000", defaultCats())
	writeRun(t, root, 2025, "agent_1730000000", defaultCats())
	writeRun(t, root, 2024, "agent_1710000000", defaultCats())

	// Non-year entries are ignored.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "archive"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))

	years := testStore(root).ListYears()
	assert.Equal(t, []int{2025, 2024, 2023}, years)
}

func TestListYearsMissingRoot(t *testing.T) {
	store := testStore(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Empty(t, store.ListYears())
}

// --- LoadSnapshot ---

func TestLoadSnapshot(t *testing.T) {
	root := t.TempDir()
	writeRun(t, root, 2025, "agent_1730000000", defaultCats())

	var buf bytes.Buffer
	snap, err := testStore(root).LoadSnapshot(2025, &buf)
	require.NoError(t, err)

	assert.Equal(t, 2025, snap.Year)
	assert.Equal(t, "agent_1730000000", snap.RunID)
	assert.Equal(t, 3, snap.TotalCount)
	assert.Empty(t, snap.Warnings)

	// Buckets keep manifest order.
	require.Len(t, snap.Buckets, 2)
	assert.Equal(t, "planning", snap.Buckets[0].Name)
	assert.Equal(t, "memory", snap.Buckets[1].Name)
	assert.Equal(t, 2, snap.Buckets[0].Count)
	assert.Equal(t, "Papers on multi-agent planning.", snap.Buckets[0].Summary)

	// Papers carry their bucket label.
	assert.Equal(t, "planning", snap.Buckets[0].Papers[0].Category)

	// Total equals the sum of bucket counts.
	sum := 0
	for _, b := range snap.Buckets {
		sum += b.Count
	}
	assert.Equal(t, snap.TotalCount, sum)
}

func TestLoadSnapshotYearNotFound(t *testing.T) {
	root := t.TempDir()
	writeRun(t, root, 2025, "agent_1730000000", defaultCats())

	var buf bytes.Buffer
	_, err := testStore(root).LoadSnapshot(1999, &buf)
	assert.ErrorIs(t, err, ErrYearNotFound)
}

func TestLoadSnapshotYearWithoutRuns(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2025"), 0o755))

	var buf bytes.Buffer
	_, err := testStore(root).LoadSnapshot(2025, &buf)
	assert.ErrorIs(t, err, ErrYearNotFound)
}

func TestLoadSnapshotPicksLatestRunByTimestamp(t *testing.T) {
	root := t.TempDir()
	writeRun(t, root, 2025, "agent_1700000000", defaultCats()[:1])
	writeRun(t, root, 2025, "agent_1730000000", defaultCats())
	writeRun(t, root, 2025, "scratch", defaultCats()[:1]) // no timestamp suffix

	var buf bytes.Buffer
	snap, err := testStore(root).LoadSnapshot(2025, &buf)
	require.NoError(t, err)
	assert.Equal(t, "agent_1730000000", snap.RunID)
}

func TestLoadSnapshotPicksLatestRunByModTime(t *testing.T) {
	root := t.TempDir()
	oldDir := writeRun(t, root, 2025, "agent_1730000000", defaultCats()[:1])
	writeRun(t, root, 2025, "agent_1700000000", defaultCats())

	// Make the run with the smaller timestamp suffix the most recently
	// modified one; mtime selection must prefer it.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(oldDir, past, past))

	store := NewStore(types.CatalogConfig{DataDir: root, RunSelection: types.SelectByModTime})
	var buf bytes.Buffer
	snap, err := store.LoadSnapshot(2025, &buf)
	require.NoError(t, err)
	assert.Equal(t, "agent_1700000000", snap.RunID)
}

func TestLoadSnapshotSkipsMalformedCategoryFile(t *testing.T) {
	root := t.TempDir()
	cats := []catFixture{
		defaultCats()[0],
		{name: "broken", papers: []paperFixture{{Title: "x"}}},
		defaultCats()[1],
	}
	runDir := writeRun(t, root, 2025, "agent_1730000000", cats)

	// Corrupt the middle category file after writing the run.
	require.NoError(t, os.WriteFile(filepath.Join(runDir, catFileName(2, "broken")), []byte("{not json"), 0o644))

	var buf bytes.Buffer
	snap, err := testStore(root).LoadSnapshot(2025, &buf)
	require.NoError(t, err)

	require.Len(t, snap.Buckets, 2)
	assert.Equal(t, "planning", snap.Buckets[0].Name)
	assert.Equal(t, "memory", snap.Buckets[1].Name)
	assert.Equal(t, 3, snap.TotalCount)

	// The skip is recorded on the snapshot and written to the warn writer.
	require.NotEmpty(t, snap.Warnings)
	assert.Contains(t, snap.Warnings[0], "broken")
	assert.Contains(t, buf.String(), "warning:")
}

func TestLoadSnapshotMissingPapersArrayIsMalformed(t *testing.T) {
	root := t.TempDir()
	runDir := writeRun(t, root, 2025, "agent_1730000000", defaultCats())

	require.NoError(t, os.WriteFile(
		filepath.Join(runDir, catFileName(1, "planning")),
		[]byte(`{"name": "planning", "summary": "no papers key"}`), 0o644))

	var buf bytes.Buffer
	snap, err := testStore(root).LoadSnapshot(2025, &buf)
	require.NoError(t, err)
	require.Len(t, snap.Buckets, 1)
	assert.Equal(t, "memory", snap.Buckets[0].Name)
	assert.NotEmpty(t, snap.Warnings)
}

func TestLoadSnapshotDefaultsOptionalFields(t *testing.T) {
	root := t.TempDir()
	cats := []catFixture{{
		name:   "sparse",
		papers: []paperFixture{{Title: "Bare Minimum"}},
	}}
	writeRun(t, root, 2025, "agent_1730000000", cats)

	var buf bytes.Buffer
	snap, err := testStore(root).LoadSnapshot(2025, &buf)
	require.NoError(t, err)

	p := snap.Buckets[0].Papers[0]
	assert.Equal(t, "Bare Minimum", p.Title)
	assert.Empty(t, p.Abstract)
	assert.Empty(t, p.Authors)
	assert.Empty(t, p.ID)
}

func TestLoadSnapshotToleratesUnknownFields(t *testing.T) {
	root := t.TempDir()
	runDir := writeRun(t, root, 2025, "agent_1730000000", defaultCats()[:1])

	require.NoError(t, os.WriteFile(
		filepath.Join(runDir, catFileName(1, "planning")),
		[]byte(`{"name": "planning", "future_field": {"a": 1}, "papers": [
			{"title": "Forward Compatible", "score": 0.93, "extra": ["x"]}
		]}`), 0o644))

	var buf bytes.Buffer
	snap, err := testStore(root).LoadSnapshot(2025, &buf)
	require.NoError(t, err)
	require.Len(t, snap.Buckets, 1)
	assert.Equal(t, "Forward Compatible", snap.Buckets[0].Papers[0].Title)
}

func TestLoadSnapshotDeduplicatesBySourceID(t *testing.T) {
	root := t.TempDir()
	cats := []catFixture{
		{name: "a", papers: []paperFixture{{Title: "Shared", PaperID: "dup"}}},
		{name: "b", papers: []paperFixture{
			{Title: "Shared (again)", PaperID: "dup"},
			{Title: "Unique", PaperID: "u1"},
		}},
	}
	writeRun(t, root, 2025, "agent_1730000000", cats)

	var buf bytes.Buffer
	snap, err := testStore(root).LoadSnapshot(2025, &buf)
	require.NoError(t, err)

	// The duplicate stays in its first bucket only.
	assert.Equal(t, 1, snap.Buckets[0].Count)
	assert.Equal(t, 1, snap.Buckets[1].Count)
	assert.Equal(t, 2, snap.TotalCount)
	assert.Equal(t, "Unique", snap.Buckets[1].Papers[0].Title)
}

func TestLoadSnapshotWarnsOnManifestCountMismatch(t *testing.T) {
	root := t.TempDir()
	runDir := writeRun(t, root, 2025, "agent_1730000000", defaultCats())

	// Rewrite the manifest with a wrong total.
	data, err := os.ReadFile(filepath.Join(runDir, manifestFile))
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	m["total_papers"] = 99
	data, err = json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(runDir, manifestFile), data, 0o644))

	var buf bytes.Buffer
	snap, err := testStore(root).LoadSnapshot(2025, &buf)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Warnings)
	assert.Contains(t, buf.String(), "manifest reports")
}

func TestLoadSnapshotMissingManifest(t *testing.T) {
	root := t.TempDir()
	runDir := writeRun(t, root, 2025, "agent_1730000000", defaultCats())
	require.NoError(t, os.Remove(filepath.Join(runDir, manifestFile)))

	var buf bytes.Buffer
	_, err := testStore(root).LoadSnapshot(2025, &buf)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrYearNotFound)
}

// --- run selection helpers ---

func TestRunTimestamp(t *testing.T) {
	tests := []struct {
		name string
		want int64
		ok   bool
	}{
		{"agent_1730000000", 1730000000, true},
		{"multi_agent_1730000000", 1730000000, true},
		{"scratch", 0, false},
		{"trailing_", 0, false},
		{"agent_notanumber", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := runTimestamp(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// --- export ---

func TestExportRoundTrip(t *testing.T) {
	root := t.TempDir()
	writeRun(t, root, 2025, "agent_1730000000", defaultCats())

	var buf bytes.Buffer
	snap, err := testStore(root).LoadSnapshot(2025, &buf)
	require.NoError(t, err)

	jsonPath := filepath.Join(t.TempDir(), "atlas-2025.json")
	require.NoError(t, ExportJSON(snap, jsonPath))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var restored types.YearSnapshot
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, snap.TotalCount, restored.TotalCount)
	assert.Equal(t, snap.RunID, restored.RunID)
	require.Len(t, restored.Buckets, len(snap.Buckets))

	yamlPath := filepath.Join(t.TempDir(), "atlas-2025.yaml")
	require.NoError(t, ExportYAML(snap, yamlPath))
	yamlData, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(yamlData), "planning")
}
