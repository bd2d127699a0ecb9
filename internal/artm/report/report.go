// Package report renders master component snapshots (score values,
// GetMasterComponentInfo) to human-readable text using Handlebars-style
// templates, the way the teacher's template engine renders domain
// templates with raymond.
package report

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aymerick/raymond"
)

var (
	helpersOnce sync.Once
)

// DefaultTemplate is the built-in training-summary report, overridable by
// callers that want a different layout.
const DefaultTemplate = `Training snapshot
  processors active:  {{num_processors}}
  items processed:    {{items_processed}}
  {{#each scores}}
  {{name}}: {{value}}
  {{/each}}
`

// Snapshot is the data a report is rendered against: a flat set of named
// score values plus master component counters.
type Snapshot struct {
	NumProcessors  int
	ItemsProcessed int64
	Scores         map[string]any
}

// scoreRow is the per-score view the template iterates, sorted by name so
// rendering is deterministic across runs.
type scoreRow struct {
	Name  string
	Value any
}

// Render renders tmplSource against snap. An empty tmplSource uses
// DefaultTemplate.
func Render(tmplSource string, snap Snapshot) (string, error) {
	registerHelpers()

	if tmplSource == "" {
		tmplSource = DefaultTemplate
	}

	rows := make([]scoreRow, 0, len(snap.Scores))
	for name, v := range snap.Scores {
		rows = append(rows, scoreRow{Name: name, Value: v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	ctx := map[string]any{
		"num_processors":  snap.NumProcessors,
		"items_processed": snap.ItemsProcessed,
		"scores":          rows,
	}

	out, err := raymond.Render(tmplSource, ctx)
	if err != nil {
		return "", fmt.Errorf("report: render: %w", err)
	}
	return out, nil
}

// registerHelpers installs the "round" helper used by score-value
// templates, once per process (raymond.RegisterHelper panics if the same
// name is registered twice).
func registerHelpers() {
	helpersOnce.Do(func() {
		raymond.RegisterHelper("round", func(v float64, places int) string {
			scale := 1.0
			for i := 0; i < places; i++ {
				scale *= 10
			}
			rounded := float64(int(v*scale+0.5)) / scale
			return fmt.Sprintf("%.*f", places, rounded)
		})
	})
}
