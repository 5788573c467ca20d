package logpush

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// fetchParallelism bounds how many objects a full-scope scan fetches at once.
const fetchParallelism = 4

// Stats summarizes every matching entry in a date/environment scope.
type Stats struct {
	Environment string `json:"environment"`
	Date        string `json:"date"`

	TotalMatched   int `json:"total_matched"`
	TotalScanned   int `json:"total_scanned"`
	MalformedLines int `json:"malformed_lines"`
	FilteredOut    int `json:"filtered_out"`
	FilesScanned   int `json:"files_scanned"`

	// ByStatusBucket counts entries per status class (2xx, 3xx, 4xx,
	// 5xx); entries without a status land in "none".
	ByStatusBucket map[string]int `json:"by_status_bucket"`
	ByOutcome      map[string]int `json:"by_outcome"`
	ByScript       map[string]int `json:"by_script"`

	ErrorCount int     `json:"error_count"`
	ErrorRate  float64 `json:"error_rate"`
}

// TopScripts returns the script names with the highest counts, descending,
// up to n. Ties break by name for determinism.
func (s *Stats) TopScripts(n int) []string {
	names := make([]string, 0, len(s.ByScript))
	for name := range s.ByScript {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if s.ByScript[names[i]] != s.ByScript[names[j]] {
			return s.ByScript[names[i]] > s.ByScript[names[j]]
		}
		return names[i] < names[j]
	})
	if n > 0 && len(names) > n {
		names = names[:n]
	}
	return names
}

// Aggregate scans the full scope (no limit), applying the optional filter,
// and folds every object into one Stats. Objects are fetched with bounded
// parallelism; per-object partials are merged in ascending key order so the
// result is deterministic.
func (e *Engine) Aggregate(ctx context.Context, scope Scope, filter FilterSpec) (*Stats, error) {
	keys, err := e.resolveKeys(ctx, scope)
	if err != nil {
		return nil, err
	}

	partials := make([]*Stats, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchParallelism)

	for i, key := range keys {
		g.Go(func() error {
			partial, err := e.aggregateObject(gctx, key, filter)
			if err != nil {
				return err
			}
			partials[i] = partial
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := newStats()
	stats.Environment = scope.Environment
	stats.Date = scope.Date
	for _, partial := range partials {
		stats.merge(partial)
	}

	if stats.TotalMatched > 0 {
		stats.ErrorRate = float64(stats.ErrorCount) / float64(stats.TotalMatched) * 100
	}
	return stats, nil
}

// aggregateObject folds one object into a partial Stats without
// materializing its entries.
func (e *Engine) aggregateObject(ctx context.Context, key string, filter FilterSpec) (*Stats, error) {
	reader, err := OpenObject(ctx, e.store, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	stats := newStats()
	stats.FilesScanned = 1

	for {
		line, ok := reader.Next()
		if !ok {
			break
		}
		stats.TotalScanned++

		entry, ok := ParseEntry(line)
		if !ok {
			stats.MalformedLines++
			continue
		}
		if !filter.Matches(entry) {
			stats.FilteredOut++
			continue
		}

		stats.TotalMatched++
		stats.ByStatusBucket[statusBucket(entry)]++
		stats.ByOutcome[entry.Outcome]++
		if entry.ScriptName != "" {
			stats.ByScript[entry.ScriptName]++
		}
		if entry.HasErrors() {
			stats.ErrorCount++
		}
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

func newStats() *Stats {
	return &Stats{
		ByStatusBucket: make(map[string]int),
		ByOutcome:      make(map[string]int),
		ByScript:       make(map[string]int),
	}
}

func (s *Stats) merge(other *Stats) {
	s.TotalMatched += other.TotalMatched
	s.TotalScanned += other.TotalScanned
	s.MalformedLines += other.MalformedLines
	s.FilteredOut += other.FilteredOut
	s.FilesScanned += other.FilesScanned
	s.ErrorCount += other.ErrorCount
	for k, v := range other.ByStatusBucket {
		s.ByStatusBucket[k] += v
	}
	for k, v := range other.ByOutcome {
		s.ByOutcome[k] += v
	}
	for k, v := range other.ByScript {
		s.ByScript[k] += v
	}
}

// statusBucket maps an entry's status to its class; entries without a
// status report "none".
func statusBucket(e *Entry) string {
	if !e.HasStatus || e.Status < 100 {
		return "none"
	}
	return fmt.Sprintf("%dxx", e.Status/100)
}
