package logpush

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/davidthor/logpushctl/pkg/errors"
)

// maxDateFallback bounds how many dates Latest walks backwards when recent
// folders are sparse or the filter is very selective.
const maxDateFallback = 7

// Latest returns the most recent entries matching the filter for an
// environment, most-recent-first, without the caller naming a date.
//
// It walks dates newest-first and, within each date, object keys in
// descending order, which for this dataset approximates reverse
// chronological order. Objects are read forward but only the tail of each is
// retained, so memory stays bounded by the limit. The walk stops once limit
// entries are collected or maxDateFallback dates are exhausted.
func (e *Engine) Latest(ctx context.Context, environment string, filter FilterSpec, limit int) ([]*Entry, error) {
	if environment == "" {
		return nil, errors.ValidationError("environment is required", nil)
	}
	if limit <= 0 {
		return nil, nil
	}

	dates, err := e.catalog.ListDates(ctx, environment, maxDateFallback)
	if err != nil {
		return nil, err
	}

	var collected []*Entry
	for _, date := range dates {
		files, err := e.catalog.ListAllFiles(ctx, environment, date.Date)
		if err != nil {
			return nil, err
		}

		// Descending key order within the date.
		keys := make([]string, 0, len(files))
		for i := len(files) - 1; i >= 0; i-- {
			keys = append(keys, files[i].Key)
		}

		// Fetch a batch of objects at a time; merge the batch in its
		// descending key order so results are deterministic.
		for start := 0; start < len(keys) && len(collected) < limit; start += fetchParallelism {
			end := start + fetchParallelism
			if end > len(keys) {
				end = len(keys)
			}
			batch := keys[start:end]

			tails := make([][]*Entry, len(batch))
			g, gctx := errgroup.WithContext(ctx)
			for i, key := range batch {
				g.Go(func() error {
					tail, err := e.objectTail(gctx, key, filter, limit)
					if err != nil {
						return err
					}
					tails[i] = tail
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return nil, err
			}

			for _, tail := range tails {
				collected = append(collected, tail...)
			}
		}

		if len(collected) >= limit {
			break
		}
	}

	// Key order is only a proxy for recency; order the final set by event
	// time before truncating.
	sort.SliceStable(collected, func(i, j int) bool {
		return collected[i].Timestamp.After(collected[j].Timestamp)
	})
	if len(collected) > limit {
		collected = collected[:limit]
	}
	return collected, nil
}

// objectTail scans one object forward, retaining only its last n matching
// entries.
func (e *Engine) objectTail(ctx context.Context, key string, filter FilterSpec, n int) ([]*Entry, error) {
	reader, err := OpenObject(ctx, e.store, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var tail []*Entry
	for {
		line, ok := reader.Next()
		if !ok {
			break
		}
		entry, ok := ParseEntry(line)
		if !ok || !filter.Matches(entry) {
			continue
		}
		tail = append(tail, entry)
		if len(tail) > n {
			tail = tail[1:]
		}
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return tail, nil
}
