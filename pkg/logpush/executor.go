package logpush

import (
	"context"

	"github.com/davidthor/logpushctl/pkg/errors"
	"github.com/davidthor/logpushctl/pkg/storage"
)

// Scope delimits which objects a query touches: an environment, a date, and
// optionally a single object key within them.
type Scope struct {
	Environment string
	Date        string

	// Key, when set, restricts the scan to that single object.
	Key string
}

// QueryResult is one bounded page of a scan.
type QueryResult struct {
	// Entries are in ascending (object key, line offset) order.
	Entries []*Entry

	// NextCursor resumes the scan where this page stopped. Nil means the
	// scope was exhausted.
	NextCursor *Cursor

	// ScannedLines counts every raw line consumed, matching or not.
	ScannedLines int

	// MalformedLines counts lines dropped by the parser.
	MalformedLines int

	// FilesScanned counts objects opened during this page.
	FilesScanned int
}

// Engine executes queries against one bucket of logpush archives.
// It is stateless between calls; concurrent calls share nothing but the
// storage client.
type Engine struct {
	store   storage.Store
	catalog *Catalog
}

// NewEngine creates an Engine over the given store.
func NewEngine(store storage.Store) *Engine {
	return &Engine{
		store:   store,
		catalog: NewCatalog(store),
	}
}

// Catalog returns the engine's object catalog.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Execute scans the scope in ascending (key, line) order, returning at most
// limit entries matching the filter and a cursor to resume from.
//
// A nil cursor starts from the beginning. The returned cursor is nil once
// the scope is exhausted. A limit of zero returns no entries and echoes the
// input cursor. Resuming with a cursor whose key is no longer enumerable in
// the scope fails with InvalidCursor.
func (e *Engine) Execute(ctx context.Context, scope Scope, filter FilterSpec, limit int, cursor *Cursor) (*QueryResult, error) {
	if limit < 0 {
		return nil, errors.ValidationError("limit must not be negative", map[string]interface{}{
			"limit": limit,
		})
	}
	if limit == 0 {
		return &QueryResult{NextCursor: cursor}, nil
	}

	keys, err := e.resolveKeys(ctx, scope)
	if err != nil {
		return nil, err
	}

	start := 0
	if cursor != nil {
		start = indexOfKey(keys, cursor.Key)
		if start < 0 {
			return nil, errors.InvalidCursor("object " + cursor.Key + " is no longer in scope")
		}
	}

	result := &QueryResult{}
	for i := start; i < len(keys); i++ {
		skip := 0
		if cursor != nil && i == start {
			skip = cursor.Line
		}

		next, err := e.scanObject(ctx, keys[i], filter, limit, skip, result)
		if err != nil {
			return result, err
		}
		if next != nil {
			result.NextCursor = next
			return result, nil
		}
	}

	return result, nil
}

// scanObject consumes one object, folding matches into result. It returns a
// non-nil cursor when the limit was reached inside this object.
func (e *Engine) scanObject(ctx context.Context, key string, filter FilterSpec, limit, skip int, result *QueryResult) (*Cursor, error) {
	reader, err := OpenObject(ctx, e.store, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	result.FilesScanned++
	if skip > 0 {
		reader.Skip(skip)
	}

	for {
		line, ok := reader.Next()
		if !ok {
			break
		}
		result.ScannedLines++

		entry, ok := ParseEntry(line)
		if !ok {
			result.MalformedLines++
			continue
		}
		if !filter.Matches(entry) {
			continue
		}

		result.Entries = append(result.Entries, entry)
		if len(result.Entries) == limit {
			return &Cursor{Key: key, Line: reader.Line()}, nil
		}
	}

	// Entries already emitted stand; the stream failure aborts the call.
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return nil, nil
}

// ReadObject parses a single object, returning up to limit entries plus the
// total count of valid entries in the object.
func (e *Engine) ReadObject(ctx context.Context, key string, limit int) ([]*Entry, int, error) {
	reader, err := OpenObject(ctx, e.store, key)
	if err != nil {
		return nil, 0, err
	}
	defer reader.Close()

	var entries []*Entry
	total := 0
	for {
		line, ok := reader.Next()
		if !ok {
			break
		}
		entry, ok := ParseEntry(line)
		if !ok {
			continue
		}
		total++
		if limit <= 0 || len(entries) < limit {
			entries = append(entries, entry)
		}
	}
	if err := reader.Err(); err != nil {
		return entries, total, err
	}
	return entries, total, nil
}

// resolveKeys lists the object keys in scope, ascending.
func (e *Engine) resolveKeys(ctx context.Context, scope Scope) ([]string, error) {
	if scope.Key != "" {
		return []string{scope.Key}, nil
	}

	files, err := e.catalog.ListAllFiles(ctx, scope.Environment, scope.Date)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(files))
	for _, f := range files {
		keys = append(keys, f.Key)
	}
	return keys, nil
}

func indexOfKey(keys []string, key string) int {
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	return -1
}
