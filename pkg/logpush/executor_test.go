package logpush

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/davidthor/logpushctl/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scanFixture builds the three-object dataset: 10 valid lines, 0 lines, and
// 5 valid lines plus one malformed line in the middle of the third object.
func scanFixture() (*Engine, Scope) {
	store := newMemStore()

	var obj1 []string
	for i := 0; i < 10; i++ {
		obj1 = append(obj1, eventLine(int64(1000+i), "worker-a", "ok", 200, fmt.Sprintf("https://example.com/%d", i)))
	}
	store.put("production/20240101/a.log.gz", gzipLines(obj1...))
	store.put("production/20240101/b.log.gz", gzipLines())

	obj3 := []string{
		eventLine(2000, "worker-b", "ok", 200, "https://example.com/x"),
		eventLine(2001, "worker-b", "ok", 404, "https://example.com/y"),
		"{ this line is corrupt",
		eventLine(2002, "worker-b", "exception", 500, "https://example.com/z"),
		eventLine(2003, "worker-b", "ok", 200, "https://example.com/w"),
		eventLine(2004, "worker-b", "ok", 301, "https://example.com/v"),
	}
	store.put("production/20240101/c.log.gz", gzipLines(obj3...))

	return NewEngine(store), Scope{Environment: "production", Date: "20240101"}
}

func TestExecute_LimitSpansObjectsWithCursor(t *testing.T) {
	engine, scope := scanFixture()
	ctx := context.Background()

	page1, err := engine.Execute(ctx, scope, FilterSpec{}, 12, nil)
	require.NoError(t, err)
	require.Len(t, page1.Entries, 12)
	require.NotNil(t, page1.NextCursor)
	assert.Equal(t, "production/20240101/c.log.gz", page1.NextCursor.Key)

	page2, err := engine.Execute(ctx, scope, FilterSpec{}, 12, page1.NextCursor)
	require.NoError(t, err)
	assert.Len(t, page2.Entries, 3)
	assert.Nil(t, page2.NextCursor)
}

func TestExecute_PaginationMatchesUnboundedScan(t *testing.T) {
	engine, scope := scanFixture()
	ctx := context.Background()

	full, err := engine.Execute(ctx, scope, FilterSpec{}, 1000, nil)
	require.NoError(t, err)
	require.Nil(t, full.NextCursor)
	require.Len(t, full.Entries, 15)

	// Concatenating pages of 4 yields the same ordered sequence.
	var paged []*Entry
	var cursor *Cursor
	for {
		page, err := engine.Execute(ctx, scope, FilterSpec{}, 4, cursor)
		require.NoError(t, err)
		paged = append(paged, page.Entries...)
		if page.NextCursor == nil {
			break
		}
		cursor = page.NextCursor
	}

	require.Len(t, paged, len(full.Entries))
	for i := range full.Entries {
		assert.Equal(t, full.Entries[i].Timestamp, paged[i].Timestamp, "entry %d", i)
		assert.Equal(t, full.Entries[i].URL, paged[i].URL, "entry %d", i)
	}
}

func TestExecute_Idempotent(t *testing.T) {
	engine, scope := scanFixture()
	ctx := context.Background()

	first, err := engine.Execute(ctx, scope, FilterSpec{}, 5, nil)
	require.NoError(t, err)
	second, err := engine.Execute(ctx, scope, FilterSpec{}, 5, nil)
	require.NoError(t, err)

	require.Equal(t, len(first.Entries), len(second.Entries))
	for i := range first.Entries {
		assert.Equal(t, first.Entries[i].URL, second.Entries[i].URL)
	}
	assert.Equal(t, first.NextCursor, second.NextCursor)
}

func TestExecute_FilterApplied(t *testing.T) {
	engine, scope := scanFixture()

	result, err := engine.Execute(context.Background(), scope, FilterSpec{StatusGte: 400}, 100, nil)
	require.NoError(t, err)

	require.Len(t, result.Entries, 2)
	for _, entry := range result.Entries {
		assert.GreaterOrEqual(t, entry.Status, 400)
	}
}

func TestExecute_MalformedLinesCounted(t *testing.T) {
	engine, scope := scanFixture()

	result, err := engine.Execute(context.Background(), scope, FilterSpec{}, 1000, nil)
	require.NoError(t, err)

	assert.Equal(t, 16, result.ScannedLines)
	assert.Equal(t, 1, result.MalformedLines)
	assert.Equal(t, 3, result.FilesScanned)
}

func TestExecute_ZeroLimitEchoesCursor(t *testing.T) {
	engine, scope := scanFixture()
	cursor := &Cursor{Key: "production/20240101/a.log.gz", Line: 3}

	result, err := engine.Execute(context.Background(), scope, FilterSpec{}, 0, cursor)
	require.NoError(t, err)
	assert.Empty(t, result.Entries)
	assert.Equal(t, cursor, result.NextCursor)
}

func TestExecute_NegativeLimit(t *testing.T) {
	engine, scope := scanFixture()

	_, err := engine.Execute(context.Background(), scope, FilterSpec{}, -1, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
}

func TestExecute_CursorKeyGone(t *testing.T) {
	engine, scope := scanFixture()
	cursor := &Cursor{Key: "production/20240101/deleted.log.gz", Line: 0}

	_, err := engine.Execute(context.Background(), scope, FilterSpec{}, 10, cursor)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidCursor))
}

func TestExecute_UnknownScope(t *testing.T) {
	engine, _ := scanFixture()

	_, err := engine.Execute(context.Background(), Scope{Environment: "production", Date: "19990101"}, FilterSpec{}, 10, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeScopeNotFound))
}

func TestExecute_SingleObjectScope(t *testing.T) {
	engine, _ := scanFixture()
	scope := Scope{Environment: "production", Date: "20240101", Key: "production/20240101/c.log.gz"}

	result, err := engine.Execute(context.Background(), scope, FilterSpec{}, 100, nil)
	require.NoError(t, err)
	assert.Len(t, result.Entries, 5)
	assert.Nil(t, result.NextCursor)
}

func TestExecute_CorruptObjectAbortsWithPartialPage(t *testing.T) {
	store := newMemStore()
	store.put("production/20240101/a.log.gz", corruptAfter(
		eventLine(1000, "worker-a", "ok", 200, "https://example.com/1"),
		eventLine(1001, "worker-a", "ok", 200, "https://example.com/2"),
	))
	engine := NewEngine(store)

	result, err := engine.Execute(context.Background(),
		Scope{Environment: "production", Date: "20240101"}, FilterSpec{}, 100, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCorruptStream))
	// Entries yielded before the failure are not retracted.
	assert.Len(t, result.Entries, 2)
}

func TestExecute_OversizedLineCountedMalformed(t *testing.T) {
	store := newMemStore()
	store.put("production/20240101/a.log.gz", gzipLines(
		eventLine(1000, "worker-a", "ok", 200, "https://example.com/1"),
		`{"EventTimestampMs":1001,"Padding":"`+strings.Repeat("x", maxLineBytes)+`"}`,
		eventLine(1002, "worker-a", "ok", 200, "https://example.com/2"),
	))
	engine := NewEngine(store)

	result, err := engine.Execute(context.Background(),
		Scope{Environment: "production", Date: "20240101"}, FilterSpec{}, 100, nil)
	require.NoError(t, err)

	// One hostile line must not fail the scan; it is truncated, fails
	// parsing, and is counted with the malformed lines.
	require.Len(t, result.Entries, 2)
	assert.Equal(t, 3, result.ScannedLines)
	assert.Equal(t, 1, result.MalformedLines)
	assert.Nil(t, result.NextCursor)
}

func TestReadObject_Truncation(t *testing.T) {
	engine, _ := scanFixture()

	entries, total, err := engine.ReadObject(context.Background(), "production/20240101/a.log.gz", 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, 10, total)
}
