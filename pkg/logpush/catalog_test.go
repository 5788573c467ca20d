package logpush

import (
	"context"
	"fmt"
	"testing"

	"github.com/davidthor/logpushctl/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogFixture() *Catalog {
	store := newMemStore()
	store.put("production/20240101/20240101T000000Z_20240101T010000Z_abc.log.gz", gzipLines())
	store.put("production/20240101/20240101T010000Z_20240101T020000Z_def.log.gz", gzipLines())
	store.put("production/20240102/20240102T000000Z_20240102T010000Z_ghi.log.gz", gzipLines())
	store.put("staging/20240102/20240102T000000Z_20240102T010000Z_jkl.log.gz", gzipLines())
	return NewCatalog(store)
}

func TestCatalog_ListEnvironments(t *testing.T) {
	envs, err := catalogFixture().ListEnvironments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"production", "staging"}, envs)
}

func TestCatalog_ListDates_NewestFirst(t *testing.T) {
	dates, err := catalogFixture().ListDates(context.Background(), "production", 0)
	require.NoError(t, err)

	require.Len(t, dates, 2)
	assert.Equal(t, "20240102", dates[0].Date)
	assert.Equal(t, "20240101", dates[1].Date)
	assert.Equal(t, "production/20240101/", dates[1].Prefix)
}

func TestCatalog_ListDates_AllEnvironments(t *testing.T) {
	dates, err := catalogFixture().ListDates(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, dates, 3)
}

func TestCatalog_ListDates_Limit(t *testing.T) {
	dates, err := catalogFixture().ListDates(context.Background(), "production", 1)
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, "20240102", dates[0].Date)
}

func TestCatalog_ListDates_UnknownEnvironment(t *testing.T) {
	_, err := catalogFixture().ListDates(context.Background(), "nonexistent", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeScopeNotFound))
}

func TestCatalog_ListDates_IgnoresNonDateFolders(t *testing.T) {
	store := newMemStore()
	store.put("production/20240101/a.log.gz", gzipLines())
	store.put("production/metadata/manifest.json", []byte("{}"))

	dates, err := NewCatalog(store).ListDates(context.Background(), "production", 0)
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, "20240101", dates[0].Date)
}

func TestCatalog_ListDates_DrainsListingPages(t *testing.T) {
	// More date folders than one storage page (1000 keys): the newest date
	// lives on the second page, so a single-page listing would report the
	// newest of the oldest thousand instead.
	store := newMemStore()
	data := gzipLines()
	for i := 0; i < 1500; i++ {
		store.put(fmt.Sprintf("production/%08d/a.log.gz", 20000000+i), data)
	}

	dates, err := NewCatalog(store).ListDates(context.Background(), "production", 0)
	require.NoError(t, err)
	require.Len(t, dates, 1500)
	assert.Equal(t, "20001499", dates[0].Date)
	assert.Equal(t, "20000000", dates[1499].Date)
}

func TestCatalog_ListEnvironments_DrainsListingPages(t *testing.T) {
	store := newMemStore()
	data := gzipLines()
	for i := 0; i < 1200; i++ {
		store.put(fmt.Sprintf("env-%04d/20240101/a.log.gz", i), data)
	}

	envs, err := NewCatalog(store).ListEnvironments(context.Background())
	require.NoError(t, err)
	require.Len(t, envs, 1200)
	assert.Equal(t, "env-0000", envs[0])
	assert.Equal(t, "env-1199", envs[1199])
}

func TestCatalog_ListFiles_AscendingWithTimeRange(t *testing.T) {
	files, next, err := catalogFixture().ListFiles(context.Background(), "production", "20240101", 0, "")
	require.NoError(t, err)
	assert.Empty(t, next)

	require.Len(t, files, 2)
	assert.Less(t, files[0].Key, files[1].Key)
	assert.Equal(t, "20240101T000000Z", files[0].StartTime)
	assert.Equal(t, "20240101T010000Z", files[0].EndTime)
}

func TestCatalog_ListFiles_Pagination(t *testing.T) {
	catalog := catalogFixture()
	ctx := context.Background()

	page1, next, err := catalog.ListFiles(ctx, "production", "20240101", 1, "")
	require.NoError(t, err)
	require.Len(t, page1, 1)
	require.NotEmpty(t, next)

	page2, next2, err := catalog.ListFiles(ctx, "production", "20240101", 1, next)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.NotEqual(t, page1[0].Key, page2[0].Key)
	_ = next2
}

func TestCatalog_ListFiles_ScopeNotFound(t *testing.T) {
	_, _, err := catalogFixture().ListFiles(context.Background(), "production", "19990101", 0, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeScopeNotFound))
}

func TestCatalog_ListAllFiles_DrainsPages(t *testing.T) {
	store := newMemStore()
	for i := 0; i < 5; i++ {
		store.put("production/20240101/"+string(rune('a'+i))+".log.gz", gzipLines())
	}

	files, err := NewCatalog(store).ListAllFiles(context.Background(), "production", "20240101")
	require.NoError(t, err)
	assert.Len(t, files, 5)
}
