package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/davidthor/logpushctl/pkg/storage"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	tmpDir := t.TempDir()

	write := func(key, content string) {
		fullPath := filepath.Join(tmpDir, filepath.FromSlash(key))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("mkdir failed: %v", err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	write("production/20240101/a.log.gz", "aaa")
	write("production/20240101/b.log.gz", "bbbb")
	write("production/20240102/c.log.gz", "cc")
	write("staging/20240102/d.log.gz", "d")

	s, err := NewStore(map[string]string{"path": tmpDir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestNewStore(t *testing.T) {
	s := newTestStore(t)
	if s.Type() != "local" {
		t.Errorf("expected type 'local', got %q", s.Type())
	}
}

func TestStore_ListPrefix(t *testing.T) {
	s := newTestStore(t)

	out, err := s.List(context.Background(), storage.ListInput{Prefix: "production/20240101/"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(out.Objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(out.Objects))
	}
	if out.Objects[0].Key != "production/20240101/a.log.gz" {
		t.Errorf("unexpected first key %q", out.Objects[0].Key)
	}
	if out.Objects[1].Size != 4 {
		t.Errorf("expected size 4, got %d", out.Objects[1].Size)
	}
}

func TestStore_ListDelimiter(t *testing.T) {
	s := newTestStore(t)

	out, err := s.List(context.Background(), storage.ListInput{Delimiter: "/"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(out.Objects) != 0 {
		t.Errorf("expected no objects at top level, got %d", len(out.Objects))
	}
	want := []string{"production/", "staging/"}
	if len(out.CommonPrefixes) != len(want) {
		t.Fatalf("expected %d prefixes, got %v", len(want), out.CommonPrefixes)
	}
	for i, p := range want {
		if out.CommonPrefixes[i] != p {
			t.Errorf("expected prefix %q, got %q", p, out.CommonPrefixes[i])
		}
	}
}

func TestStore_ListPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	page1, err := s.List(ctx, storage.ListInput{Prefix: "production/", MaxKeys: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page1.Objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(page1.Objects))
	}
	if page1.NextToken == "" {
		t.Fatal("expected a continuation token")
	}

	page2, err := s.List(ctx, storage.ListInput{
		Prefix:            "production/",
		MaxKeys:           2,
		ContinuationToken: page1.NextToken,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page2.Objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(page2.Objects))
	}
	if page2.NextToken != "" {
		t.Errorf("expected no continuation token, got %q", page2.NextToken)
	}
}

func TestStore_ListDelimiterPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Common prefixes count toward MaxKeys, so the two top-level folders
	// span two pages.
	page1, err := s.List(ctx, storage.ListInput{Delimiter: "/", MaxKeys: 1})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page1.CommonPrefixes) != 1 || page1.CommonPrefixes[0] != "production/" {
		t.Fatalf("expected ['production/'], got %v", page1.CommonPrefixes)
	}
	if page1.NextToken == "" {
		t.Fatal("expected a continuation token")
	}

	page2, err := s.List(ctx, storage.ListInput{
		Delimiter:         "/",
		MaxKeys:           1,
		ContinuationToken: page1.NextToken,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page2.CommonPrefixes) != 1 || page2.CommonPrefixes[0] != "staging/" {
		t.Fatalf("expected ['staging/'], got %v", page2.CommonPrefixes)
	}
	if page2.NextToken != "" {
		t.Errorf("expected no continuation token, got %q", page2.NextToken)
	}
}

func TestStore_Fetch(t *testing.T) {
	s := newTestStore(t)

	reader, err := s.Fetch(context.Background(), "production/20240101/a.log.gz")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "aaa" {
		t.Errorf("expected 'aaa', got %q", data)
	}
}

func TestStore_FetchNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Fetch(context.Background(), "production/20240101/missing.log.gz")
	if err != storage.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
