// Package local implements a local filesystem storage backend.
//
// It mirrors the key semantics of the cloud backends (forward-slash keys,
// delimiter grouping, lexicographic paging) so the query engine can be
// developed and tested against a directory of log files.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/davidthor/logpushctl/pkg/storage"
)

func init() {
	storage.Register("local", NewStore)
}

// Store implements the storage.Store interface for local filesystem storage.
type Store struct {
	basePath string
}

// NewStore creates a new local store rooted at cfg["path"].
func NewStore(cfg map[string]string) (storage.Store, error) {
	path := cfg["path"]
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".logpushctl", "logs")
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Store{basePath: path}, nil
}

func (s *Store) Type() string {
	return "local"
}

func (s *Store) List(ctx context.Context, in storage.ListInput) (*storage.ListOutput, error) {
	keys, err := s.allKeys()
	if err != nil {
		return nil, err
	}

	maxKeys := in.MaxKeys
	if maxKeys <= 0 {
		maxKeys = 1000
	}

	out := &storage.ListOutput{}
	seenPrefixes := map[string]bool{}
	count := 0
	lastKey := ""

	for _, key := range keys {
		if !strings.HasPrefix(key.Key, in.Prefix) {
			continue
		}
		// The continuation token is the last key consumed by the previous
		// page; resume strictly after it.
		if in.ContinuationToken != "" && key.Key <= in.ContinuationToken {
			continue
		}

		// Objects and common prefixes both count toward maxKeys, matching
		// S3 listing semantics.
		if in.Delimiter != "" {
			rest := strings.TrimPrefix(key.Key, in.Prefix)
			if idx := strings.Index(rest, in.Delimiter); idx >= 0 {
				prefix := in.Prefix + rest[:idx+len(in.Delimiter)]
				if seenPrefixes[prefix] {
					lastKey = key.Key
					continue
				}
				if count == maxKeys {
					out.NextToken = lastKey
					return out, nil
				}
				seenPrefixes[prefix] = true
				out.CommonPrefixes = append(out.CommonPrefixes, prefix)
				count++
				lastKey = key.Key
				continue
			}
		}

		if count == maxKeys {
			out.NextToken = lastKey
			return out, nil
		}
		out.Objects = append(out.Objects, key)
		count++
		lastKey = key.Key
	}

	return out, nil
}

func (s *Store) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", fullPath, err)
	}

	return file, nil
}

// allKeys walks the base directory and returns every file as an object,
// sorted in ascending key order.
func (s *Store) allKeys() ([]storage.ObjectInfo, error) {
	var keys []storage.ObjectInfo

	err := filepath.Walk(s.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		relPath, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		keys = append(keys, storage.ObjectInfo{
			Key:          filepath.ToSlash(relPath),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.basePath, err)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Key < keys[j].Key })
	return keys, nil
}

// Ensure we implement the Store interface
var _ storage.Store = (*Store)(nil)
