// Package storage defines the object-storage primitive consumed by the log
// query engine.
//
// Backends (e.g., S3/R2, GCS, Azure Blob, local filesystem) register
// themselves via init() in their sub-packages. The CLI imports those packages
// as side effects to make them available at runtime.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"
)

// ErrNotFound is returned by Fetch when the object does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ListInput specifies a prefix listing.
type ListInput struct {
	// Prefix restricts the listing to keys beginning with this string.
	Prefix string

	// Delimiter groups keys sharing the same prefix up to the first
	// occurrence of the delimiter into CommonPrefixes (S3 semantics).
	Delimiter string

	// MaxKeys bounds the page size. Zero means the backend default.
	MaxKeys int

	// ContinuationToken resumes a previous listing. Opaque to callers;
	// its format belongs to the backend.
	ContinuationToken string
}

// ListOutput is one page of a prefix listing. Objects are returned in
// ascending lexicographic key order.
type ListOutput struct {
	Objects        []ObjectInfo
	CommonPrefixes []string
	NextToken      string
}

// Store is the interface that object-storage backends must implement.
type Store interface {
	// Type returns the backend type name (e.g., "s3").
	Type() string

	// List returns one page of objects and common prefixes under a prefix.
	List(ctx context.Context, in ListInput) (*ListOutput, error)

	// Fetch opens a streamed reader over an object's bytes.
	// Returns ErrNotFound if the object does not exist.
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)
}

// Factory is a function that creates a Store from backend configuration.
type Factory func(cfg map[string]string) (Store, error)

// registry maps backend type names to their factory functions.
// Backends register themselves via init() using Register().
var registry = map[string]Factory{}

// Register adds a Store factory under the given name.
// Typically called from a backend's init() function.
func Register(name string, factory Factory) {
	registry[name] = factory
}

// New creates a Store of the given backend type.
// Returns an error if the type is not registered.
func New(backendType string, cfg map[string]string) (Store, error) {
	factory, ok := registry[backendType]
	if !ok {
		return nil, fmt.Errorf("unsupported storage backend %q (registered types: %v)", backendType, registeredTypes())
	}
	return factory(cfg)
}

// registeredTypes returns the names of all registered backend types.
func registeredTypes() []string {
	types := make([]string, 0, len(registry))
	for name := range registry {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}
