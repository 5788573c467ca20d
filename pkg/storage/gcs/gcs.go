// Package gcs implements a Google Cloud Storage backend.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcstorage "cloud.google.com/go/storage"
	"github.com/davidthor/logpushctl/pkg/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

func init() {
	storage.Register("gcs", NewStore)
}

// defaultPageSize bounds a listing page when the caller does not.
const defaultPageSize = 1000

// Store implements the storage.Store interface for Google Cloud Storage.
type Store struct {
	client *gcstorage.Client
	bucket string
}

// NewStore creates a new GCS store.
//
// Recognized configuration keys: bucket (required), credentials (path to a
// credentials file), credentials_json, endpoint (for the emulator).
func NewStore(cfg map[string]string) (storage.Store, error) {
	bucketName, ok := cfg["bucket"]
	if !ok || bucketName == "" {
		return nil, fmt.Errorf("gcs backend requires 'bucket' configuration")
	}

	ctx := context.Background()
	var opts []option.ClientOption

	// Support explicit credentials file
	if credentialsFile := cfg["credentials"]; credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	// Support credentials JSON
	if credentialsJSON := cfg["credentials_json"]; credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}

	// Support custom endpoint (for emulator)
	if endpoint := cfg["endpoint"]; endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
		opts = append(opts, option.WithoutAuthentication())
	}

	client, err := gcstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &Store{
		client: client,
		bucket: bucketName,
	}, nil
}

func (s *Store) Type() string {
	return "gcs"
}

func (s *Store) List(ctx context.Context, in storage.ListInput) (*storage.ListOutput, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &gcstorage.Query{
		Prefix:    in.Prefix,
		Delimiter: in.Delimiter,
	})

	pageSize := in.MaxKeys
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var attrs []*gcstorage.ObjectAttrs
	pager := iterator.NewPager(it, pageSize, in.ContinuationToken)
	nextToken, err := pager.NextPage(&attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to list gs://%s/%s: %w", s.bucket, in.Prefix, err)
	}

	out := &storage.ListOutput{NextToken: nextToken}
	for _, a := range attrs {
		// Synthetic entries carry the common prefix in Prefix and an
		// empty Name.
		if a.Prefix != "" {
			out.CommonPrefixes = append(out.CommonPrefixes, a.Prefix)
			continue
		}
		out.Objects = append(out.Objects, storage.ObjectInfo{
			Key:          a.Name,
			Size:         a.Size,
			LastModified: a.Updated,
		})
	}

	return out, nil
}

func (s *Store) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcstorage.ErrObjectNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch gs://%s/%s: %w", s.bucket, key, err)
	}

	return reader, nil
}

// Close closes the GCS client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ensure we implement the Store interface
var _ storage.Store = (*Store)(nil)
