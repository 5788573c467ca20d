// Package s3 implements an S3-compatible storage backend, including
// Cloudflare R2 and MinIO via a custom endpoint.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/davidthor/logpushctl/pkg/storage"
)

func init() {
	storage.Register("s3", NewStore)
}

// Store implements the storage.Store interface for S3-compatible storage.
type Store struct {
	client *s3.Client
	bucket string
}

// NewStore creates a new S3 store.
//
// Recognized configuration keys: bucket (required), region, endpoint,
// access_key, secret_key, force_path_style. For R2, the endpoint is
// https://<account-id>.r2.cloudflarestorage.com and the region is "auto".
func NewStore(cfg map[string]string) (storage.Store, error) {
	bucket, ok := cfg["bucket"]
	if !ok || bucket == "" {
		return nil, fmt.Errorf("s3 backend requires 'bucket' configuration")
	}

	region := cfg["region"]
	if region == "" {
		region = "auto"
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(region))

	// Support explicit credentials
	if accessKey := cfg["access_key"]; accessKey != "" {
		secretKey := cfg["secret_key"]
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg["force_path_style"] == "true"
		// Support custom endpoint (for R2, MinIO, etc.)
		if endpoint := cfg["endpoint"]; endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return &Store{
		client: client,
		bucket: bucket,
	}, nil
}

func (s *Store) Type() string {
	return "s3"
}

func (s *Store) List(ctx context.Context, in storage.ListInput) (*storage.ListOutput, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
	}
	if in.Prefix != "" {
		input.Prefix = aws.String(in.Prefix)
	}
	if in.Delimiter != "" {
		input.Delimiter = aws.String(in.Delimiter)
	}
	if in.MaxKeys > 0 {
		input.MaxKeys = aws.Int32(int32(in.MaxKeys))
	}
	if in.ContinuationToken != "" {
		input.ContinuationToken = aws.String(in.ContinuationToken)
	}

	resp, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list s3://%s/%s: %w", s.bucket, in.Prefix, err)
	}

	out := &storage.ListOutput{}
	for _, obj := range resp.Contents {
		info := storage.ObjectInfo{Key: aws.ToString(obj.Key)}
		if obj.Size != nil {
			info.Size = *obj.Size
		}
		if obj.LastModified != nil {
			info.LastModified = *obj.LastModified
		}
		out.Objects = append(out.Objects, info)
	}
	for _, p := range resp.CommonPrefixes {
		out.CommonPrefixes = append(out.CommonPrefixes, aws.ToString(p.Prefix))
	}
	out.NextToken = aws.ToString(resp.NextContinuationToken)

	return out, nil
}

func (s *Store) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if ok := errors.As(err, &nsk); ok {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch s3://%s/%s: %w", s.bucket, key, err)
	}

	return output.Body, nil
}

// Ensure we implement the Store interface
var _ storage.Store = (*Store)(nil)
