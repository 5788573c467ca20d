// Package azure implements an Azure Blob Storage backend.
package azure

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/davidthor/logpushctl/pkg/storage"
)

func init() {
	storage.Register("azure", NewStore)
}

// Store implements the storage.Store interface for Azure Blob Storage.
type Store struct {
	client        *azblob.Client
	containerName string
}

// NewStore creates a new Azure Blob Storage store.
//
// Recognized configuration keys: storage_account_name and container_name
// (both required), plus one of access_key, sas_token, or connection_string.
// Without explicit credentials, DefaultAzureCredential is used. An endpoint
// key overrides the service URL (for the Azurite emulator).
func NewStore(cfg map[string]string) (storage.Store, error) {
	storageAccount, ok := cfg["storage_account_name"]
	if !ok || storageAccount == "" {
		return nil, fmt.Errorf("azure backend requires 'storage_account_name' configuration")
	}

	containerName, ok := cfg["container_name"]
	if !ok || containerName == "" {
		return nil, fmt.Errorf("azure backend requires 'container_name' configuration")
	}

	var client *azblob.Client
	var err error

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", storageAccount)

	// Support custom endpoint (for Azurite emulator)
	if endpoint := cfg["endpoint"]; endpoint != "" {
		serviceURL = endpoint
	}

	if accessKey := cfg["access_key"]; accessKey != "" {
		cred, err := azblob.NewSharedKeyCredential(storageAccount, accessKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure client with shared key: %w", err)
		}
	} else if sasToken := cfg["sas_token"]; sasToken != "" {
		serviceURLWithSAS := serviceURL + "?" + strings.TrimPrefix(sasToken, "?")
		client, err = azblob.NewClientWithNoCredential(serviceURLWithSAS, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure client with SAS token: %w", err)
		}
	} else if connectionString := cfg["connection_string"]; connectionString != "" {
		client, err = azblob.NewClientFromConnectionString(connectionString, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure client from connection string: %w", err)
		}
	} else {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create default Azure credential: %w", err)
		}
		client, err = azblob.NewClient(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure client: %w", err)
		}
	}

	return &Store{
		client:        client,
		containerName: containerName,
	}, nil
}

func (s *Store) Type() string {
	return "azure"
}

func (s *Store) List(ctx context.Context, in storage.ListInput) (*storage.ListOutput, error) {
	containerClient := s.client.ServiceClient().NewContainerClient(s.containerName)

	var maxResults *int32
	if in.MaxKeys > 0 {
		maxResults = to.Ptr(int32(in.MaxKeys))
	}
	var marker *string
	if in.ContinuationToken != "" {
		marker = to.Ptr(in.ContinuationToken)
	}
	var prefix *string
	if in.Prefix != "" {
		prefix = to.Ptr(in.Prefix)
	}

	out := &storage.ListOutput{}

	if in.Delimiter != "" {
		pager := containerClient.NewListBlobsHierarchyPager(in.Delimiter, &container.ListBlobsHierarchyOptions{
			Prefix:     prefix,
			Marker:     marker,
			MaxResults: maxResults,
		})
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list azure://%s/%s: %w", s.containerName, in.Prefix, err)
		}
		for _, item := range resp.Segment.BlobItems {
			out.Objects = append(out.Objects, blobInfo(item.Name, item.Properties))
		}
		for _, p := range resp.Segment.BlobPrefixes {
			if p.Name != nil {
				out.CommonPrefixes = append(out.CommonPrefixes, *p.Name)
			}
		}
		if resp.NextMarker != nil {
			out.NextToken = *resp.NextMarker
		}
		return out, nil
	}

	pager := containerClient.NewListBlobsFlatPager(&container.ListBlobsFlatOptions{
		Prefix:     prefix,
		Marker:     marker,
		MaxResults: maxResults,
	})
	resp, err := pager.NextPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list azure://%s/%s: %w", s.containerName, in.Prefix, err)
	}
	for _, item := range resp.Segment.BlobItems {
		out.Objects = append(out.Objects, blobInfo(item.Name, item.Properties))
	}
	if resp.NextMarker != nil {
		out.NextToken = *resp.NextMarker
	}

	return out, nil
}

func (s *Store) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.client.DownloadStream(ctx, s.containerName, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch azure://%s/%s: %w", s.containerName, key, err)
	}

	return resp.Body, nil
}

func blobInfo(name *string, props *container.BlobProperties) storage.ObjectInfo {
	info := storage.ObjectInfo{}
	if name != nil {
		info.Key = *name
	}
	if props != nil {
		if props.ContentLength != nil {
			info.Size = *props.ContentLength
		}
		if props.LastModified != nil {
			info.LastModified = *props.LastModified
		}
	}
	return info
}

// Ensure we implement the Store interface
var _ storage.Store = (*Store)(nil)
