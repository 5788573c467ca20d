package logpush

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/davidthor/logpushctl/pkg/errors"
	"github.com/davidthor/logpushctl/pkg/storage"
)

// DateFolder is one <environment>/<YYYYMMDD>/ prefix in the bucket.
type DateFolder struct {
	Date        string
	Environment string
	Prefix      string
}

// LogFile is the metadata of one stored log object.
type LogFile struct {
	Key          string
	Size         int64
	LastModified time.Time

	// StartTime and EndTime are taken from the
	// {startTS}_{endTS}_{hash}.log.gz filename convention when present.
	StartTime string
	EndTime   string
}

// Catalog enumerates the environments, dates, and objects of a bucket in a
// stable order. It holds no state between calls; continuation tokens come
// from the storage layer and pass through unchanged.
type Catalog struct {
	store storage.Store
}

// NewCatalog creates a Catalog over the given store.
func NewCatalog(store storage.Store) *Catalog {
	return &Catalog{store: store}
}

// ListEnvironments returns the top-level environment prefixes
// (e.g. production, staging), sorted ascending. Listing pages are drained,
// so buckets with more prefixes than one storage page are fully enumerated.
func (c *Catalog) ListEnvironments(ctx context.Context) ([]string, error) {
	var environments []string
	continuation := ""
	for {
		out, err := c.store.List(ctx, storage.ListInput{
			Delimiter:         "/",
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, errors.StorageError(c.store.Type(), "list environments", err)
		}
		for _, p := range out.CommonPrefixes {
			environments = append(environments, strings.TrimSuffix(p, "/"))
		}
		if out.NextToken == "" {
			break
		}
		continuation = out.NextToken
	}
	sort.Strings(environments)
	return environments, nil
}

// ListDates returns the date folders available for an environment, newest
// first, up to limit. An empty environment lists dates across all
// environments. Requesting a specific environment that has no date folders
// fails with ScopeNotFound.
func (c *Catalog) ListDates(ctx context.Context, environment string, limit int) ([]DateFolder, error) {
	environments := []string{environment}
	if environment == "" {
		var err error
		environments, err = c.ListEnvironments(ctx)
		if err != nil {
			return nil, err
		}
	}

	var dates []DateFolder
	for _, env := range environments {
		continuation := ""
		for {
			out, err := c.store.List(ctx, storage.ListInput{
				Prefix:            env + "/",
				Delimiter:         "/",
				ContinuationToken: continuation,
			})
			if err != nil {
				return nil, errors.StorageError(c.store.Type(), "list dates", err)
			}

			for _, p := range out.CommonPrefixes {
				folder := strings.TrimSuffix(p, "/")
				dateStr := folder[strings.LastIndex(folder, "/")+1:]
				if !isDate(dateStr) {
					continue
				}
				dates = append(dates, DateFolder{
					Date:        dateStr,
					Environment: env,
					Prefix:      folder + "/",
				})
			}

			if out.NextToken == "" {
				break
			}
			continuation = out.NextToken
		}
	}

	if environment != "" && len(dates) == 0 {
		return nil, errors.ScopeNotFound(environment, "")
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Date > dates[j].Date })
	if limit > 0 && len(dates) > limit {
		dates = dates[:limit]
	}
	return dates, nil
}

// ListFiles returns one page of log objects for a date, in ascending key
// order, plus a continuation token for the next page ("" when exhausted).
// A first page (no continuation token) with zero objects fails with
// ScopeNotFound.
func (c *Catalog) ListFiles(ctx context.Context, environment, date string, limit int, continuation string) ([]LogFile, string, error) {
	prefix := environment + "/" + date + "/"

	out, err := c.store.List(ctx, storage.ListInput{
		Prefix:            prefix,
		MaxKeys:           limit,
		ContinuationToken: continuation,
	})
	if err != nil {
		return nil, "", errors.StorageError(c.store.Type(), "list files", err)
	}

	if continuation == "" && len(out.Objects) == 0 {
		return nil, "", errors.ScopeNotFound(environment, date)
	}

	files := make([]LogFile, 0, len(out.Objects))
	for _, obj := range out.Objects {
		files = append(files, fileFromObject(obj))
	}
	return files, out.NextToken, nil
}

// ListAllFiles drains every page for a date and returns all log objects in
// ascending key order.
func (c *Catalog) ListAllFiles(ctx context.Context, environment, date string) ([]LogFile, error) {
	var files []LogFile
	continuation := ""
	for {
		page, next, err := c.ListFiles(ctx, environment, date, 0, continuation)
		if err != nil {
			return nil, err
		}
		files = append(files, page...)
		if next == "" {
			return files, nil
		}
		continuation = next
	}
}

// fileFromObject extracts the time range from the filename when it follows
// the {startTS}_{endTS}_{hash}.log.gz convention.
func fileFromObject(obj storage.ObjectInfo) LogFile {
	f := LogFile{
		Key:          obj.Key,
		Size:         obj.Size,
		LastModified: obj.LastModified,
	}

	name := obj.Key[strings.LastIndex(obj.Key, "/")+1:]
	name = strings.TrimSuffix(name, ".log.gz")
	if parts := strings.Split(name, "_"); len(parts) >= 2 {
		f.StartTime = parts[0]
		f.EndTime = parts[1]
	}
	return f
}

// isDate reports whether s looks like a YYYYMMDD folder name.
func isDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
