package logpush

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/davidthor/logpushctl/pkg/storage"
	"github.com/klauspost/compress/gzip"
)

// memStore is an in-memory storage.Store with S3-style listing semantics,
// used by the engine tests.
type memStore struct {
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) put(key string, data []byte) {
	m.objects[key] = data
}

func (m *memStore) Type() string {
	return "mem"
}

// List pages like S3: objects and common prefixes both count toward MaxKeys,
// and a truncated page carries a continuation token that resumes strictly
// after the last key consumed.
func (m *memStore) List(ctx context.Context, in storage.ListInput) (*storage.ListOutput, error) {
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	maxKeys := in.MaxKeys
	if maxKeys <= 0 {
		maxKeys = 1000
	}

	out := &storage.ListOutput{}
	seen := map[string]bool{}
	count := 0
	lastKey := ""
	for _, key := range keys {
		if !strings.HasPrefix(key, in.Prefix) {
			continue
		}
		if in.ContinuationToken != "" && key <= in.ContinuationToken {
			continue
		}
		if in.Delimiter != "" {
			rest := strings.TrimPrefix(key, in.Prefix)
			if idx := strings.Index(rest, in.Delimiter); idx >= 0 {
				prefix := in.Prefix + rest[:idx+len(in.Delimiter)]
				if seen[prefix] {
					lastKey = key
					continue
				}
				if count == maxKeys {
					out.NextToken = lastKey
					return out, nil
				}
				seen[prefix] = true
				out.CommonPrefixes = append(out.CommonPrefixes, prefix)
				count++
				lastKey = key
				continue
			}
		}
		if count == maxKeys {
			out.NextToken = lastKey
			return out, nil
		}
		out.Objects = append(out.Objects, storage.ObjectInfo{
			Key:  key,
			Size: int64(len(m.objects[key])),
		})
		count++
		lastKey = key
	}
	return out, nil
}

func (m *memStore) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

var _ storage.Store = (*memStore)(nil)

// gzipLines compresses lines into one gzip member, newline-delimited.
func gzipLines(lines ...string) []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	for _, line := range lines {
		gz.Write([]byte(line))
		gz.Write([]byte("\n"))
	}
	gz.Close()
	return buf.Bytes()
}

// gzipRaw compresses a payload as-is into one gzip member.
func gzipRaw(s string) []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte(s))
	gz.Close()
	return buf.Bytes()
}

// corruptAfter produces an object whose first gzip member holds the given
// lines and whose trailing bytes are not a valid gzip stream, so a reader
// fails after yielding every line of the first member.
func corruptAfter(lines ...string) []byte {
	data := gzipLines(lines...)
	return append(data, []byte("this is not gzip")...)
}

// eventLine builds a trace-event NDJSON line.
func eventLine(tsMs int64, script, outcome string, status int, url string, logLines ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `{"EventTimestampMs":%d`, tsMs)
	if script != "" {
		fmt.Fprintf(&b, `,"ScriptName":%q`, script)
	}
	if outcome != "" {
		fmt.Fprintf(&b, `,"Outcome":%q`, outcome)
	}
	b.WriteString(`,"Event":{"RayID":"ray1","Request":{"URL":` + fmt.Sprintf("%q", url) + `,"Method":"GET"}`)
	if status > 0 {
		fmt.Fprintf(&b, `,"Response":{"Status":%d}`, status)
	}
	b.WriteString(`}`)
	if len(logLines) > 0 {
		b.WriteString(`,"Logs":[`)
		for i, l := range logLines {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, `{"Level":"log","Message":[%q],"TimestampMs":%d}`, l, tsMs)
		}
		b.WriteString(`]`)
	}
	b.WriteString(`}`)
	return b.String()
}
