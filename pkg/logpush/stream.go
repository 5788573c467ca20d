package logpush

import (
	"bufio"
	"context"
	stderrors "errors"
	"io"

	"github.com/davidthor/logpushctl/pkg/errors"
	"github.com/davidthor/logpushctl/pkg/storage"
	"github.com/klauspost/compress/gzip"
)

// maxLineBytes bounds how much of a single NDJSON line is retained. Trace
// events with large log payloads have been observed near 1MB; 16MB leaves
// generous headroom. A longer line is truncated to this size, which makes it
// fail parsing and count as malformed rather than failing the stream.
const maxLineBytes = 16 * 1024 * 1024

// LineReader produces the decompressed lines of one log object lazily.
//
// The object body is streamed, not buffered whole, so a consumer that stops
// pulling (e.g. after a result limit) never downloads the remainder. Close
// must be called on every exit path.
type LineReader struct {
	key    string
	body   io.ReadCloser
	reader *bufio.Reader
	line   int
	err    error
	done   bool
}

// OpenObject fetches an object and opens a decompression stream over it.
//
// Fetch failures (network, auth, missing object) return ObjectUnavailable.
// An object whose very first bytes are not a gzip stream returns
// CorruptStream immediately.
func OpenObject(ctx context.Context, store storage.Store, key string) (*LineReader, error) {
	body, err := store.Fetch(ctx, key)
	if err != nil {
		return nil, errors.ObjectUnavailable(key, err)
	}

	gz, err := gzip.NewReader(body)
	if err != nil {
		body.Close()
		return nil, errors.CorruptStream(key, 0, err)
	}

	return &LineReader{
		key:    key,
		body:   body,
		reader: bufio.NewReaderSize(gz, 64*1024),
	}, nil
}

// Next returns the next raw line. It returns false when the object is
// exhausted or the stream fails mid-object; Err distinguishes the two.
// Lines already returned before a failure remain valid.
//
// A line longer than maxLineBytes is consumed to its newline but returned
// truncated; only decompression failures terminate the stream.
func (r *LineReader) Next() (string, bool) {
	if r.done {
		return "", false
	}

	var buf []byte
	truncated := false
	for {
		chunk, err := r.reader.ReadSlice('\n')
		if !truncated {
			buf = append(buf, chunk...)
			if len(buf) > maxLineBytes {
				buf, truncated = buf[:maxLineBytes], true
			}
		}

		switch {
		case err == nil:
			r.line++
			return string(trimEOL(buf)), true
		case stderrors.Is(err, bufio.ErrBufferFull):
			continue
		case stderrors.Is(err, io.EOF):
			r.done = true
			if len(buf) == 0 {
				return "", false
			}
			r.line++
			return string(trimEOL(buf)), true
		default:
			r.done = true
			r.err = errors.CorruptStream(r.key, r.line, err)
			return "", false
		}
	}
}

func trimEOL(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	if n := len(b); n > 0 && b[n-1] == '\r' {
		b = b[:n-1]
	}
	return b
}

// Skip consumes and discards up to n lines, returning the number skipped.
func (r *LineReader) Skip(n int) int {
	skipped := 0
	for skipped < n {
		if _, ok := r.Next(); !ok {
			break
		}
		skipped++
	}
	return skipped
}

// Err returns the terminal error, if any. A nil error means the object ended
// cleanly.
func (r *LineReader) Err() error {
	return r.err
}

// Line returns the number of lines produced so far.
func (r *LineReader) Line() int {
	return r.line
}

// Key returns the object key this reader was opened for.
func (r *LineReader) Key() string {
	return r.key
}

// Close releases the underlying network stream. Safe to call more than once.
func (r *LineReader) Close() error {
	if r.body == nil {
		return nil
	}
	err := r.body.Close()
	r.body = nil
	if err != nil && !stderrors.Is(err, io.ErrClosedPipe) {
		return err
	}
	return nil
}
