// Package logpush implements the log query engine for gzipped NDJSON trace
// events stored in an object-storage bucket laid out
// <environment>/<YYYYMMDD>/<file>.log.gz.
package logpush

import (
	"encoding/json"
	"strings"
	"time"
)

// LogMessage is a console log message emitted during an invocation.
type LogMessage struct {
	Level       string
	Message     []string
	TimestampMs int64
}

// Text returns the log message as a single string.
func (m LogMessage) Text() string {
	return strings.Join(m.Message, " ")
}

// Exception is an uncaught exception recorded during an invocation.
type Exception struct {
	Name    string
	Message string
}

// Entry is one parsed trace event. Entries are immutable once parsed.
//
// Every field except Timestamp is optional: the shipping pipeline drifts and
// unknown or missing fields must not reject a line. The full decoded object
// is retained in Raw so callers see the event shape the engine does not
// model.
type Entry struct {
	Timestamp  time.Time
	ScriptName string
	Outcome    string
	Status     int
	HasStatus  bool
	URL        string
	Method     string
	RayID      string
	CPUTimeMs  int64
	WallTimeMs int64
	Logs       []LogMessage
	Exceptions []Exception
	Raw        map[string]interface{}
}

// LogText returns all log messages joined by newlines.
func (e *Entry) LogText() string {
	parts := make([]string, 0, len(e.Logs))
	for _, l := range e.Logs {
		parts = append(parts, l.Text())
	}
	return strings.Join(parts, "\n")
}

// HasErrors reports whether the entry recorded a failure: an exception
// outcome, a captured exception, or a warn/error-level log line.
func (e *Entry) HasErrors() bool {
	if e.Outcome == "exception" {
		return true
	}
	if len(e.Exceptions) > 0 {
		return true
	}
	for _, l := range e.Logs {
		if l.Level == "error" || l.Level == "warn" {
			return true
		}
	}
	return false
}

// ParseEntry converts one NDJSON line into an Entry. It returns false for
// any line that is not a JSON object or lacks an event timestamp; no partial
// entries are synthesized.
func ParseEntry(line string) (*Entry, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return nil, false
	}

	tsMs := asInt64(raw["EventTimestampMs"])
	if tsMs <= 0 {
		return nil, false
	}

	e := &Entry{
		Timestamp:  time.UnixMilli(tsMs).UTC(),
		ScriptName: asString(raw["ScriptName"]),
		Outcome:    asString(raw["Outcome"]),
		CPUTimeMs:  asInt64(raw["CPUTimeMs"]),
		WallTimeMs: asInt64(raw["WallTimeMs"]),
		Raw:        raw,
	}

	if event, ok := raw["Event"].(map[string]interface{}); ok {
		e.RayID = asString(event["RayID"])
		if req, ok := event["Request"].(map[string]interface{}); ok {
			e.URL = asString(req["URL"])
			e.Method = asString(req["Method"])
		}
		if resp, ok := event["Response"].(map[string]interface{}); ok {
			if status := asInt64(resp["Status"]); status > 0 {
				e.Status = int(status)
				e.HasStatus = true
			}
		}
	}

	if logs, ok := raw["Logs"].([]interface{}); ok {
		for _, item := range logs {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			msg := LogMessage{
				Level:       asString(entry["Level"]),
				TimestampMs: asInt64(entry["TimestampMs"]),
			}
			if parts, ok := entry["Message"].([]interface{}); ok {
				for _, p := range parts {
					msg.Message = append(msg.Message, asString(p))
				}
			}
			e.Logs = append(e.Logs, msg)
		}
	}

	if exceptions, ok := raw["Exceptions"].([]interface{}); ok {
		for _, item := range exceptions {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			e.Exceptions = append(e.Exceptions, Exception{
				Name:    asString(entry["Name"]),
				Message: asString(entry["Message"]),
			})
		}
	}

	return e, true
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}
