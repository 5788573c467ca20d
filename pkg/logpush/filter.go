package logpush

import "strings"

// FilterSpec is a conjunctive set of optional predicates over entries.
// Absent predicates are vacuously true. The zero value matches everything.
type FilterSpec struct {
	// ScriptName filters by exact worker script name.
	ScriptName string

	// StatusCode filters by exact HTTP status code.
	StatusCode int

	// StatusGte keeps entries whose status is >= the value.
	StatusGte int

	// StatusLt keeps entries whose status is < the value.
	StatusLt int

	// Outcome filters by exact outcome value (e.g. "ok", "exception").
	Outcome string

	// SearchText is matched case-insensitively as a substring of the
	// request URL or any log line.
	SearchText string

	// ErrorsOnly keeps only entries that recorded a failure.
	ErrorsOnly bool
}

// IsZero reports whether no predicates are set.
func (f FilterSpec) IsZero() bool {
	return f == FilterSpec{}
}

// Matches evaluates the conjunction against an entry. Predicates run
// cheapest first; an empty status range (StatusGte > StatusLt) simply never
// matches.
func (f FilterSpec) Matches(e *Entry) bool {
	if f.ScriptName != "" && e.ScriptName != f.ScriptName {
		return false
	}
	if f.Outcome != "" && e.Outcome != f.Outcome {
		return false
	}
	if f.StatusCode != 0 && e.Status != f.StatusCode {
		return false
	}
	if f.StatusGte != 0 && e.Status < f.StatusGte {
		return false
	}
	if f.StatusLt != 0 && e.Status >= f.StatusLt {
		return false
	}
	if f.ErrorsOnly && !e.HasErrors() {
		return false
	}
	if f.SearchText != "" {
		needle := strings.ToLower(f.SearchText)
		if !strings.Contains(strings.ToLower(e.URL), needle) &&
			!containsLogText(e.Logs, needle) {
			return false
		}
	}
	return true
}

func containsLogText(logs []LogMessage, needle string) bool {
	for _, l := range logs {
		if strings.Contains(strings.ToLower(l.Text()), needle) {
			return true
		}
	}
	return false
}
