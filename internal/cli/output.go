package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/davidthor/logpushctl/pkg/logpush"
	"gopkg.in/yaml.v3"
)

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// printYAML writes v to stdout as YAML.
func printYAML(v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

// entrySummary is the compact one-row view of an entry.
func entrySummary(e *logpush.Entry) map[string]interface{} {
	status := interface{}(nil)
	if e.HasStatus {
		status = e.Status
	}
	return map[string]interface{}{
		"timestamp": e.Timestamp.Format(time.RFC3339),
		"script":    e.ScriptName,
		"method":    e.Method,
		"url":       e.URL,
		"status":    status,
		"outcome":   e.Outcome,
		"ray_id":    e.RayID,
		"log_count": len(e.Logs),
	}
}

// entryDetail is the full view, including exceptions and log lines.
func entryDetail(e *logpush.Entry) map[string]interface{} {
	detail := entrySummary(e)
	detail["cpu_time_ms"] = e.CPUTimeMs
	detail["wall_time_ms"] = e.WallTimeMs

	exceptions := make([]map[string]string, 0, len(e.Exceptions))
	for _, ex := range e.Exceptions {
		exceptions = append(exceptions, map[string]string{
			"name":    ex.Name,
			"message": ex.Message,
		})
	}
	detail["exceptions"] = exceptions

	logs := make([]map[string]interface{}, 0, len(e.Logs))
	for _, l := range e.Logs {
		logs = append(logs, map[string]interface{}{
			"level":        l.Level,
			"message":      l.Text(),
			"timestamp_ms": l.TimestampMs,
		})
	}
	detail["logs"] = logs
	delete(detail, "log_count")
	return detail
}

// printEntries renders entries in the requested format. Detail expands
// exceptions and log lines; the table view is always the summary.
func printEntries(entries []*logpush.Entry, format string, detail bool) error {
	shape := func(e *logpush.Entry) map[string]interface{} {
		if detail {
			return entryDetail(e)
		}
		return entrySummary(e)
	}

	switch format {
	case "json":
		rows := make([]map[string]interface{}, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, shape(e))
		}
		return printJSON(rows)
	case "yaml":
		rows := make([]map[string]interface{}, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, shape(e))
		}
		return printYAML(rows)
	default:
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIMESTAMP\tSCRIPT\tSTATUS\tOUTCOME\tURL")
		for _, e := range entries {
			status := "-"
			if e.HasStatus {
				status = fmt.Sprintf("%d", e.Status)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.Timestamp.Format(time.RFC3339), e.ScriptName, status, e.Outcome, e.URL)
		}
		return w.Flush()
	}
}
