// Package obslog is the structured-JSON line logger used by cmd/sandboxrun
// and by the monitor package's best-effort non-fatal reporting paths (limit
// setup failures that don't abort a spawn). It is deliberately not a
// third-party logging library: the library this package is modeled on
// (Paintersrp/orco) never imports one either, hand-rolling a JSON encoder
// over its own event shape instead.
package obslog

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// Event is one line to log: a RunID-scoped note about a spawn's lifecycle,
// independent of the process-oriented Service/Replica shape this logger's
// ancestor used.
type Event struct {
	Timestamp time.Time
	RunID     string
	PID       int
	Level     string
	Message   string
}

// Record is the JSON shape written to the log stream.
type Record struct {
	Timestamp time.Time `json:"ts"`
	RunID     string    `json:"run_id"`
	PID       int       `json:"pid,omitempty"`
	Level     string    `json:"level"`
	Message   string    `json:"msg"`
}

var levelTokenPattern = regexp.MustCompile(`(?i)\b(error|warn|info)\b`)

func inferLevel(message string) string {
	matches := levelTokenPattern.FindStringSubmatch(message)
	if len(matches) < 2 {
		return ""
	}
	switch strings.ToLower(matches[1]) {
	case "error":
		return "error"
	case "warn":
		return "warn"
	case "info":
		return "info"
	default:
		return ""
	}
}

// NewRecord converts a raw Event into a Record, inferring a level from the
// message when one wasn't set explicitly and redacting known secret
// patterns out of the message text.
func NewRecord(event Event) Record {
	level := event.Level
	if level == "" {
		if inferred := inferLevel(event.Message); inferred != "" {
			level = inferred
		} else {
			level = "info"
		}
	}
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return Record{
		Timestamp: ts,
		RunID:     event.RunID,
		PID:       event.PID,
		Level:     level,
		Message:   RedactSecrets(event.Message),
	}
}

// Encode writes event to enc as one JSON line, reporting encode failures to
// stderr rather than returning an error: a broken log stream must never
// interrupt the spawn it's describing.
func Encode(enc *json.Encoder, stderr io.Writer, event Event) {
	if enc == nil {
		return
	}
	record := NewRecord(event)
	if err := enc.Encode(&record); err != nil {
		fmt.Fprintf(stderr, "error: encode log: %v\n", err)
	}
}
