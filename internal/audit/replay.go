package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// TimestampFormat is the layout used in audit entry timestamps.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// ReplayFilter holds filtering criteria for replaying decisions.
type ReplayFilter struct {
	TraceID  string
	CallerID string    // empty = any caller
	From     time.Time // zero value = no lower bound
	To       time.Time // zero value = no upper bound
}

// ReplaySummary holds outcome counts and metadata for a replayed trace.
type ReplaySummary struct {
	Total          int    `json:"total"`
	AllowedCount   int    `json:"allowed_count"`
	PartialCount   int    `json:"partial_count"`
	DeniedCount    int    `json:"denied_count"`
	FirstTimestamp string `json:"first_timestamp"`
	LastTimestamp  string `json:"last_timestamp"`
	MaxLevel       string `json:"max_level"`
}

// ReplayResult holds filtered entries and summary for a trace replay.
type ReplayResult struct {
	TraceID string        `json:"trace_id"`
	Entries []AuditEntry  `json:"entries"`
	Summary ReplaySummary `json:"summary"`
}

// Replay reads the audit log and returns entries matching the filter.
func Replay(path string, filter ReplayFilter) (*ReplayResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	result := &ReplayResult{
		TraceID: filter.TraceID,
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue // skip malformed lines
		}

		if filter.TraceID != "" && entry.TraceID != filter.TraceID {
			continue
		}
		if filter.CallerID != "" && entry.Caller.ID != filter.CallerID {
			continue
		}

		// Time range filtering
		if !filter.From.IsZero() || !filter.To.IsZero() {
			ts, err := time.Parse(TimestampFormat, entry.Timestamp)
			if err != nil {
				continue // skip unparseable timestamps
			}
			if !filter.From.IsZero() && ts.Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && ts.After(filter.To) {
				continue
			}
		}

		result.Entries = append(result.Entries, entry)
		updateSummary(&result.Summary, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	return result, nil
}

func updateSummary(s *ReplaySummary, entry AuditEntry) {
	s.Total++

	switch entry.Outcome {
	case "allowed":
		s.AllowedCount++
	case "allowed_partial":
		s.PartialCount++
	case "denied":
		s.DeniedCount++
	}

	// L1 outranks L0; anything recorded at L1 marks the whole trace.
	if s.MaxLevel == "" || entry.SecurityLevel == "L1" {
		s.MaxLevel = entry.SecurityLevel
	}

	if s.FirstTimestamp == "" {
		s.FirstTimestamp = entry.Timestamp
	}
	s.LastTimestamp = entry.Timestamp
}
