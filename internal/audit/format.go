package audit

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const separator = "──────────────────────────────────────────────────────────────────"

// FormatTimeline renders a ReplayResult as a human-readable text timeline.
func FormatTimeline(result *ReplayResult) string {
	if len(result.Entries) == 0 {
		return fmt.Sprintf("Trace: %s | No entries found.\n", result.TraceID)
	}

	var b strings.Builder

	// Header
	first := result.Summary.FirstTimestamp
	last := result.Summary.LastTimestamp
	firstTime := formatDateRange(first)
	lastTime := formatTimeOnly(last)
	b.WriteString(fmt.Sprintf("Trace: %s | %s–%s UTC\n", result.TraceID, firstTime, lastTime))
	b.WriteString(separator + "\n")

	// Entries
	for _, e := range result.Entries {
		ts := formatTimeOnly(e.Timestamp)
		level := e.SecurityLevel
		outcome := strings.ToUpper(e.Outcome)
		caller := truncate(e.Caller.Role+"/"+e.Caller.ID, 18)
		intent := truncate(e.Intent, 40)

		tag := ""
		if len(e.BlockedFields) > 0 {
			tag = "  [" + strings.Join(e.BlockedFields, ",") + "]"
		}

		b.WriteString(fmt.Sprintf("%-10s %-3s %-16s %-18s %-40s%s\n",
			ts, level, outcome, caller, intent, tag))
	}

	// Footer
	b.WriteString(separator + "\n")
	b.WriteString(formatSummary(result.Summary))

	return b.String()
}

// FormatJSON renders a ReplayResult as indented JSON.
func FormatJSON(result *ReplayResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal replay result: %w", err)
	}
	return string(data), nil
}

func formatDateRange(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatTimeOnly(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("15:04:05")
}

func formatSummary(s ReplaySummary) string {
	parts := []string{}
	if s.AllowedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d allowed", s.AllowedCount))
	}
	if s.PartialCount > 0 {
		parts = append(parts, fmt.Sprintf("%d partial", s.PartialCount))
	}
	if s.DeniedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d denied", s.DeniedCount))
	}

	return fmt.Sprintf("Summary: %s | Max level: %s (%s)\n",
		strings.Join(parts, ", "), s.MaxLevel, levelLabelFor(s.MaxLevel))
}

func levelLabelFor(level string) string {
	switch level {
	case "L0":
		return "public"
	case "L1":
		return "restricted"
	default:
		return "unknown"
	}
}

// truncate counts runes, not bytes: intents are mostly CJK text.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
