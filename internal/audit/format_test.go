package audit

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFormatTimelineHeaderAndSummary(t *testing.T) {
	path := writeTestLog(t)
	result, err := Replay(path, ReplayFilter{TraceID: "t-aaa"})
	if err != nil {
		t.Fatal(err)
	}

	out := FormatTimeline(result)

	if !strings.Contains(out, "Trace: t-aaa") {
		t.Error("expected header to contain trace ID")
	}
	if !strings.Contains(out, "Summary:") {
		t.Error("expected summary line")
	}
	if !strings.Contains(out, "2 allowed") {
		t.Errorf("expected '2 allowed' in summary, got:\n%s", out)
	}
	if !strings.Contains(out, "2 denied") {
		t.Errorf("expected '2 denied' in summary, got:\n%s", out)
	}
	if !strings.Contains(out, "Max level: L1 (restricted)") {
		t.Errorf("expected max level in summary, got:\n%s", out)
	}
}

func TestFormatTimelineEntryColumns(t *testing.T) {
	path := writeTestLog(t)
	result, err := Replay(path, ReplayFilter{TraceID: "t-aaa"})
	if err != nil {
		t.Fatal(err)
	}

	out := FormatTimeline(result)

	if !strings.Contains(out, "L0") {
		t.Error("expected L0 level badge")
	}
	if !strings.Contains(out, "L1") {
		t.Error("expected L1 level badge")
	}
	if !strings.Contains(out, "DENIED") {
		t.Error("expected DENIED outcome")
	}
	if !strings.Contains(out, "ALLOWED") {
		t.Error("expected ALLOWED outcome")
	}
	if !strings.Contains(out, "Sales/sales001") {
		t.Error("expected caller column")
	}
	if !strings.Contains(out, "[毛利]") {
		t.Error("expected blocked-field tag on denied entries")
	}
}

func TestFormatTimelineEmptyResult(t *testing.T) {
	out := FormatTimeline(&ReplayResult{TraceID: "t-nope"})
	if !strings.Contains(out, "No entries found") {
		t.Errorf("expected empty-result message, got: %s", out)
	}
}

func TestFormatJSONRoundTrips(t *testing.T) {
	path := writeTestLog(t)
	result, err := Replay(path, ReplayFilter{TraceID: "t-aaa"})
	if err != nil {
		t.Fatal(err)
	}

	out, err := FormatJSON(result)
	if err != nil {
		t.Fatal(err)
	}

	var decoded ReplayResult
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Summary.Total != result.Summary.Total {
		t.Errorf("summary lost in round trip: %+v", decoded.Summary)
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	s := "分析全国各区域的毛利率和欠款情况按月份对比"
	out := truncate(s, 10)
	if !strings.HasSuffix(out, "...") {
		t.Errorf("expected ellipsis, got %s", out)
	}
	if !utf8.ValidString(out) {
		t.Errorf("truncation split a rune: %s", out)
	}
}
