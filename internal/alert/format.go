package alert

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatPayload builds the webhook body for the given format.
func FormatPayload(format string, event AlertEvent) ([]byte, error) {
	switch format {
	case "slack":
		return formatSlack(event)
	case "pagerduty":
		return formatPagerDuty(event)
	default:
		return formatGeneric(event)
	}
}

func formatGeneric(event AlertEvent) ([]byte, error) {
	return json.Marshal(event)
}

func formatSlack(event AlertEvent) ([]byte, error) {
	payload := map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf("querygate: %s", event.Outcome),
				},
			},
			map[string]any{
				"type": "section",
				"fields": []any{
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Caller:* %s/%s", event.CallerRole, event.CallerID)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Intent:* %s", event.Intent)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Level:* %s (%s)", event.SecurityLevel, levelLabelFor(event.SecurityLevel))},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Reason:* %s", event.Reason)},
				},
			},
		},
	}
	return json.Marshal(payload)
}

func formatPagerDuty(event AlertEvent) ([]byte, error) {
	severity := "warning"
	if event.SecurityLevel == "L1" {
		severity = "critical"
	}

	payload := map[string]any{
		"event_action": "trigger",
		"payload": map[string]any{
			"summary":  fmt.Sprintf("querygate %s: %s", event.Outcome, event.Intent),
			"severity": severity,
			"source":   "querygate",
			"custom_details": map[string]any{
				"caller_role":    event.CallerRole,
				"caller_id":      event.CallerID,
				"intent":         event.Intent,
				"security_level": event.SecurityLevel,
				"reason":         event.Reason,
				"blocked_fields": strings.Join(event.BlockedFields, ","),
				"trace_id":       event.TraceID,
			},
		},
	}
	return json.Marshal(payload)
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
