package gateway

import (
	"fmt"
	"strings"

	"github.com/novahq/nova/internal/executor"
)

const maxReplyChars = 3500

// formatResult renders a task result as a chat reply. Telegram and Discord
// both cap message length, so long outputs get truncated.
func formatResult(result executor.TaskResult, err error) string {
	if err != nil {
		return fmt.Sprintf("Task failed: %v", err)
	}

	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "Task %s completed in %dms\n", result.TaskID, result.DurationMS)
	} else {
		fmt.Fprintf(&b, "Task %s finished with errors (%dms)\n", result.TaskID, result.DurationMS)
	}

	for _, outcome := range result.Outcomes {
		if outcome.Err != nil {
			fmt.Fprintf(&b, "✗ %s: %s\n", outcome.StepID, outcome.Err.Detail)
			continue
		}
		fmt.Fprintf(&b, "✓ %s: %s\n", outcome.StepID, string(outcome.Value))
	}

	reply := b.String()
	if len(reply) > maxReplyChars {
		reply = reply[:maxReplyChars] + "\n... (truncated)"
	}
	return reply
}
