package cmd

import (
	"strings"

	"github.com/fatih/color"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
	colorBold    = color.New(color.Bold).SprintFunc()
)

// formatStatusWithColor colors PASS/FAIL style labels; other text is unchanged.
func formatStatusWithColor(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "pass", "ok", "permitted":
		return colorSuccess(status)
	case "fail", "failed", "error", "blocked":
		return colorError(status)
	case "warn", "warning":
		return colorWarn(status)
	default:
		return status
	}
}
