package update

import (
	"fmt"
	"strings"
)

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func formatDuration(totalSec int) string {
	if totalSec < 0 {
		totalSec = 0
	}
	min := totalSec / 60
	sec := totalSec % 60
	return fmt.Sprintf("%02d:%02d", min, sec)
}

func signedMinutes(diff int) string {
	switch {
	case diff == 0:
		return "on time"
	case diff > 0:
		return fmt.Sprintf("%d min late", diff)
	default:
		return fmt.Sprintf("%d min early", -diff)
	}
}
