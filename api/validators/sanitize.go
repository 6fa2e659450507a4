package validators

import "strings"

// SanitizeString trims whitespace and truncates to maxLen bytes (0 means
// no cap).
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
