package validate

import (
	"fmt"
	"strings"
)

// FormatFeedback renders violations as corrective instructions suitable for
// appending to a regeneration prompt. Empty input yields "".
func FormatFeedback(violations []Violation) string {
	if len(violations) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Your previous draft broke these rules. Fix every one of them:\n")
	for _, viol := range violations {
		b.WriteString(fmt.Sprintf("- [%s] %s (%s)\n", viol.Kind, viol.Details, viol.Location))
	}
	b.WriteString("Rewrite so every listed rule passes. Keep the message, structure, and facts unchanged.\n")
	return b.String()
}
