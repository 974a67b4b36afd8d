package applier

import (
	"strings"

	"github.com/user/alttext-service/internal/domain"
)

// refusalPrefixes mark model output that is a refusal rather than a description.
var refusalPrefixes = []string{"Please", "I'm unable", "I can't", "I cannot"}

// UsableAssignments converts batch entries into assignments, dropping empty
// text and model refusals.
func UsableAssignments(entries []domain.BatchEntry) []domain.ApplyAssignment {
	var out []domain.ApplyAssignment
	for _, e := range entries {
		text := strings.TrimSpace(e.GeneratedText)
		if text == "" || isRefusal(text) {
			continue
		}
		out = append(out, domain.ApplyAssignment{Locator: e.Locator, ElementID: e.ElementID, Text: text})
	}
	return out
}

func isRefusal(text string) bool {
	for _, p := range refusalPrefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}
