package generator

import (
	"strings"

	"github.com/lithammer/dedent"
)

var basePrompt = strings.TrimSpace(dedent.Dedent(`
	Generate concise, descriptive alt text for this image.
	The alt text should:
	- Be brief but descriptive (under 125 characters)
	- Describe what the image shows, not what it looks like
	- Include relevant context for screen readers
	- Be written in a natural, human-friendly way
`))

// BuildPrompt returns the instruction text, with the caller's context
// appended on its own line when present.
func BuildPrompt(extra string) string {
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return basePrompt
	}
	return basePrompt + "\n\nAdditional context: " + extra
}
