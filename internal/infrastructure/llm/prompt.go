package llm

import (
	"strings"

	"ResearchAgent/internal/domain"
)

const promptAuthorLimit = 5

// BuildPrompt renders the technical-summary request for one candidate.
func BuildPrompt(c domain.Candidate) string {
	var b strings.Builder

	switch c.Kind {
	case domain.KindVideo:
		b.WriteString("Please provide a technical summary of this autonomous driving video:\n\n")
		b.WriteString("Title: " + c.Title + "\n")
		b.WriteString("Channel: " + c.Video.Channel + "\n")
		b.WriteString("Description: " + c.BodyText + "\n\n")
	default:
		b.WriteString("Please provide a technical summary of this autonomous driving research paper:\n\n")
		b.WriteString("Title: " + c.Title + "\n")
		b.WriteString("Authors: " + c.Byline(promptAuthorLimit) + "\n")
		b.WriteString("Abstract: " + c.BodyText + "\n\n")
	}

	b.WriteString("Please include:\n")
	b.WriteString("1. Key technical contributions\n")
	b.WriteString("2. Methodology\n")
	b.WriteString("3. Results and improvements\n")
	b.WriteString("4. Potential impact on autonomous driving\n")
	b.WriteString("5. Limitations or future work\n\n")
	b.WriteString("Keep the summary concise but technical (200-300 words).")
	return b.String()
}
