package llm

import (
	"context"
	"fmt"

	"ResearchAgent/internal/domain"
	"ResearchAgent/internal/ports"
)

const templateTitleLimit = 50

// TemplateSummarizer writes a canned summary without calling any model.
type TemplateSummarizer struct{}

var _ ports.Summarizer = TemplateSummarizer{}

// Summarize never fails.
func (TemplateSummarizer) Summarize(_ context.Context, candidate domain.Candidate) (string, error) {
	title := []rune(candidate.Title)
	if len(title) > templateTitleLimit {
		title = title[:templateTitleLimit]
	}

	noun := "paper"
	if candidate.Kind == domain.KindVideo {
		noun = "video"
	}

	return fmt.Sprintf("Technical summary of '%s...':\n\n"+
		"This %s presents novel research in autonomous driving with significant contributions to the field. "+
		"The methodology involves advanced techniques that show promising results. "+
		"The work has potential for real-world applications in self-driving systems.\n\n"+
		"Key findings: Improved performance, novel approach, practical implementation.",
		string(title), noun), nil
}
