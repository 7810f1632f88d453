package research

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"ResearchAgent/internal/domain"
)

const (
	reportRule      = "=================================================="
	sectionRule     = "--------------------------------------------------"
	reportBylineMax = 3
)

// Aggregate merges per-kind results into a snapshot. Sections follow
// domain.Kinds, then any other kinds by name.
func Aggregate(byKind map[domain.Kind][]domain.Candidate, generatedAt time.Time, model string) domain.Snapshot {
	snapshot := domain.Snapshot{
		GeneratedAt: generatedAt,
		Model:       model,
		Sections:    make([]domain.Section, 0, len(byKind)),
	}

	for _, kind := range orderedKinds(byKind) {
		src := byKind[kind]
		candidates := make([]domain.Candidate, len(src))
		copy(candidates, src)
		snapshot.Sections = append(snapshot.Sections, domain.Section{Kind: kind, Candidates: candidates})
	}
	return snapshot
}

func orderedKinds(byKind map[domain.Kind][]domain.Candidate) []domain.Kind {
	known := make(map[domain.Kind]bool, len(domain.Kinds))
	kinds := make([]domain.Kind, 0, len(byKind))
	for _, k := range domain.Kinds {
		known[k] = true
		if _, ok := byKind[k]; ok {
			kinds = append(kinds, k)
		}
	}

	var extra []domain.Kind
	for k := range byKind {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(kinds, extra...)
}

// Render formats a snapshot as the plain-text research report.
func Render(snapshot domain.Snapshot) string {
	var b strings.Builder

	b.WriteString("RESEARCH REPORT\n")
	b.WriteString(reportRule + "\n\n")
	fmt.Fprintf(&b, "Date: %s\n", snapshot.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "AI Model: %s\n", strings.ToUpper(modelLabel(snapshot.Model)))

	for _, section := range snapshot.Sections {
		label := section.Kind.Plural()
		b.WriteString("\n")
		b.WriteString(strings.ToUpper(label) + "\n")
		b.WriteString(sectionRule + "\n")
		fmt.Fprintf(&b, "Total %s analyzed: %d\n\n", label, len(section.Candidates))

		for i, c := range section.Candidates {
			renderCandidate(&b, i+1, c)
		}
	}

	return b.String()
}

func renderCandidate(b *strings.Builder, index int, c domain.Candidate) {
	fmt.Fprintf(b, "%d. %s\n", index, c.Title)
	fmt.Fprintf(b, "   Score: %.2f\n", c.Score)
	if c.Kind == domain.KindVideo {
		fmt.Fprintf(b, "   Channel: %s\n", c.Byline(reportBylineMax))
	} else {
		fmt.Fprintf(b, "   Authors: %s\n", c.Byline(reportBylineMax))
	}
	fmt.Fprintf(b, "   Published: %s\n", publishedLabel(c))
	fmt.Fprintf(b, "   Summary: %s\n", c.Summary)
	fmt.Fprintf(b, "   URL: %s\n\n", c.URL)
}

func publishedLabel(c domain.Candidate) string {
	if !c.HasPublishedAt() {
		return "Unknown"
	}
	return c.PublishedAt.Format("2006-01-02")
}

func modelLabel(model string) string {
	if strings.TrimSpace(model) == "" {
		return "none"
	}
	return model
}
