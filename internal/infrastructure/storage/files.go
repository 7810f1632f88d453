package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ResearchAgent/internal/domain"
	"ResearchAgent/internal/ports"
	"ResearchAgent/internal/research"
)

// File names written into every run directory.
const (
	ResultsFile = "research_results.json"
	ReportFile  = "research_report.txt"
)

// FileWriter stores a snapshot as JSON plus the rendered text report.
type FileWriter struct{}

var _ ports.ReportWriter = FileWriter{}

// Write creates dir if needed and overwrites both files.
func (FileWriter) Write(snapshot domain.Snapshot, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ResultsFile), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ReportFile), []byte(research.Render(snapshot)), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
