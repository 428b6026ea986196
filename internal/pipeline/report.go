package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spring-migrate/boot3migrate/internal/models"
)

var patternLabels = []struct {
	kind  models.PatternKind
	label string
}{
	{models.PatternSecurityConfig, "Security"},
	{models.PatternHibernate, "Hibernate 6"},
	{models.PatternConfigProperties, "Config Properties"},
}

// SaveJSON writes the machine-readable pipeline result.
func (r *Result) SaveJSON(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// Markdown renders the human-readable migration report.
func (r *Result) Markdown() string {
	status := "FAILED"
	if r.Success {
		status = "SUCCESS"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Migration Report — %s\n\n", r.Analysis.ProjectName)
	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- **Status:** %s\n", status)
	fmt.Fprintf(&b, "- **Duration:** %.1fs\n", r.DurationSeconds)
	fmt.Fprintf(&b, "- **Errors:** %d\n\n", len(r.Errors))

	b.WriteString("## Project Analysis\n")
	fmt.Fprintf(&b, "- **Project:** %s\n", r.Analysis.ProjectName)
	fmt.Fprintf(&b, "- **Spring Boot version:** %s\n", r.Analysis.SpringBootVersion)
	fmt.Fprintf(&b, "- **Java files:** %d\n", r.Analysis.TotalJavaFiles)
	fmt.Fprintf(&b, "- **Estimated complexity:** %s\n\n", r.Analysis.EstimatedComplexity)

	b.WriteString("## OpenRewrite Results\n")
	fmt.Fprintf(&b, "- **Executed:** %s\n", yesNo(r.RewriteSuccess))
	fmt.Fprintf(&b, "- **Files changed:** %d\n\n", r.RewriteChanges)

	if r.Report != nil {
		b.WriteString("## Pattern Migrations\n")
		fmt.Fprintf(&b, "- **Run ID:** %s\n", r.Report.RunID)
		fmt.Fprintf(&b, "- **Files scanned:** %d\n", r.Report.FilesScanned)
		fmt.Fprintf(&b, "- **Files matched:** %d\n", r.Report.TotalMatched())
		fmt.Fprintf(&b, "- **Files migrated:** %d\n", r.Report.TotalAccepted())
		fmt.Fprintf(&b, "- **Automation rate:** %.0f%%\n", r.Report.AutomationRate()*100)
		fmt.Fprintf(&b, "- **Total tokens used:** %d\n\n", r.Report.TotalTokens)

		for _, entry := range patternLabels {
			outcome := r.Report.Outcomes[entry.kind]
			if outcome == nil {
				continue
			}
			fmt.Fprintf(&b, "### %s\n", entry.label)
			fmt.Fprintf(&b, "- Matched: %d, Accepted: %d, Rejected: %d, Errored: %d, Tokens: %d\n\n",
				outcome.Matched, outcome.Accepted, outcome.Rejected, outcome.Errored, outcome.Tokens)
		}

		if rejected := rejectedFiles(r.Report); len(rejected) > 0 {
			b.WriteString("### Rejected and Errored Files\n")
			for _, fileResult := range rejected {
				if len(fileResult.ViolatedRules) > 0 {
					fmt.Fprintf(&b, "- `%s` (%s): violated %s\n",
						fileResult.FilePath, fileResult.State,
						strings.Join(fileResult.ViolatedRules, ", "))
				} else {
					fmt.Fprintf(&b, "- `%s` (%s): %s\n",
						fileResult.FilePath, fileResult.State, fileResult.Error)
				}
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Compilation Results\n")
	fmt.Fprintf(&b, "- **Success:** %s\n", yesNo(r.CompileSuccess))
	if len(r.CompileErrors) > 0 {
		fmt.Fprintf(&b, "- **Errors:** %d\n\n", len(r.CompileErrors))
		b.WriteString("### Compilation Errors\n")
		for _, ce := range r.CompileErrors {
			fmt.Fprintf(&b, "- `%s:%d` — %s\n", ce.File, ce.Line, ce.Message)
		}
	}

	if len(r.Errors) > 0 {
		b.WriteString("\n## Pipeline Errors\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}

	b.WriteString("\n## Next Steps\n")
	b.WriteString("- [ ] Review OpenRewrite changes for correctness\n")
	b.WriteString("- [ ] Review migrated Security configs against the .bak originals\n")
	b.WriteString("- [ ] Run the full test suite manually\n")
	b.WriteString("- [ ] Review remaining deprecated API usage\n")
	return b.String()
}

func rejectedFiles(report *models.OrchestrationReport) []models.FileResult {
	var out []models.FileResult
	for _, fileResult := range report.Files {
		if fileResult.State == models.StateValidationFailed ||
			fileResult.State == models.StateGenerationFailed ||
			fileResult.Error != "" {
			out = append(out, fileResult)
		}
	}
	return out
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
