// Package pipeline sequences the migration stages: analyze, mechanical
// rewrite, pattern orchestration, compile verification, report. A stage
// failure is recorded but does not abort later stages; the compile result is
// the authoritative success signal and always runs last.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spring-migrate/boot3migrate/internal/buildcheck"
	"github.com/spring-migrate/boot3migrate/internal/config"
	"github.com/spring-migrate/boot3migrate/internal/llm"
	"github.com/spring-migrate/boot3migrate/internal/models"
	"github.com/spring-migrate/boot3migrate/internal/orchestrator"
	"github.com/spring-migrate/boot3migrate/internal/rewrite"
)

// Result is the full pipeline outcome, the tool's machine-readable artifact.
type Result struct {
	Success         bool                        `json:"success"`
	Analysis        *Analysis                   `json:"analysis"`
	RewriteSuccess  bool                        `json:"rewrite_success"`
	RewriteChanges  int                         `json:"rewrite_changes"`
	Report          *models.OrchestrationReport `json:"pattern_report"`
	CompileSuccess  bool                        `json:"compile_success"`
	CompileErrors   []buildcheck.CompileError   `json:"compile_errors,omitempty"`
	Errors          []string                    `json:"errors,omitempty"`
	DurationSeconds float64                     `json:"duration_seconds"`
}

type Driver struct {
	cfg      *config.Config
	gen      llm.Generator
	rewriter *rewrite.Runner
	orch     *orchestrator.Orchestrator
	logger   *slog.Logger
}

func NewDriver(cfg *config.Config, gen llm.Generator, logger *slog.Logger) *Driver {
	return &Driver{
		cfg:      cfg,
		gen:      gen,
		rewriter: rewrite.NewRunner(&cfg.Rewrite, logger),
		orch:     orchestrator.New(gen, &cfg.Migration, logger),
		logger:   logger,
	}
}

// Run executes the pipeline once. It is single-pass and non-resumable:
// re-running re-processes the current on-disk state, and already-migrated
// files simply fail re-detection and are skipped.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	projectPath := d.cfg.Project.Path
	dryRun := d.cfg.Migration.DryRun
	var pipelineErrors []string

	d.logger.Info("Migration pipeline starting", "project", projectPath, "dry_run", dryRun)

	// Stage 1: analysis.
	analysis := Analyze(projectPath, d.logger)

	// Stage 2: mechanical rewrite. Failure here still lets pattern
	// orchestration make best-effort progress.
	rewriteResult, err := d.rewriter.Run(ctx, projectPath, dryRun)
	if err != nil {
		return nil, fmt.Errorf("mechanical rewrite stage failed to start: %w", err)
	}
	if !rewriteResult.Success {
		pipelineErrors = append(pipelineErrors, "OpenRewrite execution failed")
		d.logger.Error("Mechanical rewrite failed, continuing with pattern migration")
	}

	// Stage 3: pattern orchestration.
	files, err := Discover(projectPath, d.cfg.Migration.BackupSuffix)
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}
	report, err := d.orch.Run(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("pattern orchestration failed: %w", err)
	}
	for _, fileResult := range report.Files {
		if fileResult.Error != "" {
			pipelineErrors = append(pipelineErrors,
				fmt.Sprintf("[%s] %s: %s", fileResult.Kind, fileResult.FilePath, fileResult.Error))
		}
	}

	// Stage 4: compile verification, always last. Skipped only in dry-run,
	// which made no changes worth verifying.
	compileResult := &buildcheck.Result{Success: true}
	if dryRun {
		d.logger.Info("Dry-run mode: skipping compile verification")
	} else {
		compileResult, err = buildcheck.Validate(ctx, projectPath, d.cfg.Migration.CompileTimeout(), d.logger)
		if err != nil {
			return nil, fmt.Errorf("compile verification failed to start: %w", err)
		}
		if !compileResult.Success {
			pipelineErrors = append(pipelineErrors,
				fmt.Sprintf("compilation failed with %d error(s)", len(compileResult.Errors)))
		}
	}

	result := &Result{
		Success:         rewriteResult.Success && compileResult.Success && len(pipelineErrors) == 0,
		Analysis:        analysis,
		RewriteSuccess:  rewriteResult.Success,
		RewriteChanges:  rewriteResult.ChangedFiles,
		Report:          report,
		CompileSuccess:  compileResult.Success,
		CompileErrors:   compileResult.Errors,
		Errors:          pipelineErrors,
		DurationSeconds: time.Since(start).Seconds(),
	}

	status := "succeeded"
	if !result.Success {
		status = "failed"
	}
	d.logger.Info("Migration pipeline finished",
		"status", status,
		"duration", time.Since(start).Round(time.Millisecond))
	return result, nil
}
