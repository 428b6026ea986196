// Package orchestrator routes project files to pattern migrators, contains
// per-file failures, commits accepted output with a sidecar backup, and
// aggregates the run report. One bad file must never sink the rest of the
// run.
package orchestrator

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/spring-migrate/boot3migrate/internal/config"
	"github.com/spring-migrate/boot3migrate/internal/detect"
	"github.com/spring-migrate/boot3migrate/internal/llm"
	"github.com/spring-migrate/boot3migrate/internal/models"
	"github.com/spring-migrate/boot3migrate/internal/patterns"
)

type Orchestrator struct {
	gen          llm.Generator
	migrators    []patterns.Migrator
	maxWorkers   int
	backupSuffix string
	detectOnly   bool
	logger       *slog.Logger
}

// claim binds a task to the migrator that owns it and to its slot in the
// ordered result list, so the report order is stable at any concurrency
// degree.
type claim struct {
	task     *models.MigrationTask
	migrator patterns.Migrator
	index    int
}

func New(gen llm.Generator, cfg *config.MigrationConfig, logger *slog.Logger) *Orchestrator {
	workers := cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	suffix := cfg.BackupSuffix
	if suffix == "" {
		suffix = ".bak"
	}
	return &Orchestrator{
		gen:          gen,
		migrators:    patterns.Registry(),
		maxWorkers:   workers,
		backupSuffix: suffix,
		detectOnly:   cfg.DryRun,
		logger:       logger,
	}
}

// Run processes the given files and returns the run report. All state is
// allocated fresh per run; nothing survives between runs.
func (o *Orchestrator) Run(ctx context.Context, files []string) (*models.OrchestrationReport, error) {
	report := models.NewOrchestrationReport()
	report.FilesScanned = len(files)

	claims := o.route(files, report)
	o.logger.Info("Routing complete",
		"scanned", report.FilesScanned,
		"matched", report.TotalMatched(),
		"skipped", report.Skipped)

	results := make([]models.FileResult, len(claims))

	if o.detectOnly {
		for _, c := range claims {
			results[c.index] = fileResult(c.task)
		}
		report.Files = results
		report.Finish()
		o.logger.Info("Detect-only run: no generation calls issued")
		return report, nil
	}

	var mu sync.Mutex
	jobs := make(chan *claim)
	var wg sync.WaitGroup
	for i := 0; i < o.maxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				o.process(ctx, c)
				mu.Lock()
				o.record(report, results, c)
				mu.Unlock()
			}
		}()
	}

dispatch:
	for _, c := range claims {
		select {
		case <-ctx.Done():
			o.logger.Warn("Run cancelled, no new generation calls will be issued")
			break dispatch
		case jobs <- c:
		}
	}
	close(jobs)
	wg.Wait()

	// Tasks never dispatched because of cancellation still appear in the
	// report, with a diagnostic instead of a bare gap.
	for _, c := range claims {
		if results[c.index].FilePath != "" {
			continue
		}
		c.task.ErrorMessage = "run cancelled before generation"
		mu.Lock()
		o.record(report, results, c)
		mu.Unlock()
	}

	report.Files = results
	report.Finish()
	return report, nil
}

// route reads each file and evaluates detectors in fixed priority order.
// The first kind that matches claims the file exclusively for this run;
// a file is never sent to two migrators.
func (o *Orchestrator) route(files []string, report *models.OrchestrationReport) []*claim {
	var claims []*claim
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			o.logger.Warn("Could not read file, skipping", "file", path, "error", err)
			report.Skipped++
			continue
		}

		routed := false
		for _, migrator := range o.migrators {
			match := detect.Detect(migrator.Kind(), path, content)
			if match == nil {
				continue
			}
			task := models.NewTask(path, migrator.Kind(), string(content))
			task.Match = match
			_ = task.Advance(models.StateDetected)
			report.Outcome(migrator.Kind()).Matched++
			claims = append(claims, &claim{task: task, migrator: migrator, index: len(claims)})
			o.logger.Debug("File claimed", "file", path, "pattern", migrator.Kind(), "label", match.Label)
			routed = true
			break
		}
		if !routed {
			report.Skipped++
		}
	}
	return claims
}

// process drives one task to a terminal state: generation, validation, and
// the commit of accepted output.
func (o *Orchestrator) process(ctx context.Context, c *claim) {
	patterns.Run(ctx, o.gen, c.migrator, c.task, o.logger)
	if c.task.State != models.StateAccepted {
		return
	}

	if err := o.commit(c.task); err != nil {
		// Stays Accepted but unwritten; recorded under errored.
		c.task.ErrorMessage = fmt.Sprintf("failed to write migrated file: %v", err)
		o.logger.Error("Commit failed", "file", c.task.FilePath, "error", err)
		return
	}
	_ = c.task.Advance(models.StateWritten)
	o.logger.Info("Wrote migrated file", "file", c.task.FilePath)
}

// commit durably copies the pre-write content to the sidecar backup before
// replacing the file, and restores it if the replacement write fails. A
// file is either fully replaced or not touched.
func (o *Orchestrator) commit(task *models.MigrationTask) error {
	current, err := os.ReadFile(task.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read %s before write: %w", task.FilePath, err)
	}

	mode := fs.FileMode(0644)
	if info, err := os.Stat(task.FilePath); err == nil {
		mode = info.Mode().Perm()
	}

	backupPath := task.FilePath + o.backupSuffix
	if err := os.WriteFile(backupPath, current, mode); err != nil {
		return fmt.Errorf("failed to create backup %s: %w", backupPath, err)
	}
	o.logger.Debug("Backup created", "backup", backupPath)

	if err := os.WriteFile(task.FilePath, []byte(task.MigratedText), mode); err != nil {
		if rerr := os.WriteFile(task.FilePath, current, mode); rerr != nil {
			o.logger.Error("Could not restore backup after failed write",
				"file", task.FilePath, "error", rerr)
		}
		return fmt.Errorf("failed to write %s: %w", task.FilePath, err)
	}
	return nil
}

// record folds a finished task into the report. Callers hold the report
// lock, so aggregate counts are identical regardless of completion order.
func (o *Orchestrator) record(report *models.OrchestrationReport, results []models.FileResult, c *claim) {
	task := c.task
	outcome := report.Outcome(task.Kind)
	outcome.Tokens += task.TokensUsed
	report.TotalTokens += task.TokensUsed

	switch task.State {
	case models.StateWritten:
		outcome.Accepted++
	case models.StateValidationFailed:
		outcome.Rejected++
	default:
		// Generation failures, commit failures, cancellations.
		outcome.Errored++
	}

	results[c.index] = fileResult(task)
}

func fileResult(task *models.MigrationTask) models.FileResult {
	return models.FileResult{
		FilePath:      task.FilePath,
		Kind:          task.Kind,
		State:         task.State,
		TokensUsed:    task.TokensUsed,
		ViolatedRules: task.ViolatedRules,
		Error:         task.ErrorMessage,
	}
}
