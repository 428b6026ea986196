// Package rewrite invokes the OpenRewrite Maven plugin, the mechanical half
// of the migration. The plugin is treated as an opaque batch tool: recipe in,
// changed-file count and raw log out.
package rewrite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/spring-migrate/boot3migrate/internal/config"
)

// Result is the outcome of one OpenRewrite invocation.
type Result struct {
	Success      bool
	Output       string
	ChangedFiles int
}

type Runner struct {
	cfg    *config.RewriteConfig
	logger *slog.Logger
}

func NewRunner(cfg *config.RewriteConfig, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

// Run executes the recipe against the project. In preview mode the dryRun
// goal is used, which never mutates the project.
func (r *Runner) Run(ctx context.Context, projectPath string, preview bool) (*Result, error) {
	if _, err := os.Stat(filepath.Join(projectPath, "pom.xml")); err != nil {
		return &Result{Output: fmt.Sprintf("no pom.xml found at %s", projectPath)}, nil
	}

	goal := "run"
	if preview {
		goal = "dryRun"
	}
	plugin := fmt.Sprintf("org.openrewrite.maven:rewrite-maven-plugin:%s:%s", r.cfg.PluginVersion, goal)
	args := []string{
		"-U",
		plugin,
		"-Drewrite.recipeArtifactCoordinates=" + r.cfg.RecipeCoordinates,
		"-Drewrite.activeRecipes=" + r.cfg.Recipe,
	}

	timeout := r.cfg.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r.logger.Info("Running OpenRewrite",
		"goal", goal,
		"recipe", r.cfg.Recipe,
		"version", r.cfg.PluginVersion)

	cmd := exec.CommandContext(runCtx, "mvn", args...)
	cmd.Dir = projectPath
	output, err := cmd.CombinedOutput()
	combined := string(output)

	if runCtx.Err() == context.DeadlineExceeded {
		return &Result{Output: fmt.Sprintf("OpenRewrite timed out after %s", timeout)}, nil
	}
	if err != nil {
		r.logger.Error("OpenRewrite failed", "goal", goal, "error", err)
		return &Result{Output: combined}, nil
	}

	changed := ParseChangeCount(combined)
	r.logger.Info("OpenRewrite completed", "goal", goal, "changed_files", changed)
	return &Result{Success: true, Output: combined, ChangedFiles: changed}, nil
}

var (
	appliedChangeRe = regexp.MustCompile(`Changes have been made to (\S+) by:`)
	plannedChangeRe = regexp.MustCompile(`These recipes would make changes to (\S+):`)
	madeChangesRe   = regexp.MustCompile(`Made (\d+) change`)
)

// ParseChangeCount extracts the number of changed files from OpenRewrite
// output. The run and dryRun goals report changes in different formats; each
// matching line is one changed file. A summary line is the fallback.
func ParseChangeCount(output string) int {
	total := len(appliedChangeRe.FindAllString(output, -1)) +
		len(plannedChangeRe.FindAllString(output, -1))
	if total > 0 {
		return total
	}

	if m := madeChangesRe.FindStringSubmatch(output); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}
