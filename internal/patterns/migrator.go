// Package patterns implements the per-kind migrators: prompt construction,
// model invocation, response cleanup, and the validation gate. Migrators
// hold no task state and perform no file I/O; committing accepted output is
// the orchestrator's job.
package patterns

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/spring-migrate/boot3migrate/internal/javaquery"
	"github.com/spring-migrate/boot3migrate/internal/llm"
	"github.com/spring-migrate/boot3migrate/internal/models"
	"github.com/spring-migrate/boot3migrate/internal/rules"
)

//go:embed prompts/*.txt
var promptFS embed.FS

// Output ceilings sized generously above the largest expected single-file
// response.
const (
	codeMaxOutputTokens   = 4000
	configMaxOutputTokens = 2000
)

// Migrator is the pattern-specific half of a migration attempt. The shared
// Run pipeline drives it uniformly across kinds.
type Migrator interface {
	Kind() models.PatternKind
	// Prompt builds the model prompt for the task. Placeholder expansion
	// must be a literal substring replacement: the source being migrated is
	// untrusted as template syntax.
	Prompt(task *models.MigrationTask) string
	MaxOutputTokens() int
	Rules() []rules.Rule
	// ChecksSyntax reports whether candidates must parse as valid Java.
	ChecksSyntax() bool
}

// Registry returns one migrator per pattern kind, in routing priority order.
// Adding a pattern kind means adding one entry here, not threading new
// conditionals through the orchestrator.
func Registry() []Migrator {
	return []Migrator{
		&SecurityMigrator{},
		&HibernateMigrator{},
		&ConfigPropertiesMigrator{},
	}
}

func loadPrompt(name string) string {
	data, err := promptFS.ReadFile("prompts/" + name)
	if err != nil {
		// Embedded files are fixed at build time; a missing one is a
		// packaging bug, not a runtime condition.
		panic(fmt.Sprintf("missing embedded prompt %s: %v", name, err))
	}
	return string(data)
}

// Run advances the task through generation and validation to a terminal
// state. It is a pure function of its inputs plus the one model call.
func Run(ctx context.Context, gen llm.Generator, m Migrator, task *models.MigrationTask, logger *slog.Logger) {
	if err := task.Advance(models.StateGenerationInFlight); err != nil {
		task.ErrorMessage = err.Error()
		return
	}

	logger.Info("Calling model to migrate file", "file", task.FilePath, "pattern", m.Kind())
	result, err := gen.Generate(ctx, m.Prompt(task), m.MaxOutputTokens())
	task.TokensUsed = result.TotalTokens()
	if err != nil {
		_ = task.Fail(models.StateGenerationFailed, fmt.Sprintf("generation error: %v", err))
		logger.Error("Generation failed", "file", task.FilePath, "error", err)
		return
	}

	candidate := ExtractCode(result.Text)
	if strings.TrimSpace(candidate) == "" {
		_ = task.Fail(models.StateGenerationFailed, "no code content in model response")
		logger.Error("Empty candidate after response cleanup", "file", task.FilePath)
		return
	}

	if m.ChecksSyntax() && javaquery.HasSyntaxError([]byte(candidate)) {
		_ = task.Fail(models.StateGenerationFailed, "generated code has Java syntax errors")
		logger.Error("Candidate failed Java syntax check", "file", task.FilePath)
		return
	}

	if violated := rules.Evaluate(m.Rules(), task.OriginalText, candidate); len(violated) > 0 {
		_ = task.Advance(models.StateValidationFailed)
		task.ViolatedRules = violated
		logger.Warn("Candidate rejected by validation",
			"file", task.FilePath,
			"violated_rules", violated)
		return
	}

	task.MigratedText = candidate
	_ = task.Advance(models.StateAccepted)
	logger.Info("Candidate accepted", "file", task.FilePath, "tokens", task.TokensUsed)
}

var (
	javaFenceRe    = regexp.MustCompile("(?s)```java\\s*\\n(.*?)```")
	genericFenceRe = regexp.MustCompile("(?s)```[a-z]*\\s*\\n(.*?)```")
)

// ExtractCode strips non-code wrapping from a model response: a ```java
// fence first, then any generic fence, else the whole trimmed text.
func ExtractCode(text string) string {
	if m := javaFenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := genericFenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}
