package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spring-migrate/boot3migrate/internal/config"
	"github.com/spring-migrate/boot3migrate/internal/llm"
	"github.com/spring-migrate/boot3migrate/internal/models"
)

// scriptedGenerator answers each prompt by the first script entry whose
// trigger appears in the prompt text.
type scriptedGenerator struct {
	mu     sync.Mutex
	calls  int
	script []scriptEntry
}

type scriptEntry struct {
	trigger string
	result  *llm.Result
	err     error
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string, _ int) (*llm.Result, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, entry := range g.script {
		if strings.Contains(prompt, entry.trigger) {
			return entry.result, entry.err
		}
	}
	return nil, errors.New("no scripted response for prompt")
}

func (g *scriptedGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func newTestOrchestrator(gen llm.Generator, workers int, dryRun bool) *Orchestrator {
	cfg := &config.MigrationConfig{
		DryRun:       dryRun,
		MaxWorkers:   workers,
		BackupSuffix: ".bak",
	}
	return New(gen, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_IsolatesPerFileFailures(t *testing.T) {
	dir := t.TempDir()
	goodOriginal := "spring.redis.host=localhost\napp.keep=true\n"
	goodMigrated := "spring.data.redis.host=localhost\napp.keep=true\n"
	badOriginal := "spring.redis.port=6379\n"

	good := writeFixture(t, dir, "application.properties", goodOriginal)
	bad := writeFixture(t, dir, "application-dev.properties", badOriginal)

	gen := &scriptedGenerator{script: []scriptEntry{
		{trigger: "app.keep=true", result: &llm.Result{Text: goodMigrated, InputTokens: 40, OutputTokens: 20}},
		{trigger: "6379", err: errors.New("model unavailable")},
	}}
	orch := newTestOrchestrator(gen, 2, false)

	report, err := orch.Run(context.Background(), []string{good, bad})
	require.NoError(t, err)

	outcome := report.Outcome(models.PatternConfigProperties)
	assert.Equal(t, 2, outcome.Matched)
	assert.Equal(t, 1, outcome.Accepted)
	assert.Equal(t, 1, outcome.Errored)
	assert.Equal(t, 0, outcome.Rejected)
	assert.Equal(t, 60, report.TotalTokens)

	// The good file was replaced; its pre-write content sits in the backup.
	written, err := os.ReadFile(good)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(goodMigrated), string(written))
	backup, err := os.ReadFile(good + ".bak")
	require.NoError(t, err)
	assert.Equal(t, goodOriginal, string(backup))

	// The failed file is untouched and has no backup.
	untouched, err := os.ReadFile(bad)
	require.NoError(t, err)
	assert.Equal(t, badOriginal, string(untouched))
	_, err = os.Stat(bad + ".bak")
	assert.True(t, os.IsNotExist(err))

	// Report order follows routing order regardless of completion order.
	require.Len(t, report.Files, 2)
	assert.Equal(t, good, report.Files[0].FilePath)
	assert.Equal(t, models.StateWritten, report.Files[0].State)
	assert.Equal(t, bad, report.Files[1].FilePath)
	assert.Equal(t, models.StateGenerationFailed, report.Files[1].State)
	assert.Contains(t, report.Files[1].Error, "model unavailable")
}

func TestRun_ValidationRejectLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	original := "spring.redis.host=localhost\n"
	path := writeFixture(t, dir, "application.yml", original)

	// The model echoes the file back unmigrated.
	gen := &scriptedGenerator{script: []scriptEntry{
		{trigger: "spring.redis.host", result: &llm.Result{Text: original, OutputTokens: 10}},
	}}
	orch := newTestOrchestrator(gen, 1, false)

	report, err := orch.Run(context.Background(), []string{path})
	require.NoError(t, err)

	outcome := report.Outcome(models.PatternConfigProperties)
	assert.Equal(t, 1, outcome.Matched)
	assert.Equal(t, 1, outcome.Rejected)
	assert.Equal(t, 0, outcome.Accepted)

	require.Len(t, report.Files, 1)
	assert.Equal(t, models.StateValidationFailed, report.Files[0].State)
	assert.Contains(t, report.Files[0].ViolatedRules, "redis_prefix_renamed")

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(current))
	_, err = os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err))
}

func TestRun_RoutingIsExclusiveFirstMatchWins(t *testing.T) {
	dir := t.TempDir()

	// Exhibits both the security pattern and a deprecated dialect string;
	// only the higher-priority security migrator may claim it.
	both := writeFixture(t, dir, "SecurityConfig.java", `package com.example;

import org.springframework.security.config.annotation.web.configuration.WebSecurityConfigurerAdapter;

public class SecurityConfig extends WebSecurityConfigurerAdapter {
    static final String DIALECT = "org.hibernate.dialect.MySQL5Dialect";
}
`)
	plain := writeFixture(t, dir, "Service.java", `package com.example;

public class Service {
}
`)

	gen := &scriptedGenerator{}
	orch := newTestOrchestrator(gen, 1, true)

	report, err := orch.Run(context.Background(), []string{both, plain})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Outcome(models.PatternSecurityConfig).Matched)
	assert.Equal(t, 0, report.Outcome(models.PatternHibernate).Matched)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 2, report.FilesScanned)

	require.Len(t, report.Files, 1)
	assert.Equal(t, models.PatternSecurityConfig, report.Files[0].Kind)
	assert.Equal(t, models.StateDetected, report.Files[0].State)

	// Detect-only runs never reach the model.
	assert.Equal(t, 0, gen.callCount())
}

func TestRun_UnreadableFileIsSkipped(t *testing.T) {
	dir := t.TempDir()
	good := writeFixture(t, dir, "application.properties", "spring.redis.host=x\n")
	missing := filepath.Join(dir, "application-gone.properties")

	orch := newTestOrchestrator(&scriptedGenerator{}, 1, true)
	report, err := orch.Run(context.Background(), []string{missing, good})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Outcome(models.PatternConfigProperties).Matched)
}

func TestRun_CancellationStillReportsEveryClaim(t *testing.T) {
	dir := t.TempDir()
	first := writeFixture(t, dir, "application.properties", "spring.redis.host=a\n")
	second := writeFixture(t, dir, "application-dev.properties", "spring.redis.host=b\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &scriptedGenerator{}
	orch := newTestOrchestrator(gen, 1, false)

	report, err := orch.Run(ctx, []string{first, second})
	require.NoError(t, err)

	outcome := report.Outcome(models.PatternConfigProperties)
	assert.Equal(t, 2, outcome.Matched)
	assert.Equal(t, 2, outcome.Errored)

	require.Len(t, report.Files, 2)
	for _, fr := range report.Files {
		assert.NotEmpty(t, fr.FilePath)
		assert.NotEmpty(t, fr.Error)
	}
}
