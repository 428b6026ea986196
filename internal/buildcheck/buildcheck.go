// Package buildcheck runs the compile verification, the single ground-truth
// success signal of the pipeline. Exit code 0 is the sole success criterion.
package buildcheck

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
)

// CompileError is one parsed Maven compiler diagnostic.
type CompileError struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// Result is the outcome of one compile verification.
type Result struct {
	Success bool
	Output  string
	Errors  []CompileError
}

// Validate runs `mvn clean compile` in projectPath.
func Validate(ctx context.Context, projectPath string, timeout time.Duration, logger *slog.Logger) (*Result, error) {
	if _, err := os.Stat(filepath.Join(projectPath, "pom.xml")); err != nil {
		return &Result{Output: fmt.Sprintf("no pom.xml found at %s", projectPath)}, nil
	}

	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Info("Running compile verification", "command", "mvn clean compile")

	cmd := exec.CommandContext(runCtx, "mvn", "clean", "compile")
	cmd.Dir = projectPath
	output, err := cmd.CombinedOutput()
	combined := string(output)

	if runCtx.Err() == context.DeadlineExceeded {
		return &Result{Output: fmt.Sprintf("compilation timed out after %s", timeout)}, nil
	}

	if err != nil {
		compileErrors := ParseErrors(combined)
		logger.Error("Compilation failed", "errors", len(compileErrors))
		for i, ce := range compileErrors {
			if i >= 10 {
				break
			}
			logger.Error("Compile error", "file", ce.File, "line", ce.Line, "message", ce.Message)
		}
		return &Result{Output: combined, Errors: compileErrors}, nil
	}

	logger.Info("Compilation succeeded")
	return &Result{Success: true, Output: combined}, nil
}

var compileErrorRe = regexp.MustCompile(`\[ERROR\]\s+(.+\.java):\[(\d+),(\d+)\]\s+(.*)`)

// ParseErrors extracts compiler diagnostics from Maven output. Lines look
// like: [ERROR] /path/to/File.java:[12,8] cannot find symbol
func ParseErrors(output string) []CompileError {
	var errors []CompileError
	for _, match := range compileErrorRe.FindAllStringSubmatch(output, -1) {
		line, _ := strconv.Atoi(match[2])
		column, _ := strconv.Atoi(match[3])
		errors = append(errors, CompileError{
			File:    match[1],
			Line:    line,
			Column:  column,
			Message: match[4],
		})
	}
	return errors
}
