package models

import "fmt"

// PatternKind identifies a category of deprecated code shape that needs
// generative rewriting rather than a mechanical recipe.
type PatternKind string

const (
	PatternSecurityConfig   PatternKind = "security"
	PatternHibernate        PatternKind = "hibernate"
	PatternConfigProperties PatternKind = "config"
)

// KindPriority is the fixed routing order. The first kind whose detector
// matches claims the file exclusively for the run.
var KindPriority = []PatternKind{
	PatternSecurityConfig,
	PatternHibernate,
	PatternConfigProperties,
}

// TaskState tracks a migration task through its lifecycle. Transitions are
// forward-only; a task never re-enters an earlier state.
type TaskState string

const (
	StatePending            TaskState = "pending"
	StateDetected           TaskState = "detected"
	StateGenerationInFlight TaskState = "generation_in_flight"
	StateGenerationFailed   TaskState = "generation_failed"
	StateValidationFailed   TaskState = "validation_failed"
	StateAccepted           TaskState = "accepted"
	StateWritten            TaskState = "written"
)

var stateRank = map[TaskState]int{
	StatePending:            0,
	StateDetected:           1,
	StateGenerationInFlight: 2,
	StateGenerationFailed:   3,
	StateValidationFailed:   3,
	StateAccepted:           3,
	StateWritten:            4,
}

// Terminal reports whether no further transitions are expected from s.
func (s TaskState) Terminal() bool {
	return s == StateGenerationFailed || s == StateValidationFailed || s == StateWritten
}

// MigrationTask is one attempt to migrate one file under one pattern kind.
// OriginalText is snapshotted at creation so validation always compares
// against the pre-migration content.
type MigrationTask struct {
	FilePath      string      `json:"file_path"`
	Kind          PatternKind `json:"pattern_kind"`
	OriginalText  string      `json:"-"`
	State         TaskState   `json:"state"`
	MigratedText  string      `json:"-"`
	TokensUsed    int         `json:"tokens_used"`
	ViolatedRules []string    `json:"violated_rules,omitempty"`
	ErrorMessage  string      `json:"error_message,omitempty"`

	// Match carries the detector evidence that routed this file.
	Match *MatchInfo `json:"match,omitempty"`
}

func NewTask(filePath string, kind PatternKind, originalText string) *MigrationTask {
	return &MigrationTask{
		FilePath:     filePath,
		Kind:         kind,
		OriginalText: originalText,
		State:        StatePending,
	}
}

// Advance moves the task to next, rejecting backward transitions.
func (t *MigrationTask) Advance(next TaskState) error {
	cur, ok := stateRank[t.State]
	if !ok {
		return fmt.Errorf("unknown task state %q", t.State)
	}
	to, ok := stateRank[next]
	if !ok {
		return fmt.Errorf("unknown task state %q", next)
	}
	if to <= cur {
		return fmt.Errorf("invalid task transition %s -> %s for %s", t.State, next, t.FilePath)
	}
	t.State = next
	return nil
}

// Fail advances the task to a failure state and records the diagnostic.
func (t *MigrationTask) Fail(state TaskState, msg string) error {
	if err := t.Advance(state); err != nil {
		return err
	}
	t.ErrorMessage = msg
	return nil
}

// Span is a byte range in the source file, with the starting line for
// human-readable diagnostics.
type Span struct {
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	Line      uint32 `json:"line"`
}

// MatchInfo is the structured result of a successful pattern detection.
type MatchInfo struct {
	Kind  PatternKind `json:"kind"`
	Label string      `json:"label"`
	Spans []Span      `json:"spans,omitempty"`
}
