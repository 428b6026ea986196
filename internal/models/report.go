package models

import (
	"time"

	"github.com/google/uuid"
)

// PatternOutcome aggregates per-kind counters for one orchestration run.
type PatternOutcome struct {
	Matched  int `json:"matched"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Errored  int `json:"errored"`
	Tokens   int `json:"tokens"`
}

// FileResult is the per-file entry in the ordered outcome list.
type FileResult struct {
	FilePath      string      `json:"file_path"`
	Kind          PatternKind `json:"pattern_kind"`
	State         TaskState   `json:"state"`
	TokensUsed    int         `json:"tokens_used"`
	ViolatedRules []string    `json:"violated_rules,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// OrchestrationReport is the aggregate artifact of one orchestration run.
// It is built incrementally while files are processed and immutable once
// the run completes.
type OrchestrationReport struct {
	RunID        string                          `json:"run_id"`
	StartTime    time.Time                       `json:"start_time"`
	EndTime      *time.Time                      `json:"end_time,omitempty"`
	FilesScanned int                             `json:"files_scanned"`
	Skipped      int                             `json:"skipped"`
	Outcomes     map[PatternKind]*PatternOutcome `json:"outcomes"`
	TotalTokens  int                             `json:"total_tokens"`
	Files        []FileResult                    `json:"files"`
}

func NewOrchestrationReport() *OrchestrationReport {
	outcomes := make(map[PatternKind]*PatternOutcome, len(KindPriority))
	for _, kind := range KindPriority {
		outcomes[kind] = &PatternOutcome{}
	}
	return &OrchestrationReport{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
		Outcomes:  outcomes,
	}
}

// Outcome returns the counter bucket for kind, allocating it for kinds
// outside the built-in priority list.
func (r *OrchestrationReport) Outcome(kind PatternKind) *PatternOutcome {
	o, ok := r.Outcomes[kind]
	if !ok {
		o = &PatternOutcome{}
		r.Outcomes[kind] = o
	}
	return o
}

// TotalMatched is the number of files claimed by any migrator.
func (r *OrchestrationReport) TotalMatched() int {
	total := 0
	for _, o := range r.Outcomes {
		total += o.Matched
	}
	return total
}

// TotalAccepted is the number of accepted-and-written files.
func (r *OrchestrationReport) TotalAccepted() int {
	total := 0
	for _, o := range r.Outcomes {
		total += o.Accepted
	}
	return total
}

// AutomationRate is accepted-and-written files divided by files that
// required migration. Zero matched files yields 0.
func (r *OrchestrationReport) AutomationRate() float64 {
	matched := r.TotalMatched()
	if matched == 0 {
		return 0
	}
	return float64(r.TotalAccepted()) / float64(matched)
}

// Finish stamps the end time.
func (r *OrchestrationReport) Finish() {
	now := time.Now()
	r.EndTime = &now
}
