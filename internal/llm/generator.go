// Package llm holds the generation model client. The rest of the pipeline
// only sees the Generator interface so tests can stub the network call.
package llm

import "context"

// Result carries the model output and the token usage the API reported.
type Result struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// TotalTokens is the combined prompt and completion token count.
func (r *Result) TotalTokens() int {
	if r == nil {
		return 0
	}
	return r.InputTokens + r.OutputTokens
}

// Generator is one call to the generation model: prompt in, text and usage
// out. Implementations must use deterministic sampling and cap the output at
// maxTokens. On error the returned Result may still carry partial token
// usage when the API reported any.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (*Result, error)
}
