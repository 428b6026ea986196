package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	genai "google.golang.org/genai"
)

func TestIsRateLimited(t *testing.T) {
	assert.True(t, isRateLimited(genai.APIError{Code: 429, Message: "quota exceeded"}))
	assert.False(t, isRateLimited(genai.APIError{Code: 500, Message: "internal"}))
	assert.True(t, isRateLimited(errors.New("rpc error: code = RESOURCE_EXHAUSTED")))
	assert.False(t, isRateLimited(errors.New("connection refused")))
}

func TestResult_TotalTokens(t *testing.T) {
	var none *Result
	assert.Equal(t, 0, none.TotalTokens())

	r := &Result{InputTokens: 120, OutputTokens: 34}
	assert.Equal(t, 154, r.TotalTokens())
}
