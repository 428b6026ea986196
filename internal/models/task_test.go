package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationTask_Advance(t *testing.T) {
	t.Run("walks the happy path forward", func(t *testing.T) {
		task := NewTask("Config.java", PatternSecurityConfig, "original")
		assert.Equal(t, StatePending, task.State)

		require.NoError(t, task.Advance(StateDetected))
		require.NoError(t, task.Advance(StateGenerationInFlight))
		require.NoError(t, task.Advance(StateAccepted))
		require.NoError(t, task.Advance(StateWritten))
		assert.Equal(t, StateWritten, task.State)
	})

	t.Run("rejects backward transitions", func(t *testing.T) {
		task := NewTask("Config.java", PatternSecurityConfig, "original")
		require.NoError(t, task.Advance(StateGenerationInFlight))

		err := task.Advance(StateDetected)
		require.Error(t, err)
		assert.Equal(t, StateGenerationInFlight, task.State)
	})

	t.Run("rejects self transitions", func(t *testing.T) {
		task := NewTask("Config.java", PatternSecurityConfig, "original")
		require.NoError(t, task.Advance(StateDetected))
		assert.Error(t, task.Advance(StateDetected))
	})

	t.Run("failure states cannot swap into each other", func(t *testing.T) {
		task := NewTask("Config.java", PatternHibernate, "original")
		require.NoError(t, task.Advance(StateGenerationInFlight))
		require.NoError(t, task.Fail(StateGenerationFailed, "model unavailable"))

		assert.Error(t, task.Advance(StateValidationFailed))
		assert.Error(t, task.Advance(StateAccepted))
		assert.Equal(t, "model unavailable", task.ErrorMessage)
	})

	t.Run("snapshot is kept from creation", func(t *testing.T) {
		task := NewTask("app.properties", PatternConfigProperties, "spring.redis.host=localhost")
		assert.Equal(t, "spring.redis.host=localhost", task.OriginalText)
	})
}

func TestTaskState_Terminal(t *testing.T) {
	assert.True(t, StateGenerationFailed.Terminal())
	assert.True(t, StateValidationFailed.Terminal())
	assert.True(t, StateWritten.Terminal())
	assert.False(t, StatePending.Terminal())
	assert.False(t, StateAccepted.Terminal())
}

func TestOrchestrationReport_Aggregates(t *testing.T) {
	t.Run("fresh report has a run id and empty buckets", func(t *testing.T) {
		report := NewOrchestrationReport()
		require.NotEmpty(t, report.RunID)
		for _, kind := range KindPriority {
			require.Contains(t, report.Outcomes, kind)
			assert.Equal(t, 0, report.Outcomes[kind].Matched)
		}
		assert.Equal(t, 0.0, report.AutomationRate())
	})

	t.Run("automation rate is accepted over matched", func(t *testing.T) {
		report := NewOrchestrationReport()
		report.Outcome(PatternSecurityConfig).Matched = 3
		report.Outcome(PatternSecurityConfig).Accepted = 2
		report.Outcome(PatternHibernate).Matched = 1

		assert.Equal(t, 4, report.TotalMatched())
		assert.Equal(t, 2, report.TotalAccepted())
		assert.InDelta(t, 0.5, report.AutomationRate(), 0.0001)
	})

	t.Run("unknown kinds get a bucket on demand", func(t *testing.T) {
		report := NewOrchestrationReport()
		outcome := report.Outcome(PatternKind("future"))
		require.NotNil(t, outcome)
		outcome.Matched++
		assert.Equal(t, 1, report.Outcome(PatternKind("future")).Matched)
	})

	t.Run("finish stamps the end time", func(t *testing.T) {
		report := NewOrchestrationReport()
		require.Nil(t, report.EndTime)
		report.Finish()
		require.NotNil(t, report.EndTime)
		assert.False(t, report.EndTime.Before(report.StartTime))
	})
}
