package diagnostics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/xpathcore/internal/diagnostics"
	"github.com/oxhq/xpathcore/internal/errors"
)

func TestRunRecorderPersistsTraceAndWarningEvents(t *testing.T) {
	store, err := diagnostics.Open(":memory:", false)
	require.NoError(t, err)
	defer store.Close()

	recorder, err := store.BeginRun("xpath", "1 + 1")
	require.NoError(t, err)

	recorder.Trace(errors.TraceEvent{Label: "arithmetic", Enter: true})
	recorder.Warning(errors.FORG0006, "something recoverable happened", nil)
	recorder.Trace(errors.TraceEvent{Label: "arithmetic", Enter: false})
	require.NoError(t, recorder.Finish(true))

	runs, err := store.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Succeeded)
	assert.NotNil(t, runs[0].EndedAt)

	events, err := store.Events(runs[0].ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "arithmetic", events[0].Label)
	assert.Equal(t, "warning", events[1].Label)
	assert.Equal(t, "arithmetic", events[2].Label)
	assert.False(t, events[2].Enter)
}

func TestRunRecorderErrorMarksRunFailed(t *testing.T) {
	store, err := diagnostics.Open(":memory:", false)
	require.NoError(t, err)
	defer store.Close()

	recorder, err := store.BeginRun("xpath", "1 div 0")
	require.NoError(t, err)

	xerr := errors.New(errors.FOAR0001, errors.DynamicRuntime, "division by zero")
	recorder.Error(errors.SeverityFatal, xerr)
	require.NoError(t, recorder.Finish(true))

	runs, err := store.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.False(t, runs[0].Succeeded)
	assert.Equal(t, string(errors.FOAR0001), runs[0].ErrorCode)
}
