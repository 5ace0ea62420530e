package runlog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	require.NoError(t, l.Migrate(context.Background()))
	return l
}

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	base := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func TestLog_StartComplete(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t)
	l.now = stepClock()

	id, err := l.Start(ctx)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	require.NoError(t, l.Complete(ctx, id, []string{"base", "tempo"}, 120))

	entries, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, id, e.ID)
	assert.Equal(t, StatusComplete, e.Status)
	assert.Equal(t, []string{"base", "tempo"}, e.Contracts)
	assert.Equal(t, 120, e.Records)
	assert.Empty(t, e.Error)
	require.NotNil(t, e.CompletedAt)
	assert.Equal(t, time.Second, e.CompletedAt.Sub(e.StartedAt))
}

func TestLog_Fail(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t)

	id, err := l.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, l.Fail(ctx, id, errors.New("converter: tempo: missing column")))

	entries, err := l.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, StatusFailed, entries[0].Status)
	assert.Equal(t, "converter: tempo: missing column", entries[0].Error)
	assert.Nil(t, entries[0].Contracts)
}

func TestLog_UnknownRun(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t)

	assert.Error(t, l.Complete(ctx, "missing", nil, 0))
	assert.Error(t, l.Fail(ctx, "missing", nil))
}

func TestLog_RecentOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	l := openTestLog(t)
	l.now = stepClock()

	var ids []string
	for range 3 {
		id, err := l.Start(ctx)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	entries, err := l.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ids[2], entries[0].ID)
	assert.Equal(t, ids[1], entries[1].ID)
	assert.Equal(t, StatusRunning, entries[0].Status)
	assert.Nil(t, entries[0].CompletedAt)

	all, err := l.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLog_MigrateIdempotent(t *testing.T) {
	l := openTestLog(t)
	assert.NoError(t, l.Migrate(context.Background()))
}
