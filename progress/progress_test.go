package progress_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vogtryan/dbs3/progress"
)

func TestNewNilContextNeverCancelled(t *testing.T) {
	mon := progress.New(nil)
	require.False(t, mon.Cancelled())
}

func TestCancelledAfterContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mon := progress.New(ctx)
	require.False(t, mon.Cancelled())
	cancel()
	require.True(t, mon.Cancelled())
	require.ErrorIs(t, mon.Err(), context.Canceled)
}

func TestReportInvokesCallback(t *testing.T) {
	var gotDone, gotTotal int
	mon := progress.New(context.Background()).WithUpdate(func(done, total int) {
		gotDone, gotTotal = done, total
	})
	mon.Report(3, 10)
	require.Equal(t, 3, gotDone)
	require.Equal(t, 10, gotTotal)
}

func TestReportWithoutCallbackIsNoop(t *testing.T) {
	mon := progress.New(context.Background())
	require.NotPanics(t, func() { mon.Report(1, 1) })
}

func TestNilMonitorIsSafe(t *testing.T) {
	var mon *progress.Monitor
	require.False(t, mon.Cancelled())
	require.NoError(t, mon.Err())
	require.NotPanics(t, func() { mon.Report(1, 1) })
}
