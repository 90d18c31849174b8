package mvisp_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vogtryan/dbs3/mvisp"
)

func TestHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	h := mvisp.Header{AgentCount: 100, DurationMs: 900000}
	require.NoError(t, mvisp.WriteHeader(&buf, h))

	got, err := mvisp.ReadHeader(&buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestSnapshotRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	s := mvisp.Snapshot{AgentID: 7, TimestampMs: 12345, XMillimetres: -500, YMillimetres: 20000}
	require.NoError(t, mvisp.WriteSnapshot(&buf, s))

	got, err := mvisp.ReadSnapshot(&buf)
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestTransitionRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	tr := mvisp.Transition{AgentID: 3, TimestampMs: 5000, StateIndex: 2}
	require.NoError(t, mvisp.WriteTransition(&buf, tr))

	got, err := mvisp.ReadTransition(&buf)
	require.NoError(t, err)
	require.Equal(t, tr, got)
}

func TestDedupRejectsRepeatedAgentTimestamp(t *testing.T) {
	d := mvisp.NewDedup()
	t1 := mvisp.Transition{AgentID: 1, TimestampMs: 100, StateIndex: 0}
	t2 := mvisp.Transition{AgentID: 1, TimestampMs: 100, StateIndex: 1}
	t3 := mvisp.Transition{AgentID: 1, TimestampMs: 200, StateIndex: 1}

	require.True(t, d.Accept(t1))
	require.False(t, d.Accept(t2))
	require.True(t, d.Accept(t3))
}
