// Package mvisp implements the minimal big-endian wire-framing
// primitives spec §6 summarises for the MVISP protocol: a header frame
// (agent count, duration), per-agent position snapshots, and
// state-transition triplets deduplicated by (agent ID, timestamp). No
// network listener is provided (out of scope, per spec §1) — only the
// frame codec the core's simulation data passes through.
package mvisp

import (
	"encoding/binary"
	"io"
)

// Header is the first frame of a session: the agent count and the
// simulation duration in milliseconds.
type Header struct {
	AgentCount uint32
	DurationMs uint32
}

// WriteHeader encodes h to w in big-endian wire order.
func WriteHeader(w io.Writer, h Header) error {
	return binary.Write(w, binary.BigEndian, h)
}

// ReadHeader decodes a Header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	err := binary.Read(r, binary.BigEndian, &h)

	return h, err
}

// Snapshot is one agent's discrete position at a point in simulated
// time: agent ID, millisecond timestamp, and position in millimetres.
type Snapshot struct {
	AgentID      uint32
	TimestampMs  uint32
	XMillimetres int32
	YMillimetres int32
}

// WriteSnapshot encodes s to w in big-endian wire order.
func WriteSnapshot(w io.Writer, s Snapshot) error {
	return binary.Write(w, binary.BigEndian, s)
}

// ReadSnapshot decodes a Snapshot from r.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var s Snapshot
	err := binary.Read(r, binary.BigEndian, &s)

	return s, err
}

// Transition is a peer-declared state change: agent agentID enters
// state StateIndex at TimestampMs. States are numbered 0..S-1 in the
// order the peer declared them.
type Transition struct {
	AgentID     uint32
	TimestampMs uint32
	StateIndex  uint32
}

// WriteTransition encodes t to w in big-endian wire order.
func WriteTransition(w io.Writer, t Transition) error {
	return binary.Write(w, binary.BigEndian, t)
}

// ReadTransition decodes a Transition from r.
func ReadTransition(r io.Reader) (Transition, error) {
	var t Transition
	err := binary.Read(r, binary.BigEndian, &t)

	return t, err
}

// key identifies a transition for deduplication purposes: (agent ID,
// timestamp), per spec §6.
type key struct {
	agentID     uint32
	timestampMs uint32
}

// Dedup filters a stream of Transitions, accepting only the first one
// seen for each (AgentID, TimestampMs) pair.
type Dedup struct {
	seen map[key]struct{}
}

// NewDedup returns an empty Dedup.
func NewDedup() *Dedup {
	return &Dedup{seen: make(map[key]struct{})}
}

// Accept reports whether t is the first Transition seen for its
// (AgentID, TimestampMs) pair, recording it if so.
func (d *Dedup) Accept(t Transition) bool {
	k := key{agentID: t.AgentID, timestampMs: t.TimestampMs}
	if _, ok := d.seen[k]; ok {
		return false
	}
	d.seen[k] = struct{}{}

	return true
}
