// Package replay provides the integer-quantised discrete-time wrapper
// and the cached-interval interpolating recorder of spec §4.8, built on
// top of an agent.Simulation.
package replay

import (
	"fmt"
	"math"

	"github.com/vogtryan/dbs3/agent"
	"github.com/vogtryan/dbs3/geom"
)

// Discrete wraps an agent.Simulation, converting simulated time to
// integer milliseconds and positions to integer millimetres. Advance
// repeats the wrapped Simulation.Advance until the rounded millisecond
// time strictly increases, collapsing the zero-duration legs produced
// by coincident waypoints.
type Discrete struct {
	sim *agent.Simulation
}

// NewDiscrete wraps sim.
func NewDiscrete(sim *agent.Simulation) *Discrete {
	return &Discrete{sim: sim}
}

// AgentCount returns the number of agents in the wrapped simulation.
func (d *Discrete) AgentCount() int { return d.sim.AgentCount() }

// Agent returns the underlying agent at the given index.
func (d *Discrete) Agent(index int) *agent.Agent { return d.sim.Agent(index) }

// TimeMillis returns the given agent's simulated time rounded to the
// nearest millisecond.
func (d *Discrete) TimeMillis(agentID int) int64 {
	return millis(d.sim.Agent(agentID).SimulatedTime())
}

// PositionMillimetres returns the given agent's position rounded to the
// nearest millimetre.
func (d *Discrete) PositionMillimetres(agentID int) (x, y int64) {
	p := d.sim.Agent(agentID).Position()

	return millimetres(p.X), millimetres(p.Y)
}

// Advance repeats the wrapped Simulation.Advance for agentID until its
// rounded millisecond time strictly increases or the simulation ends.
func (d *Discrete) Advance(agentID int) (bool, error) {
	before := d.TimeMillis(agentID)
	for {
		more, err := d.sim.Advance(agentID)
		if err != nil {
			return false, err
		}
		if !more {
			return false, nil
		}
		if d.TimeMillis(agentID) > before {
			return true, nil
		}
	}
}

func millis(seconds float64) int64 {
	return int64(math.Round(seconds * 1000))
}

func millimetres(metres float64) int64 {
	return int64(math.Round(metres * 1000))
}

// snapshot is the deep-copied initial state Recording uses to rewind an
// agent without rebuilding the simulation.
type snapshot struct {
	state    agent.State
	timeMs   int64
	position geom.Point
}

// interval is Recording's cached (prev, next) pair of adjacent
// discrete-advance stops for one agent, between which getLocation
// linearly interpolates.
type interval struct {
	prevMs, nextMs   int64
	prevPos, nextPos geom.Point
}

// Recording wraps a fresh Discrete (every agent at simulated time zero)
// and supports seeking to an arbitrary simulated time with linear
// interpolation between the two nearest discrete-advance stops, per
// spec §4.8.
type Recording struct {
	d         *Discrete
	initial   []snapshot
	currentMs []int64
	cur       []interval
}

// NewRecording builds a Recording over a freshly-constructed simulation.
// Every agent is assumed to be at time zero.
func NewRecording(sim *agent.Simulation) *Recording {
	d := NewDiscrete(sim)
	n := d.AgentCount()
	r := &Recording{
		d:         d,
		initial:   make([]snapshot, n),
		currentMs: make([]int64, n),
		cur:       make([]interval, n),
	}
	for i := 0; i < n; i++ {
		pos := d.Agent(i).Position()
		r.initial[i] = snapshot{state: d.Agent(i).State(), timeMs: 0, position: pos}
		r.cur[i] = interval{prevMs: 0, nextMs: 0, prevPos: pos, nextPos: pos}
	}

	return r
}

// AgentCount returns the number of agents in the recording.
func (r *Recording) AgentCount() int { return r.d.AgentCount() }

// SetTime seeks agentID to simulated time tMs (milliseconds), replaying
// forward from the current interval or rewinding to the initial
// snapshot and replaying from zero, whichever is needed.
func (r *Recording) SetTime(agentID int, tMs int64) {
	iv := r.cur[agentID]
	if tMs >= iv.prevMs && tMs <= iv.nextMs {
		r.currentMs[agentID] = tMs

		return
	}
	if tMs < r.currentMs[agentID] {
		r.rewind(agentID)
	}
	r.advanceTo(agentID, tMs)
	r.currentMs[agentID] = tMs
}

func (r *Recording) rewind(agentID int) {
	snap := r.initial[agentID]
	r.d.Agent(agentID).Restore(snap.state)
	r.currentMs[agentID] = snap.timeMs
	r.cur[agentID] = interval{prevMs: snap.timeMs, nextMs: snap.timeMs, prevPos: snap.position, nextPos: snap.position}
}

func (r *Recording) advanceTo(agentID int, tMs int64) {
	iv := r.cur[agentID]
	for iv.nextMs < tMs {
		prevMs, prevPos := iv.nextMs, iv.nextPos
		more, err := r.d.Advance(agentID)
		if err != nil {
			panic(fmt.Sprintf("replay: Recording.SetTime: %v", err))
		}
		iv = interval{
			prevMs:  prevMs,
			nextMs:  r.d.TimeMillis(agentID),
			prevPos: prevPos,
			nextPos: r.d.Agent(agentID).Position(),
		}
		if !more {
			break
		}
	}
	r.cur[agentID] = iv
}

// GetLocation returns the agent's linearly-interpolated position within
// the current cached interval, at the time last set by SetTime.
func (r *Recording) GetLocation(agentID int) geom.Point {
	iv := r.cur[agentID]
	t := r.currentMs[agentID]
	if iv.nextMs <= iv.prevMs {
		return iv.prevPos
	}
	frac := float64(t-iv.prevMs) / float64(iv.nextMs-iv.prevMs)

	return iv.prevPos.Add(iv.nextPos.Sub(iv.prevPos).Scale(frac))
}
