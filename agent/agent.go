// Package agent implements the per-agent mobility state machine and the
// parallel-bootstrap Simulation of spec §4.7: an agent repeatedly picks
// a destination, plans a route with the optimal pathfinder, walks it at
// a fixed personal speed, and pauses at each arrival.
//
// Construction burns in 86400 simulated seconds of motion before an
// agent is considered ready, per spec §4.7's steady-state requirement,
// then resets the simulated-time accumulator to zero.
package agent

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/vogtryan/dbs3/crumb"
	"github.com/vogtryan/dbs3/destination"
	"github.com/vogtryan/dbs3/geom"
	"github.com/vogtryan/dbs3/mapmodel"
	"github.com/vogtryan/dbs3/pathfinder"
	"github.com/vogtryan/dbs3/progress"
	"github.com/vogtryan/dbs3/rng"
)

// burnInSeconds is the fixed warm-up duration spec §4.7 requires every
// agent to walk through before its simulated-time accumulator resets to
// zero, so a simulation starts from the chain's steady state rather
// than an arbitrary initial destination.
const burnInSeconds = 86400

// ErrAgentIndexOutOfRange indicates Simulation.Advance was called with
// an agent index outside [0, AgentCount).
var ErrAgentIndexOutOfRange = errors.New("agent: index out of range")

// Agent is one simulated pedestrian: a permanent speed, a current
// waypoint, the remaining planned path to its destination (empty while
// paused), and the bookkeeping advance(seconds) needs to step it
// forward in simulated time.
type Agent struct {
	m       *mapmodel.Map
	metric  crumb.Metric
	pfOpts  []pathfinder.Option
	chooser destination.Chooser
	pause   Distribution
	gen     rng.Generator

	speed float64

	current mapmodel.Waypoint
	path    mapmodel.Path

	paused           bool
	remainingLegTime float64
	legDuration      float64
	simulatedTime    float64
}

// newAgent draws a permanent speed, an initial previous destination via
// GetSteadyDestination, a current destination via GetDestination, plans
// the path between them, and burns in 86400 seconds of motion, per
// spec §4.7's agent-construction procedure.
func newAgent(m *mapmodel.Map, metric crumb.Metric, pfOpts []pathfinder.Option, chooser destination.Chooser, speed, pause Distribution, gen rng.Generator) (*Agent, error) {
	prev := chooser.GetSteadyDestination(gen)
	dest := chooser.GetDestination(prev, gen)
	path, _, err := pathfinder.FindPath(m, prev, dest, gen, pfOpts...)
	if err != nil {
		// A Map is validated connected at construction (NewMap rejects
		// a disconnected street graph), so a path between any two
		// waypoints always exists; reaching here means that invariant
		// was violated.
		return nil, fmt.Errorf("agent: newAgent: %w", err)
	}

	a := &Agent{
		m:       m,
		metric:  metric,
		pfOpts:  pfOpts,
		chooser: chooser,
		pause:   pause,
		gen:     gen,
		speed:   speed.Sample(gen),
		current: path[0],
		path:    path[1:],
	}
	a.recomputeLeg()
	a.burnIn(burnInSeconds)

	return a, nil
}

// burnIn advances a by exactly totalSeconds of simulated motion, then
// resets its simulated-time accumulator to zero.
func (a *Agent) burnIn(totalSeconds float64) {
	var elapsed float64
	for elapsed < totalSeconds {
		step := totalSeconds - elapsed
		if step > a.remainingLegTime {
			step = a.remainingLegTime
		}
		a.advance(step)
		elapsed += step
	}
	a.simulatedTime = 0
}

// advance steps a forward by seconds, which must lie in
// [0, a.remainingLegTime]. Equal to the remaining time, it ends the
// current leg (sampling a new path if paused, otherwise popping the
// next waypoint) and recomputes the following leg's duration; anything
// smaller simply consumes simulated time, leaving a.Position to
// interpolate within the unchanged leg.
func (a *Agent) advance(seconds float64) {
	if seconds < 0 || seconds > a.remainingLegTime {
		panic("agent: advance: seconds out of [0, remainingLegTime] range")
	}
	a.simulatedTime += seconds
	if seconds < a.remainingLegTime {
		a.remainingLegTime -= seconds
		return
	}
	a.endLeg()
}

func (a *Agent) endLeg() {
	if a.paused {
		dest := a.chooser.GetDestination(a.current, a.gen)
		path, _, err := pathfinder.FindPath(a.m, a.current, dest, a.gen, a.pfOpts...)
		if err != nil {
			panic(fmt.Sprintf("agent: endLeg: %v", err))
		}
		// path[0] equals a.current; only the tail is new.
		a.path = path[1:]
	} else {
		a.current = a.path[0]
		a.path = a.path[1:]
	}
	a.recomputeLeg()
}

// recomputeLeg sets remainingLegTime/legDuration/paused for the leg
// beginning at a.current: a pause duration if the path is now empty
// (arrival at the destination), otherwise the walking time to the next
// waypoint at a's permanent speed.
func (a *Agent) recomputeLeg() {
	if len(a.path) == 0 {
		a.paused = true
		a.remainingLegTime = a.pause.Sample(a.gen)
		a.legDuration = a.remainingLegTime

		return
	}
	a.paused = false
	dist := a.current.Point.DistanceTo(a.path[0].Point)
	switch {
	case dist == 0:
		a.remainingLegTime = 0
	case a.speed == 0:
		a.remainingLegTime = math.Inf(1)
	default:
		a.remainingLegTime = dist / a.speed
	}
	a.legDuration = a.remainingLegTime
}

// Position returns a's continuously-interpolated position: the current
// waypoint while paused or at a zero-length leg, otherwise linearly
// interpolated between the current waypoint and the next one by the
// fraction of the leg elapsed so far.
func (a *Agent) Position() geom.Point {
	if a.paused || len(a.path) == 0 || a.legDuration <= 0 || math.IsInf(a.legDuration, 1) {
		return a.current.Point
	}
	frac := 1 - a.remainingLegTime/a.legDuration
	return a.current.Point.Add(a.path[0].Point.Sub(a.current.Point).Scale(frac))
}

// SimulatedTime returns the total simulated time elapsed since
// construction's burn-in reset, in seconds.
func (a *Agent) SimulatedTime() float64 { return a.simulatedTime }

// Speed returns the agent's permanent walking speed in metres/second.
func (a *Agent) Speed() float64 { return a.speed }

// State is a deep-copyable snapshot of an Agent's mutable fields, used
// by the replay layer to rewind a recording to its initial state
// without rebuilding the simulation.
type State struct {
	Current          mapmodel.Waypoint
	Path             mapmodel.Path
	Paused           bool
	RemainingLegTime float64
	LegDuration      float64
	SimulatedTime    float64
}

// State returns a deep copy of a's current mutable state.
func (a *Agent) State() State {
	path := make(mapmodel.Path, len(a.path))
	copy(path, a.path)

	return State{
		Current:          a.current,
		Path:             path,
		Paused:           a.paused,
		RemainingLegTime: a.remainingLegTime,
		LegDuration:      a.legDuration,
		SimulatedTime:    a.simulatedTime,
	}
}

// Restore overwrites a's mutable state from a previously captured State.
func (a *Agent) Restore(s State) {
	path := make(mapmodel.Path, len(s.Path))
	copy(path, s.Path)

	a.current = s.Current
	a.path = path
	a.paused = s.Paused
	a.remainingLegTime = s.RemainingLegTime
	a.legDuration = s.LegDuration
	a.simulatedTime = s.SimulatedTime
}

// SimulationOptions configures a Simulation's agent population.
type SimulationOptions struct {
	AgentCount int
	Duration   float64 // simulated seconds
	Speed      Distribution
	Pause      Distribution
	Metric     crumb.Metric
	// DisableStreetCut plumbs pathfinder.WithDisableStreetCut into
	// every agent's route planning, per spec §6's -disableStreetCut
	// diagnostic switch.
	DisableStreetCut bool
	// NewChooser builds the (shared, read-only-after-construction)
	// destination chooser every agent draws from.
	NewChooser func(m *mapmodel.Map) (destination.Chooser, error)
	// Workers bounds the agent-initialisation worker pool. Zero or
	// negative defaults to runtime.GOMAXPROCS(0).
	Workers int
}

// Simulation owns a fixed population of agents, bootstrapped in
// parallel per spec §4.7/§5.
type Simulation struct {
	m        *mapmodel.Map
	agents   []*Agent
	duration float64
}

// NewSimulation builds opts.AgentCount agents in parallel using
// min(Workers, AgentCount) worker goroutines. Each worker claims the
// next unassigned index and draws that agent's seed from seedGen while
// holding a shared mutex, then releases it and builds the agent outside
// the critical section — so agent i always receives the same seed
// regardless of goroutine scheduling (spec §5), matching
// core.Graph's sync.WaitGroup fan-out idiom.
func NewSimulation(m *mapmodel.Map, opts SimulationOptions, seedGen *rng.SeedGenerator, mon *progress.Monitor) (*Simulation, error) {
	if opts.AgentCount <= 0 {
		return nil, errors.New("agent: NewSimulation: AgentCount must be positive")
	}
	chooser, err := opts.NewChooser(m)
	if err != nil {
		return nil, fmt.Errorf("agent: NewSimulation: %w", err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > opts.AgentCount {
		workers = opts.AgentCount
	}

	var pfOpts []pathfinder.Option
	pfOpts = append(pfOpts, pathfinder.WithMetric(opts.Metric))
	if opts.DisableStreetCut {
		pfOpts = append(pfOpts, pathfinder.WithDisableStreetCut())
	}

	agents := make([]*Agent, opts.AgentCount)

	var (
		mu        sync.Mutex
		nextIndex int
		firstErr  error
		wg        sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				mu.Lock()
				if nextIndex >= opts.AgentCount || firstErr != nil || mon.Cancelled() {
					mu.Unlock()
					return
				}
				idx := nextIndex
				nextIndex++
				seed := seedGen.Next()
				mu.Unlock()

				a, err := newAgent(m, opts.Metric, pfOpts, chooser, opts.Speed, opts.Pause, rng.NewGenerator(seed))
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
				agents[idx] = a
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if mon.Cancelled() {
		return nil, fmt.Errorf("agent: NewSimulation: %w", mon.Err())
	}

	return &Simulation{m: m, agents: agents, duration: opts.Duration}, nil
}

// AgentCount returns the number of agents in the simulation.
func (s *Simulation) AgentCount() int { return len(s.agents) }

// Agent returns the agent at the given index.
func (s *Simulation) Agent(index int) *Agent { return s.agents[index] }

// Advance steps the given agent forward to its next waypoint/pause
// boundary, or to the simulation's remaining duration, whichever comes
// sooner. It returns false without advancing once the agent's
// simulated time has reached the simulation's duration.
func (s *Simulation) Advance(agentID int) (bool, error) {
	if agentID < 0 || agentID >= len(s.agents) {
		return false, ErrAgentIndexOutOfRange
	}
	a := s.agents[agentID]
	if a.simulatedTime >= s.duration {
		return false, nil
	}
	remaining := s.duration - a.simulatedTime
	step := a.remainingLegTime
	if step > remaining {
		step = remaining
	}
	a.advance(step)

	return true, nil
}
