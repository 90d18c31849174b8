// Package destination implements the destination-chooser contract of
// spec §4.6: Uniform, which draws length-weighted over every street,
// and Integrated, which additionally weighs by an integration (average
// neighbour distance) centrality measure and a distance-decay term,
// solved to a steady-state distribution via rng.SolveStationary.
//
// NewIntegrated takes its parameters positionally and panics on invalid
// ones, like dijkstra.WithMaxDistance: a negative alpha, delta, or radius is a
// programmer error in how Integrated was built, not a runtime
// condition a caller recovers from, so NewIntegrated panics on those
// rather than returning an error; a Markov chain that fails to
// converge, in contrast, is a legitimate construction-time failure and
// is surfaced as a wrapped rng.ErrNotErgodic.
package destination

import (
	"fmt"
	"math"

	"github.com/vogtryan/dbs3/mapmodel"
	"github.com/vogtryan/dbs3/progress"
	"github.com/vogtryan/dbs3/rng"
)

// Chooser is the abstract destination-selection contract spec §4.6
// requires of both Uniform and Integrated.
type Chooser interface {
	// GetDestination draws a new destination waypoint, possibly
	// depending on the agent's current waypoint.
	GetDestination(current mapmodel.Waypoint, gen rng.Generator) mapmodel.Waypoint
	// GetSteadyDestination draws from the limiting distribution of the
	// last-arrived destination under repeated selection.
	GetSteadyDestination(gen rng.Generator) mapmodel.Waypoint
}

// Uniform chooses a destination with probability proportional to
// street length, uniform along the chosen street's midline.
type Uniform struct {
	m       *mapmodel.Map
	weights *rng.Discrete
}

// NewUniform builds a Uniform chooser over every street of m, weighted
// by street length.
func NewUniform(m *mapmodel.Map) *Uniform {
	streets := m.Streets()
	lengths := make([]float64, len(streets))
	for i, s := range streets {
		lengths[i] = s.Length()
	}
	weights, err := rng.NewDiscrete(lengths)
	if err != nil {
		// NewDiscrete fails only on an empty or negative weight list. A
		// Map from NewMap has at least one street and lengths are never
		// negative, so reaching here means the Map itself is malformed.
		panic(fmt.Sprintf("destination: NewUniform: %v", err))
	}

	return &Uniform{m: m, weights: weights}
}

// GetDestination draws a street proportional to length, then a
// uniform point along its midline. current is ignored: the one-step
// distribution of Uniform does not depend on the caller's location.
func (u *Uniform) GetDestination(current mapmodel.Waypoint, gen rng.Generator) mapmodel.Waypoint {
	return u.sample(gen)
}

// GetSteadyDestination returns a draw from Uniform's steady-state
// distribution, which (per spec §4.6) equals its one-step distribution.
func (u *Uniform) GetSteadyDestination(gen rng.Generator) mapmodel.Waypoint {
	return u.sample(gen)
}

func (u *Uniform) sample(gen rng.Generator) mapmodel.Waypoint {
	street := u.weights.Sample(gen)
	s := u.m.Street(street)
	t := gen.Uniform(0, 1)
	point := s.Midline.A.Add(s.Midline.Direction().Scale(t))

	return mapmodel.Waypoint{Point: point, Street: street}
}

// Integrated chooses a destination weighted by an integration
// (centrality) measure and a distance-decay term, per spec §4.6.
type Integrated struct {
	m      *mapmodel.Map
	perRow []*rng.Discrete // row s: distribution over s's destinations under the chain
	steady *rng.Discrete
}

// NewIntegrated builds the per-source discrete distributions of
// spec §4.6 and solves the resulting Markov chain for its stationary
// distribution. alpha, delta, and radius must be non-negative; a
// negative value panics. A chain that fails to converge within the
// power-iteration budget surfaces rng.ErrNotErgodic wrapped as a
// construction error, per §7.
func NewIntegrated(m *mapmodel.Map, alpha, delta float64, radius int, mon *progress.Monitor) (*Integrated, error) {
	if alpha < 0 {
		panic("destination: NewIntegrated: alpha must be non-negative")
	}
	if delta < 0 {
		panic("destination: NewIntegrated: delta must be non-negative")
	}
	if radius < 0 {
		panic("destination: NewIntegrated: radius must be non-negative")
	}

	streets := m.Streets()
	n := len(streets)
	lengths := make([]float64, n)
	for i, s := range streets {
		lengths[i] = s.Length()
	}

	integration := make([]float64, n)
	for d := 0; d < n; d++ {
		integration[d] = computeIntegration(m, lengths, d, radius)
		if mon.Cancelled() {
			return nil, fmt.Errorf("destination: NewIntegrated: %w", mon.Err())
		}
	}

	chain := make([][]float64, n)
	perRow := make([]*rng.Discrete, n)
	for s := 0; s < n; s++ {
		row := make([]float64, n)
		for d := 0; d < n; d++ {
			turns := m.MinTurns(s, d)
			dist := float64(turns + 1)
			weight := lengths[d]
			if integration[d] > 0 {
				weight /= math.Pow(integration[d], alpha)
			}
			weight /= math.Pow(dist, delta)
			row[d] = weight
		}
		disc, err := rng.NewDiscrete(row)
		if err != nil {
			return nil, fmt.Errorf("destination: NewIntegrated: row %d: %w", s, err)
		}
		perRow[s] = disc
		chain[s] = normalizeRow(row)
	}

	stationary, err := rng.SolveStationary(chain, 1e-9, 10000)
	if err != nil {
		return nil, fmt.Errorf("destination: NewIntegrated: %w", err)
	}
	steady, err := rng.NewDiscrete(stationary)
	if err != nil {
		return nil, fmt.Errorf("destination: NewIntegrated: steady distribution: %w", err)
	}

	return &Integrated{m: m, perRow: perRow, steady: steady}, nil
}

// normalizeRow rescales row so it sums to 1, the row-stochastic form
// rng.SolveStationary requires of its transition matrix. A row that
// sums to zero (every destination weighed out, impossible for a
// connected map with alpha, delta >= 0 since every length is positive)
// is left as-is.
func normalizeRow(row []float64) []float64 {
	var sum float64
	for _, w := range row {
		sum += w
	}
	if sum == 0 {
		return row
	}
	out := make([]float64, len(row))
	for i, w := range row {
		out[i] = w / sum
	}

	return out
}

// computeIntegration returns I(d), the length-weighted mean distance of
// every street within radius turns of d (spec §4.6).
func computeIntegration(m *mapmodel.Map, lengths []float64, d, radius int) float64 {
	var numer, denom float64
	for i, l := range lengths {
		if m.MinTurns(i, d) > radius {
			continue
		}
		distance := float64(m.MinTurns(i, d) + 1)
		numer += l * distance
		denom += l
	}
	if denom == 0 {
		return 0
	}

	return numer / denom
}

// GetDestination draws the next destination given the agent's current
// street, following the chain row for that street.
func (in *Integrated) GetDestination(current mapmodel.Waypoint, gen rng.Generator) mapmodel.Waypoint {
	dest := in.perRow[current.Street].Sample(gen)

	return in.sampleOnStreet(dest, gen)
}

// GetSteadyDestination draws from the chain's solved stationary
// distribution.
func (in *Integrated) GetSteadyDestination(gen rng.Generator) mapmodel.Waypoint {
	dest := in.steady.Sample(gen)

	return in.sampleOnStreet(dest, gen)
}

func (in *Integrated) sampleOnStreet(street int, gen rng.Generator) mapmodel.Waypoint {
	s := in.m.Street(street)
	t := gen.Uniform(0, 1)
	point := s.Midline.A.Add(s.Midline.Direction().Scale(t))

	return mapmodel.Waypoint{Point: point, Street: street}
}
