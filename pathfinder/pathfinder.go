// Package pathfinder implements the MEAS (multi-expansion A*) optimal
// pathfinder with the StreetCut pruning cache, per spec §4.3.
//
// FindPath produces a single route between a start and end waypoint
// minimising one of three metrics (turn count, Euclidean distance, or
// total turning angle), using a priority queue ordered by each metric's
// admissible lower bound — the same container/heap, lazy-decrease-key
// shape as dijkstra.Dijkstra, generalised from a single target vertex
// to a frontier of street-anchored crumbs.
//
// Complexity: bounded by the number of crumb expansions, which is
// itself bounded by the StreetCut cache discipline (at most a small
// constant number of live crumbs per street at any time); see
// Metrics for an observable count of pruning activity.
package pathfinder

import (
	"container/heap"
	"errors"

	"github.com/vogtryan/dbs3/crumb"
	"github.com/vogtryan/dbs3/geom"
	"github.com/vogtryan/dbs3/mapmodel"
	"github.com/vogtryan/dbs3/rng"
)

// ErrFrontierExhausted indicates the priority queue emptied before the
// search reached the end waypoint. Per spec §4.3, a pre-validated
// connected map guarantees termination with a result; reaching this
// error means the map or the search state violated that guarantee — an
// invariant violation (a bug), not a normal failure mode.
var ErrFrontierExhausted = errors.New("pathfinder: frontier exhausted before reaching destination")

// Options configures a single FindPath invocation.
type Options struct {
	Metric           crumb.Metric
	DisableStreetCut bool
}

// Option is a functional option mutating Options.
type Option func(*Options)

// WithMetric selects the cost metric to minimise. Default is MinTurns,
// matching the CLI surface's default (spec §6).
func WithMetric(metric crumb.Metric) Option {
	return func(o *Options) { o.Metric = metric }
}

// WithDisableStreetCut disables the StreetCut pruning rule, restricting
// obsolescence comparisons to crumbs at the exact same point — the
// diagnostic switch of spec §6's `-disableStreetCut` flag.
func WithDisableStreetCut() Option {
	return func(o *Options) { o.DisableStreetCut = true }
}

// DefaultOptions returns the default MinTurns-metric, StreetCut-enabled
// configuration.
func DefaultOptions() Options {
	return Options{Metric: crumb.MinTurns, DisableStreetCut: false}
}

// Metrics counts the three categories of obsoletion the StreetCut cache
// can perform, per spec §4.3's "observable optional side effect".
type Metrics struct {
	PreQueue int // new crumb dominated before entering the queue
	Queued   int // existing (not yet expanded) crumb dominated
	Late     int // existing, already-expanded crumb dominated
}

// FindPath runs the MEAS search from start to end over m, using gen for
// the random corner sampling of spec §4.3 step 3. The returned path's
// first and last waypoints equal start and end.
func FindPath(m *mapmodel.Map, start, end mapmodel.Waypoint, gen rng.Generator, opts ...Option) (mapmodel.Path, Metrics, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := newEngine(m, end, gen, cfg)
	e.seed(start)

	path, err := e.run()

	return path, e.metrics, err
}

type pointKey struct {
	street int
	point  geom.Point
}

type engine struct {
	m                *mapmodel.Map
	end              mapmodel.Waypoint
	gen              rng.Generator
	metric    crumb.Metric
	streetCut bool

	endStreets map[int]bool

	streetCache map[int][]*crumb.Crumb
	pointCache  map[pointKey][]*crumb.Crumb

	pq       crumbHeap
	expanded map[*crumb.Crumb]bool
	corners  map[int][4]geom.Point // intersection ID -> sampled corner points, cached per run

	metrics Metrics
}

func newEngine(m *mapmodel.Map, end mapmodel.Waypoint, gen rng.Generator, cfg Options) *engine {
	endStreets := make(map[int]bool)
	for _, s := range m.StreetsContaining(end.Point, end.Street) {
		endStreets[s] = true
	}

	return &engine{
		m:           m,
		end:         end,
		gen:         gen,
		metric:      cfg.Metric,
		streetCut:   !cfg.DisableStreetCut,
		endStreets:  endStreets,
		streetCache: make(map[int][]*crumb.Crumb),
		pointCache:  make(map[pointKey][]*crumb.Crumb),
		expanded:    make(map[*crumb.Crumb]bool),
		corners:     make(map[int][4]geom.Point),
	}
}

// seed enumerates every street containing start (spec §4.3 step 1) and
// offers one root crumb per candidate street.
func (e *engine) seed(start mapmodel.Waypoint) {
	for _, s := range e.m.StreetsContaining(start.Point, start.Street) {
		wp := mapmodel.Waypoint{Point: start.Point, Street: s}
		c := crumb.NewRoot(e.metric, wp, e.end.Point)
		if e.metric == crumb.MinTurns {
			c.SetTurnsLowerBound(e.minTurnsToEnd(s), e.end.Point)
		}
		e.offer(c)
	}
}

// minTurnsToEnd returns the minimum, over every acceptable end street,
// of minTurns(street, endStreet) — spec §4.2's "chosen, among multiple
// acceptable end streets, to minimise the initial lower bound".
func (e *engine) minTurnsToEnd(street int) int {
	best := -1
	for end := range e.endStreets {
		t := e.m.MinTurns(street, end)
		if best == -1 || t < best {
			best = t
		}
	}

	return best
}

// run executes the MEAS main loop of spec §4.3 step 3.
func (e *engine) run() (mapmodel.Path, error) {
	for e.pq.Len() > 0 {
		c := heap.Pop(&e.pq).(*crumb.Crumb)
		if c.Obsolete {
			continue
		}
		e.expanded[c] = true

		if c.Waypoint.Point == e.end.Point {
			return crumb.Path(c), nil
		}

		if e.endStreets[c.Waypoint.Street] {
			e.offerDirectToEnd(c)
		}

		e.expandIntersections(c)
	}

	return nil, ErrFrontierExhausted
}

// offerDirectToEnd enqueues a straight-walk successor crumb from c to
// the end point, staying on c's current street. The crumb goes straight
// onto the priority queue, bypassing the street cache, where c itself
// would otherwise obsolete it.
func (e *engine) offerDirectToEnd(c *crumb.Crumb) {
	wp := mapmodel.Waypoint{Point: e.end.Point, Street: c.Waypoint.Street}
	heap.Push(&e.pq, e.successor(c, wp))
}

// expandIntersections offers one successor crumb per sampled corner of
// every outgoing intersection on c's street, excluding by default the
// intersection leading back to the predecessor's street (spec §4.3
// step 3).
func (e *engine) expandIntersections(c *crumb.Crumb) {
	predStreet := -1
	if c.Pred != nil {
		predStreet = c.Pred.Waypoint.Street
	}

	for _, in := range e.m.Intersections(c.Waypoint.Street) {
		crossing := in.Crossing()
		if crossing == predStreet {
			continue
		}
		for _, pt := range e.cornersFor(in) {
			wp := mapmodel.Waypoint{Point: pt, Street: crossing}
			e.offer(e.successor(c, wp))
		}
	}
}

// cornersFor returns the four candidate entry/exit points of in,
// sampling them once per (intersection, run) and caching the result so
// every repeated visit to the same intersection within this search
// reuses an identical set of points — required for crumb-offer
// comparisons (both StreetCut and point-exact) to see consistent
// waypoints. The PRNG decides the visitation order used when the
// intersection is first reached; the four geometric corners themselves
// are exact (spec §3's trigonometric construction).
func (e *engine) cornersFor(in mapmodel.Intersection) [4]geom.Point {
	if cached, ok := e.corners[in.ID()]; ok {
		return cached
	}
	pts := in.EntryPoints()
	// Shuffle order via Fisher-Yates using the run's PRNG so the order
	// in which candidate successors are offered is not dependent on
	// corner-array layout, then cache the permuted result.
	for i := len(pts) - 1; i > 0; i-- {
		j := e.gen.Int(i + 1)
		pts[i], pts[j] = pts[j], pts[i]
	}
	e.corners[in.ID()] = pts

	return pts
}

// successor builds a metric-appropriate successor crumb from c to wp,
// finishing the MinTurns lower bound (which needs the map) afterward.
func (e *engine) successor(c *crumb.Crumb, wp mapmodel.Waypoint) *crumb.Crumb {
	switch e.metric {
	case crumb.MinTurns:
		streetChanged := wp.Street != c.Waypoint.Street
		next := crumb.NewTurnsSuccessor(c, wp, streetChanged)
		next.SetTurnsLowerBound(e.minTurnsToEnd(wp.Street), e.end.Point)

		return next
	case crumb.MinDistance:
		return crumb.NewDistanceSuccessor(c, wp, e.end.Point)
	case crumb.MinAngle:
		return crumb.NewAngleSuccessor(c, wp, e.end.Point)
	default:
		panic("pathfinder: unknown metric")
	}
}

// offer implements the cache's offer protocol of spec §4.3 step 4: the
// candidate is compared against every live crumb sharing its cache key
// (its street under StreetCut, or its exact point otherwise); mutually
// dominated crumbs are marked obsolete and removed, and the candidate
// is inserted into both the cache and the priority queue only if it
// survives.
func (e *engine) offer(c *crumb.Crumb) {
	if e.streetCut {
		e.streetCache[c.Waypoint.Street] = e.resolveOffer(e.streetCache[c.Waypoint.Street], c)

		return
	}
	key := pointKey{street: c.Waypoint.Street, point: c.Waypoint.Point}
	e.pointCache[key] = e.resolveOffer(e.pointCache[key], c)
}

// resolveOffer compares candidate against every live (non-obsolete)
// crumb already sharing its cache key, updates Metrics accordingly, and
// returns the cache slot's new contents. Once candidate is itself
// rejected by one existing crumb, the remaining existing crumbs are
// preserved unchanged rather than compared further — a candidate that
// has already lost is not a valid yardstick for anyone else's
// obsolescence.
func (e *engine) resolveOffer(live []*crumb.Crumb, candidate *crumb.Crumb) []*crumb.Crumb {
	survivors := live[:0]
	rejected := false
	for _, existing := range live {
		if existing.Obsolete {
			continue
		}
		if rejected {
			survivors = append(survivors, existing)

			continue
		}
		switch crumb.CheckObsolete(existing, candidate, false) {
		case -1:
			candidate.Obsolete = true
			e.metrics.PreQueue++
			rejected = true
			survivors = append(survivors, existing)
		case 1:
			existing.Obsolete = true
			if e.expanded[existing] {
				e.metrics.Late++
			} else {
				e.metrics.Queued++
			}
		default:
			survivors = append(survivors, existing)
		}
	}
	if !rejected {
		survivors = append(survivors, candidate)
		heap.Push(&e.pq, candidate)
	}

	return survivors
}

// crumbHeap is a container/heap min-heap of *crumb.Crumb, ordered by
// crumb.Less — the same lazy-decrease-key shape as dijkstra.nodePQ.
type crumbHeap []*crumb.Crumb

func (h crumbHeap) Len() int            { return len(h) }
func (h crumbHeap) Less(i, j int) bool  { return crumb.Less(h[i], h[j]) }
func (h crumbHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *crumbHeap) Push(x interface{}) { *h = append(*h, x.(*crumb.Crumb)) }
func (h *crumbHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]

	return item
}
