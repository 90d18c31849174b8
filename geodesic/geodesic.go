// Package geodesic implements the MEAS variant that enumerates every
// minimum-cost route between two waypoints, rather than stopping at the
// first one (spec §4.4). It shares its crumb machinery with pathfinder
// but bakes in allowPrimaryTies=true so equal-cost routes coexist in
// the cache instead of the newest one losing, and replaces pathfinder's
// first-arrival termination with an excess-queue rule: once one route
// has completed, keep draining the queue until its next primary lower
// bound exceeds that route's cost.
package geodesic

import (
	"container/heap"
	"errors"

	"github.com/vogtryan/dbs3/crumb"
	"github.com/vogtryan/dbs3/geom"
	"github.com/vogtryan/dbs3/mapmodel"
)

// ErrFrontierExhausted indicates the queue emptied without completing
// any route — an invariant violation on a pre-validated connected map,
// mirroring pathfinder.ErrFrontierExhausted.
var ErrFrontierExhausted = errors.New("geodesic: frontier exhausted before reaching destination")

// Options configures a single FindAll invocation.
type Options struct {
	Metric           crumb.Metric
	DisableStreetCut bool
}

// Option is a functional option mutating Options.
type Option func(*Options)

// WithMetric selects the cost metric to minimise.
func WithMetric(metric crumb.Metric) Option {
	return func(o *Options) { o.Metric = metric }
}

// WithDisableStreetCut disables the StreetCut pruning rule.
func WithDisableStreetCut() Option {
	return func(o *Options) { o.DisableStreetCut = true }
}

// DefaultOptions returns the default MinTurns-metric, StreetCut-enabled
// configuration.
func DefaultOptions() Options {
	return Options{Metric: crumb.MinTurns, DisableStreetCut: false}
}

// Annotated is a reconstructed route position tagged with whether it
// sits at an intersection corner (true) or a segment-centre-ish
// waypoint such as the search's start/end (false) — the distinction
// spec §4.4 needs to enumerate the segments a route crosses.
type Annotated struct {
	Waypoint       mapmodel.Waypoint
	AtIntersection bool
}

// Finder is the signature syntax.Compute drives; FindAll satisfies it
// directly.
type Finder func(m *mapmodel.Map, start, end mapmodel.Waypoint, opts ...Option) ([]mapmodel.Path, float64, error)

// FindAll returns every minimum-cost route between start and end, and
// their shared cost.
func FindAll(m *mapmodel.Map, start, end mapmodel.Waypoint, opts ...Option) ([]mapmodel.Path, float64, error) {
	annotated, cost, err := FindAllAnnotated(m, start, end, opts...)
	if err != nil {
		return nil, 0, err
	}
	paths := make([]mapmodel.Path, len(annotated))
	for i, route := range annotated {
		path := make(mapmodel.Path, len(route))
		for j, a := range route {
			path[j] = a.Waypoint
		}
		paths[i] = path
	}

	return paths, cost, nil
}

// FindAllAnnotated is FindAll's richer form, additionally tagging each
// route position with whether it is an intersection corner — the
// information syntax's betweenness computation needs via Segments.
func FindAllAnnotated(m *mapmodel.Map, start, end mapmodel.Waypoint, opts ...Option) ([][]Annotated, float64, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := newEngine(m, end, cfg)
	e.seed(start)

	return e.run()
}

// Segments enumerates every segment of m strictly between each
// consecutive pair of annotated positions that share a street — the
// reconstruction step spec §4.4 requires for betweenness.
func Segments(m *mapmodel.Map, route []Annotated) []mapmodel.Segment {
	var out []mapmodel.Segment
	for i := 1; i < len(route); i++ {
		prev, cur := route[i-1], route[i]
		if prev.Waypoint.Street != cur.Waypoint.Street {
			continue
		}
		street := prev.Waypoint.Street
		lo := m.ProjectOntoStreet(street, prev.Waypoint.Point)
		hi := m.ProjectOntoStreet(street, cur.Waypoint.Point)
		if hi < lo {
			lo, hi = hi, lo
		}
		for _, seg := range m.SegmentsOf(street) {
			if seg.A.Distance > lo && seg.B.Distance < hi {
				out = append(out, seg)
			}
		}
	}

	return out
}

type pointKey struct {
	street int
	point  geom.Point
}

type engine struct {
	m      *mapmodel.Map
	end    mapmodel.Waypoint
	metric crumb.Metric

	streetCut bool

	endStreets map[int]bool

	streetCache map[int][]*crumb.Crumb
	pointCache  map[pointKey][]*crumb.Crumb

	pq             crumbHeap
	expanded       map[*crumb.Crumb]bool
	atIntersection map[*crumb.Crumb]bool
}

func newEngine(m *mapmodel.Map, end mapmodel.Waypoint, cfg Options) *engine {
	endStreets := make(map[int]bool)
	for _, s := range m.StreetsContaining(end.Point, end.Street) {
		endStreets[s] = true
	}

	return &engine{
		m:              m,
		end:            end,
		metric:         cfg.Metric,
		streetCut:      !cfg.DisableStreetCut,
		endStreets:     endStreets,
		streetCache:    make(map[int][]*crumb.Crumb),
		pointCache:     make(map[pointKey][]*crumb.Crumb),
		expanded:       make(map[*crumb.Crumb]bool),
		atIntersection: make(map[*crumb.Crumb]bool),
	}
}

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

// run executes the excess-queue termination rule of spec §4.4: collect
// every crumb that completes a route at the same cost as the first
// completion, stopping once the queue's next primary lower bound
// exceeds that cost.
func (e *engine) run() ([][]Annotated, float64, error) {
	var completed []*crumb.Crumb
	bestCost := 0.0
	haveBest := false

	for e.pq.Len() > 0 {
		if haveBest && e.pq[0].LowerBound > bestCost {
			break
		}
		c := heap.Pop(&e.pq).(*crumb.Crumb)
		if c.Obsolete {
			continue
		}
		e.expanded[c] = true

		if c.Waypoint.Point == e.end.Point {
			if !haveBest {
				bestCost = c.Accumulated()
				haveBest = true
			}
			completed = append(completed, c)

			continue
		}

		if e.endStreets[c.Waypoint.Street] {
			e.offerDirectToEnd(c)
		}
		e.expandIntersections(c)
	}

	if !haveBest {
		return nil, 0, ErrFrontierExhausted
	}

	routes := make([][]Annotated, len(completed))
	for i, c := range completed {
		routes[i] = e.reconstruct(c)
	}

	return routes, bestCost, nil
}

func (e *engine) reconstruct(c *crumb.Crumb) []Annotated {
	var rev []Annotated
	for cur := c; cur != nil; cur = cur.Pred {
		rev = append(rev, Annotated{Waypoint: cur.Waypoint, AtIntersection: e.atIntersection[cur]})
	}
	route := make([]Annotated, len(rev))
	for i, a := range rev {
		route[len(rev)-1-i] = a
	}

	return route
}

func (e *engine) offerDirectToEnd(c *crumb.Crumb) {
	wp := mapmodel.Waypoint{Point: e.end.Point, Street: c.Waypoint.Street}
	heap.Push(&e.pq, e.successor(c, wp, false))
}

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
		for _, pt := range in.EntryPoints() {
			wp := mapmodel.Waypoint{Point: pt, Street: crossing}
			e.offer(e.successor(c, wp, true))
		}
	}
}

func (e *engine) successor(c *crumb.Crumb, wp mapmodel.Waypoint, atIntersection bool) *crumb.Crumb {
	var next *crumb.Crumb
	switch e.metric {
	case crumb.MinTurns:
		streetChanged := wp.Street != c.Waypoint.Street
		next = crumb.NewTurnsSuccessor(c, wp, streetChanged)
		next.SetTurnsLowerBound(e.minTurnsToEnd(wp.Street), e.end.Point)
	case crumb.MinDistance:
		next = crumb.NewDistanceSuccessor(c, wp, e.end.Point)
	case crumb.MinAngle:
		next = crumb.NewAngleSuccessor(c, wp, e.end.Point)
	default:
		panic("geodesic: unknown metric")
	}
	e.atIntersection[next] = atIntersection

	return next
}

// offer implements the cache's offer protocol with allowPrimaryTies
// baked in true, per spec §4.4: equal-cost crumbs on the same key
// coexist rather than the newer one losing.
func (e *engine) offer(c *crumb.Crumb) {
	if e.streetCut {
		e.streetCache[c.Waypoint.Street] = e.resolveOffer(e.streetCache[c.Waypoint.Street], c)

		return
	}
	key := pointKey{street: c.Waypoint.Street, point: c.Waypoint.Point}
	e.pointCache[key] = e.resolveOffer(e.pointCache[key], c)
}

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
		switch crumb.CheckObsolete(existing, candidate, true) {
		case -1:
			candidate.Obsolete = true
			rejected = true
			survivors = append(survivors, existing)
		case 1:
			existing.Obsolete = true
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
// crumb.Less, identical in shape to pathfinder's.
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
