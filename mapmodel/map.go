package mapmodel

import (
	"fmt"
	"math"
	"sort"

	"github.com/vogtryan/dbs3/geom"
)

// Map is the closed collection produced by NewMap: streets, per-street
// intersections, the global ordered segment array, per-street segment
// offsets, and the dense minimum-turns matrix. Once constructed, a Map
// is never mutated (spec §3's lifecycle contract) and is safe to share
// by reference across goroutines.
type Map struct {
	streets       []Street
	intersections [][]Intersection // per street, in ascending crossing-street ID order
	segments      []Segment        // global, sorted street-by-street then by progression
	streetOffset  []int            // per street: first index into segments
	minTurns      [][]int          // minTurns[i][j]: fewest street-to-street transitions
}

// NewMap runs the five construction steps of spec §4.1 and returns a
// fully validated Map, or one of the sentinel errors of types.go.
func NewMap(inputs []StreetInput) (*Map, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyStreetList
	}

	streets := make([]Street, len(inputs))
	for i, in := range inputs {
		if in.Width <= 0 {
			return nil, fmt.Errorf("%w: street %q", ErrBadWidth, in.Name)
		}
		streets[i] = Street{ID: i, Name: in.Name, Midline: in.Midline, Width: in.Width}
	}

	intersections := make([][]Intersection, len(streets))
	adjacency := make([][]int, len(streets))

	// Step 1: pairwise intersection of every unordered pair of streets.
	pairID := 0
	for i := 0; i < len(streets); i++ {
		for j := i + 1; j < len(streets); j++ {
			pgI := streets[i].Parallelogram()
			pgJ := streets[j].Parallelogram()
			if pgI.Encloses(pgJ) || pgJ.Encloses(pgI) {
				return nil, fmt.Errorf("%w: street %q and %q", ErrStreetContainment, streets[i].Name, streets[j].Name)
			}

			centre, ok := streets[i].Midline.IntersectInfinite(streets[j].Midline)
			if !ok {
				if pgI.Overlaps(pgJ) {
					return nil, fmt.Errorf("%w: street %q and %q", ErrStreetsIntersectParallel, streets[i].Name, streets[j].Name)
				}
				continue
			}

			pair := &intersectionPair{
				id:      pairID,
				streetA: i,
				streetB: j,
				centre:  centre,
				widthA:  streets[i].Width,
				widthB:  streets[j].Width,
				dirA:    streets[i].Midline.Direction().ScaledTo(1),
				dirB:    streets[j].Midline.Direction().ScaledTo(1),
			}
			pairID++

			intersections[i] = append(intersections[i], Intersection{pair: pair, owner: 0})
			intersections[j] = append(intersections[j], Intersection{pair: pair, owner: 1})
			adjacency[i] = append(adjacency[i], j)
			adjacency[j] = append(adjacency[j], i)
		}
	}

	// Steps 2-3: segmentation points, segments, global sort, per-street offsets.
	var allSegments []Segment
	for i := range streets {
		points := segmentationPointsFor(streets, i, intersections[i])
		sort.Slice(points, func(a, b int) bool { return points[a].Less(points[b]) })

		for k := 1; k < len(points); k++ {
			allSegments = append(allSegments, newSegment(i, points[k-1], points[k]))
		}
	}
	sort.Slice(allSegments, func(a, b int) bool { return allSegments[a].Less(allSegments[b]) })
	streetOffset := make([]int, len(streets))
	for idx, s := range allSegments {
		if idx == 0 || allSegments[idx-1].Street != s.Street {
			streetOffset[s.Street] = idx
		}
	}

	// Step 4: bounds verification.
	for _, s := range streets {
		for _, c := range s.Parallelogram().Corners() {
			if !geom.InBounds(c) {
				return nil, fmt.Errorf("%w: street %q", ErrOutOfBounds, s.Name)
			}
		}
	}
	for _, row := range intersections {
		for _, in := range row {
			for _, c := range in.EntryPoints() {
				if !geom.InBounds(c) {
					return nil, fmt.Errorf("%w: intersection on street %q", ErrOutOfBounds, streets[in.Street()].Name)
				}
			}
		}
	}
	for _, seg := range allSegments {
		pg := geom.Parallelogram{Midline: seg.Midline(), Width: streets[seg.Street].Width}
		for _, c := range pg.Corners() {
			if !geom.InBounds(c) {
				return nil, fmt.Errorf("%w: segment on street %q", ErrOutOfBounds, streets[seg.Street].Name)
			}
		}
	}

	// Step 5: BFS over the street-adjacency graph to populate minTurns.
	minTurns, err := buildMinTurns(adjacency)
	if err != nil {
		return nil, err
	}

	return &Map{
		streets:       streets,
		intersections: intersections,
		segments:      allSegments,
		streetOffset:  streetOffset,
		minTurns:      minTurns,
	}, nil
}

// segmentationPointsFor builds the full list of segmentation points for
// street i: its two compass-described endpoints, plus one point per
// intersection the street owns.
func segmentationPointsFor(streets []Street, i int, owned []Intersection) []SegmentationPoint {
	s := streets[i]
	length := s.Midline.Length()
	unit := s.Midline.Direction().ScaledTo(1)

	points := make([]SegmentationPoint, 0, len(owned)+2)
	points = append(points, SegmentationPoint{
		Street: i, Point: s.Midline.A, Distance: 0,
		Description: "The " + compassEndDescription(s.Midline.Direction(), false) + " End",
	})
	points = append(points, SegmentationPoint{
		Street: i, Point: s.Midline.B, Distance: length,
		Description: "The " + compassEndDescription(s.Midline.Direction(), true) + " End",
	})

	for _, in := range owned {
		centre := in.Centre()
		rel := centre.Sub(s.Midline.A)
		projection := rel.Dot(unit)
		distance := projection
		if projection > length {
			// Extrapolated past the far end: flag with a negative sign
			// per spec §3's explicit convention.
			distance = -projection
		}
		points = append(points, SegmentationPoint{
			Street:      i,
			Point:       centre,
			Distance:    distance,
			Description: fmt.Sprintf("Intersection of %s and %s", s.Name, streets[in.Crossing()].Name),
		})
	}

	return points
}

// compassEndDescription labels a street endpoint by compass direction.
// far selects the B endpoint (true) or the A endpoint (false); the label
// names the direction you travel along the midline to reach that
// endpoint, using whichever axis the midline is more aligned with.
func compassEndDescription(dir geom.Vector, far bool) string {
	if !far {
		dir = geom.Vector{DX: -dir.DX, DY: -dir.DY}
	}
	if math.Abs(dir.DX) >= math.Abs(dir.DY) {
		if dir.DX >= 0 {
			return "East"
		}

		return "West"
	}
	if dir.DY >= 0 {
		return "North"
	}

	return "South"
}

// buildMinTurns runs one BFS per street over the adjacency induced by
// intersections, filling a dense minTurns matrix. Returns
// ErrMapDisconnected if the first BFS cannot reach every street.
func buildMinTurns(adjacency [][]int) ([][]int, error) {
	n := len(adjacency)
	minTurns := make([][]int, n)
	for i := range minTurns {
		minTurns[i] = make([]int, n)
		for j := range minTurns[i] {
			minTurns[i][j] = -1
		}
	}

	for start := 0; start < n; start++ {
		minTurns[start][start] = 0
		queue := []int{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range adjacency[cur] {
				if minTurns[start][next] != -1 {
					continue
				}
				minTurns[start][next] = minTurns[start][cur] + 1
				queue = append(queue, next)
			}
		}
		if start == 0 {
			for _, d := range minTurns[0] {
				if d == -1 {
					return nil, ErrMapDisconnected
				}
			}
		}
	}

	return minTurns, nil
}

// Streets returns every street, indexed by ID.
func (m *Map) Streets() []Street { return m.streets }

// Street returns the street with the given ID.
func (m *Map) Street(id int) Street { return m.streets[id] }

// Intersections returns street id's intersections, in ascending crossing-street ID order.
func (m *Map) Intersections(id int) []Intersection { return m.intersections[id] }

// Segments returns every segment, globally ordered street-by-street
// then by progression along each street.
func (m *Map) Segments() []Segment { return m.segments }

// SegmentsOf returns the slice of segments belonging to street id.
func (m *Map) SegmentsOf(id int) []Segment {
	start := m.streetOffset[id]
	end := len(m.segments)
	if id+1 < len(m.streets) {
		// Segments are grouped by street; scan forward from start for
		// the first segment on a later street.
		for i := start; i < len(m.segments); i++ {
			if m.segments[i].Street != id {
				end = i

				break
			}
		}
	}

	return m.segments[start:end]
}

// MinTurns returns the minimum number of street-to-street transitions
// between streets i and j.
func (m *Map) MinTurns(i, j int) int { return m.minTurns[i][j] }

// ProjectOntoStreet returns the signed distance from street id's start
// to the projection of p onto its midline, used by the geodesic
// finder's reconstruction to order two points along a shared street.
func (m *Map) ProjectOntoStreet(id int, p geom.Point) float64 {
	s := m.streets[id]
	unit := s.Midline.Direction().ScaledTo(1)

	return p.Sub(s.Midline.A).Dot(unit)
}

// NumStreets returns the number of streets in the map.
func (m *Map) NumStreets() int { return len(m.streets) }

// Bounds returns the map's bounding box, derived from every street's
// footprint corners.
func (m *Map) Bounds() (min, max geom.Point) {
	min = geom.Point{X: geom.MaxCoord, Y: geom.MaxCoord}
	max = geom.Point{X: geom.MinCoord, Y: geom.MinCoord}
	for _, s := range m.streets {
		for _, c := range s.Parallelogram().Corners() {
			if c.X < min.X {
				min.X = c.X
			}
			if c.Y < min.Y {
				min.Y = c.Y
			}
			if c.X > max.X {
				max.X = c.X
			}
			if c.Y > max.Y {
				max.Y = c.Y
			}
		}
	}

	return min, max
}

// StreetsContaining returns the IDs of every street whose footprint
// contains p, including p's own street (used by the pathfinder to seed
// start/end candidate streets per spec §4.3 step 1).
func (m *Map) StreetsContaining(p geom.Point, ownStreet int) []int {
	seen := map[int]bool{ownStreet: true}
	result := []int{ownStreet}
	for _, in := range m.intersections[ownStreet] {
		crossing := in.Crossing()
		if seen[crossing] {
			continue
		}
		if m.streets[crossing].Parallelogram().Contains(p) {
			seen[crossing] = true
			result = append(result, crossing)
		}
	}

	return result
}
