package world

import "errors"

// ErrNoRoute is returned when no destination is reachable through passable
// tiles. Callers skip the attempt for this tick; it is never fatal.
var ErrNoRoute = errors.New("no route")

// Search is a breadth-first traversal from a start coordinate toward the
// nearest coordinate accepted by a destination predicate.
//
// Frontier order is FIFO with neighbours expanded in HexNeighborDirections
// order, so among equally near destinations the first one dequeued wins.
type Search struct {
	passable func(HexCoord) bool
	isDest   func(HexCoord) bool
	start    HexCoord

	prev  map[HexCoord]HexCoord
	depth map[HexCoord]int
}

// NewSearch prepares a search. Nothing runs until Find is called.
func NewSearch(passable, isDest func(HexCoord) bool, start HexCoord) *Search {
	return &Search{
		passable: passable,
		isDest:   isDest,
		start:    start,
	}
}

// Find runs the search and returns the nearest destination. The start itself
// is never a destination.
func (s *Search) Find() (HexCoord, bool) {
	s.prev = map[HexCoord]HexCoord{}
	s.depth = map[HexCoord]int{s.start: 0}

	queue := []HexCoord{s.start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur != s.start && s.isDest(cur) {
			return cur, true
		}

		for _, nb := range cur.Neighbors() {
			if _, seen := s.depth[nb]; seen {
				continue
			}
			if !s.passable(nb) {
				continue
			}
			s.depth[nb] = s.depth[cur] + 1
			s.prev[nb] = cur
			queue = append(queue, nb)
		}
	}
	return HexCoord{}, false
}

// Backtrace returns the coordinate the search came from to reach c.
func (s *Search) Backtrace(c HexCoord) (HexCoord, bool) {
	p, ok := s.prev[c]
	return p, ok
}

// Depth returns the BFS depth at which c was discovered.
func (s *Search) Depth(c HexCoord) (int, bool) {
	d, ok := s.depth[c]
	return d, ok
}

// Path reconstructs the route to dest, destination first and excluding the
// start. Travellers consume it from the back.
func (s *Search) Path(dest HexCoord) []HexCoord {
	path := []HexCoord{dest}
	end := dest
	for {
		next, ok := s.Backtrace(end)
		if !ok || next == s.start {
			break
		}
		path = append(path, next)
		end = next
	}
	return path
}

// Route is a resolved path to a destination.
type Route struct {
	Dest  HexCoord
	Steps []HexCoord // destination first, start excluded
}

// Len returns the number of steps to walk.
func (r Route) Len() int {
	return len(r.Steps)
}

// FindRoute searches m from start to the nearest coordinate accepted by
// isDest, stepping only on passable tiles.
func FindRoute(m *Map, start HexCoord, isDest func(HexCoord) bool) (Route, error) {
	s := NewSearch(m.Passable, isDest, start)
	dest, ok := s.Find()
	if !ok {
		return Route{}, ErrNoRoute
	}
	return Route{Dest: dest, Steps: s.Path(dest)}, nil
}

// ShopPredicate accepts break shops.
func ShopPredicate(m *Map) func(HexCoord) bool {
	return func(c HexCoord) bool { return m.Is(c, TileBreakShop) }
}

// TargetPredicate accepts exactly target.
func TargetPredicate(target HexCoord) func(HexCoord) bool {
	return func(c HexCoord) bool { return c == target }
}
