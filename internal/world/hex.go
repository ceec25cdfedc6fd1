// Package world provides the hex grid, tile map, ring generation and path finding.
// Uses axial coordinates (q, r) for the hex grid.
package world

import "math"

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Origin is the centre of the map, where the first office stands.
var Origin = HexCoord{}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Add returns the component-wise sum of two coordinates.
func (h HexCoord) Add(o HexCoord) HexCoord {
	return HexCoord{Q: h.Q + o.Q, R: h.R + o.R}
}

// Scale multiplies both components by k.
func (h HexCoord) Scale(k int) HexCoord {
	return HexCoord{Q: h.Q * k, R: h.R * k}
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates,
// listed clockwise starting from the +q axis.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 0, R: 1},
	{Q: -1, R: 1},
	{Q: -1, R: 0},
	{Q: 0, R: -1},
	{Q: 1, R: -1},
}

// Neighbors returns the six adjacent hex coordinates.
// Order follows HexNeighborDirections; path finding relies on it for tie-breaking.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// Ring returns the coordinates at exactly radius steps from center.
// The walk starts at the corner center + radius*dir[4] and proceeds clockwise,
// so the order is stable across calls. Radius 0 yields the center alone.
func Ring(center HexCoord, radius int) []HexCoord {
	if radius <= 0 {
		return []HexCoord{center}
	}
	out := make([]HexCoord, 0, 6*radius)
	cur := center.Add(HexNeighborDirections[4].Scale(radius))
	for side := 0; side < 6; side++ {
		for step := 0; step < radius; step++ {
			out = append(out, cur)
			cur = cur.Add(HexNeighborDirections[side])
		}
	}
	return out
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	// Max of the three absolute differences in cube coordinates.
	return max(dq, dr, ds)
}

// ToPixel projects a coordinate onto the plane for a flat-top layout with
// the given hex size (centre to corner). Rendering only; the simulation never
// looks at pixels.
func (h HexCoord) ToPixel(size float64) (x, y float64) {
	x = size * 1.5 * float64(h.Q)
	y = size * math.Sqrt(3) * (float64(h.R) + float64(h.Q)/2)
	return x, y
}

// FromPixel returns the hex containing the point (x, y) in a flat-top layout.
// Used by collaborators to turn a cursor position into a selection.
func FromPixel(x, y, size float64) HexCoord {
	q := (2.0 / 3.0 * x) / size
	r := (-1.0/3.0*x + math.Sqrt(3)/3.0*y) / size
	return roundCube(q, r, -q-r)
}

func roundCube(fq, fr, fs float64) HexCoord {
	q := math.Round(fq)
	r := math.Round(fr)
	s := math.Round(fs)

	dq := math.Abs(q - fq)
	dr := math.Abs(r - fr)
	ds := math.Abs(s - fs)

	if dq > dr && dq > ds {
		q = -r - s
	} else if dr > ds {
		r = -q - s
	}
	return HexCoord{Q: int(q), R: int(r)}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
