// Package layout holds geometry helpers for placing shapes on a pannable
// board without disturbing what is already there.
package layout

import "math"

// Rect is an axis aligned box in canvas coordinates
type Rect struct {
	X, Y, W, H float64
}

// Overlaps reports whether two rects share any area
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Center returns the centre point
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

func (r Rect) at(x, y float64) Rect {
	return Rect{X: x, Y: y, W: r.W, H: r.H}
}

func overlapsAny(r Rect, occupied []Rect) bool {
	for _, o := range occupied {
		if r.Overlaps(o) {
			return true
		}
	}
	return false
}

// RingSearch finds a position for want that overlaps none of occupied. It
// tries want's own position first, then walks square rings of growing radius
// (step apart) around it, returning the first free candidate closest to the
// origin point. Occupied rects are never moved. If every ring up to maxRings
// is blocked, want is returned unchanged.
func RingSearch(occupied []Rect, want Rect, step float64, maxRings int) Rect {
	if !overlapsAny(want, occupied) {
		return want
	}
	if step <= 0 {
		step = math.Max(want.W, want.H)
	}

	for ring := 1; ring <= maxRings; ring++ {
		var best Rect
		bestDist := math.Inf(1)
		found := false

		for dx := -ring; dx <= ring; dx++ {
			for dy := -ring; dy <= ring; dy++ {
				if abs(dx) != ring && abs(dy) != ring {
					continue // interior cells belong to smaller rings
				}
				c := want.at(want.X+float64(dx)*step, want.Y+float64(dy)*step)
				if overlapsAny(c, occupied) {
					continue
				}
				d := math.Hypot(c.X-want.X, c.Y-want.Y)
				if d < bestDist {
					best, bestDist, found = c, d, true
				}
			}
		}
		if found {
			return best
		}
	}
	return want
}

// Bounds returns the smallest rect containing all rects
func Bounds(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, r := range rects {
		minX = math.Min(minX, r.X)
		minY = math.Min(minY, r.Y)
		maxX = math.Max(maxX, r.X+r.W)
		maxY = math.Max(maxY, r.Y+r.H)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Project maps rects onto a cols x rows grid covering bounds, marking every
// cell a rect touches. It is the minimap view of the board. A grid with no
// cells is nil.
func Project(rects []Rect, bounds Rect, cols, rows int) [][]bool {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	grid := make([][]bool, rows)
	for i := range grid {
		grid[i] = make([]bool, cols)
	}
	if bounds.W <= 0 || bounds.H <= 0 {
		return grid
	}

	cellW := bounds.W / float64(cols)
	cellH := bounds.H / float64(rows)
	for _, r := range rects {
		c0 := clamp(int((r.X-bounds.X)/cellW), 0, cols-1)
		c1 := clamp(int(math.Ceil((r.X+r.W-bounds.X)/cellW))-1, 0, cols-1)
		r0 := clamp(int((r.Y-bounds.Y)/cellH), 0, rows-1)
		r1 := clamp(int(math.Ceil((r.Y+r.H-bounds.Y)/cellH))-1, 0, rows-1)
		for row := r0; row <= r1; row++ {
			for col := c0; col <= c1; col++ {
				grid[row][col] = true
			}
		}
	}
	return grid
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
