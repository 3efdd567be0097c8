package mines

import (
	"fmt"
	"maps"
	"slices"
)

// Flood is the outcome of a reveal: every coordinate to mark revealed,
// with the value it shows.
type Flood map[Point]Cell

// RevealFrom computes the squares opened by revealing origin. Zero-count
// squares expand into all their neighbours; numbered squares are included
// but stop the expansion. The origin must be in bounds and not a mine.
func RevealFrom(g *Grid, origin Point) (Flood, error) {
	return floodFrom(g, origin, nil)
}

// floodFrom is [RevealFrom] with squares the flood must neither enter nor
// pass through. blocked may be nil.
func floodFrom(g *Grid, origin Point, blocked func(Point) bool) (Flood, error) {
	c, ok := g.At(origin)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrOutOfBounds, origin)
	}
	if c.IsMine() {
		return nil, fmt.Errorf("%w at %v", ErrMineOrigin, origin)
	}

	flood := Flood{origin: c}
	if c != 0 {
		return flood, nil
	}

	// flood doubles as the visited set; only zero cells are ever queued
	queue := []Point{origin}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for q := range g.Neighbors(p) {
			if _, seen := flood[q]; seen {
				continue
			}
			if blocked != nil && blocked(q) {
				continue
			}
			v := g.cells[g.index(q)]
			if v.IsMine() {
				continue
			}
			flood[q] = v
			if v == 0 {
				queue = append(queue, q)
			}
		}
	}

	return flood, nil
}

// Merge returns a new Flood holding the union of f and other.
func (f Flood) Merge(other Flood) Flood {
	out := make(Flood, len(f)+len(other))
	maps.Copy(out, f)
	maps.Copy(out, other)
	return out
}

// Points returns the coordinates of f in row-major order.
func (f Flood) Points() []Point {
	return slices.SortedFunc(maps.Keys(f), comparePoints)
}
