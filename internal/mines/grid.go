package mines

import (
	"fmt"
	"iter"
	"strings"
)

// Grid is a generated mine layout with adjacency counts. It is never
// mutated after construction; a new game means a new Grid.
type Grid struct {
	rows, columns int
	mines         int
	cells         []Cell // row-major
}

// NewGrid builds a grid with mines at exactly the given points.
func NewGrid(rows, columns int, mines []Point) (*Grid, error) {
	if err := validateSize(rows, columns); err != nil {
		return nil, err
	}
	layout := make([]bool, rows*columns)
	for _, p := range mines {
		if p.Row < 0 || p.Row >= rows || p.Col < 0 || p.Col >= columns {
			return nil, fmt.Errorf("%w: mine at %v", ErrOutOfBounds, p)
		}
		layout[p.Row*columns+p.Col] = true
	}
	return fromLayout(rows, columns, layout), nil
}

// fromLayout computes neighbour counts for a flat row-major mine layout.
func fromLayout(rows, columns int, layout []bool) *Grid {
	g := &Grid{
		rows:    rows,
		columns: columns,
		cells:   make([]Cell, len(layout)),
	}
	for i, mined := range layout {
		if mined {
			g.cells[i] = Mine
			g.mines++
		}
	}
	for i, c := range g.cells {
		if c.IsMine() {
			continue
		}
		var n Cell
		for q := range g.Neighbors(g.point(i)) {
			if layout[g.index(q)] {
				n++
			}
		}
		g.cells[i] = n
	}
	return g
}

func (g *Grid) Rows() int      { return g.rows }
func (g *Grid) Columns() int   { return g.columns }
func (g *Grid) Size() int      { return len(g.cells) }
func (g *Grid) MineCount() int { return g.mines }

func (g *Grid) InBounds(p Point) bool {
	return 0 <= p.Row && p.Row < g.rows && 0 <= p.Col && p.Col < g.columns
}

// At returns the cell at p. Out-of-bounds lookups are absent, not errors.
func (g *Grid) At(p Point) (Cell, bool) {
	if !g.InBounds(p) {
		return 0, false
	}
	return g.cells[g.index(p)], true
}

// Neighbors yields the in-bounds points of the 8-neighbourhood of p.
func (g *Grid) Neighbors(p Point) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				q := Point{p.Row + dr, p.Col + dc}
				if !g.InBounds(q) {
					continue
				}
				if !yield(q) {
					return
				}
			}
		}
	}
}

// Mines lists mine coordinates in row-major order.
func (g *Grid) Mines() []Point {
	points := make([]Point, 0, g.mines)
	for i, c := range g.cells {
		if c.IsMine() {
			points = append(points, g.point(i))
		}
	}
	return points
}

// Cells returns a copy of the layout chunked into rows.
func (g *Grid) Cells() [][]Cell {
	out := make([][]Cell, g.rows)
	for r := range g.rows {
		out[r] = make([]Cell, g.columns)
		copy(out[r], g.cells[r*g.columns:(r+1)*g.columns])
	}
	return out
}

// Grid implements [fmt.Stringer]
func (g *Grid) String() string {
	var b strings.Builder
	for r := range g.rows {
		for c := range g.columns {
			if c > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(g.cells[r*g.columns+c].String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (g *Grid) index(p Point) int {
	return p.Row*g.columns + p.Col
}

func (g *Grid) point(i int) Point {
	return Point{Row: i / g.columns, Col: i % g.columns}
}
