package mines

import "strings"

// View is what a renderer needs to draw a game: hidden squares are blank,
// flags are "F" and revealed squares show their value.
type View struct {
	Rows     int        `json:"rows"`
	Columns  int        `json:"columns"`
	Mines    int        `json:"mines"`
	Flags    int        `json:"flags"`
	Status   Status     `json:"status"`
	Exploded *Point     `json:"exploded,omitempty"`
	Cells    [][]string `json:"cells"`
}

func (s *GameState) View() View {
	v := View{
		Rows:    s.grid.rows,
		Columns: s.grid.columns,
		Mines:   s.grid.mines,
		Flags:   s.FlagCount(),
		Status:  s.status,
		Cells:   make([][]string, s.grid.rows),
	}
	if p, ok := s.Exploded(); ok {
		v.Exploded = &p
	}
	for r := range s.grid.rows {
		row := make([]string, s.grid.columns)
		for c := range s.grid.columns {
			i := r*s.grid.columns + c
			switch s.visible[i] {
			case Hidden:
				row[c] = " "
			case Flagged:
				row[c] = "F"
			case Revealed:
				row[c] = s.grid.cells[i].String()
			}
		}
		v.Cells[r] = row
	}
	return v
}

// View implements [fmt.Stringer]
func (v View) String() string {
	var b strings.Builder
	for _, row := range v.Cells {
		for c, cell := range row {
			if c > 0 {
				b.WriteByte(' ')
			}
			if cell == " " {
				cell = "."
			}
			b.WriteString(cell)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
