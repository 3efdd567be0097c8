package mines

import "fmt"

// GameState is the caller-side half of a game: an immutable [Grid] plus the
// player's visibility grid and the Playing/GameOver/Won state machine. It is
// not safe for concurrent use.
type GameState struct {
	Params GameParams

	grid     *Grid
	visible  []Visibility
	status   Status
	exploded *Point
}

func NewGame(params GameParams, grid *Grid) *GameState {
	return &GameState{
		Params:  params,
		grid:    grid,
		visible: make([]Visibility, grid.Size()),
	}
}

// NewGameFrom generates a grid for params and starts a game on it.
func NewGameFrom(gen Generator, params GameParams) (*GameState, error) {
	grid, err := gen.Generate(params)
	if err != nil {
		return nil, err
	}
	return NewGame(params, grid), nil
}

func (s *GameState) Grid() *Grid    { return s.grid }
func (s *GameState) Status() Status { return s.status }
func (s *GameState) Over() bool     { return s.status != Playing }

func (s *GameState) Visibility(p Point) (Visibility, bool) {
	if !s.grid.InBounds(p) {
		return Hidden, false
	}
	return s.visible[s.grid.index(p)], true
}

// Exploded returns the mine that ended the game, if any.
func (s *GameState) Exploded() (Point, bool) {
	if s.exploded == nil {
		return Point{}, false
	}
	return *s.exploded, true
}

func (s *GameState) FlagCount() (n int) {
	for _, v := range s.visible {
		if v == Flagged {
			n++
		}
	}
	return
}

func (s *GameState) checkPoint(p Point) error {
	if !s.grid.InBounds(p) {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, p)
	}
	return nil
}

// Reveal opens p. Revealing a flagged or already revealed square, or any
// square once the game is over, does nothing. Revealing a mine ends the
// game and exposes every mine. The returned Flood lists the squares that
// were opened, nil if none.
func (s *GameState) Reveal(p Point) (Flood, error) {
	if err := s.checkPoint(p); err != nil {
		return nil, err
	}
	if s.Over() || s.visible[s.grid.index(p)] != Hidden {
		return nil, nil
	}

	if c, _ := s.grid.At(p); c.IsMine() {
		s.explode(p)
		return nil, nil
	}

	// flags stay put and wall off the squares behind them
	flood, err := floodFrom(s.grid, p, func(q Point) bool {
		return s.visible[s.grid.index(q)] == Flagged
	})
	if err != nil {
		return nil, err
	}
	opened := make(Flood, len(flood))
	for q, c := range flood {
		if i := s.grid.index(q); s.visible[i] == Hidden {
			s.visible[i] = Revealed
			opened[q] = c
		}
	}
	s.checkWon()
	return opened, nil
}

// Flag toggles p between Hidden and Flagged and returns its new visibility.
// Revealed squares and finished games are left alone.
func (s *GameState) Flag(p Point) (Visibility, error) {
	if err := s.checkPoint(p); err != nil {
		return Hidden, err
	}
	i := s.grid.index(p)
	if s.Over() {
		return s.visible[i], nil
	}
	switch s.visible[i] {
	case Hidden:
		s.visible[i] = Flagged
	case Flagged:
		s.visible[i] = Hidden
	}
	return s.visible[i], nil
}

// Chord reveals every hidden neighbour of a revealed numbered square once
// the player has placed as many flags around it as its number.
func (s *GameState) Chord(p Point) (Flood, error) {
	if err := s.checkPoint(p); err != nil {
		return nil, err
	}
	if s.Over() || s.visible[s.grid.index(p)] != Revealed {
		return nil, nil
	}
	c, _ := s.grid.At(p)
	n, ok := c.Count()
	if !ok || n == 0 {
		return nil, nil
	}

	var flags int
	var hidden []Point
	for q := range s.grid.Neighbors(p) {
		switch s.visible[s.grid.index(q)] {
		case Flagged:
			flags++
		case Hidden:
			hidden = append(hidden, q)
		}
	}
	if flags != n {
		return nil, nil
	}

	opened := Flood{}
	for _, q := range hidden {
		flood, err := s.Reveal(q)
		if err != nil {
			return nil, err
		}
		opened = opened.Merge(flood)
		if s.Over() {
			break
		}
	}
	return opened, nil
}

// Forfeit ends a game in progress as lost and exposes the mines.
func (s *GameState) Forfeit() {
	if s.Over() {
		return
	}
	s.status = GameOver
	s.revealMines()
}

func (s *GameState) explode(p Point) {
	s.status = GameOver
	s.exploded = &p
	s.revealMines()
}

func (s *GameState) revealMines() {
	for i, c := range s.grid.cells {
		if c.IsMine() {
			s.visible[i] = Revealed
		}
	}
}

// checkWon finishes the game once every safe square is revealed and flags
// the remaining mines.
func (s *GameState) checkWon() {
	covered := 0
	for _, v := range s.visible {
		if v != Revealed {
			covered++
		}
	}
	if covered != s.grid.mines {
		return
	}
	for i, c := range s.grid.cells {
		if c.IsMine() {
			s.visible[i] = Flagged
		}
	}
	s.status = Won
}
