package mines

import "strconv"

// Cell is the immutable content of a grid square. Values 0 to 8 are the
// number of mined neighbours.
type Cell int8

const Mine Cell = -1

func (c Cell) IsMine() bool {
	return c == Mine
}

// Count returns the number of mined neighbours; ok is false for a mine.
func (c Cell) Count() (n int, ok bool) {
	if c.IsMine() {
		return 0, false
	}
	return int(c), true
}

func (c Cell) String() string {
	switch {
	case c == Mine:
		return "x"
	case 0 <= c && c <= 8:
		return strconv.Itoa(int(c))
	default:
		return "!"
	}
}
