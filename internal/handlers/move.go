package handlers

import (
	"fmt"
	"strings"

	"github.com/vancomm/minefield/internal/mines"
)

type Move uint8

const (
	Reveal Move = iota + 1
	Flag
	Chord
)

func (m Move) String() string {
	switch m {
	case Reveal:
		return "reveal"
	case Flag:
		return "flag"
	case Chord:
		return "chord"
	default:
		return fmt.Sprintf("Move(%d)", m)
	}
}

var ErrBadMove = fmt.Errorf("move must be one of 'reveal', 'flag', 'chord'")

func ParseMove(s string) (move Move, err error) {
	switch strings.ToLower(s) {
	case "reveal", "open":
		move = Reveal
	case "flag":
		move = Flag
	case "chord":
		move = Chord
	default:
		err = ErrBadMove
	}
	return
}

// Apply plays m at p and returns the squares it opened.
func (m Move) Apply(game *mines.GameState, p mines.Point) (mines.Flood, error) {
	switch m {
	case Reveal:
		return game.Reveal(p)
	case Flag:
		_, err := game.Flag(p)
		return nil, err
	case Chord:
		return game.Chord(p)
	default:
		return nil, ErrBadMove
	}
}
