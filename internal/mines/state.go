package mines

import "fmt"

type Visibility uint8

const (
	Hidden Visibility = iota
	Flagged
	Revealed
)

func (v Visibility) String() string {
	switch v {
	case Hidden:
		return "hidden"
	case Flagged:
		return "flagged"
	case Revealed:
		return "revealed"
	default:
		return "unknown"
	}
}

type Status uint8

const (
	Playing Status = iota
	GameOver
	Won
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case GameOver:
		return "game_over"
	case Won:
		return "won"
	default:
		return "unknown"
	}
}

// [Status] implements [encoding.TextMarshaler]
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "playing":
		*s = Playing
	case "game_over":
		*s = GameOver
	case "won":
		*s = Won
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}
