package mines

import (
	"fmt"
	"strings"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

var difficulties = []Difficulty{Easy, Medium, Hard}

// ParseDifficulty accepts a tier name case-insensitively. The empty string
// selects [Easy].
func ParseDifficulty(s string) (Difficulty, error) {
	if s == "" {
		return Easy, nil
	}
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := tierRanges[d]; !ok {
		return "", invalid("difficulty", fmt.Sprintf("%q is not one of easy, medium, hard", s))
	}
	return d, nil
}

// allowed mine percentage per tier, inclusive
var tierRanges = map[Difficulty][2]int{
	Easy:   {10, 15},
	Medium: {15, 25},
	Hard:   {20, 40},
}

// DifficultyTable maps each tier to the percentage of cells that are mined.
type DifficultyTable map[Difficulty]int

var DefaultTable = DifficultyTable{
	Easy:   10,
	Medium: 15,
	Hard:   20,
}

// Validate checks that every tier is present and inside its allowed range.
func (t DifficultyTable) Validate() error {
	for _, d := range difficulties {
		pct, ok := t[d]
		if !ok {
			return invalid("difficulty table", fmt.Sprintf("missing %s", d))
		}
		bounds := tierRanges[d]
		if pct < bounds[0] || pct > bounds[1] {
			return invalid("difficulty table", fmt.Sprintf(
				"%s is %d%%, want %d..%d%%", d, pct, bounds[0], bounds[1],
			))
		}
	}
	return nil
}

// MineCount returns floor(total * percent / 100) for the tier.
func (t DifficultyTable) MineCount(d Difficulty, total int) (int, error) {
	pct, ok := t[d]
	if !ok {
		return 0, invalid("difficulty", fmt.Sprintf("no percentage for %q", d))
	}
	return total * pct / 100, nil
}
