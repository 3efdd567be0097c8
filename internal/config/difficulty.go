package config

import (
	"fmt"
	"maps"
	"os"
	"strconv"

	"github.com/vancomm/minefield/internal/mines"
)

var difficultyEnv = map[mines.Difficulty]string{
	mines.Easy:   "MINES_EASY_PERCENT",
	mines.Medium: "MINES_MEDIUM_PERCENT",
	mines.Hard:   "MINES_HARD_PERCENT",
}

// NewDifficultyTable starts from [mines.DefaultTable] and applies any
// MINES_*_PERCENT overrides.
func NewDifficultyTable() (mines.DifficultyTable, error) {
	table := maps.Clone(mines.DefaultTable)
	for d, key := range difficultyEnv {
		s, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		pct, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("unable to parse %s: %w", key, err)
		}
		table[d] = pct
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
