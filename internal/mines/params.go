package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type GameParams struct {
	Rows, Columns int
	Difficulty    Difficulty
	MineCount     *int // overrides Difficulty when set
}

// Mines is a helper for setting [GameParams.MineCount].
func Mines(n int) *int {
	return &n
}

const (
	// MaxCells bounds the area of any grid.
	MaxCells = 1 << 20
	// MaxDimension bounds each side of a generated game.
	MaxDimension = 512
)

func validateSize(rows, columns int) error {
	if rows <= 0 {
		return invalid("rows", fmt.Sprintf("must be positive, got %d", rows))
	}
	if columns <= 0 {
		return invalid("columns", fmt.Sprintf("must be positive, got %d", columns))
	}
	// division keeps the check free of overflow
	if rows > MaxCells/columns {
		return invalid("rows", fmt.Sprintf("%d x %d exceeds %d cells", rows, columns, MaxCells))
	}
	return nil
}

func (p GameParams) Validate() error {
	if err := validateSize(p.Rows, p.Columns); err != nil {
		return err
	}
	if p.Rows > MaxDimension {
		return invalid("rows", fmt.Sprintf("at most %d, got %d", MaxDimension, p.Rows))
	}
	if p.Columns > MaxDimension {
		return invalid("columns", fmt.Sprintf("at most %d, got %d", MaxDimension, p.Columns))
	}
	if p.MineCount != nil {
		n, total := *p.MineCount, p.Rows*p.Columns
		if n < 0 || n > total {
			return invalid("mine_count", fmt.Sprintf("must be within 0..%d, got %d", total, n))
		}
		return nil
	}
	if _, err := ParseDifficulty(string(p.Difficulty)); err != nil {
		return err
	}
	return nil
}

// ResolveMineCount validates p and returns the number of mines to place.
func (p GameParams) ResolveMineCount(table DifficultyTable) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if p.MineCount != nil {
		return *p.MineCount, nil
	}
	d, _ := ParseDifficulty(string(p.Difficulty))
	return table.MineCount(d, p.Rows*p.Columns)
}

func (p GameParams) PointInBounds(pt Point) bool {
	return 0 <= pt.Row && pt.Row < p.Rows && 0 <= pt.Col && pt.Col < p.Columns
}

// Seed encodes p as rows:columns:difficulty[:mines].
func (p GameParams) Seed() string {
	d := p.Difficulty
	if d == "" {
		d = Easy
	}
	seed := fmt.Sprintf("%d:%d:%s", p.Rows, p.Columns, d)
	if p.MineCount != nil {
		seed += ":" + strconv.Itoa(*p.MineCount)
	}
	return seed
}

func ParseSeed(seed string) (*GameParams, error) {
	parts := strings.Split(seed, ":")
	if len(parts) != 3 && len(parts) != 4 {
		return nil, fmt.Errorf(`invalid game params seed %q: want rows:columns:difficulty[:mines]`, seed)
	}
	rows, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid game params seed %q: rows: %w", seed, err)
	}
	columns, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid game params seed %q: columns: %w", seed, err)
	}
	d, err := ParseDifficulty(parts[2])
	if err != nil {
		return nil, err
	}
	p := &GameParams{Rows: rows, Columns: columns, Difficulty: d}
	if len(parts) == 4 {
		n, err := strconv.Atoi(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid game params seed %q: mines: %w", seed, err)
		}
		p.MineCount = &n
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
