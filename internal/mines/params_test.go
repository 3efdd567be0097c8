package mines

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	tests := []struct {
		params GameParams
		seed   string
	}{
		{GameParams{Rows: 9, Columns: 9, Difficulty: Easy}, "9:9:easy"},
		{GameParams{Rows: 16, Columns: 30, Difficulty: Hard, MineCount: Mines(99)}, "16:30:hard:99"},
		{GameParams{Rows: 3, Columns: 4}, "3:4:easy"},
	}
	for _, test := range tests {
		t.Run(test.seed, func(t *testing.T) {
			assert.Equal(t, test.seed, test.params.Seed())

			p, err := ParseSeed(test.seed)
			require.NoError(t, err)
			assert.Equal(t, test.seed, p.Seed())
		})
	}
}

func TestParseSeedErrors(t *testing.T) {
	for _, seed := range []string{
		"",
		"9:9",
		"a:9:easy",
		"9:b:easy",
		"9:9:insane",
		"9:9:easy:z",
		"9:9:easy:82",
		"0:9:easy",
		"1:2:3:4:5",
	} {
		_, err := ParseSeed(seed)
		assert.Error(t, err, "seed %q", seed)
	}
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty(" Medium ")
	require.NoError(t, err)
	assert.Equal(t, Medium, d)

	d, err = ParseDifficulty("")
	require.NoError(t, err)
	assert.Equal(t, Easy, d)

	_, err = ParseDifficulty("extreme")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "difficulty", ve.Field)
}

func TestDifficultyTableValidate(t *testing.T) {
	assert.NoError(t, DefaultTable.Validate())
	assert.NoError(t, DifficultyTable{Easy: 15, Medium: 25, Hard: 40}.Validate())

	assert.Error(t, DifficultyTable{Easy: 9, Medium: 15, Hard: 20}.Validate())
	assert.Error(t, DifficultyTable{Easy: 10, Medium: 26, Hard: 20}.Validate())
	assert.Error(t, DifficultyTable{Easy: 10, Medium: 15, Hard: 41}.Validate())
	assert.Error(t, DifficultyTable{Easy: 10, Medium: 15}.Validate())
}

func TestPointInBounds(t *testing.T) {
	p := GameParams{Rows: 2, Columns: 3}
	assert.True(t, p.PointInBounds(Point{1, 2}))
	assert.False(t, p.PointInBounds(Point{2, 0}))
	assert.False(t, p.PointInBounds(Point{0, 3}))
	assert.False(t, p.PointInBounds(Point{-1, 0}))
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "x", Mine.String())
	assert.Equal(t, "0", Cell(0).String())
	assert.Equal(t, "8", Cell(8).String())

	n, ok := Cell(3).Count()
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	_, ok = Mine.Count()
	assert.False(t, ok)
}

func TestValidateRejectsOversizedGrids(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params GameParams
		field  string
	}{
		{"overflowing area", GameParams{Rows: math.MaxInt/4 + 1, Columns: 4}, "rows"},
		{"overflowing area with count", GameParams{Rows: 4, Columns: math.MaxInt/4 + 1, MineCount: Mines(1)}, "rows"},
		{"huge square", GameParams{Rows: 50000, Columns: 50000}, "rows"},
		{"tall", GameParams{Rows: MaxDimension + 1, Columns: 2}, "rows"},
		{"wide", GameParams{Rows: 2, Columns: MaxDimension + 1}, "columns"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			var ve *ValidationError
			require.ErrorAs(t, test.params.Validate(), &ve)
			assert.Equal(t, test.field, ve.Field)

			g, err := Generate(test.params, nil)
			assert.Nil(t, g)
			assert.ErrorAs(t, err, &ve)
		})
	}

	assert.NoError(t, GameParams{Rows: MaxDimension, Columns: MaxDimension}.Validate())
}

func TestNewGridRejectsOverflow(t *testing.T) {
	_, err := NewGrid(math.MaxInt/4+1, 4, nil)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = NewGrid(MaxCells, 2, nil)
	assert.ErrorAs(t, err, &ve)
}

func TestParseSeedRejectsOversized(t *testing.T) {
	_, err := ParseSeed("4611686018427387904:4:easy")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
