package mines

import "math/rand/v2"

// ShuffleFunc permutes n elements through swap, like [rand.Shuffle]. It is
// the generator's only source of randomness.
type ShuffleFunc func(n int, swap func(i, j int))

// ShuffleWith adapts r. The returned func shares r and is therefore no
// safer for concurrent use than r itself.
func ShuffleWith(r *rand.Rand) ShuffleFunc {
	return r.Shuffle
}

type Generator struct {
	Table   DifficultyTable
	Shuffle ShuffleFunc
}

// Generate places the mines for p uniformly at random and computes the
// adjacency counts of every other cell.
func (gen Generator) Generate(p GameParams) (*Grid, error) {
	table := gen.Table
	if table == nil {
		table = DefaultTable
	}
	mineCount, err := p.ResolveMineCount(table)
	if err != nil {
		return nil, err
	}

	total := p.Rows * p.Columns
	layout := make([]bool, total)
	for i := range mineCount {
		layout[i] = true
	}
	if gen.Shuffle != nil {
		gen.Shuffle(total, func(i, j int) {
			layout[i], layout[j] = layout[j], layout[i]
		})
	}

	return fromLayout(p.Rows, p.Columns, layout), nil
}

// Generate uses [DefaultTable].
func Generate(p GameParams, shuffle ShuffleFunc) (*Grid, error) {
	return Generator{Shuffle: shuffle}.Generate(p)
}
