package handlers

import (
	"github.com/gorilla/schema"

	"github.com/vancomm/minefield/internal/mines"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

type newGameQuery struct {
	Rows       int    `schema:"rows"`
	Columns    int    `schema:"columns"`
	Difficulty string `schema:"difficulty"`
	MineCount  *int   `schema:"mine_count"`
	Seed       string `schema:"seed"`
}

func decodeNewGame(src map[string][]string) (mines.GameParams, error) {
	var q newGameQuery
	if err := decoder.Decode(&q, src); err != nil {
		return mines.GameParams{}, err
	}

	var params mines.GameParams
	if q.Seed != "" {
		p, err := mines.ParseSeed(q.Seed)
		if err != nil {
			return mines.GameParams{}, err
		}
		params = *p
	} else {
		d, err := mines.ParseDifficulty(q.Difficulty)
		if err != nil {
			return mines.GameParams{}, err
		}
		params = mines.GameParams{
			Rows:       q.Rows,
			Columns:    q.Columns,
			Difficulty: d,
			MineCount:  q.MineCount,
		}
	}

	return params, params.Validate()
}

type moveQuery struct {
	Move string `schema:"move,required"`
	Row  int    `schema:"row,required"`
	Col  int    `schema:"col,required"`
}

func decodeMove(src map[string][]string) (Move, mines.Point, error) {
	var q moveQuery
	if err := decoder.Decode(&q, src); err != nil {
		return 0, mines.Point{}, err
	}
	move, err := ParseMove(q.Move)
	if err != nil {
		return 0, mines.Point{}, err
	}
	return move, mines.Point{Row: q.Row, Col: q.Col}, nil
}

type openedCell struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value string `json:"value"`
}

func openedCells(f mines.Flood) []openedCell {
	if len(f) == 0 {
		return nil
	}
	cells := make([]openedCell, 0, len(f))
	for _, p := range f.Points() {
		cells = append(cells, openedCell{Row: p.Row, Col: p.Col, Value: f[p].String()})
	}
	return cells
}

type gameResponse struct {
	ID     string       `json:"id"`
	Token  string       `json:"token,omitempty"`
	Seed   string       `json:"seed"`
	Game   mines.View   `json:"game"`
	Opened []openedCell `json:"opened,omitempty"`
}
