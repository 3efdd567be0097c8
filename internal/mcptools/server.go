// Package mcptools exposes minefield games as MCP tools, so that a language
// model client can play over stdio or the /mcp HTTP endpoint.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/mines"
	"github.com/vancomm/minefield/internal/session"
)

const instructions = `Minesweeper - MCP Interface

Start with new_game and keep the returned game_id and token; every other
tool needs both. Rows and columns are zero based.

BOARD LEGEND:
- "." hidden square
- "F" flag
- "0".."8" number of adjacent mines
- "x" mine (only shown once the game is over)

AVAILABLE TOOLS:
- new_game: deal a board by size and difficulty (easy, medium, hard) or explicit mine count
- reveal: open a square; opening a 0 floods its empty region
- flag: toggle a flag on a hidden square
- chord: open the neighbours of a number whose flags are all placed
- board: show the current board
- restart: deal a new board with the same parameters`

type Server struct {
	log      logrus.FieldLogger
	registry *session.Registry
	jwt      *config.JWT
	mcp      *server.MCPServer
}

func New(log logrus.FieldLogger, registry *session.Registry, jwt *config.JWT, version string) *Server {
	s := &Server{
		log:      log,
		registry: registry,
		jwt:      jwt,
		mcp: server.NewMCPServer(
			"Minefield",
			version,
			server.WithToolCapabilities(true),
			server.WithInstructions(instructions),
		),
	}
	s.registerTools()
	return s
}

var gameProps = map[string]interface{}{
	"game_id": map[string]interface{}{
		"type":        "string",
		"description": "Game id returned by new_game",
	},
	"token": map[string]interface{}{
		"type":        "string",
		"description": "Game token returned by new_game",
	},
}

func withGame(props map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(props)+len(gameProps))
	for k, v := range gameProps {
		out[k] = v
	}
	for k, v := range props {
		out[k] = v
	}
	return out
}

var pointProps = map[string]interface{}{
	"row": map[string]interface{}{
		"type":        "integer",
		"description": "Zero based row",
	},
	"col": map[string]interface{}{
		"type":        "integer",
		"description": "Zero based column",
	},
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new game and get its id and token",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"rows": map[string]interface{}{
					"type":        "integer",
					"description": "Number of rows",
				},
				"columns": map[string]interface{}{
					"type":        "integer",
					"description": "Number of columns",
				},
				"difficulty": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"easy", "medium", "hard"},
					"description": "Mine density, easy when omitted",
				},
				"mine_count": map[string]interface{}{
					"type":        "integer",
					"description": "Exact number of mines, overrides difficulty",
				},
			},
			Required: []string{"rows", "columns"},
		},
	}, s.handleNewGame)

	s.mcp.AddTool(mcp.Tool{
		Name:        "reveal",
		Description: "Reveal a square",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: withGame(pointProps),
			Required:   []string{"game_id", "token", "row", "col"},
		},
	}, s.moveHandler(revealMove))

	s.mcp.AddTool(mcp.Tool{
		Name:        "flag",
		Description: "Toggle a flag on a hidden square",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: withGame(pointProps),
			Required:   []string{"game_id", "token", "row", "col"},
		},
	}, s.moveHandler(flagMove))

	s.mcp.AddTool(mcp.Tool{
		Name:        "chord",
		Description: "Reveal the hidden neighbours of a revealed number once all its flags are placed",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: withGame(pointProps),
			Required:   []string{"game_id", "token", "row", "col"},
		},
	}, s.moveHandler(chordMove))

	s.mcp.AddTool(mcp.Tool{
		Name:        "board",
		Description: "Show the current board",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: withGame(nil),
			Required:   []string{"game_id", "token"},
		},
	}, s.handleBoard)

	s.mcp.AddTool(mcp.Tool{
		Name:        "restart",
		Description: "Deal a new board with the same size and mine count",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: withGame(nil),
			Required:   []string{"game_id", "token"},
		},
	}, s.handleRestart)
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument. ok is false when it is absent.
func intArg(args map[string]interface{}, name string) (n int, ok bool, err error) {
	v, present := args[name]
	if !present || v == nil {
		return 0, false, nil
	}
	f, isNum := v.(float64)
	if !isNum || f < math.MinInt32 || f > math.MaxInt32 || f != math.Trunc(f) {
		return 0, false, fmt.Errorf("%s must be a 32-bit integer", name)
	}
	return int(f), true, nil
}

// authorize resolves the session named by game_id, checking that token
// grants it.
func (s *Server) authorize(args map[string]interface{}) (*session.Session, error) {
	id, _ := args["game_id"].(string)
	token, _ := args["token"].(string)
	if id == "" || token == "" {
		return nil, fmt.Errorf("game_id and token are required")
	}
	granted, err := s.jwt.ParseGameToken(token)
	if err != nil || granted != id {
		return nil, fmt.Errorf("token does not grant game %s", id)
	}
	return s.registry.Get(id)
}

func format(id string, game *mines.GameState, opened mines.Flood) string {
	view := game.View()

	var b strings.Builder
	fmt.Fprintf(&b, "game %s (%s): %s, %d mines, %d flags\n",
		id, game.Params.Seed(), view.Status, view.Mines, view.Flags)
	if len(opened) > 0 {
		fmt.Fprintf(&b, "opened %d squares\n", len(opened))
	}
	if p, ok := game.Exploded(); ok {
		fmt.Fprintf(&b, "exploded at %v\n", p)
	}
	b.WriteString(view.String())
	return b.String()
}

func (s *Server) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var params mines.GameParams
	var err error
	if params.Rows, _, err = intArg(args, "rows"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if params.Columns, _, err = intArg(args, "columns"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	difficulty, _ := args["difficulty"].(string)
	if params.Difficulty, err = mines.ParseDifficulty(difficulty); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, ok, err := intArg(args, "mine_count")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		params.MineCount = mines.Mines(n)
	}

	sess, err := s.registry.Create(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	token, err := s.jwt.IssueGameToken(sess.ID)
	if err != nil {
		s.registry.Remove(sess.ID)
		s.log.WithError(err).Error("unable to issue game token")
		return nil, err
	}

	var text string
	_ = sess.Do(func(game *mines.GameState) error {
		text = format(sess.ID, game, nil)
		return nil
	})
	return mcp.NewToolResultText(fmt.Sprintf("game_id: %s\ntoken: %s\n%s", sess.ID, token, text)), nil
}

type moveFunc func(game *mines.GameState, p mines.Point) (mines.Flood, error)

func revealMove(game *mines.GameState, p mines.Point) (mines.Flood, error) {
	return game.Reveal(p)
}

func flagMove(game *mines.GameState, p mines.Point) (mines.Flood, error) {
	_, err := game.Flag(p)
	return nil, err
}

func chordMove(game *mines.GameState, p mines.Point) (mines.Flood, error) {
	return game.Chord(p)
}

func (s *Server) moveHandler(move moveFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := arguments(request)
		sess, err := s.authorize(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var p mines.Point
		var ok bool
		if p.Row, ok, err = intArg(args, "row"); err != nil || !ok {
			return mcp.NewToolResultError("row must be an integer"), nil
		}
		if p.Col, ok, err = intArg(args, "col"); err != nil || !ok {
			return mcp.NewToolResultError("col must be an integer"), nil
		}

		var text string
		err = sess.Do(func(game *mines.GameState) error {
			opened, err := move(game, p)
			if err != nil {
				return err
			}
			text = format(sess.ID, game, opened)
			return nil
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func (s *Server) handleBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.authorize(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var text string
	_ = sess.Do(func(game *mines.GameState) error {
		text = format(sess.ID, game, nil)
		return nil
	})
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.authorize(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.registry.Restart(sess.ID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var text string
	_ = sess.Do(func(game *mines.GameState) error {
		text = format(sess.ID, game, nil)
		return nil
	})
	return mcp.NewToolResultText(text), nil
}

// ServeHTTP answers JSON-RPC messages posted to the MCP endpoint.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := s.mcp.HandleMessage(r.Context(), body)
	if response == nil {
		// notifications get no reply
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.log.WithError(err).Error("failed to send mcp response")
	}
}

// ServeStdio serves MCP over in and out until in closes or ctx is done.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	errLog := s.log.WithField("transport", "stdio").WriterLevel(logrus.ErrorLevel)
	defer errLog.Close()

	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(errLog, "", 0))

	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
