package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/vancomm/minefield/internal/mines"
	"github.com/vancomm/minefield/internal/session"
)

type wsCommand string

const (
	wsNoop    wsCommand = "g"
	wsOpen    wsCommand = "o"
	wsFlag    wsCommand = "f"
	wsChord   wsCommand = "c"
	wsForfeit wsCommand = "q"
	wsRestart wsCommand = "n"
)

var errUnknownCommand = errors.New("unknown command")

type wsReply struct {
	Game   *mines.View  `json:"game,omitempty"`
	Seed   string       `json:"seed,omitempty"`
	Opened []openedCell `json:"opened,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// gameExecutor runs text commands against one session.
type gameExecutor struct {
	registry *session.Registry
	session  *session.Session
}

func parsePoint(args []string) (p mines.Point, err error) {
	if len(args) != 2 {
		err = fmt.Errorf("expected row and column")
		return
	}
	if p.Row, err = strconv.Atoi(args[0]); err != nil {
		err = fmt.Errorf("row must be an int")
		return
	}
	if p.Col, err = strconv.Atoi(args[1]); err != nil {
		err = fmt.Errorf("column must be an int")
		return
	}
	return
}

func (e *gameExecutor) play(move Move, args []string) (mines.Flood, error) {
	p, err := parsePoint(args)
	if err != nil {
		return nil, err
	}
	var opened mines.Flood
	err = e.session.Do(func(game *mines.GameState) error {
		opened, err = move.Apply(game, p)
		return err
	})
	return opened, err
}

// execute runs a single command line and returns the squares it opened.
func (e *gameExecutor) execute(line string) (mines.Flood, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil, nil
	}
	cmd, args := wsCommand(tokens[0]), tokens[1:]
	switch cmd {
	case wsNoop:
		return nil, nil
	case wsOpen:
		return e.play(Reveal, args)
	case wsFlag:
		return e.play(Flag, args)
	case wsChord:
		return e.play(Chord, args)
	case wsForfeit:
		return nil, e.session.Do(func(game *mines.GameState) error {
			game.Forfeit()
			return nil
		})
	case wsRestart:
		_, err := e.registry.Restart(e.session.ID)
		return nil, err
	default:
		return nil, fmt.Errorf("%w %q", errUnknownCommand, cmd)
	}
}

// run handles one message, which may hold several newline separated
// commands. Processing stops at the first failing command.
func (e *gameExecutor) run(message string) wsReply {
	var reply wsReply
	opened := mines.Flood{}
	for _, line := range strings.Split(strings.TrimSpace(message), "\n") {
		flood, err := e.execute(line)
		if err != nil {
			reply.Error = err.Error()
			break
		}
		opened = opened.Merge(flood)
	}
	_ = e.session.Do(func(game *mines.GameState) error {
		view := game.View()
		reply.Game = &view
		reply.Seed = game.Params.Seed()
		return nil
	})
	reply.Opened = openedCells(opened)
	return reply
}

func (h *GameHandler) wsRunGameLoop(conn *websocket.Conn, exec *gameExecutor) error {
	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.TextMessage {
			return nil
		}

		reply := exec.run(string(buf))
		if reply.Error != "" {
			h.log.WithField("session", exec.session.ID).Debug("ws command failed: " + reply.Error)
		}

		if err := conn.WriteJSON(reply); err != nil {
			return fmt.Errorf("unable to write json: %w", err)
		}
	}
}

func (h *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	s, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}

	conn, err := h.ws.Upgrader.Upgrade(w, r, nil) // headers sent here
	if err != nil {
		h.log.WithError(err).Error("unable to upgrade")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(h.ws.ReadLimit)

	log := h.log.WithField("session", s.ID)
	log.Debug("established ws connection")

	exec := &gameExecutor{registry: h.registry, session: s}
	if err := h.wsRunGameLoop(conn, exec); err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return
		}
		log.WithError(err).Warn("abnormal ws break")
	}
}
