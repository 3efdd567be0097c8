package handlers

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/logging"
	"github.com/vancomm/minefield/internal/mines"
	"github.com/vancomm/minefield/internal/session"
)

type fixture struct {
	mux      *http.ServeMux
	registry *session.Registry
	jwt      *config.JWT
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logging.Discard()
	reg := session.NewRegistry(session.Options{
		Rand:   rand.New(rand.NewPCG(7, 7)),
		Logger: log,
	})
	t.Cleanup(reg.Close)

	j, err := config.NewJWTWithSecret([]byte("test secret"), time.Hour)
	require.NoError(t, err)
	ws, err := config.NewWebSocket()
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewGameHandler(log, reg, j, ws).Register(mux)
	return &fixture{mux: mux, registry: reg, jwt: j}
}

func (f *fixture) do(t *testing.T, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func (f *fixture) newGame(t *testing.T, query string) gameResponse {
	t.Helper()
	w := f.do(t, "POST", "/game?"+query, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[gameResponse](t, w)
}

func TestNewGame(t *testing.T) {
	f := newFixture(t)

	resp := f.newGame(t, "rows=9&columns=9&difficulty=medium")
	assert.NotEmpty(t, resp.ID)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "9:9:medium", resp.Seed)
	assert.Equal(t, 12, resp.Game.Mines) // 81 * 15 / 100
	assert.Equal(t, mines.Playing, resp.Game.Status)
	assert.Len(t, resp.Game.Cells, 9)

	id, err := f.jwt.ParseGameToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, id)
}

func TestNewGameFromSeed(t *testing.T) {
	f := newFixture(t)
	resp := f.newGame(t, "seed=4:5:hard:3")
	assert.Equal(t, 4, resp.Game.Rows)
	assert.Equal(t, 5, resp.Game.Columns)
	assert.Equal(t, 3, resp.Game.Mines)
	assert.Equal(t, "4:5:hard:3", resp.Seed)
}

func TestNewGameBadParams(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name  string
		query string
	}{
		{"zero rows", "rows=0&columns=9"},
		{"negative columns", "rows=9&columns=-1"},
		{"too many mines", "rows=2&columns=2&mine_count=5"},
		{"unknown difficulty", "rows=9&columns=9&difficulty=insane"},
		{"not a number", "rows=abc&columns=9"},
		{"too large", "rows=100000&columns=9"},
		{"overflowing area", "rows=4611686018427387904&columns=4"},
		{"bad seed", "seed=9:9"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := f.do(t, "POST", "/game?"+test.query, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode[map[string]string](t, w), "error")
		})
	}
	assert.Equal(t, 0, f.registry.Len())
}

func TestFetch(t *testing.T) {
	f := newFixture(t)
	created := f.newGame(t, "rows=3&columns=4&mine_count=2")

	w := f.do(t, "GET", "/game/"+created.ID, created.Token)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[gameResponse](t, w)
	assert.Equal(t, created.ID, resp.ID)
	assert.Empty(t, resp.Token)
	assert.Equal(t, created.Game, resp.Game)

	w = f.do(t, "GET", "/game/"+created.ID, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFetchEvicted(t *testing.T) {
	f := newFixture(t)
	created := f.newGame(t, "rows=3&columns=3")
	f.registry.Remove(created.ID)

	w := f.do(t, "GET", "/game/"+created.ID, created.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRevealEmptyBoard(t *testing.T) {
	f := newFixture(t)
	created := f.newGame(t, "rows=3&columns=3&mine_count=0")

	w := f.do(t, "POST", "/game/"+created.ID+"/move?move=reveal&row=1&col=1", created.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[gameResponse](t, w)

	assert.Len(t, resp.Opened, 9)
	assert.Equal(t, mines.Won, resp.Game.Status)
	for _, row := range resp.Game.Cells {
		assert.Equal(t, []string{"0", "0", "0"}, row)
	}
}

func TestRevealMine(t *testing.T) {
	f := newFixture(t)
	created := f.newGame(t, "rows=1&columns=1&mine_count=1")

	w := f.do(t, "POST", "/game/"+created.ID+"/move?move=open&row=0&col=0", created.Token)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[gameResponse](t, w)

	assert.Equal(t, mines.GameOver, resp.Game.Status)
	assert.Equal(t, &mines.Point{}, resp.Game.Exploded)
	assert.Equal(t, [][]string{{"x"}}, resp.Game.Cells)
}

func TestFlagAndChord(t *testing.T) {
	f := newFixture(t)
	created := f.newGame(t, "rows=2&columns=2&mine_count=0")
	path := "/game/" + created.ID + "/move?"

	w := f.do(t, "POST", path+"move=flag&row=0&col=0", created.Token)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[gameResponse](t, w)
	assert.Equal(t, "F", resp.Game.Cells[0][0])
	assert.Equal(t, 1, resp.Game.Flags)

	// chording a hidden square does nothing
	w = f.do(t, "POST", path+"move=chord&row=1&col=1", created.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[gameResponse](t, w).Opened)

	w = f.do(t, "POST", path+"move=flag&row=0&col=0", created.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, " ", decode[gameResponse](t, w).Game.Cells[0][0])
}

func TestMoveBadRequest(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	created := f.newGame(t, "rows=3&columns=3")
	path := "/game/" + created.ID + "/move?"

	for _, query := range []string{
		"move=dig&row=0&col=0",
		"move=reveal&row=0",
		"move=reveal&row=3&col=0",
		"move=flag&row=-1&col=0",
	} {
		t.Run(query, func(t *testing.T) {
			w := f.do(t, "POST", path+query, created.Token)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestForfeitAndRestart(t *testing.T) {
	f := newFixture(t)
	created := f.newGame(t, "rows=4&columns=4&mine_count=3")

	w := f.do(t, "POST", "/game/"+created.ID+"/forfeit", created.Token)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[gameResponse](t, w)
	assert.Equal(t, mines.GameOver, resp.Game.Status)
	assert.Nil(t, resp.Game.Exploded)

	var shown int
	for _, row := range resp.Game.Cells {
		for _, c := range row {
			if c == "x" {
				shown++
			}
		}
	}
	assert.Equal(t, 3, shown)

	w = f.do(t, "POST", "/game/"+created.ID+"/restart", created.Token)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[gameResponse](t, w)
	assert.Equal(t, created.ID, resp.ID)
	assert.Equal(t, created.Seed, resp.Seed)
	assert.Equal(t, mines.Playing, resp.Game.Status)
	assert.Equal(t, created.Game.Cells, resp.Game.Cells)
}

func TestTokenIsBoundToGame(t *testing.T) {
	f := newFixture(t)
	a := f.newGame(t, "rows=3&columns=3")
	b := f.newGame(t, "rows=3&columns=3")

	w := f.do(t, "POST", "/game/"+b.ID+"/forfeit", a.Token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func dialGame(t *testing.T, srv *httptest.Server, game gameResponse) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/" + game.ID + "/connect?token=" + game.Token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg string) wsReply {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
	var reply wsReply
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestWebSocket(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.mux)
	t.Cleanup(srv.Close)

	game := f.newGame(t, "rows=3&columns=3&mine_count=0")
	conn := dialGame(t, srv, game)

	reply := roundTrip(t, conn, "g")
	require.NotNil(t, reply.Game)
	assert.Empty(t, reply.Error)
	assert.Equal(t, mines.Playing, reply.Game.Status)
	assert.Equal(t, "3:3:easy:0", reply.Seed)

	reply = roundTrip(t, conn, "f 0 0\no 2 2")
	require.NotNil(t, reply.Game)
	assert.Len(t, reply.Opened, 8)
	assert.Equal(t, "F", reply.Game.Cells[0][0])
	assert.Equal(t, mines.Playing, reply.Game.Status)

	reply = roundTrip(t, conn, "o 0 0")
	assert.Empty(t, reply.Opened, "flagged squares stay closed")

	reply = roundTrip(t, conn, "f 0 0\no 0 0")
	assert.Equal(t, mines.Won, reply.Game.Status)

	reply = roundTrip(t, conn, "n")
	assert.Equal(t, mines.Playing, reply.Game.Status)

	reply = roundTrip(t, conn, "q")
	assert.Equal(t, mines.GameOver, reply.Game.Status)
}

func TestWebSocketErrors(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.mux)
	t.Cleanup(srv.Close)

	game := f.newGame(t, "rows=3&columns=3&mine_count=0")
	conn := dialGame(t, srv, game)

	for _, msg := range []string{"z", "o 1", "o a 1", "f 1 b", "c 9 9"} {
		reply := roundTrip(t, conn, msg)
		assert.NotEmpty(t, reply.Error, msg)
		require.NotNil(t, reply.Game, msg)
	}

	// a failing line stops the batch
	reply := roundTrip(t, conn, "z\no 0 0")
	assert.NotEmpty(t, reply.Error)
	assert.Empty(t, reply.Opened)
	assert.Equal(t, mines.Playing, reply.Game.Status)
}

func TestWebSocketRequiresToken(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.mux)
	t.Cleanup(srv.Close)

	game := f.newGame(t, "rows=3&columns=3")
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/" + game.ID + "/connect"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
