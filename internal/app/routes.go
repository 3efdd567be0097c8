package app

import (
	"net/http"

	"github.com/vancomm/minefield/internal/handlers"
)

func (a *App) loadRoutes() {
	game := handlers.NewGameHandler(a.logger, a.registry, a.jwt, a.ws)
	game.Register(a.router)

	a.router.Handle("POST /mcp", a.mcp)
	a.router.HandleFunc("GET /status", a.status)
}

func (a *App) status(w http.ResponseWriter, r *http.Request) {
	handlers.SendJSONOrLog(w, a.logger, map[string]int{
		"games": a.registry.Len(),
	})
}
