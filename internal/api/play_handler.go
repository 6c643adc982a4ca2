package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/flipdot/flipdot-studio/internal/logging"
	"github.com/flipdot/flipdot-studio/internal/playback"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return isLoopbackRemoteAddr(r.RemoteAddr)
		}
		return isAllowedOrigin(origin)
	},
}

// playHandler streams the project's frames over a websocket at the frame
// duration. The optional "loops" query parameter bounds the number of passes.
func playHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loops := 0
		if v := r.URL.Query().Get("loops"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				WriteError(w, http.StatusBadRequest, "loops must be a non-negative integer", "BAD_REQUEST")
				return
			}
			loops = n
		}

		p, err := cfg.Studio.GetProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cfg.Logger.Warn("websocket upgrade failed", "error", err, "project_id", p.ID)
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sink := playback.NewWebSocketSink(conn)
		sink.CancelOnDisconnect(cancel)

		player := &playback.Player{
			Frames:        p.Frames,
			FrameDuration: p.Settings.FrameDuration(),
			Loops:         loops,
			Sink:          sink,
			Logger:        logging.WithProjectID(cfg.Logger, p.ID),
			Metrics:       cfg.Metrics,
		}

		err = player.Run(ctx)
		switch {
		case err == nil:
			sink.Close("playback finished")
		case errors.Is(err, context.Canceled):
		default:
			cfg.Logger.Warn("playback stopped", "error", err, "project_id", p.ID)
		}
	}
}
