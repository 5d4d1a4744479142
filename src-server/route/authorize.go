package route

import (
	"errors"
	"log/slog"
	"net/http"

	"pocketbot/src-server/oauth"
	"pocketbot/src-server/utils"
)

// Authorize serves the redirect target Pocket sends users to after they
// approve the bot. The body is always empty; the chat room gets the outcome.
func Authorize(muxer *http.ServeMux, as *utils.AppState) {
	missingState := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}
	muxer.HandleFunc("GET /authorize", missingState)
	muxer.HandleFunc("GET /authorize/{$}", missingState)

	muxer.HandleFunc("GET /authorize/{request_state}", func(w http.ResponseWriter, r *http.Request) {
		requestState := r.PathValue("request_state")
		if requestState == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		err := as.Flow.CompleteLogin(r.Context(), requestState)
		switch {
		case errors.Is(err, oauth.ErrUnknownFlow):
			slog.Debug("callback for unknown login", "state", requestState)
			w.WriteHeader(http.StatusBadRequest)
			return
		case err != nil:
			slog.Warn("can't complete login", "state", requestState, "error", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}
