package handler

import (
	"net/http"

	"weekly-agenda-api/internal/store"
	"weekly-agenda-api/internal/webutil"
)

// Handler implements the HTTP operations. Methods return their failure as an
// error and are adapted with webutil.MakeHandler.
type Handler struct {
	store  store.Store
	secret string
}

func New(st store.Store, secret string) *Handler {
	return &Handler{store: st, secret: secret}
}

type message struct {
	Message string `json:"message"`
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) error {
	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	return nil
}

// Readyz fails while the store cannot be reached.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) error {
	if err := h.store.Ping(r.Context()); err != nil {
		return webutil.ErrUnavailable(err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	return nil
}
