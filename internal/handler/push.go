package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/suyanik/Einkauflist/internal/store"
)

type PushHandler struct {
	subs     *store.PushStore
	vapidKey string
	logger   *slog.Logger
}

func NewPushHandler(subs *store.PushStore, vapidKey string, logger *slog.Logger) *PushHandler {
	return &PushHandler{subs: subs, vapidKey: vapidKey, logger: logger}
}

// subscribeRequest matches the browser PushSubscription JSON shape.
type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Eksik bilgi")
		return
	}
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		writeError(w, http.StatusBadRequest, "Eksik bilgi")
		return
	}

	if _, err := h.subs.Create(req.Endpoint, req.Keys.P256dh, req.Keys.Auth); err != nil {
		h.logger.Error("save push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "Veritabanı hatası")
		return
	}
	writeSuccess(w, nil)
}

// PublicKey hands the VAPID public key to the subscribing client.
func (h *PushHandler) PublicKey(w http.ResponseWriter, r *http.Request) {
	if h.vapidKey == "" {
		writeError(w, http.StatusInternalServerError, "Bildirimler yapılandırılmamış")
		return
	}
	writeSuccess(w, map[string]any{"key": h.vapidKey})
}
