package httpapi

import (
	"net/http"

	"homefoods-be/internal/chat"
	"homefoods-be/internal/logger"
	"homefoods-be/internal/metrics"
	"homefoods-be/internal/store"
	"homefoods-be/internal/transport"

	"go.uber.org/zap"
)

type chatRequest struct {
	Messages []chat.Message `json:"messages"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (h *api) chat(w http.ResponseWriter, r *http.Request) {
	if h.Chat == nil {
		writeError(w, r, chat.ErrNotConfigured)
		return
	}
	var req chatRequest
	if !decode(w, r, &req) {
		return
	}
	timer := metrics.StartTimer()
	reply, err := h.Chat.Reply(r.Context(), req.Messages)
	logger.FromCtx(r.Context()).Debug("chat reply",
		zap.Int("turns", len(req.Messages)),
		zap.Duration("upstream", timer.Duration()),
		zap.Bool("ok", err == nil),
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (h *api) adminDB(w http.ResponseWriter, r *http.Request) {
	var cmd store.Command
	if !decode(w, r, &cmd) {
		return
	}

	logger.FromCtx(r.Context()).Info("admin gateway call",
		zap.String("action", string(cmd.Action)),
		zap.String("collection", cmd.Collection),
	)
	out, err := store.Execute(r.Context(), h.Store, cmd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, out)
}

func (h *api) adminMetrics(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, h.Metrics.Snapshot())
}
