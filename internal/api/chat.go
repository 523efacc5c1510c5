package api

import (
	"encoding/json"
	"net/http"

	rooerrs "github.com/rookeryhq/rookery/internal/errors"
	"github.com/rookeryhq/rookery/internal/server"
)

type ChatReq struct {
	Message       string `json:"message"`
	RecentContext string `json:"recentContext"`
}

type ChatResp struct {
	Reply string `json:"reply"`
}

func (s *Server) postChat(w http.ResponseWriter, r *http.Request) error {
	var body ChatReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return rooerrs.E(err, http.StatusBadRequest)
	}
	if body.Message == "" {
		return rooerrs.E("message is required", http.StatusBadRequest)
	}

	reply := s.bot.Reply(r.Context(), body.Message, body.RecentContext)

	return server.WriteJSON(w, http.StatusOK, ChatResp{Reply: reply})
}
