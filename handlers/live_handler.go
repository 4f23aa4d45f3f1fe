package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/club-billing/live"
	"github.com/Dosada05/club-billing/middleware"
	"github.com/Dosada05/club-billing/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type LiveHandler struct {
	hub *live.Hub
}

func NewLiveHandler(hub *live.Hub) *LiveHandler {
	return &LiveHandler{hub: hub}
}

// ServeClubRoom подписывает соединение на комнату клуба. Канал
// односторонний: клиент только слушает события SESSION_* и ELAPSED_TICK.
func (h *LiveHandler) ServeClubRoom(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	role, _ := middleware.GetUserRoleFromContext(r.Context())
	tokenClubID, _ := middleware.GetClubIDFromContext(r.Context())
	if role != models.RoleAdmin && tokenClubID != clubID {
		forbiddenResponse(w, r, "access to another club is forbidden")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту сам.
		return
	}

	client := &live.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: live.RoomForClub(clubID),
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
