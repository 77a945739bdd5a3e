package server

import (
	"bytes"
	"context"
	"net/http"

	"sketch-rooms/internal/web"

	"github.com/gin-gonic/gin"
)

func (s *Server) renderRoomListHTML(ctx context.Context) string {
	var buf bytes.Buffer
	if err := web.RoomList(roomCards(s.lobby.PublicRooms())).Render(ctx, &buf); err != nil {
		return ""
	}
	return buf.String()
}

// handleRoomsPartial serves the room list fragment for pages that poll instead
// of holding a websocket.
func (s *Server) handleRoomsPartial(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(s.renderRoomListHTML(c.Request.Context())))
}
