package server

import (
	"net/http"

	"sketch-rooms/internal/config"
	"sketch-rooms/internal/game"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Server struct {
	lobby  *game.Lobby
	db     *gorm.DB
	hub    *wsHub
	events *eventRecorder
	cfg    config.Config
}

// New wires the lobby to the websocket hub and, when conn is set, to the
// audit event log.
func New(conn *gorm.DB, cfg config.Config, words *game.WordBank, opts ...game.Option) *Server {
	registerValidators()
	events := newEventRecorder(conn)
	if events != nil {
		opts = append(opts, game.WithEventSink(events))
	}
	return &Server{
		lobby:  game.NewLobby(cfg.GameSettings(), words, opts...),
		db:     conn,
		hub:    newWSHub(),
		events: events,
		cfg:    cfg,
	}
}

func (s *Server) Lobby() *game.Lobby {
	return s.lobby
}

func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.GET("/", s.handleHome)
	router.GET("/partials/rooms", s.handleRoomsPartial)
	router.GET("/api/rooms", s.handleListRooms)
	router.GET("/api/stats", s.handleStats)
	router.GET("/api/languages", s.handleLanguages)
	router.GET("/healthz", s.handleHealth)
	router.GET("/ws", s.handleWebsocket)
	return router
}

// Close drops every connection and flushes the event log.
func (s *Server) Close() {
	s.hub.CloseAll()
	s.events.Close()
}
