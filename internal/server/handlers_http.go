package server

import (
	"net/http"
	"time"

	"sketch-rooms/internal/game"
	"sketch-rooms/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}

func (s *Server) handleHome(c *gin.Context) {
	rooms := s.lobby.PublicRooms()
	page, perPage := parsePagination(c, defaultRoomsPerPage, maxRoomsPerPage)
	pagination := buildPaginationData("/", page, perPage, len(rooms))
	start, end := pageOf(pagination)
	stats := s.lobby.Stats()

	data := web.HomeData{
		Rooms:      roomCards(rooms[start:end]),
		Stats:      statsSummary(stats),
		Pagination: pagination,
	}
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := web.Home(data).Render(c.Request.Context(), c.Writer); err != nil {
		log.Error().Err(err).Msg("render home failed")
	}
}

func (s *Server) handleListRooms(c *gin.Context) {
	rooms := s.lobby.PublicRooms()
	page, perPage := parsePagination(c, defaultRoomsPerPage, maxRoomsPerPage)
	pagination := buildPaginationData("/api/rooms", page, perPage, len(rooms))
	start, end := pageOf(pagination)
	c.JSON(http.StatusOK, gin.H{
		"rooms":       rooms[start:end],
		"page":        pagination.Page,
		"per_page":    pagination.PerPage,
		"total":       pagination.Total,
		"total_pages": pagination.TotalPages,
	})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.lobby.Stats())
}

func (s *Server) handleLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": s.lobby.Languages()})
}

func (s *Server) handleHealth(c *gin.Context) {
	status := gin.H{
		"status":      "ok",
		"connections": s.hub.Count(),
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			log.Warn().Err(err).Msg("database ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "database unavailable"})
			return
		}
		status["database"] = "ok"
	}
	c.JSON(http.StatusOK, status)
}

func roomCards(rooms []game.RoomSummary) []web.RoomCard {
	cards := make([]web.RoomCard, 0, len(rooms))
	for _, room := range rooms {
		cards = append(cards, web.RoomCard{
			ID:         room.ID,
			Name:       room.Name,
			HostName:   room.HostName,
			Language:   room.Language,
			Players:    room.Players,
			MaxPlayers: room.MaxPlayers,
			CreatedAt:  room.CreatedAt,
		})
	}
	return cards
}

func statsSummary(stats game.Stats) web.StatsSummary {
	return web.StatsSummary{
		Rooms:        stats.Rooms,
		Waiting:      stats.Waiting,
		Playing:      stats.Playing,
		Finished:     stats.Finished,
		Participants: stats.Participants,
	}
}
