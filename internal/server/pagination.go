package server

import (
	"strconv"
	"strings"

	"sketch-rooms/internal/web"

	"github.com/gin-gonic/gin"
)

const (
	defaultRoomsPerPage = 20
	maxRoomsPerPage     = 100
)

func parsePagination(c *gin.Context, defaultPerPage, maxPerPage int) (int, int) {
	page := 1
	perPage := defaultPerPage
	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			page = value
		}
	}
	if raw := strings.TrimSpace(c.Query("per_page")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			perPage = value
		}
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func buildPaginationData(basePath string, page, perPage int, total int) web.PaginationData {
	if perPage <= 0 {
		perPage = 1
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page <= 0 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	data := web.PaginationData{
		BasePath:   basePath,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
	data.HasPrev = page > 1
	data.HasNext = page < totalPages
	if data.HasPrev {
		data.PrevPage = page - 1
	}
	if data.HasNext {
		data.NextPage = page + 1
	}
	return data
}

// pageOf returns the slice bounds for the page described by data.
func pageOf(data web.PaginationData) (int, int) {
	start := (data.Page - 1) * data.PerPage
	if start > data.Total {
		start = data.Total
	}
	end := start + data.PerPage
	if end > data.Total {
		end = data.Total
	}
	return start, end
}
