package web

import "time"

type RoomCard struct {
	ID         string
	Name       string
	HostName   string
	Language   string
	Players    int
	MaxPlayers int
	CreatedAt  time.Time
}

type StatsSummary struct {
	Rooms        int
	Waiting      int
	Playing      int
	Finished     int
	Participants int
}

type PaginationData struct {
	BasePath   string
	Page       int
	PerPage    int
	Total      int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

type HomeData struct {
	Rooms      []RoomCard
	Stats      StatsSummary
	Pagination PaginationData
}
