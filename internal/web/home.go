package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

func Home(data HomeData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Sketch Rooms</title>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <span class="tag">Sketch Rooms</span>
        <h1>One draws. Everyone guesses.</h1>
`); err != nil {
			return err
		}
		if err := StatsLine(data.Stats).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `      </header>
      <section class="panel">
        <h2>Open rooms</h2>
        <div id="rooms">
`); err != nil {
			return err
		}
		if err := RoomList(data.Rooms).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `        </div>
`); err != nil {
			return err
		}
		if err := Pager(data.Pagination).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `      </section>
    </main>
  </body>
</html>
`)
		return err
	})
}

func StatsLine(stats StatsSummary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `        <p class="stats">`+
			itoa(stats.Participants)+` players online, `+
			itoa(stats.Waiting)+` rooms waiting, `+
			itoa(stats.Playing)+` games in progress</p>
`)
		return err
	})
}

// RoomList renders the waiting rooms; the markup is also pushed to clients on list updates.
func RoomList(rooms []RoomCard) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(rooms) == 0 {
			_, err := io.WriteString(w, `          <p class="empty">No open rooms yet. Create one to get started.</p>
`)
			return err
		}
		var b strings.Builder
		b.WriteString(`          <ul class="rooms">
`)
		for _, room := range rooms {
			b.WriteString(`            <li class="room" data-room-id="`)
			b.WriteString(templ.EscapeString(room.ID))
			b.WriteString(`"><strong>`)
			b.WriteString(templ.EscapeString(room.Name))
			b.WriteString(`</strong> hosted by `)
			b.WriteString(templ.EscapeString(room.HostName))
			b.WriteString(` <span class="lang">`)
			b.WriteString(templ.EscapeString(room.Language))
			b.WriteString(`</span> <span class="count">`)
			b.WriteString(occupancy(room.Players, room.MaxPlayers))
			b.WriteString(`</span> <time>`)
			b.WriteString(formatTime(room.CreatedAt))
			b.WriteString(`</time></li>
`)
		}
		b.WriteString(`          </ul>
`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func Pager(page PaginationData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if page.TotalPages <= 1 {
			return nil
		}
		var b strings.Builder
		b.WriteString(`        <nav class="pager">`)
		if page.HasPrev {
			b.WriteString(`<a href="` + templ.EscapeString(pageURL(page.BasePath, page.PrevPage, page.PerPage)) + `">Previous</a> `)
		}
		b.WriteString(`<span>Page ` + itoa(page.Page) + ` of ` + itoa(page.TotalPages) + `</span>`)
		if page.HasNext {
			b.WriteString(` <a href="` + templ.EscapeString(pageURL(page.BasePath, page.NextPage, page.PerPage)) + `">Next</a>`)
		}
		b.WriteString("</nav>\n")
		_, err := io.WriteString(w, b.String())
		return err
	})
}
