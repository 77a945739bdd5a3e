package feed

import (
	"encoding/json"
	"time"

	"sketch-rooms/internal/game"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

type publisher interface {
	Publish(subject string, data []byte) error
}

// Mirror republishes global feed events on a NATS subject so other processes
// can follow the public room list.
type Mirror struct {
	pub     publisher
	subject string
	conn    *nats.Conn
}

func NewMirror(pub publisher, subject string) *Mirror {
	return &Mirror{pub: pub, subject: subject}
}

// Connect dials NATS with reconnects enabled.
func Connect(url, subject string) (*Mirror, error) {
	conn, err := nats.Connect(url,
		nats.Name("sketch-rooms"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}
	mirror := NewMirror(conn, subject)
	mirror.conn = conn
	return mirror, nil
}

func (m *Mirror) Publish(ev game.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return m.pub.Publish(m.subject, data)
}

func (m *Mirror) Close() {
	if m == nil || m.conn == nil {
		return
	}
	if err := m.conn.Drain(); err != nil {
		m.conn.Close()
	}
}
