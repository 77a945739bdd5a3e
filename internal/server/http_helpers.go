package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readMessage(payload []byte) (inboundMessage, error) {
	var msg inboundMessage
	if err := readJSON(bytes.NewReader(payload), &msg); err != nil {
		return msg, err
	}
	if msg.Type == "" {
		return msg, errors.New("message type is required")
	}
	return msg, nil
}

// readData decodes a message body into dest. An absent body leaves dest zeroed.
func readData(data json.RawMessage, dest any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return readJSON(bytes.NewReader(trimmed), dest)
}

func readJSON(body io.Reader, dest any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}
