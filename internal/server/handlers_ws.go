package server

import (
	"encoding/json"
	"errors"

	"sketch-rooms/internal/game"

	"github.com/rs/zerolog/log"
)

const (
	msgCreateRoom  = "create_room"
	msgJoinRoom    = "join_room"
	msgLeaveRoom   = "leave_room"
	msgStartGame   = "start_game"
	msgResetGame   = "reset_game"
	msgGuess       = "guess"
	msgChat        = "chat"
	msgCanvas      = "canvas"
	msgClearCanvas = "clear_canvas"
	msgListRooms   = "list_rooms"
)

type createRoomRequest struct {
	Name     string `json:"name" binding:"required,roomname"`
	Language string `json:"language" binding:"omitempty,max=16"`
}

type joinRoomRequest struct {
	RoomID string `json:"room_id" binding:"required,max=64"`
}

type textRequest struct {
	Text string `json:"text" binding:"required,chat"`
}

type canvasRequest struct {
	Data json.RawMessage `json:"data"`
}

var createRoomMessages = bindMessages{
	"Name": {
		"required": "room name is required",
		"roomname": "room name must be 1-40 letters, numbers or punctuation",
	},
	"Language": {
		"max": "language must be a short language tag",
	},
}

var joinRoomMessages = bindMessages{
	"RoomID": {
		"required": "room_id is required",
	},
}

var textMessages = bindMessages{
	"Text": {
		"required": "text is required",
		"chat":     "message must be 1-120 characters without control characters",
	},
}

var errRateLimited = errors.New("you are sending messages too quickly")

func (s *Server) handleMessage(client *wsClient, payload []byte) {
	msg, err := readMessage(payload)
	if err != nil {
		s.reply(client, errors.New("invalid message"))
		return
	}
	if err := s.dispatch(client, msg); err != nil {
		log.Debug().Err(err).Str("participant_id", client.id).Str("type", msg.Type).Msg("message rejected")
		s.reply(client, err)
	}
}

func (s *Server) dispatch(client *wsClient, msg inboundMessage) error {
	switch msg.Type {
	case msgCreateRoom:
		var req createRoomRequest
		if err := decodeRequest(msg.Data, &req, createRoomMessages, "invalid room"); err != nil {
			return err
		}
		name, _ := validateRoomName(req.Name)
		_, err := s.lobby.CreateRoom(client.id, name, req.Language)
		return err
	case msgJoinRoom:
		var req joinRoomRequest
		if err := decodeRequest(msg.Data, &req, joinRoomMessages, "invalid room"); err != nil {
			return err
		}
		_, err := s.lobby.JoinRoom(client.id, req.RoomID)
		return err
	case msgLeaveRoom:
		return s.lobby.LeaveRoom(client.id)
	case msgStartGame:
		ok, reason, err := s.lobby.StartGame(client.id)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New(reason)
		}
		return nil
	case msgResetGame:
		return s.lobby.ResetGame(client.id)
	case msgGuess, msgChat:
		if !client.limiter.Allow() {
			return errRateLimited
		}
		var req textRequest
		if err := decodeRequest(msg.Data, &req, textMessages, "invalid message"); err != nil {
			return err
		}
		text, _ := validateChat(req.Text)
		if msg.Type == msgGuess {
			return s.lobby.SubmitGuess(client.id, text)
		}
		return s.lobby.SendChat(client.id, text)
	case msgCanvas:
		var req canvasRequest
		if err := readData(msg.Data, &req); err != nil {
			return errors.New("invalid canvas payload")
		}
		if len(req.Data) > maxCanvasBytes {
			return errors.New("canvas payload is too large")
		}
		return s.lobby.UpdateCanvas(client.id, req.Data)
	case msgClearCanvas:
		return s.lobby.ClearCanvas(client.id)
	case msgListRooms:
		s.lobby.SendTo(client.id, s.lobby.Registry().RoomListEvent())
		return nil
	default:
		return errors.New("unknown message type")
	}
}

func decodeRequest(data json.RawMessage, req any, messages bindMessages, fallback string) error {
	if err := readData(data, req); err != nil {
		return errors.New(fallback)
	}
	return validateMessage(req, messages, fallback)
}

func (s *Server) reply(client *wsClient, err error) {
	_ = client.Send(game.ErrorEvent(err.Error()))
}
