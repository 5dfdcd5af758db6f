package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"survey-service/internal/app"
	"survey-service/internal/domain"

	"github.com/gorilla/websocket"
)

// WSHandler serves an interactive survey session over a websocket.
type WSHandler struct {
	service  *app.SurveyService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.SurveyService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

var (
	errInvalidAnswer   = errors.New("invalid answer payload")
	errUnsupportedType = errors.New("unsupported message type")
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionIndex *int   `json:"questionIndex"`
	Answer        string `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS authenticates ?token= before upgrading, then sends the questions and the
// current progress. Each "answer" message is recorded and answered with "recorded"
// followed by the refreshed "progress".
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if _, err := h.service.Authenticate(r.Context(), token); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			http.Error(w, "invalid or missing token", http.StatusUnauthorized)
			return
		}
		log.Printf("ws authenticate failed: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	questions, err := h.service.ListQuestions(r.Context(), token)
	if err != nil {
		h.writeError(conn, err)
		return
	}
	if err := conn.WriteJSON(outboundMessage[[]domain.Question]{Type: "questions", Payload: questions}); err != nil {
		log.Printf("ws write error: %v", err)
		return
	}
	if !h.writeProgress(conn, r, token) {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.QuestionIndex == nil {
				h.writeError(conn, errInvalidAnswer)
				continue
			}
			record, err := h.service.RecordResponse(r.Context(), token, *payload.QuestionIndex, payload.Answer)
			if err != nil {
				h.writeError(conn, err)
				continue
			}
			if err := conn.WriteJSON(outboundMessage[domain.ResponseRecord]{Type: "recorded", Payload: record}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
			if !h.writeProgress(conn, r, token) {
				return
			}
		case "progress":
			if !h.writeProgress(conn, r, token) {
				return
			}
		default:
			h.writeError(conn, errUnsupportedType)
		}
	}
}

func (h *WSHandler) writeProgress(conn *websocket.Conn, r *http.Request, token string) bool {
	progress, err := h.service.GetProgress(r.Context(), token)
	if err != nil {
		h.writeError(conn, err)
		return true
	}
	if err := conn.WriteJSON(outboundMessage[domain.Progress]{Type: "progress", Payload: progress}); err != nil {
		log.Printf("ws write error: %v", err)
		return false
	}
	return true
}

func (h *WSHandler) writeError(conn *websocket.Conn, err error) {
	msg := err.Error()
	if !clientVisible(err) {
		log.Printf("ws request failed: %v", err)
		msg = "internal server error"
	}
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: msg}})
}

func clientVisible(err error) bool {
	for _, target := range []error{domain.ErrInvalidInput, domain.ErrUnauthorized, errInvalidAnswer, errUnsupportedType} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
