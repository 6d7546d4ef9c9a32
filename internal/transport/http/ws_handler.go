package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/AyeleBedada/trial-LMS/internal/app"
	"github.com/AyeleBedada/trial-LMS/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.AssessmentService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AssessmentService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answersPayload struct {
	Answers []domain.Answer `json:"answers"`
}

type gradedPayload struct {
	QuizID          string                   `json:"quizId"`
	Percent         int                      `json:"percent"`
	Verdicts        []domain.QuestionVerdict `json:"verdicts"`
	ProjectedGlobal int                      `json:"projectedGlobal"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires one quiz page into
// the assessment use cases: answer changes come in for live grading, explicit
// submissions hit the attempt ledger, and progress snapshots stream back for
// the page's widgets.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	email := r.URL.Query().Get("email")
	name := r.URL.Query().Get("name")
	if quizID == "" || email == "" {
		http.Error(w, "missing quizId or email", http.StatusBadRequest)
		return
	}
	// Identity is whatever the session provider put on the page; this core
	// trusts it (demo model).
	user := domain.User{
		Email: email,
		Name:  name,
		Role:  domain.Role(r.URL.Query().Get("role")),
	}
	if user.Role == "" {
		user.Role = domain.RoleStudent
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.service.Subscribe(r.Context(), user.Email)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "progress", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answers":
			var payload answersPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answers payload"}}
				continue
			}
			graded, err := h.service.Grade(r.Context(), quizID, payload.Answers)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			projected, err := h.service.ProjectedPercent(r.Context(), user.Email, quizID, graded.Percent)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "graded", Payload: gradedPayload{
				QuizID:          quizID,
				Percent:         graded.Percent,
				Verdicts:        graded.Verdicts,
				ProjectedGlobal: projected,
			}}
		case "submit":
			var payload answersPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid submit payload"}}
				continue
			}
			result, err := h.service.Submit(r.Context(), user, quizID, payload.Answers)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "submitted", Payload: result}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
