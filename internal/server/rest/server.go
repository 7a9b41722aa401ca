package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/XenomLight/canChat/internal/dto"
	"github.com/XenomLight/canChat/internal/service"
	"github.com/XenomLight/canChat/pkg/logger"
	"github.com/XenomLight/canChat/pkg/validation"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type contextKey string

const (
	// DefaultPort is the default port the server listens on.
	DefaultPort = 8080
	// DefaultAddress is the default address the server listens on.
	DefaultAddress = ""
	// DefaultWriteTimeout is the default write timeout for server responses.
	DefaultWriteTimeout = 15 * time.Second
	// DefaultReadTimeout is the default read timeout for incoming requests.
	DefaultReadTimeout = 15 * time.Second

	contextKeyReqID = contextKey("reqID")

	// callerIdentityHeader carries the opaque caller identity resolved by the
	// hosting platform; the client IP stands in when it is absent.
	callerIdentityHeader = "X-Caller-Identity"

	// ErrMsgRoomNotFound is a http response body message for a missing room.
	ErrMsgRoomNotFound = "Room not found"
	// ErrMsgRoomExpired is a http response body message for an expired room.
	ErrMsgRoomExpired = "Room has expired"
	// ErrMsgNotAMember is a http response body message for a sender outside the room.
	ErrMsgNotAMember = "You are not a member of this room"
	// ErrMsgCodeExhausted is a http response body message for room code generation exhaustion.
	ErrMsgCodeExhausted = "Failed to generate unique room code"
	// ErrMsgBadRequestInvalidRequestBody is a http response body message for bad request status code.
	ErrMsgBadRequestInvalidRequestBody = "Invalid request body"
	// ErrMsgInternalServerError is a http response body message for internal server error status code.
	ErrMsgInternalServerError = "Internal server error"
)

// Server represents a REST server exposing the chat room boundary.
type Server struct {
	*http.Server
	chatService service.ChatService
}

// NewServer creates a new Server instance.
func NewServer(chatService service.ChatService, opts ...ServerOption) *Server {
	server := &Server{
		Server: &http.Server{
			Addr:         DefaultAddress,
			WriteTimeout: DefaultWriteTimeout,
			ReadTimeout:  DefaultReadTimeout,
		},
		chatService: chatService,
	}

	for _, opt := range opts {
		opt(server)
	}

	server.initRoutes()

	return server
}

// ServerOption is a function signature for providing options to configure the Server.
type ServerOption func(*Server)

// WithAddress is an option to set the server address.
func WithAddress(addr string) ServerOption {
	return func(s *Server) {
		s.Addr = addr
	}
}

// WithReadTimeout is an option to set the read timeout for the server.
func WithReadTimeout(timeout time.Duration) ServerOption {
	return func(s *Server) {
		s.ReadTimeout = timeout
	}
}

// WithWriteTimeout is an option to set the write timeout for the server.
func WithWriteTimeout(timeout time.Duration) ServerOption {
	return func(s *Server) {
		s.WriteTimeout = timeout
	}
}

func (s *Server) initRoutes() {
	r := mux.NewRouter()

	r.Use(s.logMiddleware)

	r.HandleFunc("/rooms", s.handleCreateRoom).Methods("POST")
	r.HandleFunc("/rooms/{code}", s.handleGetRoom).Methods("GET")
	r.HandleFunc("/rooms/{code}/join", s.handleJoinRoom).Methods("POST")
	r.HandleFunc("/rooms/{code}/messages", s.handleSendMessage).Methods("POST")
	r.HandleFunc("/rooms/{code}/messages", s.handleGetMessages).Methods("GET")
	r.HandleFunc("/rooms/{code}/leave", s.handleLeaveRoom).Methods("POST")
	r.HandleFunc("/rooms/{code}/end", s.handleEndRoom).Methods("POST")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.Handler = r
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	result, err := s.chatService.CreateRoom(s.callerIdentity(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCodeExhausted):
			s.respondWithError(w, http.StatusConflict, ErrMsgCodeExhausted)
		default:
			s.respondWithError(w, http.StatusInternalServerError, ErrMsgInternalServerError)
		}
		return
	}

	s.respondWithJSON(w, http.StatusCreated, dto.CreateRoomResponseDTO{
		RoomCode:  result.RoomCode,
		Room:      dto.NewRoomDTO(result.Room),
		SessionID: result.SessionID,
	})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if err := validation.ValidateRoomCode(code); err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The body is optional: a fresh join sends nothing, a re-join carries a
	// previously issued session id.
	joinDTO := &dto.JoinRoomRequestDTO{}
	if err := json.NewDecoder(r.Body).Decode(joinDTO); err != nil && !errors.Is(err, io.EOF) {
		s.respondWithError(w, http.StatusBadRequest, ErrMsgBadRequestInvalidRequestBody)
		return
	}

	result, err := s.chatService.JoinRoom(code, joinDTO.SessionID, s.callerIdentity(r))
	if err != nil {
		s.respondWithChatError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, dto.JoinRoomResponseDTO{
		Room:      dto.NewRoomDTO(result.Room),
		SessionID: result.SessionID,
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if err := validation.ValidateRoomCode(code); err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	sendDTO := &dto.SendMessageRequestDTO{}
	if err := json.NewDecoder(r.Body).Decode(sendDTO); err != nil {
		s.respondWithError(w, http.StatusBadRequest, ErrMsgBadRequestInvalidRequestBody)
		return
	}

	if err := validation.ValidateMessageContent(sendDTO.Content); err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	message, err := s.chatService.SendMessage(code, sendDTO.SessionID, sendDTO.Content)
	if err != nil {
		s.respondWithChatError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, dto.NewMessageDTO(*message))
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	leaveDTO := &dto.LeaveRoomRequestDTO{}
	if err := json.NewDecoder(r.Body).Decode(leaveDTO); err != nil {
		s.respondWithError(w, http.StatusBadRequest, ErrMsgBadRequestInvalidRequestBody)
		return
	}

	left := s.chatService.LeaveRoom(code, leaveDTO.SessionID)

	s.respondWithJSON(w, http.StatusOK, dto.LeaveRoomResponseDTO{Left: left})
}

func (s *Server) handleEndRoom(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	endDTO := &dto.EndRoomRequestDTO{}
	if err := json.NewDecoder(r.Body).Decode(endDTO); err != nil {
		s.respondWithError(w, http.StatusBadRequest, ErrMsgBadRequestInvalidRequestBody)
		return
	}

	ended := s.chatService.EndRoom(code, endDTO.SessionID)

	s.respondWithJSON(w, http.StatusOK, dto.EndRoomResponseDTO{Ended: ended})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	room, ok := s.chatService.GetRoom(code)
	if !ok {
		s.respondWithError(w, http.StatusNotFound, ErrMsgRoomNotFound)
		return
	}

	s.respondWithJSON(w, http.StatusOK, dto.NewRoomDTO(room))
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	messages := s.chatService.GetMessages(code)

	messageDTOs := make([]dto.MessageDTO, 0, len(messages))
	for _, m := range messages {
		messageDTOs = append(messageDTOs, dto.NewMessageDTO(m))
	}

	s.respondWithJSON(w, http.StatusOK, messageDTOs)
}

// respondWithChatError maps the chat service sentinel errors onto the
// boundary's status codes and verbatim messages.
func (s *Server) respondWithChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		s.respondWithError(w, http.StatusNotFound, ErrMsgRoomNotFound)
	case errors.Is(err, service.ErrRoomExpired):
		s.respondWithError(w, http.StatusGone, ErrMsgRoomExpired)
	case errors.Is(err, service.ErrNotAMember):
		s.respondWithError(w, http.StatusForbidden, ErrMsgNotAMember)
	default:
		s.respondWithError(w, http.StatusInternalServerError, ErrMsgInternalServerError)
	}
}

func (s *Server) callerIdentity(r *http.Request) string {
	if identity := r.Header.Get(callerIdentityHeader); identity != "" {
		return identity
	}

	return getClientIP(r)
}

func (s *Server) respondWithError(w http.ResponseWriter, errCode int, errMessage string) {
	s.respondWithJSON(w, errCode, dto.ErrorDTO{Error: errMessage})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to marshal response payload: %s", err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		logger.Error(fmt.Sprintf("Failed to write response: %s", err))
	}
}
