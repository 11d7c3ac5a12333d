package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"pairchat/internal/domain"
	"pairchat/internal/transport/mailbox"
)

// maxIdentityLen bounds the {id} path parameter.
const maxIdentityLen = 128

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	app     Dispatcher
	mailbox *mailbox.Mailbox
	log     zerolog.Logger
}

// EventResponse reports what an inbound event did for the requester.
type EventResponse struct {
	Outcome string `json:"outcome"`
}

// SendMessageRequest is the body of POST /messages.
type SendMessageRequest struct {
	Body string `json:"body"`
}

// InboxResponse lists queued outbound messages.
type InboxResponse struct {
	Messages []mailbox.Message `json:"messages"`
}

// AckRequest is the body of POST /inbox/ack.
type AckRequest struct {
	Count int `json:"count"`
}

// AckResponse reports how many messages were dropped.
type AckResponse struct {
	Acked int `json:"acked"`
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Stats reports queue length and active pairs.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, h.app.Stats())
}

// Start queues the welcome notice.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	if err := h.app.Welcome(r.Context(), id); err != nil {
		h.log.Error().Err(err).Str("user", id.String()).Msg("welcome failed")
		h.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.JSON(w, http.StatusOK, EventResponse{Outcome: "welcomed"})
}

// Join handles a search request.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	h.dispatch(w, r, domain.JoinRequest{From: id})
}

// Leave handles a stop request.
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	h.dispatch(w, r, domain.LeaveRequest{From: id})
}

// SendMessage relays a text message to the caller's partner.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Body == "" {
		h.Error(w, http.StatusBadRequest, "body is required")
		return
	}
	h.dispatch(w, r, domain.TextMessage{From: id, Body: req.Body})
}

// Inbox returns queued outbound messages.
func (h *Handler) Inbox(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	h.JSON(w, http.StatusOK, InboxResponse{Messages: h.mailbox.Fetch(id, limit)})
}

// Ack drops fetched messages.
func (h *Handler) Ack(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req AckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Count < 0 {
		h.Error(w, http.StatusBadRequest, "invalid ack body")
		return
	}
	h.JSON(w, http.StatusOK, AckResponse{Acked: h.mailbox.Ack(id, req.Count)})
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, ev domain.Event) {
	outcome, err := h.app.Handle(r.Context(), ev)
	if err != nil {
		h.log.Error().Err(err).Str("user", ev.Sender().String()).Msg("event failed")
		h.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.JSON(w, http.StatusOK, EventResponse{Outcome: outcome})
}

// identity extracts and validates the {id} path parameter.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath != "" {
		// chi matched against the escaped path.
		unescaped, err := url.PathUnescape(id)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid user id")
			return "", false
		}
		id = unescaped
	}
	if id == "" || len(id) > maxIdentityLen || strings.ContainsFunc(id, unicode.IsControl) {
		h.Error(w, http.StatusBadRequest, "invalid user id")
		return "", false
	}
	return domain.Identity(id), true
}
