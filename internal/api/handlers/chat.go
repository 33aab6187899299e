package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adolfohrq/prdgen/internal/domain/chat"
	"github.com/adolfohrq/prdgen/internal/domain/generation"
)

// ChatService is the conversation surface of *chat.Service.
type ChatService interface {
	Start(in chat.StartInput) (chat.Conversation, error)
	Get(id string) (chat.Conversation, error)
	Delete(id string) error
	Send(ctx context.Context, id string, in chat.SendInput) (chat.Reply, error)
	Refine(ctx context.Context, id string, doc *generation.Document) (chat.RefineResult, error)
}

type ChatHandler struct {
	service ChatService
}

func NewChatHandler(service ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

type startConversationRequest struct {
	Persona  chat.PersonaID        `json:"persona"`
	Section  generation.SectionKey `json:"section,omitempty"`
	Document *generation.Document  `json:"document,omitempty"`
}

type sendMessageRequest struct {
	Text     string               `json:"text"`
	Image    *imagePayload        `json:"image,omitempty"`
	Document *generation.Document `json:"document,omitempty"`
}

type refineRequest struct {
	Document *generation.Document `json:"document,omitempty"`
}

// Personas handles GET /chat/personas.
func (h *ChatHandler) Personas(w http.ResponseWriter, _ *http.Request) {
	writeData(w, chat.Personas())
}

func (h *ChatHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startConversationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	conv, err := h.service.Start(chat.StartInput{Persona: req.Persona, Section: req.Section, Document: req.Document})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dataResponse{Data: conv})
}

func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	conv, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, conv)
}

func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(chi.URLParam(r, "id")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	reply, err := h.service.Send(r.Context(), chi.URLParam(r, "id"), chat.SendInput{
		Text:     req.Text,
		Image:    req.Image.image(),
		Document: req.Document,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, reply)
}

func (h *ChatHandler) Refine(w http.ResponseWriter, r *http.Request) {
	var req refineRequest
	if err := decodeOptionalBody(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	res, err := h.service.Refine(r.Context(), chi.URLParam(r, "id"), req.Document)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, res)
}
