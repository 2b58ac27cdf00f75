package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ronghua-heritage/storefront/internal/platform/httpx"
	"github.com/ronghua-heritage/storefront/internal/services"
)

const maxChatBodySize = 8 * 1024

// ChatHandlers exposes the authenticated heritage assistant endpoints.
type ChatHandlers struct {
	chat services.ChatService
}

// NewChatHandlers constructs handlers over the chat service.
func NewChatHandlers(chat services.ChatService) *ChatHandlers {
	return &ChatHandlers{chat: chat}
}

// Routes wires the /chat endpoints onto the provided router.
func (h *ChatHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/messages", h.send)
	r.Get("/history", h.history)
	r.Get("/history/export", h.exportHistory)
	r.Delete("/history", h.clearHistory)
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h *ChatHandlers) send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.chat == nil {
		httpx.WriteError(ctx, w, httpx.NewError("chat_unavailable", "chat service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := decodeJSONBody(r, maxChatBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	exchange, err := h.chat.Send(ctx, services.SendChatMessageCommand{
		UserID:  identity.UID,
		Content: req.Content,
	})
	if err != nil {
		h.writeChatError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "", exchange)
}

func (h *ChatHandlers) history(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.chat == nil {
		httpx.WriteError(ctx, w, httpx.NewError("chat_unavailable", "chat service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	history, err := h.chat.History(ctx, identity.UID)
	if err != nil {
		h.writeChatError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "", history)
}

// exportHistory streams the transcript as a downloadable text file.
func (h *ChatHandlers) exportHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.chat == nil {
		httpx.WriteError(ctx, w, httpx.NewError("chat_unavailable", "chat service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	transcript, err := h.chat.Export(ctx, identity.UID)
	if err != nil {
		h.writeChatError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="chat_history.txt"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(transcript))
}

func (h *ChatHandlers) clearHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.chat == nil {
		httpx.WriteError(ctx, w, httpx.NewError("chat_unavailable", "chat service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.chat.ClearHistory(ctx, identity.UID); err != nil {
		h.writeChatError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "对话已清空", nil)
}

func (h *ChatHandlers) writeChatError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, services.ErrChatInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "message content is required", http.StatusBadRequest))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		httpx.WriteError(ctx, w, httpx.NewError("request_cancelled", "request was cancelled", 499))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("chat_unavailable", "chat service failed", http.StatusServiceUnavailable))
	}
}
