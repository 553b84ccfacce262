package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neuroplay/neuroplay-backend/internal/llm"
	"github.com/neuroplay/neuroplay-backend/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (ch *ChatHandler) Send(c *gin.Context) {
	if _, ok := observerFrom(c); !ok {
		return
	}
	var req struct {
		Message string        `json:"message"`
		History []llm.Message `json:"history"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	reply, err := ch.chatService.Reply(c.Request.Context(), req.Message, req.History)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"reply": reply})
}
