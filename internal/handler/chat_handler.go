package handler

import (
	"net/http"
	"strconv"

	"lingua-chat/internal/services"
	"lingua-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// ChatHandler adapts the chat service to HTTP. The service contract is
// total, so the handler only maps booleans and empty results; it never sees
// an error from below.
type ChatHandler struct {
	service          *services.ChatService
	defaultPageLimit int
}

func NewChatHandler(service *services.ChatService, defaultPageLimit int) *ChatHandler {
	if defaultPageLimit <= 0 {
		defaultPageLimit = 200
	}
	return &ChatHandler{service: service, defaultPageLimit: defaultPageLimit}
}

func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req httpdto.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	id := h.service.GetOrCreateConversation(c.Request.Context(), req.User1ID, req.User2ID)
	if id == 0 {
		c.JSON(http.StatusOK, httpdto.NewResultResponse(false))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"conversation_id": id}))
}

func (h *ChatHandler) ListChats(c *gin.Context) {
	userID, err := parseID(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user_id", "INVALID_REQUEST"))
		return
	}

	chats := h.service.ListConversations(c.Request.Context(), userID)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"chats": chats}))
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	chatID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid chat id", "INVALID_REQUEST"))
		return
	}

	limit := h.defaultPageLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid limit", "INVALID_REQUEST"))
			return
		}
	}

	var afterID int64
	if raw := c.Query("after_id"); raw != "" {
		afterID, err = parseID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid after_id", "INVALID_REQUEST"))
			return
		}
	}

	messages := h.service.ListMessages(c.Request.Context(), chatID, limit, afterID)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"messages": messages}))
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	chatID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid chat id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	ok := h.service.SendMessage(c.Request.Context(), chatID, req.SenderID, req.Body)
	c.JSON(http.StatusOK, httpdto.NewResultResponse(ok))
}

func (h *ChatHandler) EditMessage(c *gin.Context) {
	messageID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	if req.Body == nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("body is required", "INVALID_REQUEST"))
		return
	}

	ok := h.service.EditMessage(c.Request.Context(), messageID, req.UserID, *req.Body)
	c.JSON(http.StatusOK, httpdto.NewResultResponse(ok))
}

func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	messageID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.DeleteMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	ok := h.service.DeleteMessage(c.Request.Context(), messageID, req.UserID)
	c.JSON(http.StatusOK, httpdto.NewResultResponse(ok))
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	chatID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid chat id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	ok := h.service.MarkRead(c.Request.Context(), chatID, req.UserID)
	c.JSON(http.StatusOK, httpdto.NewResultResponse(ok))
}

func parseID(value string) (int64, error) {
	return strconv.ParseInt(value, 10, 64)
}
