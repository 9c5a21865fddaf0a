package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/popdoc-api/internal/handler"
	"github.com/jwalitptl/popdoc-api/internal/middleware"
	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/internal/service/chat"
)

type Handler struct {
	svc *chat.Service
}

func NewHandler(svc *chat.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the chat endpoint. optionalAuth lets signed-in users
// keep a history while anonymous chats still work.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, optionalAuth gin.HandlerFunc) {
	r.POST("/chat", optionalAuth, h.Chat)
}

func (h *Handler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if !handler.Bind(c, &req) {
		return
	}

	resp, err := h.svc.Reply(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
