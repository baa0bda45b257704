package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Leganyst/services-marketplace/internal/notify"
	"github.com/Leganyst/services-marketplace/internal/service"
)

type MessageHandler struct {
	messaging *service.MessagingService
	hub       *notify.Hub
}

func NewMessageHandler(messaging *service.MessagingService, hub *notify.Hub) *MessageHandler {
	return &MessageHandler{messaging: messaging, hub: hub}
}

type sendMessageRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" binding:"required"`
	Body        string    `json:"body" binding:"required"`
}

func (h *MessageHandler) Send(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.messaging.Send(c.Request.Context(), actorFrom(c), req.RecipientID, req.Body)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "message sent", toMessageView(msg))
}

// Conversation: переписка с :userId, старые первыми.
func (h *MessageHandler) Conversation(c *gin.Context) {
	other, ok := pathID(c, "userId")
	if !ok {
		return
	}

	list, err := h.messaging.Conversation(c.Request.Context(), actorFrom(c), other)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]messageView, 0, len(list))
	for i := range list {
		out = append(out, toMessageView(&list[i]))
	}
	SuccessResponse(c, http.StatusOK, "ok", out)
}

// Notifications поднимает websocket с уведомлениями. Браузер не умеет
// ставить заголовки на upgrade, поэтому id можно передать в ?user_id=.
func (h *MessageHandler) Notifications(c *gin.Context) {
	raw := c.GetHeader(ActorHeader)
	if raw == "" {
		raw = c.Query("user_id")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "missing or invalid user id")
		return
	}
	h.hub.Serve(c.Writer, c.Request, userID)
}
