package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Leganyst/services-marketplace/internal/service"
)

type UserHandler struct {
	identity *service.IdentityService
}

func NewUserHandler(identity *service.IdentityService) *UserHandler {
	return &UserHandler{identity: identity}
}

type registerUserRequest struct {
	Email        string `json:"email" binding:"required"`
	DisplayName  string `json:"display_name"`
	ContactPhone string `json:"contact_phone"`
	Role         string `json:"role"`
}

// Register регистрирует пользователя.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.identity.RegisterUser(c.Request.Context(), req.Email, req.DisplayName, req.ContactPhone, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "user registered", toUserView(p))
}

// Get возвращает профиль пользователя.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	p, err := h.identity.GetProfile(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", toUserView(p))
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetRole: свою роль (client/provider) меняет сам пользователь,
// остальное решает администратор.
func (h *UserHandler) SetRole(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.identity.SetRole(c.Request.Context(), actorFrom(c), id, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "role updated", toUserView(p))
}

type updateContactsRequest struct {
	DisplayName  string `json:"display_name"`
	ContactPhone string `json:"contact_phone"`
}

func (h *UserHandler) UpdateContacts(c *gin.Context) {
	var req updateContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.identity.UpdateContacts(c.Request.Context(), actorFrom(c), req.DisplayName, req.ContactPhone)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "contacts updated", toUserView(p))
}

type listingRequest struct {
	ServiceTitle string          `json:"service_title" binding:"required"`
	ServiceRate  decimal.Decimal `json:"service_rate"`
	Description  string          `json:"description"`
}

// UpsertListing сохраняет карточку исполнителя текущего пользователя.
func (h *UserHandler) UpsertListing(c *gin.Context) {
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	l, err := h.identity.UpsertListing(c.Request.Context(), actorFrom(c), req.ServiceTitle, req.ServiceRate, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "listing saved", toListingView(l))
}

// ListProviders: каталог исполнителей.
func (h *UserHandler) ListProviders(c *gin.Context) {
	list, err := h.identity.ListProviders(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]*listingView, 0, len(list))
	for i := range list {
		out = append(out, toListingView(&list[i]))
	}
	SuccessResponse(c, http.StatusOK, "ok", out)
}
