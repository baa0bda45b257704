package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Leganyst/services-marketplace/internal/lifecycle"
	"github.com/Leganyst/services-marketplace/internal/model"
	"github.com/Leganyst/services-marketplace/internal/pagination"
	"github.com/Leganyst/services-marketplace/internal/service"
)

type ContractHandler struct {
	contracts *service.ContractService
}

func NewContractHandler(contracts *service.ContractService) *ContractHandler {
	return &ContractHandler{contracts: contracts}
}

type createContractRequest struct {
	ProviderID   uuid.UUID        `json:"provider_id" binding:"required"`
	ServiceTitle string           `json:"service_title"`
	ServiceRate  *decimal.Decimal `json:"service_rate"`
}

// Create открывает контракт от имени клиента. Без ставки берётся карточка исполнителя.
func (h *ContractHandler) Create(c *gin.Context) {
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	actor := actorFrom(c)
	var (
		contract *model.Contract
		err      error
	)
	if req.ServiceRate == nil {
		contract, err = h.contracts.CreateContractFromListing(c.Request.Context(), actor, req.ProviderID)
	} else {
		contract, err = h.contracts.CreateContract(c.Request.Context(), actor, req.ProviderID, req.ServiceTitle, *req.ServiceRate)
	}
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "contract created", h.view(contract, actor))
}

// List: контракты текущего пользователя постранично.
func (h *ContractHandler) List(c *gin.Context) {
	actor := actorFrom(c)
	list, err := h.contracts.GetContractsForUser(c.Request.Context(), actor)
	if err != nil {
		fail(c, err)
		return
	}

	page, size := pagination.ParseParams(c.DefaultQuery("page", "1"), c.DefaultQuery("page_size", "10"))
	p := pagination.Map(pagination.Paginate(list, page, size), func(ct model.Contract) contractView {
		return h.view(&ct, actor)
	})
	SuccessResponse(c, http.StatusOK, "ok", p)
}

func (h *ContractHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	actor := actorFrom(c)
	contract, err := h.contracts.GetContract(c.Request.Context(), id, actor)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", h.view(contract, actor))
}

type offerRequest struct {
	NewRate decimal.Decimal `json:"new_rate"`
}

func (h *ContractHandler) MakeOffer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req offerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	actor := actorFrom(c)
	contract, err := h.contracts.MakeOffer(c.Request.Context(), id, actor, req.NewRate)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "offer sent", h.view(contract, actor))
}

func (h *ContractHandler) Deposit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	actor := actorFrom(c)
	contract, err := h.contracts.DepositFunds(c.Request.Context(), id, actor)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "funds deposited", h.view(contract, actor))
}

type actionRequest struct {
	Action string `json:"action" binding:"required"`
}

// Action: finalize | cancel | dispute | cancel_dispute.
func (h *ContractHandler) Action(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	action, err := lifecycle.ParseAction(req.Action)
	if err != nil {
		fail(c, err)
		return
	}

	actor := actorFrom(c)
	contract, err := h.contracts.HandleContractAction(c.Request.Context(), id, actor, action)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "action recorded", h.view(contract, actor))
}

type resolveRequest struct {
	Resolution string `json:"resolution" binding:"required"`
}

// Resolve: арбитраж спора администратором.
func (h *ContractHandler) Resolve(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	resolution, err := lifecycle.ParseResolution(req.Resolution)
	if err != nil {
		fail(c, err)
		return
	}

	contract, err := h.contracts.ResolveDispute(c.Request.Context(), id, actorFrom(c), resolution)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "dispute resolved", toContractView(contract, nil))
}

func (h *ContractHandler) Quote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	q, err := h.contracts.Quote(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", toQuoteView(q))
}

// Latest: последний контракт текущего пользователя с :userId; data == null, если его нет.
func (h *ContractHandler) Latest(c *gin.Context) {
	other, ok := pathID(c, "userId")
	if !ok {
		return
	}

	actor := actorFrom(c)
	contract, err := h.contracts.GetLatestContractBetweenUsers(c.Request.Context(), actor, other)
	if err != nil {
		fail(c, err)
		return
	}
	if contract == nil {
		SuccessResponse(c, http.StatusOK, "no contracts", nil)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", h.view(contract, actor))
}

// Open: есть ли у клиента (текущий пользователь) живой контракт с исполнителем :userId.
func (h *ContractHandler) Open(c *gin.Context) {
	provider, ok := pathID(c, "userId")
	if !ok {
		return
	}

	exists, err := h.contracts.HasActiveOrPendingContract(c.Request.Context(), actorFrom(c), provider)
	if err != nil {
		fail(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", gin.H{"exists": exists})
}

func (h *ContractHandler) view(c *model.Contract, actor uuid.UUID) contractView {
	return toContractView(c, h.contracts.AvailableActions(c, actor))
}
