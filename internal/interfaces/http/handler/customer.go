package handler

import (
	"net/http"

	appledger "github.com/bizops/backend/internal/application/ledger"
	"github.com/bizops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// LedgerHandler serves the per-customer project ledger: customers, works,
// material usage, payments, expenses, activities and analytics
type LedgerHandler struct {
	BaseHandler
	ledgerService *appledger.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *appledger.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

// RegisterCustomer handles POST /customers
//
//	@ID			registerCustomer
//	@Summary		Register a customer
//	@Tags			customers
//	@Accept			json
//	@Produce		json
//	@Param			request	body	appledger.RegisterCustomerRequest	true	"Request body"
//	@Success		201	{object}	dto.Response{data=appledger.CustomerResponse}
//	@Failure		400	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/customers [post]
func (h *LedgerHandler) RegisterCustomer(c *gin.Context) {
	var req appledger.RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	customer, err := h.ledgerService.RegisterCustomer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// ListCustomers handles GET /customers
//
//	@ID			listCustomers
//	@Summary		List customers
//	@Tags			customers
//	@Produce		json
//	@Param			search	query	string	false	"Name or mobile substring"
//	@Param			page	query	integer	false	"Page number"
//	@Param			page_size	query	integer	false	"Page size (max 100)"
//	@Success		200	{object}	dto.Response{data=[]appledger.CustomerResponse}
//	@Failure		400	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/customers [get]
func (h *LedgerHandler) ListCustomers(c *gin.Context) {
	var filter appledger.CustomerListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.ledgerService.ListCustomers(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// GetLedger handles GET /customers/:id and returns the full ledger snapshot
//
//	@ID			getLedger
//	@Summary		Get the ledger of a customer
//	@Tags			customers
//	@Produce		json
//	@Param			id	path	string	true	"Customer ID"
//	@Success		200	{object}	dto.Response{data=appledger.LedgerResponse}
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/customers/{id} [get]
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	ledger, err := h.ledgerService.GetLedger(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ledger)
}
