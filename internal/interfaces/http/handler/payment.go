package handler

import (
	appledger "github.com/bizops/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// CreatePayment handles POST /customers/:id/payments
//
//	@ID			createPayment
//	@Summary		Create a payment for a work
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			id	path	string	true	"Customer ID"
//	@Param			request	body	appledger.CreatePaymentRequest	true	"Request body"
//	@Success		201	{object}	dto.Response{data=appledger.PaymentSummary}
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/customers/{id}/payments [post]
func (h *LedgerHandler) CreatePayment(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req appledger.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	payment, err := h.ledgerService.CreatePayment(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// GetPayment handles GET /customers/:id/payments/:paymentId
//
//	@ID			getPayment
//	@Summary		Get a payment summary
//	@Tags			payments
//	@Produce		json
//	@Param			id	path	string	true	"Customer ID"
//	@Param			paymentId	path	string	true	"Payment ID"
//	@Success		200	{object}	dto.Response{data=appledger.PaymentSummary}
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/customers/{id}/payments/{paymentId} [get]
func (h *LedgerHandler) GetPayment(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	paymentID, ok := h.ParseID(c, "paymentId")
	if !ok {
		return
	}

	summary, err := h.ledgerService.GetPaymentSummary(c.Request.Context(), customerID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// AddInstallment handles POST /customers/:id/payments/:paymentId/installments
//
//	@ID			addInstallment
//	@Summary		Add an installment to a payment
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			id	path	string	true	"Customer ID"
//	@Param			paymentId	path	string	true	"Payment ID"
//	@Param			request	body	appledger.AddInstallmentRequest	true	"Request body"
//	@Success		201	{object}	dto.Response{data=ledger.Installment}
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/customers/{id}/payments/{paymentId}/installments [post]
func (h *LedgerHandler) AddInstallment(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	paymentID, ok := h.ParseID(c, "paymentId")
	if !ok {
		return
	}

	var req appledger.AddInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	installment, err := h.ledgerService.AddInstallment(c.Request.Context(), customerID, paymentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, installment)
}

// AddExpense handles POST /customers/:id/expenses
//
//	@ID			addExpense
//	@Summary		Add an expense to a work
//	@Tags			expenses
//	@Accept			json
//	@Produce		json
//	@Param			id	path	string	true	"Customer ID"
//	@Param			request	body	appledger.AddExpenseRequest	true	"Request body"
//	@Success		201	{object}	dto.Response{data=ledger.Expense}
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/customers/{id}/expenses [post]
func (h *LedgerHandler) AddExpense(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req appledger.AddExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	expense, err := h.ledgerService.AddExpense(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}
