package handler

import (
	"bytes"
	"encoding/json"

	appledger "github.com/bizops/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdempotencyKeyHeader names the header that makes a usage record replayable
const IdempotencyKeyHeader = "Idempotency-Key"

// quantityInput accepts a quantity written either as a JSON number or as a
// string, keeping the raw text so the service reports malformed values.
type quantityInput string

// UnmarshalJSON implements json.Unmarshaler
func (q *quantityInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*q = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = quantityInput(s)
		return nil
	}
	*q = quantityInput(data)
	return nil
}

type recordUsageBody struct {
	WorkID     uuid.UUID     `json:"work_id"`
	MaterialID uuid.UUID     `json:"material_id"`
	Quantity   quantityInput `json:"quantity"`
}

// AddWork handles POST /customers/:id/works
//
//	@ID			addWork
//	@Summary		Add a work
//	@Tags			works
//	@Accept			json
//	@Produce		json
//	@Param			id	path	string	true	"Customer ID"
//	@Param			request	body	appledger.AddWorkRequest	true	"Request body"
//	@Success		201	{object}	dto.Response{data=ledger.Work}
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/customers/{id}/works [post]
func (h *LedgerHandler) AddWork(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req appledger.AddWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	work, err := h.ledgerService.AddWork(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, work)
}

// ListWorks handles GET /customers/:id/works
//
//	@ID			listWorks
//	@Summary		List the works of a customer
//	@Tags			works
//	@Produce		json
//	@Param			id	path	string	true	"Customer ID"
//	@Success		200	{object}	dto.Response{data=[]ledger.Work}
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/customers/{id}/works [get]
func (h *LedgerHandler) ListWorks(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	works, err := h.ledgerService.ListWorks(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, works)
}

// RecordUsage handles POST /customers/:id/materials. The Idempotency-Key
// header, when present, makes a retried request return the first outcome
// instead of consuming stock twice. A replay answers 200 instead of 201.
//
//	@ID			recordUsage
//	@Summary		Record material usage on a work
//	@Tags			works
//	@Accept			json
//	@Produce		json
//	@Param			id	path	string	true	"Customer ID"
//	@Param			Idempotency-Key	header	string	false	"Replays the first outcome of a retried request"
//	@Param			request	body	appledger.RecordUsageRequest	true	"Request body"
//	@Success		201	{object}	dto.Response{data=appledger.UsageResult}
//	@Success		200	{object}	dto.Response{data=appledger.UsageResult}	"Replayed request"
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/customers/{id}/materials [post]
func (h *LedgerHandler) RecordUsage(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var body recordUsageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.ledgerService.RecordUsage(c.Request.Context(), customerID, appledger.RecordUsageRequest{
		WorkID:     body.WorkID,
		MaterialID: body.MaterialID,
		Quantity:   string(body.Quantity),
		RequestKey: c.GetHeader(IdempotencyKeyHeader),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Replayed {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

var _ json.Unmarshaler = (*quantityInput)(nil)
