package handler

import (
	appledger "github.com/bizops/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

type activityQuery struct {
	Limit int `form:"limit" binding:"min=0,max=500"`
}

// AppendActivity handles POST /customers/:id/activities. The entry is
// returned even if it could not be stored.
//
//	@ID			appendActivity
//	@Summary		Append an activity entry
//	@Tags			activities
//	@Accept			json
//	@Produce		json
//	@Param			id	path	string	true	"Customer ID"
//	@Param			request	body	appledger.AppendActivityRequest	true	"Request body"
//	@Success		201	{object}	dto.Response{data=ledger.ActivityEntry}
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/customers/{id}/activities [post]
func (h *LedgerHandler) AppendActivity(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req appledger.AppendActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	entry, err := h.ledgerService.AppendActivity(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// ListActivities handles GET /customers/:id/activities
//
//	@ID			listActivities
//	@Summary		List activities, newest first
//	@Tags			activities
//	@Produce		json
//	@Param			id	path	string	true	"Customer ID"
//	@Param			limit	query	integer	false	"Maximum entries (max 500)"
//	@Success		200	{object}	dto.Response{data=[]ledger.ActivityEntry}
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/customers/{id}/activities [get]
func (h *LedgerHandler) ListActivities(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var q activityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindingError(c, err)
		return
	}

	entries, err := h.ledgerService.ListActivities(c.Request.Context(), customerID, q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// GetAnalytics handles GET /customers/:id/analytics: per-work figures plus
// the overall roll-up
//
//	@ID			getAnalytics
//	@Summary		Per-work and overall analytics
//	@Tags			analytics
//	@Produce		json
//	@Param			id	path	string	true	"Customer ID"
//	@Success		200	{object}	dto.Response{data=ledger.Report}
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/customers/{id}/analytics [get]
func (h *LedgerHandler) GetAnalytics(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	report, err := h.ledgerService.Breakdown(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// GetWorkAnalytics handles GET /customers/:id/analytics/works/:workId
//
//	@ID			getWorkAnalytics
//	@Summary		Analytics of one work
//	@Tags			analytics
//	@Produce		json
//	@Param			id	path	string	true	"Customer ID"
//	@Param			workId	path	string	true	"Work ID"
//	@Success		200	{object}	dto.Response{data=ledger.Analytics}
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/customers/{id}/analytics/works/{workId} [get]
func (h *LedgerHandler) GetWorkAnalytics(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	workID, ok := h.ParseID(c, "workId")
	if !ok {
		return
	}

	analytics, err := h.ledgerService.WorkAnalytics(c.Request.Context(), customerID, workID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, analytics)
}
