package handler

import (
	"net/http"

	appcatalog "github.com/bizops/backend/internal/application/catalog"
	"github.com/bizops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// MaterialHandler handles the material catalog: stock and unit prices
type MaterialHandler struct {
	BaseHandler
	materialService *appcatalog.MaterialService
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(materialService *appcatalog.MaterialService) *MaterialHandler {
	return &MaterialHandler{
		materialService: materialService,
	}
}

// List handles GET /materials
//
//	@ID			listMaterials
//	@Summary		List materials
//	@Tags			materials
//	@Produce		json
//	@Param			search	query	string	false	"Name or mobile substring"
//	@Param			page	query	integer	false	"Page number"
//	@Param			page_size	query	integer	false	"Page size (max 100)"
//	@Success		200	{object}	dto.Response{data=[]appcatalog.MaterialResponse}
//	@Failure		400	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/materials [get]
func (h *MaterialHandler) List(c *gin.Context) {
	var filter appcatalog.MaterialListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.materialService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Create handles POST /materials
//
//	@ID			createMaterial
//	@Summary		Create a material
//	@Tags			materials
//	@Accept			json
//	@Produce		json
//	@Param			request	body	appcatalog.CreateMaterialRequest	true	"Request body"
//	@Success		201	{object}	dto.Response{data=appcatalog.MaterialResponse}
//	@Failure		400	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/materials [post]
func (h *MaterialHandler) Create(c *gin.Context) {
	var req appcatalog.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	material, err := h.materialService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, material)
}

// GetByID handles GET /materials/:id
//
//	@ID			getMaterial
//	@Summary		Get a material
//	@Tags			materials
//	@Produce		json
//	@Param			id	path	string	true	"Material ID"
//	@Success		200	{object}	dto.Response{data=appcatalog.MaterialResponse}
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/materials/{id} [get]
func (h *MaterialHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	material, err := h.materialService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, material)
}

// UpdatePrice handles PUT /materials/:id/price
//
//	@ID			updateMaterialPrice
//	@Summary		Change the unit price of a material
//	@Tags			materials
//	@Accept			json
//	@Produce		json
//	@Param			id	path	string	true	"Material ID"
//	@Param			request	body	appcatalog.UpdatePriceRequest	true	"Request body"
//	@Success		200	{object}	dto.Response{data=appcatalog.MaterialResponse}
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/materials/{id}/price [put]
func (h *MaterialHandler) UpdatePrice(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req appcatalog.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	material, err := h.materialService.UpdatePrice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, material)
}

// AdjustStock handles POST /materials/:id/adjustments
//
//	@ID			adjustMaterialStock
//	@Summary		Correct the stock of a material downwards
//	@Tags			materials
//	@Accept			json
//	@Produce		json
//	@Param			id	path	string	true	"Material ID"
//	@Param			request	body	appcatalog.AdjustStockRequest	true	"Request body"
//	@Success		200	{object}	dto.Response{data=appcatalog.MaterialResponse}
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/materials/{id}/adjustments [post]
func (h *MaterialHandler) AdjustStock(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req appcatalog.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	material, err := h.materialService.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, material)
}
