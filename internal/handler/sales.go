package handler

import (
	"net/http"

	"bizledger/internal/apierror"
	"bizledger/internal/dto"
	"bizledger/internal/middleware"
	"bizledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesHandler struct {
	sales   service.SaleService
	returns service.ReturnService
}

func NewSalesHandler(sales service.SaleService, returns service.ReturnService) *SalesHandler {
	return &SalesHandler{sales: sales, returns: returns}
}

// Checkout godoc
// @Summary      Complete a sale
// @Description  Creates the sale, records the income transaction, deducts stock and applies credit — all in one database transaction.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CheckoutRequest true "Cart"
// @Success      201  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError "Insufficient stock or credit limit exceeded"
// @Router       /v1/sales [post]
func (h *SalesHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	cashierID, _ := uuid.Parse(claims.UserID)

	resp, err := h.sales.Checkout(c.Request.Context(), cashierID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// VoidSale godoc
// @Summary      Void a sale
// @Description  Marks the sale voided, restores stock and records a compensating expense. Rejected if the sale has returns.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string              true "Sale UUID"
// @Param        body body dto.VoidSaleRequest true "Reason"
// @Success      200  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sales/{id}/void [post]
func (h *SalesHandler) VoidSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.VoidSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.sales.VoidSale(c.Request.Context(), middleware.ActorID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSale godoc
// @Summary      Get one sale with its items
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) GetSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	resp, err := h.sales.GetSale(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListSales godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        date        query string false "YYYY-MM-DD"
// @Param        status      query string false "completed | voided | all"
// @Param        customer_id query string false "Filter by customer"
// @Success      200 {object} dto.SaleListResponse
// @Router       /v1/sales [get]
func (h *SalesHandler) ListSales(c *gin.Context) {
	var filter dto.SaleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.sales.ListSales(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProcessReturn godoc
// @Summary      Process a return against a sale
// @Description  Refunds at original sale prices, restocks the units and unwinds credit for credit sales. Cumulative returns never exceed sold quantities.
// @Tags         returns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ProcessReturnRequest true "Return lines"
// @Success      201  {object} dto.ReturnResponse
// @Failure      409  {object} apierror.APIError "Over-return"
// @Router       /v1/returns [post]
func (h *SalesHandler) ProcessReturn(c *gin.Context) {
	var req dto.ProcessReturnRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.returns.ProcessReturn(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetReturn godoc
// @Summary      Get one return
// @Tags         returns
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Return UUID"
// @Success      200 {object} dto.ReturnResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/returns/{id} [get]
func (h *SalesHandler) GetReturn(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	resp, err := h.returns.GetReturn(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListSaleReturns godoc
// @Summary      List returns processed against a sale
// @Tags         returns
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200 {array} dto.ReturnResponse
// @Router       /v1/sales/{id}/returns [get]
func (h *SalesHandler) ListSaleReturns(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	resp, err := h.returns.ListBySale(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
