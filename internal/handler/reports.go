package handler

import (
	"net/http"
	"time"

	"bizledger/internal/apierror"
	"bizledger/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// DailySummary godoc
// @Summary      Daily activity summary
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        date query string false "YYYY-MM-DD (default today)"
// @Success      200 {object} dto.DailySummaryResponse
// @Router       /v1/reports/daily-summary [get]
func (h *ReportsHandler) DailySummary(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid date, expected YYYY-MM-DD"))
			return
		}
		date = parsed
	}
	resp, err := h.svc.DailySummary(c.Request.Context(), date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProfitAndLoss godoc
// @Summary      Profit and loss over a window
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        from query string true "YYYY-MM-DD inclusive"
// @Param        to   query string true "YYYY-MM-DD exclusive"
// @Success      200 {object} dto.ProfitAndLossResponse
// @Router       /v1/reports/profit-loss [get]
func (h *ReportsHandler) ProfitAndLoss(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	resp, err := h.svc.ProfitAndLoss(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CashFlow godoc
// @Summary      Cash flow over a window, per account
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        from query string true "YYYY-MM-DD inclusive"
// @Param        to   query string true "YYYY-MM-DD exclusive"
// @Success      200 {object} dto.CashFlowResponse
// @Router       /v1/reports/cash-flow [get]
func (h *ReportsHandler) CashFlow(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	resp, err := h.svc.CashFlow(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StockValue godoc
// @Summary      Total inventory value at cost
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.StockValueResponse
// @Router       /v1/reports/stock-value [get]
func (h *ReportsHandler) StockValue(c *gin.Context) {
	resp, err := h.svc.StockValue(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CustomerSegments godoc
// @Summary      Customers grouped by engagement segment
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.CustomerSegmentsResponse
// @Router       /v1/reports/customer-segments [get]
func (h *ReportsHandler) CustomerSegments(c *gin.Context) {
	resp, err := h.svc.CustomerSegments(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// parseWindow reads the from/to query params. On failure it writes the
// error response and returns ok=false.
func parseWindow(c *gin.Context) (from, to time.Time, ok bool) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid from, expected YYYY-MM-DD"))
		return from, to, false
	}
	to, err = time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid to, expected YYYY-MM-DD"))
		return from, to, false
	}
	return from, to, true
}
