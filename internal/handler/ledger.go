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

type LedgerHandler struct{ svc service.LedgerService }

func NewLedgerHandler(svc service.LedgerService) *LedgerHandler { return &LedgerHandler{svc: svc} }

// ── Accounts ─────────────────────────────────────────────────────────────────

// CreateAccount godoc
// @Summary      Create a financial account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateAccountRequest true "Account"
// @Success      201  {object} dto.AccountResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/accounts [post]
func (h *LedgerHandler) CreateAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateAccount(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListAccounts godoc
// @Summary      List active accounts with balances
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.AccountResponse
// @Router       /v1/accounts [get]
func (h *LedgerHandler) ListAccounts(c *gin.Context) {
	resp, err := h.svc.ListAccounts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetAccount godoc
// @Summary      Get one account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Account UUID"
// @Success      200 {object} dto.AccountResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/accounts/{id} [get]
func (h *LedgerHandler) GetAccount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	resp, err := h.svc.GetAccount(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateAccount godoc
// @Summary      Update account metadata
// @Description  Name, payment method binding and default flag only. Balances move through transactions.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "Account UUID"
// @Param        body body dto.UpdateAccountRequest true "Fields to update"
// @Success      200  {object} dto.AccountResponse
// @Router       /v1/accounts/{id} [put]
func (h *LedgerHandler) UpdateAccount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.UpdateAccountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateAccount(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Transactions ─────────────────────────────────────────────────────────────

// RecordTransaction godoc
// @Summary      Record a ledger transaction
// @Description  Appends an income, expense or transfer and applies its balance effect atomically.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RecordTransactionRequest true "Movement"
// @Success      201  {object} dto.TransactionResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/transactions [post]
func (h *LedgerHandler) RecordTransaction(c *gin.Context) {
	var req dto.RecordTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordTransaction(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListTransactions godoc
// @Summary      List transactions
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        type       query string false "income | expense | transfer"
// @Param        account_id query string false "Filter by account"
// @Param        category   query string false "Filter by category"
// @Param        from       query string false "YYYY-MM-DD inclusive"
// @Param        to         query string false "YYYY-MM-DD exclusive"
// @Success      200 {object} dto.TransactionListResponse
// @Router       /v1/transactions [get]
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	var filter dto.TransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetTransaction godoc
// @Summary      Get one transaction
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Transaction UUID"
// @Success      200 {object} dto.TransactionResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/transactions/{id} [get]
func (h *LedgerHandler) GetTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	resp, err := h.svc.GetTransaction(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
