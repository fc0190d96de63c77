package payments

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"vitalops-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/payments", h.RecordPayment)
	r.GET("/payments/reports/daily", h.DailyReport)
	r.GET("/payments/:payment_id", h.GetPayment)
	r.GET("/invoices/:invoice_id/payments", h.ListByInvoice)
}

// RecordPayment godoc
// @Summary      入金の記録（請求書の残額へ同時反映）
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body RecordPaymentRequest true "payment"
// @Success      201 {object} PaymentResponse
// @Router       /payments [post]
func (h *Handler) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.RecordPayment(c.Request.Context(), req, auth.CallerID(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.Header("Location", "/payments/"+strconv.FormatInt(res.PaymentID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetPayment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("payment_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "payment_id must be a number"))
		return
	}
	res, err := h.svc.GetPayment(c.Request.Context(), id)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListByInvoice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("invoice_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invoice_id must be a number"))
		return
	}
	items, err := h.svc.ListByInvoice(c.Request.Context(), id)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) DailyReport(c *gin.Context) {
	day := time.Now()
	if v := c.Query("date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid date format, expected YYYY-MM-DD"))
			return
		}
		day = t
	}
	res, err := h.svc.DailyReport(c.Request.Context(), day)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ===== helpers =====

type errDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func apiErr(code Code, msg string) errDTO {
	var e errDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func apiErrFrom(err error) errDTO {
	if api, ok := err.(*APIError); ok {
		return apiErr(api.Code, api.Message)
	}
	return apiErr(CodeInternal, err.Error())
}
