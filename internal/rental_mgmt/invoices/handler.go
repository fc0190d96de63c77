package invoices

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"vitalops-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/invoices", h.CreateInvoice)
	r.GET("/invoices", h.ListInvoices)
	r.GET("/invoices/:invoice_id", h.GetInvoice)
	r.POST("/invoices/:invoice_id/send", h.SendInvoice)
	r.POST("/invoices/:invoice_id/cancel", auth.Require(auth.OpInvoiceCancel), h.CancelInvoice)
}

// CreateInvoice godoc
// @Summary      請求書の作成（金額はサーバ側で再計算）
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body CreateInvoiceRequest true "invoice"
// @Success      201 {object} InvoiceResponse
// @Router       /invoices [post]
func (h *Handler) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.CreateInvoice(c.Request.Context(), req, auth.CallerID(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.Header("Location", "/invoices/"+strconv.FormatInt(res.InvoiceID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetInvoice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("invoice_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invoice_id must be a number"))
		return
	}
	res, err := h.svc.GetInvoice(c.Request.Context(), id)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListInvoices(c *gin.Context) {
	var q InvoiceSearchQuery
	if v := c.Query("status"); v != "" {
		st := Status(v)
		if !ValidStatus(st) {
			c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid status filter"))
			return
		}
		q.Status = &st
	}
	if v := c.Query("type"); v != "" {
		t := InvoiceType(v)
		if !ValidInvoiceType(t) {
			c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid type filter"))
			return
		}
		q.Type = &t
	}
	if v := c.Query("customer"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.CustomerID = &n
		}
	}
	q.Overdue = c.Query("overdue") == "true"
	p := Page{
		Limit:  atoiDef(c.Query("limit"), 50),
		Offset: atoiDef(c.Query("offset"), 0),
		Order:  strings.ToLower(c.DefaultQuery("order", "desc")),
	}
	items, total, err := h.svc.ListInvoices(c.Request.Context(), q, p)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "next_offset": nextOffset(total, p)})
}

func (h *Handler) SendInvoice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("invoice_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invoice_id must be a number"))
		return
	}
	res, err := h.svc.SendInvoice(c.Request.Context(), id)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) CancelInvoice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("invoice_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invoice_id must be a number"))
		return
	}
	res, err := h.svc.CancelInvoice(c.Request.Context(), id)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ===== helpers =====

func atoiDef(s string, d int) int {
	if s == "" {
		return d
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return n
}

func nextOffset(total int64, p Page) int {
	n := p.Offset + p.Limit
	if n >= int(total) {
		return 0
	}
	return n
}

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
