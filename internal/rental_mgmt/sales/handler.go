package sales

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vitalops-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/sales", h.CreateSale)
	r.GET("/sales", h.ListSales)
	r.GET("/sales/reports/monthly", h.MonthlyReport)
	r.GET("/sales/:sale_id", h.GetSale)
}

func (h *Handler) CreateSale(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.CreateSale(c.Request.Context(), req, auth.CallerID(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.Header("Location", "/sales/"+strconv.FormatInt(res.SaleID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetSale(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("sale_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "sale_id must be a number"))
		return
	}
	res, err := h.svc.GetSale(c.Request.Context(), id)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListSales(c *gin.Context) {
	var q SaleSearchQuery
	if v := c.Query("type"); v != "" {
		t := SaleType(v)
		if !ValidSaleType(t) {
			c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid sale type"))
			return
		}
		q.SaleType = &t
	}
	if v := c.Query("customer"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.CustomerID = &n
		}
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			q.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			q.To = &t
		}
	}
	p := Page{
		Limit:  atoiDef(c.Query("limit"), 50),
		Offset: atoiDef(c.Query("offset"), 0),
		Order:  strings.ToLower(c.DefaultQuery("order", "desc")),
	}
	items, total, err := h.svc.ListSales(c.Request.Context(), q, p)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "next_offset": nextOffset(total, p)})
}

func (h *Handler) MonthlyReport(c *gin.Context) {
	now := time.Now()
	year := atoiDef(c.Query("year"), now.Year())
	month := atoiDef(c.Query("month"), int(now.Month()))
	res, err := h.svc.MonthlyReport(c.Request.Context(), year, month)
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
