package rentals

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"vitalops-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/rentals", h.CreateRental)
	r.GET("/rentals", h.ListRentals)
	r.GET("/rentals/:rental_id", h.GetRental)
	r.POST("/rentals/:rental_id/return", h.ReturnAsset)
	r.POST("/rentals/:rental_id/pause", h.PauseRental)
	r.POST("/rentals/:rental_id/resume", h.ResumeRental)
	r.GET("/rentals/:rental_id/settlement", h.GetSettlement)
	r.POST("/rentals/:rental_id/convert-to-sale", h.ConvertToSale)
	r.POST("/rentals/:rental_id/cancel", auth.Require(auth.OpRentalCancel), h.CancelRental)
}

// CreateRental godoc
// @Summary      レンタル契約の作成（複数機器を一括貸出）
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Param        request body CreateRentalRequest true "rental"
// @Success      201 {object} RentalResponse
// @Failure      409 {object} object "貸出不可の機器を含む"
// @Router       /rentals [post]
func (h *Handler) CreateRental(c *gin.Context) {
	var req CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("CreateRental: bind error: %v", err)
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.CreateRental(c.Request.Context(), req, auth.CallerID(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.Header("Location", "/rentals/"+strconv.FormatInt(res.RentalID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetRental(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("rental_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "rental_id must be a number"))
		return
	}
	res, err := h.svc.GetRental(c.Request.Context(), id)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListRentals(c *gin.Context) {
	var q RentalSearchQuery
	if v := c.Query("status"); v != "" {
		st := Status(v)
		if !ValidStatus(st) {
			c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid status filter"))
			return
		}
		q.Status = &st
	}
	if v := c.Query("customer"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.CustomerID = &n
		}
	}
	p := Page{
		Limit:  atoiDef(c.Query("limit"), 50),
		Offset: atoiDef(c.Query("offset"), 0),
		Order:  strings.ToLower(c.DefaultQuery("order", "desc")),
	}
	items, total, err := h.svc.ListRentals(c.Request.Context(), q, p)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "next_offset": nextOffset(total, p)})
}

func (h *Handler) ReturnAsset(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("rental_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "rental_id must be a number"))
		return
	}
	var req ReturnAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.ReturnAsset(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) PauseRental(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("rental_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "rental_id must be a number"))
		return
	}
	res, err := h.svc.PauseRental(c.Request.Context(), id)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ResumeRental(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("rental_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "rental_id must be a number"))
		return
	}
	res, err := h.svc.ResumeRental(c.Request.Context(), id)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetSettlement(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("rental_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "rental_id must be a number"))
		return
	}
	res, err := h.svc.GetSettlement(c.Request.Context(), id)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ConvertToSale(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("rental_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "rental_id must be a number"))
		return
	}
	var req ConvertToSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.ConvertToSale(c.Request.Context(), id, req, auth.CallerID(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) CancelRental(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("rental_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "rental_id must be a number"))
		return
	}
	res, err := h.svc.CancelRental(c.Request.Context(), id)
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
