package assets

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

	// assets
	r.POST("/assets", h.CreateAsset)
	r.POST("/assets/bulk", auth.Require(auth.OpAssetBulkImport), h.BulkImport)
	r.GET("/assets", h.ListAssets)
	r.GET("/assets/available", h.AvailableAssets)
	r.GET("/assets/reports/utilization", h.Utilization)
	r.GET("/assets/code/:asset_code", h.GetAssetByCode)
	r.GET("/assets/:asset_id", h.GetAsset)
	r.PUT("/assets/:asset_id", h.UpdateAsset)
	r.PATCH("/assets/:asset_id/status", h.UpdateStatus)
	r.DELETE("/assets/:asset_id", auth.Require(auth.OpAssetDelete), h.RetireAsset)

	// scan / qr
	r.POST("/assets/:asset_id/scan", h.ScanAsset)
	r.GET("/assets/:asset_id/qr", h.QRCode)

	// logs
	r.GET("/assets/:asset_id/logs", h.ListLogs)
	r.POST("/assets/:asset_id/service-logs", h.AddServiceLog)
	r.GET("/assets/:asset_id/service-logs", h.ListServiceLogs)

	// categories
	r.POST("/categories", auth.Require(auth.OpCategoryCreate), h.CreateCategory)
	r.GET("/categories", h.ListCategories)
}

// CreateAsset godoc
// @Summary      機器の新規登録
// @Tags         assets
// @Accept       json
// @Produce      json
// @Param        request body CreateAssetRequest true "asset"
// @Success      201 {object} AssetResponse
// @Failure      400 {object} object
// @Router       /assets [post]
func (h *Handler) CreateAsset(c *gin.Context) {
	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("CreateAsset: bind error: %v", err)
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.CreateAsset(c.Request.Context(), req, auth.CallerID(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.Header("Location", "/assets/"+strconv.FormatInt(res.AssetID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) BulkImport(c *gin.Context) {
	var req BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.BulkImport(c.Request.Context(), req, auth.CallerID(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetAsset(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("asset_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "asset_id must be a number"))
		return
	}
	res, err := h.svc.GetAsset(c.Request.Context(), id)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetAssetByCode はQRスキャン後のコード照会に使う
func (h *Handler) GetAssetByCode(c *gin.Context) {
	code := strings.TrimPrefix(c.Param("asset_code"), "VITALOPS:ASSET:")
	res, err := h.svc.GetAssetByCode(c.Request.Context(), code)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListAssets godoc
// @Summary      機器の検索・一覧
// @Tags         assets
// @Produce      json
// @Param        status   query string false "status filter"
// @Param        category query int    false "category id"
// @Param        search   query string false "name/code/serial partial match"
// @Success      200 {object} object
// @Router       /assets [get]
func (h *Handler) ListAssets(c *gin.Context) {
	var q AssetSearchQuery
	if v := c.Query("status"); v != "" {
		st := Status(v)
		if !ValidStatus(st) {
			c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid status filter"))
			return
		}
		q.Status = &st
	}
	if v := c.Query("category"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.CategoryID = &n
		}
	}
	if v := c.Query("search"); v != "" {
		q.Search = &v
	}
	p := Page{
		Limit:  atoiDef(c.Query("limit"), 50),
		Offset: atoiDef(c.Query("offset"), 0),
		Order:  strings.ToLower(c.DefaultQuery("order", "desc")),
	}
	items, total, err := h.svc.ListAssets(c.Request.Context(), q, p)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "next_offset": nextOffset(total, p)})
}

func (h *Handler) UpdateAsset(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("asset_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "asset_id must be a number"))
		return
	}
	var req UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.UpdateAsset(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("asset_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "asset_id must be a number"))
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) RetireAsset(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("asset_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "asset_id must be a number"))
		return
	}
	if err := h.svc.RetireAsset(c.Request.Context(), id); err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"retired": true})
}

func (h *Handler) ScanAsset(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("asset_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "asset_id must be a number"))
		return
	}
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.ScanAsset(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) QRCode(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("asset_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "asset_id must be a number"))
		return
	}
	png, err := h.svc.QRCodePNG(c.Request.Context(), id, atoiDef(c.Query("size"), 256))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) ListLogs(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("asset_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "asset_id must be a number"))
		return
	}
	items, err := h.svc.ListLogs(c.Request.Context(), id, atoiDef(c.Query("limit"), 100))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) AddServiceLog(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("asset_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "asset_id must be a number"))
		return
	}
	var req ServiceLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.AddServiceLog(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListServiceLogs(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("asset_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "asset_id must be a number"))
		return
	}
	items, err := h.svc.ListServiceLogs(c.Request.Context(), id, atoiDef(c.Query("limit"), 100))
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.CreateCategory(c.Request.Context(), req)
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListCategories(c *gin.Context) {
	items, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Utilization(c *gin.Context) {
	res, err := h.svc.Utilization(c.Request.Context())
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) AvailableAssets(c *gin.Context) {
	items, err := h.svc.AvailableAssets(c.Request.Context())
	if err != nil {
		c.JSON(ToHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
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
