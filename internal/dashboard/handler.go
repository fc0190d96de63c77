package dashboard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/dashboard/overview", h.Overview)
	r.GET("/dashboard/monthly", h.Monthly)
}

func (h *Handler) Overview(c *gin.Context) {
	res, err := h.svc.Overview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "INTERNAL", "message": err.Error()}})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Monthly(c *gin.Context) {
	now := time.Now()
	year := atoiDef(c.Query("year"), now.Year())
	month := atoiDef(c.Query("month"), int(now.Month()))
	res, err := h.svc.Monthly(c.Request.Context(), year, month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_ARGUMENT", "message": err.Error()}})
		return
	}
	c.JSON(http.StatusOK, res)
}

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
