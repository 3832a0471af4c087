package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Description  Reports liveness, whether prices are live or simulated, and whether the calculation store is attached
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	mode := "live"
	if h.history.ForceSimulated() {
		mode = "simulated"
	}
	store := "disabled"
	if h.calculations != nil {
		store = "enabled"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"mode":         mode,
		"calculations": store,
	})
}
