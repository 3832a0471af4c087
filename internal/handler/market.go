package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetPopular godoc
// @Summary      List popular assets
// @Description  Top 50 USDT pairs by 24h quote volume with leveraged tokens removed. Falls back to a hardcoded list when the exchange fails.
// @Tags         market
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /popular [get]
func (h *Handler) GetPopular(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-popular")
	defer span.End()

	list := h.market.Popular(ctx)
	span.SetAttributes(attribute.Int("coins", len(list.Coins)), attribute.Bool("simulated", list.Simulated))

	body := gin.H{
		"success": list.Err == nil,
		"data":    list.Coins,
	}
	if list.Simulated {
		body["isSimulated"] = true
	}
	if list.Err != nil {
		body["error"] = list.Err.Error()
	}
	c.JSON(http.StatusOK, body)
}
