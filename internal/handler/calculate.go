package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"hindsight/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const defaultRecentLimit = 20

// Calculate godoc
// @Summary      Project a past investment to today
// @Description  Computes what an amount invested at the start of the period is worth now, with a sampled value-over-time chart
// @Tags         investment
// @Produce      json
// @Param        coinId  query  string  true   "Asset symbol (e.g., BTC)"
// @Param        amount  query  number  true   "Invested amount in USD"
// @Param        period  query  string  false  "One of 1m, 3m, 6m, 1y, 2y, 5y, max"  default(1y)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Router       /calculate [get]
func (h *Handler) Calculate(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.calculate")
	defer span.End()

	req, err := calculationRequest(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	span.SetAttributes(attribute.String("symbol", req.Symbol), attribute.String("period", req.Period))

	result, err := h.investment.Calculate(ctx, req)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFor(err), gin.H{"success": false, "error": err.Error()})
		return
	}

	body := gin.H{
		"success": result.Reason != domain.ReasonUpstream,
		"data":    result,
	}
	if result.IsSimulated {
		body["isSimulated"] = true
	}
	if result.Reason == domain.ReasonUpstream {
		body["error"] = "market data unavailable, showing simulated prices"
	}
	c.JSON(http.StatusOK, body)
}

// Chart godoc
// @Summary      Render the investment curve as PNG
// @Description  Same inputs as /calculate; returns a line chart of the investment value
// @Tags         investment
// @Produce      png
// @Param        coinId  query  string  true   "Asset symbol (e.g., BTC)"
// @Param        amount  query  number  true   "Invested amount in USD"
// @Param        period  query  string  false  "One of 1m, 3m, 6m, 1y, 2y, 5y, max"  default(1y)
// @Success      200  {file}    binary
// @Failure      400  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /chart [get]
func (h *Handler) Chart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.chart")
	defer span.End()

	req, err := calculationRequest(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.investment.Calculate(ctx, req)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusOK {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	png, err := h.charts.RenderInvestment(result)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if result.IsSimulated {
		c.Header("X-Simulated", "true")
	}
	c.Data(http.StatusOK, "image/png", png)
}

// RecentCalculations godoc
// @Summary      List recorded calculations
// @Description  Newest first, optionally filtered by symbol. Requires the Postgres store.
// @Tags         investment
// @Produce      json
// @Param        symbol  query  string  false  "Asset symbol filter"
// @Param        limit   query  int     false  "Maximum rows (default 20, max 500)"  default(20)
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /calculations [get]
func (h *Handler) RecentCalculations(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.recent-calculations")
	defer span.End()

	if h.calculations == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "calculation store not configured"})
		return
	}

	symbol := ""
	if s := strings.TrimSpace(c.Query("symbol")); s != "" {
		symbol = domain.BaseSymbol(s)
	}
	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}

	records, err := h.calculations.Recent(ctx, symbol, limit)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, r := range records {
		out = append(out, gin.H{
			"id":           r.ID,
			"symbol":       r.Symbol,
			"period":       r.Period,
			"amount":       r.Amount,
			"initialPrice": r.InitialPrice,
			"finalPrice":   r.FinalPrice,
			"currentValue": r.CurrentValue,
			"isSimulated":  r.Simulated,
			"reason":       r.Reason,
			"dataPoints":   r.DataPoints,
			"warned":       r.Warned,
			"createdAt":    r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}
