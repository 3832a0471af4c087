package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hindsight/internal/calculator"
	"hindsight/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const (
	historicalDateLayout = "2006-01-02"
	responseDateLayout   = "02-01-2006"

	// Dates older than this are answered from the monthly reference table.
	historicalLiveWindow = 90 * 24 * time.Hour
)

// GetPrice godoc
// @Summary      Get current price for a crypto asset
// @Description  Returns the latest exchange price in USD, or the reference price flagged as simulated when the exchange is unavailable
// @Tags         prices
// @Produce      json
// @Param        coinId  query  string  true  "Asset symbol (e.g., BTC, ETHUSDT)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Router       /price [get]
func (h *Handler) GetPrice(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-price")
	defer span.End()

	coinID, err := requiredQuery(c, "coinId")
	if err != nil {
		badRequest(c, err)
		return
	}
	span.SetAttributes(attribute.String("symbol", coinID))

	quote := h.prices.GetCurrentPrice(ctx, coinID)
	body := gin.H{
		"success": quote.Err == nil,
		"data": gin.H{
			strings.ToLower(strings.TrimSpace(coinID)): gin.H{"usd": quote.PriceUSD},
		},
	}
	if quote.Simulated {
		body["isSimulated"] = true
	}
	if quote.Err != nil {
		body["error"] = quote.Err.Error()
	}
	c.JSON(http.StatusOK, body)
}

// GetPriceHistory godoc
// @Summary      Get historical price series
// @Description  Returns close prices, quote volumes and base volumes at a granularity chosen from the span. Falls back to a simulated series when the exchange fails.
// @Tags         prices
// @Produce      json
// @Param        symbol     query  string  true   "Asset symbol (e.g., BTC)"
// @Param        startTime  query  int     false  "Range start in unix seconds"  default(0)
// @Param        endTime    query  int     false  "Range end in unix seconds (default now)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Router       /price-history [get]
func (h *Handler) GetPriceHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-price-history")
	defer span.End()

	symbol, err := requiredQuery(c, "symbol")
	if err != nil {
		badRequest(c, err)
		return
	}
	now := h.now()
	start, err := unixSecondsQuery(c, "startTime", time.Unix(0, 0))
	if err != nil {
		badRequest(c, err)
		return
	}
	end, err := unixSecondsQuery(c, "endTime", now)
	if err != nil {
		badRequest(c, err)
		return
	}
	span.SetAttributes(attribute.String("symbol", symbol), attribute.Int64("start", start.Unix()), attribute.Int64("end", end.Unix()))

	res := h.history.Series(ctx, symbol, start, end)
	series := res.Series

	prices := make([][2]float64, 0, series.Len())
	marketCaps := make([][2]float64, 0, series.Len())
	volumes := make([][2]float64, 0, series.Len())
	for _, p := range series.Points {
		ts := float64(p.Timestamp)
		prices = append(prices, [2]float64{ts, p.Price})
		marketCaps = append(marketCaps, [2]float64{ts, p.MarketCap})
		volumes = append(volumes, [2]float64{ts, p.Volume})
	}

	body := gin.H{
		"success": !res.Degraded(),
		"data": gin.H{
			"prices":        prices,
			"market_caps":   marketCaps,
			"total_volumes": volumes,
		},
		"interval":   series.Granularity,
		"dataPoints": series.Len(),
	}
	if res.Simulated() {
		body["isSimulated"] = true
	}
	if res.Err != nil {
		body["error"] = res.Err.Error()
	}
	if first, ok := series.First(); ok && !res.Simulated() && first.Time().Sub(start) > series.Granularity.Step() {
		body["requestedTooEarly"] = true
		body["earliestDataPoint"] = first.Timestamp
	}
	c.JSON(http.StatusOK, body)
}

// GetHistorical godoc
// @Summary      Get the price of an asset on a past date
// @Description  Dates older than 90 days return a simulated monthly price series up to today. Recent dates return the monthly candle close, or a reference estimate when the exchange has none.
// @Tags         prices
// @Produce      json
// @Param        coinId  query  string  true  "Asset symbol (e.g., BTC)"
// @Param        date    query  string  true  "Date as YYYY-MM-DD"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Router       /historical [get]
func (h *Handler) GetHistorical(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-historical")
	defer span.End()

	coinID := strings.TrimSpace(c.Query("coinId"))
	rawDate := strings.TrimSpace(c.Query("date"))
	if coinID == "" || rawDate == "" {
		badRequest(c, &domain.MissingParameterError{Name: "coinId and date"})
		return
	}
	date, err := time.Parse(historicalDateLayout, rawDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid date, expected YYYY-MM-DD: " + rawDate})
		return
	}
	base := domain.BaseSymbol(coinID)
	span.SetAttributes(attribute.String("symbol", base), attribute.String("date", rawDate))

	gen := h.history.Generator()
	now := h.now()

	if date.Before(now.Add(-historicalLiveWindow)) {
		from := date
		if from.Before(calculator.MaxPeriodStart) {
			from = calculator.MaxPeriodStart
		}
		series := gen.GenerateMonthlySeries(base, from, now)
		entries := make([]gin.H, 0, series.Len())
		for _, p := range series.Points {
			entries = append(entries, gin.H{"date": p.Time().Format(responseDateLayout), "price": p.Price})
		}
		data := coinIdentity(base)
		data["price_series"] = entries
		data["isSimulated"] = true
		c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "isSimulated": true})
		return
	}

	if h.history.ForceSimulated() {
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"data":        historicalPoint(base, date, gen.GenerateFallbackPoint(base, date).Price, true),
			"isSimulated": true,
		})
		return
	}

	point, err := h.history.MonthlyClose(ctx, base, date)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusOK, gin.H{
			"success":     false,
			"error":       err.Error(),
			"data":        historicalPoint(base, date, gen.GenerateFallbackPoint(base, date).Price, true),
			"isSimulated": true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    historicalPoint(base, date, point.Price, false),
	})
}

func coinIdentity(base string) gin.H {
	return gin.H{
		"id":     strings.ToLower(base),
		"name":   base,
		"symbol": strings.ToLower(base),
	}
}

func historicalPoint(base string, date time.Time, price float64, simulated bool) gin.H {
	data := coinIdentity(base)
	data["market_data"] = gin.H{"current_price": gin.H{"usd": price}}
	data["date"] = date.Format(responseDateLayout)
	if simulated {
		data["isSimulated"] = true
	}
	return data
}

// maxUnixSeconds is 9999-12-31T23:59:59Z. Larger values overflow UnixMilli.
const maxUnixSeconds = 253402300799

func unixSecondsQuery(c *gin.Context, name string, fallback time.Time) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %q is not unix seconds", name, raw)
	}
	if secs < 0 || secs > maxUnixSeconds {
		return time.Time{}, fmt.Errorf("invalid %s: %d is outside 1970-01-01 to 9999-12-31", name, secs)
	}
	return time.Unix(secs, 0).UTC(), nil
}
