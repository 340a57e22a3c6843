// README: Quote handlers: calculate, lock, surge inspection, rule testing, analytics, seeding.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roadcall/internal/geo"
	"roadcall/internal/maps"
	"roadcall/internal/modules/pricing"
	"roadcall/internal/types"
)

type QuoteHandler struct {
	quotes    *pricing.Service
	estimator *maps.TravelEstimator
	log       *zap.Logger
}

func NewQuoteHandler(quotes *pricing.Service, estimator *maps.TravelEstimator, log *zap.Logger) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, estimator: estimator, log: log}
}

type quoteRequest struct {
	JobType       string     `json:"jobType" binding:"required,oneof=emergency scheduled"`
	ServiceTypeID string     `json:"serviceTypeId" binding:"required"`
	Lat           float64    `json:"lat" binding:"min=-90,max=90"`
	Lng           float64    `json:"lng" binding:"min=-180,max=180"`
	ScheduledFor  *time.Time `json:"scheduledFor,omitempty"`
	CustomerID    string     `json:"customerId,omitempty"`
	FleetID       *string    `json:"fleetAccountId,omitempty"`
	VehicleCount  int        `json:"vehicleCount,omitempty"`
	DurationMin   *float64   `json:"estimatedDuration,omitempty"`
	DistanceMiles *float64   `json:"estimatedDistance,omitempty"`
	ReferralCode  string     `json:"referralCode,omitempty"`
	IsFirstTime   bool       `json:"isFirstTime,omitempty"`
	LoyaltyPoints int        `json:"loyaltyPoints,omitempty"`
}

func (r quoteRequest) toContext() pricing.QuoteContext {
	q := pricing.QuoteContext{
		JobType:       pricing.JobType(r.JobType),
		ServiceTypeID: types.ID(r.ServiceTypeID),
		Location:      types.Point{Lat: r.Lat, Lng: r.Lng},
		ScheduledFor:  r.ScheduledFor,
		CustomerID:    types.ID(r.CustomerID),
		VehicleCount:  r.VehicleCount,
		DurationMin:   r.DurationMin,
		DistanceMiles: r.DistanceMiles,
		ReferralCode:  r.ReferralCode,
		IsFirstTime:   r.IsFirstTime,
		LoyaltyPoints: r.LoyaltyPoints,
	}
	if r.FleetID != nil {
		id := types.ID(*r.FleetID)
		q.FleetID = &id
	}
	return q
}

func (h *QuoteHandler) Calculate(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q := req.toContext()
	h.fillTravelEstimates(c, &q)

	b, err := h.quotes.CalculatePrice(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, pricing.ErrPricingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("quote calculation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to calculate price"})
		return
	}
	c.JSON(http.StatusOK, b)
}

// fillTravelEstimates enriches a context missing distance or duration with a
// Directions estimate from the nearest hub. Best-effort: on failure the
// quote proceeds with reduced confidence.
func (h *QuoteHandler) fillTravelEstimates(c *gin.Context, q *pricing.QuoteContext) {
	if h.estimator == nil || (q.DistanceMiles != nil && q.DurationMin != nil) {
		return
	}
	origin := nearestHub(q.Location)
	miles, minutes, err := h.estimator.Estimate(c.Request.Context(), origin, q.Location)
	if err != nil {
		h.log.Debug("travel estimate unavailable", zap.Error(err))
		return
	}
	if q.DistanceMiles == nil {
		q.DistanceMiles = &miles
	}
	if q.DurationMin == nil {
		q.DurationMin = &minutes
	}
}

func nearestHub(p types.Point) types.Point {
	best := geo.Hubs[0].Position
	for _, h := range geo.Hubs[1:] {
		if geo.DistanceMiles(h.Position, p) < geo.DistanceMiles(best, p) {
			best = h.Position
		}
	}
	return best
}

func (h *QuoteHandler) Lock(c *gin.Context) {
	jobID := c.Param("jobID")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing job id"})
		return
	}

	var b pricing.Breakdown
	if err := c.ShouldBindJSON(&b); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.quotes.LockPrice(c.Request.Context(), types.ID(jobID), &b); err != nil {
		switch {
		case errors.Is(err, pricing.ErrAlreadyLocked):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.log.Error("price lock failed", zap.Error(err), zap.String("job_id", jobID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to lock price"})
		}
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *QuoteHandler) Surge(c *gin.Context) {
	var query struct {
		Lat float64 `form:"lat" binding:"min=-90,max=90"`
		Lng float64 `form:"lng" binding:"min=-180,max=180"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m := h.quotes.SurgeMultiplier(c.Request.Context(), types.Point{Lat: query.Lat, Lng: query.Lng})
	c.JSON(http.StatusOK, gin.H{"multiplier": m})
}

func (h *QuoteHandler) TestRules(c *gin.Context) {
	var req struct {
		Scenarios []quoteRequest `json:"scenarios" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scenarios := make([]pricing.QuoteContext, len(req.Scenarios))
	for i, s := range req.Scenarios {
		scenarios[i] = s.toContext()
	}
	results, err := h.quotes.TestPricingRules(c.Request.Context(), scenarios)
	if err != nil {
		if errors.Is(err, pricing.ErrPricingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("rule test failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to evaluate scenarios"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *QuoteHandler) Analytics(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be RFC3339"})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be RFC3339"})
		return
	}

	report, err := h.quotes.PricingAnalytics(c.Request.Context(), start, end)
	if err != nil {
		h.log.Error("analytics query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute analytics"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *QuoteHandler) SeedRules(c *gin.Context) {
	if err := h.quotes.CreateDefaultPricingRules(c.Request.Context()); err != nil {
		h.log.Error("rule seeding failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to seed rules"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "seeded"})
}
