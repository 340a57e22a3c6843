package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roadcall/internal/config"
	"roadcall/internal/modules/pricing"
	"roadcall/internal/types"
)

type stubRuleStore struct{}

func (stubRuleStore) GetServicePricing(context.Context, types.ID) (*pricing.ServicePricing, error) {
	return &pricing.ServicePricing{ServiceTypeID: "towing", BasePrice: 100}, nil
}

func (stubRuleStore) ListActiveRules(context.Context) ([]pricing.PricingRule, error) {
	return nil, nil
}

func (stubRuleStore) ListFleetOverrides(context.Context, types.ID) ([]pricing.FleetOverride, error) {
	return nil, nil
}

func (stubRuleStore) GetFleetAccount(context.Context, types.ID) (*pricing.FleetAccount, error) {
	return nil, pricing.ErrFleetNotFound
}

func (stubRuleStore) CreateRule(context.Context, *pricing.PricingRule) error {
	return nil
}

func newQuoteRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := pricing.NewService(
		stubRuleStore{}, nil, nil, nil, nil, nil,
		config.QuoteConfig{TTL: 5 * time.Minute, TaxRate: 0.08},
		zap.NewNop(),
	)
	h := NewQuoteHandler(svc, nil, zap.NewNop())
	r := gin.New()
	r.POST("/api/quotes", h.Calculate)
	return r
}

func postQuote(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCalculateAcceptsZeroCoordinates(t *testing.T) {
	r := newQuoteRouter()

	// Lat/lng of exactly 0 are legitimate coordinates, not missing fields.
	w := postQuote(r, `{"jobType":"emergency","serviceTypeId":"towing","lat":0,"lng":0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestCalculateRejectsOutOfRangeCoordinates(t *testing.T) {
	r := newQuoteRouter()

	w := postQuote(r, `{"jobType":"emergency","serviceTypeId":"towing","lat":123,"lng":0}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	w = postQuote(r, `{"jobType":"emergency","serviceTypeId":"towing","lat":0,"lng":-181}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCalculateRejectsMissingRequiredFields(t *testing.T) {
	r := newQuoteRouter()

	w := postQuote(r, `{"lat":33.45,"lng":-112.07}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing jobType/serviceTypeId", w.Code)
	}
}
