// README: Surge estimator: zone override map plus on-demand supply/demand ratio.
package surge

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"roadcall/internal/config"
	"roadcall/internal/types"
)

// Estimator combines two signals into one multiplier: a periodically
// refreshed per-zone override map and a per-request supply/demand ratio.
// The larger of the two wins, capped at the configured ceiling.
type Estimator struct {
	jobs        JobCounter
	contractors ContractorCounter
	snapshot    SnapshotFunc
	cfg         config.SurgeConfig
	log         *zap.Logger

	mu    sync.RWMutex
	zones map[string]float64
}

func NewEstimator(
	jobs JobCounter,
	contractors ContractorCounter,
	snapshot SnapshotFunc,
	cfg config.SurgeConfig,
	log *zap.Logger,
) *Estimator {
	return &Estimator{
		jobs:        jobs,
		contractors: contractors,
		snapshot:    snapshot,
		cfg:         cfg,
		log:         log,
		zones:       make(map[string]float64),
	}
}

// Multiplier returns the surge multiplier for a location, always in
// [1.0, MaxMultiplier]. Any failure degrades to no surge rather than
// failing the quote.
func (e *Estimator) Multiplier(ctx context.Context, p types.Point) float64 {
	zone := e.zoneMultiplier(ZoneKey(p))
	ratio := e.ratioMultiplier(ctx, p)

	m := zone
	if ratio > m {
		m = ratio
	}
	if m > e.cfg.MaxMultiplier {
		m = e.cfg.MaxMultiplier
	}
	if m < 1.0 {
		m = 1.0
	}
	return m
}

func (e *Estimator) zoneMultiplier(key string) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if m, ok := e.zones[key]; ok {
		return m
	}
	return 1.0
}

// ratioMultiplier maps the active-jobs to available-contractors ratio within
// the configured radius onto a stepped multiplier.
func (e *Estimator) ratioMultiplier(ctx context.Context, p types.Point) float64 {
	active, err := e.jobs.CountActiveNear(ctx, p, e.cfg.RadiusMiles)
	if err != nil {
		e.log.Warn("active job count unavailable", zap.Error(err))
		return 1.0
	}
	available, err := e.contractors.CountAvailableNear(ctx, p, e.cfg.RadiusMiles)
	if err != nil {
		e.log.Warn("contractor count unavailable", zap.Error(err))
		return 1.0
	}

	if available == 0 {
		return 2.5
	}
	ratio := float64(active) / float64(available)
	switch {
	case ratio > 5:
		return 2.5
	case ratio > 3:
		return 2.0
	case ratio > 2:
		return 1.5
	case ratio > 1.5:
		return 1.25
	default:
		return 1.0
	}
}

// RunRefresher recomputes the zone map on a fixed interval until ctx is
// cancelled. Reads never block on a refresh: the new map is built aside and
// swapped under the lock.
func (e *Estimator) RunRefresher(ctx context.Context) {
	e.refresh(ctx)

	ticker := time.NewTicker(e.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.refresh(ctx)
		}
	}
}

func (e *Estimator) refresh(ctx context.Context) {
	if e.snapshot == nil {
		return
	}
	zones, err := e.snapshot(ctx)
	if err != nil {
		e.log.Warn("surge snapshot failed, keeping previous map", zap.Error(err))
		return
	}
	e.mu.Lock()
	e.zones = zones
	e.mu.Unlock()
	e.log.Debug("surge zone map refreshed", zap.Int("zones", len(zones)))
}
