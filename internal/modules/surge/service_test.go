package surge

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"roadcall/internal/config"
	"roadcall/internal/types"
)

type fakeCounter struct {
	n   int
	err error
}

func (f fakeCounter) CountActiveNear(context.Context, types.Point, float64) (int, error) {
	return f.n, f.err
}

func (f fakeCounter) CountAvailableNear(context.Context, types.Point, float64) (int, error) {
	return f.n, f.err
}

func testConfig() config.SurgeConfig {
	return config.SurgeConfig{
		RefreshInterval: 10 * time.Millisecond,
		RadiusMiles:     50,
		MaxMultiplier:   3.0,
	}
}

func newEstimator(active, available fakeCounter, snapshot SnapshotFunc) *Estimator {
	return NewEstimator(active, available, snapshot, testConfig(), zap.NewNop())
}

var testPoint = types.Point{Lat: 33.4484, Lng: -112.0740}

func TestZoneKey(t *testing.T) {
	cases := []struct {
		p    types.Point
		want string
	}{
		{types.Point{Lat: 33.4484, Lng: -112.0740}, "33.4:-112.1"},
		{types.Point{Lat: 33.4999, Lng: -112.0001}, "33.4:-112.1"},
		{types.Point{Lat: 33.5, Lng: -112.0}, "33.5:-112.0"},
	}
	for _, tc := range cases {
		if got := ZoneKey(tc.p); got != tc.want {
			t.Errorf("ZoneKey(%v) = %s, want %s", tc.p, got, tc.want)
		}
	}
}

func TestRatioMultiplierTiers(t *testing.T) {
	cases := []struct {
		name      string
		active    int
		available int
		want      float64
	}{
		{"no pressure", 5, 10, 1.0},
		{"ratio just above 1.5", 8, 5, 1.25},
		{"ratio above 2", 11, 5, 1.5},
		{"ratio above 3", 16, 5, 2.0},
		{"ratio above 5", 26, 5, 2.5},
		{"no contractors at all", 1, 0, 2.5},
		{"no contractors no jobs", 0, 0, 2.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEstimator(fakeCounter{n: tc.active}, fakeCounter{n: tc.available}, nil)
			got := e.Multiplier(context.Background(), testPoint)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Multiplier = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMultiplierDegradesOnCounterFailure(t *testing.T) {
	boom := errors.New("redis down")

	e := newEstimator(fakeCounter{err: boom}, fakeCounter{n: 5}, nil)
	if got := e.Multiplier(context.Background(), testPoint); got != 1.0 {
		t.Errorf("Multiplier with failing job counter = %v, want 1.0", got)
	}

	e = newEstimator(fakeCounter{n: 5}, fakeCounter{err: boom}, nil)
	if got := e.Multiplier(context.Background(), testPoint); got != 1.0 {
		t.Errorf("Multiplier with failing contractor counter = %v, want 1.0", got)
	}
}

func TestMultiplierTakesMaxOfZoneAndRatio(t *testing.T) {
	e := newEstimator(fakeCounter{n: 8}, fakeCounter{n: 5}, nil) // ratio tier 1.25
	e.zones = map[string]float64{ZoneKey(testPoint): 2.0}

	if got := e.Multiplier(context.Background(), testPoint); got != 2.0 {
		t.Errorf("Multiplier = %v, want zone override 2.0", got)
	}

	// A different zone's override does not apply here.
	e.zones = map[string]float64{"0.0:0.0": 2.0}
	if got := e.Multiplier(context.Background(), testPoint); got != 1.25 {
		t.Errorf("Multiplier = %v, want ratio 1.25", got)
	}
}

func TestMultiplierCappedAtCeiling(t *testing.T) {
	e := newEstimator(fakeCounter{n: 100}, fakeCounter{n: 0}, nil)
	e.zones = map[string]float64{ZoneKey(testPoint): 5.0}

	if got := e.Multiplier(context.Background(), testPoint); got != 3.0 {
		t.Errorf("Multiplier = %v, want ceiling 3.0", got)
	}
}

func TestRefreshSwapsZoneMap(t *testing.T) {
	snapshot := func(context.Context) (map[string]float64, error) {
		return map[string]float64{ZoneKey(testPoint): 1.8}, nil
	}
	e := newEstimator(fakeCounter{n: 0}, fakeCounter{n: 10}, snapshot)

	e.refresh(context.Background())
	if got := e.Multiplier(context.Background(), testPoint); got != 1.8 {
		t.Errorf("Multiplier after refresh = %v, want 1.8", got)
	}
}

func TestRefreshKeepsMapOnSnapshotFailure(t *testing.T) {
	calls := 0
	snapshot := func(context.Context) (map[string]float64, error) {
		calls++
		if calls == 1 {
			return map[string]float64{ZoneKey(testPoint): 1.8}, nil
		}
		return nil, errors.New("demand feed unavailable")
	}
	e := newEstimator(fakeCounter{n: 0}, fakeCounter{n: 10}, snapshot)

	ctx := context.Background()
	e.refresh(ctx)
	e.refresh(ctx)

	if got := e.Multiplier(ctx, testPoint); got != 1.8 {
		t.Errorf("Multiplier = %v, want stale 1.8 kept after failed refresh", got)
	}
}

func TestRunRefresherStopsOnCancel(t *testing.T) {
	refreshed := make(chan struct{}, 1)
	snapshot := func(context.Context) (map[string]float64, error) {
		select {
		case refreshed <- struct{}{}:
		default:
		}
		return map[string]float64{}, nil
	}
	e := newEstimator(fakeCounter{n: 0}, fakeCounter{n: 10}, snapshot)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.RunRefresher(ctx)
		close(done)
	}()

	select {
	case <-refreshed:
	case <-time.After(time.Second):
		t.Fatal("refresher never ran")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop on cancel")
	}
}
