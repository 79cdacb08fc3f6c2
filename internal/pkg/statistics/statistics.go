package statistics

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/FeeFox/internal/pkg/billing"
	"github.com/ManuelReschke/FeeFox/internal/pkg/cache"
)

const (
	CacheExpiration = 5 * time.Minute
)

// Source computes fresh dashboard counters, normally *billing.Service.
type Source interface {
	Dashboard(ctx context.Context) (*billing.DashboardCounts, error)
	CurrentMonthYear() string
}

func dashboardKey(monthYear string) string {
	return cache.Key("dashboard", monthYear)
}

// GetDashboard returns the cached counters of the current month, computing and
// caching them on a miss. Cache failures fall back to the database silently.
func GetDashboard(ctx context.Context, src Source) (*billing.DashboardCounts, error) {
	key := dashboardKey(src.CurrentMonthYear())

	var counts billing.DashboardCounts
	if err := cache.GetJSON(key, &counts); err == nil {
		return &counts, nil
	}

	fresh, err := src.Dashboard(ctx)
	if err != nil {
		log.Errorf("[Statistics] Error computing dashboard: %v", err)
		return nil, err
	}

	if err := cache.SetJSON(key, fresh, CacheExpiration); err != nil {
		log.Warnf("[Statistics] Error caching dashboard: %v", err)
	}
	return fresh, nil
}

// Invalidate drops the cached counters of monthYear. Called after payments,
// imports and monthly generation.
func Invalidate(monthYear string) {
	if err := cache.Delete(dashboardKey(monthYear)); err != nil {
		log.Warnf("[Statistics] Error invalidating dashboard cache: %v", err)
	}
}
