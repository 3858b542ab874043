package stats

import (
	"fmt"

	"github.com/kaanozd/above-cloud/internal/geo"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type CacheStatsSource interface {
	CacheStats() geo.CacheStats
}

// Reporter periodically logs resolver cache sizes. The caches are never
// evicted, so this is the operator's only view of their growth.
type Reporter struct {
	cron     *cron.Cron
	resolver CacheStatsSource
	schedule string
	logger   *zap.Logger
}

func NewReporter(resolver CacheStatsSource, schedule string, logger *zap.Logger) *Reporter {
	return &Reporter{
		cron:     cron.New(),
		resolver: resolver,
		schedule: schedule,
		logger:   logger,
	}
}

func (r *Reporter) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, r.report); err != nil {
		return fmt.Errorf("invalid stats schedule %q: %w", r.schedule, err)
	}

	r.cron.Start()
	r.logger.Info("Stats reporter started", zap.String("schedule", r.schedule))
	return nil
}

func (r *Reporter) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("Stats reporter stopped")
}

func (r *Reporter) report() {
	stats := r.resolver.CacheStats()
	r.logger.Info("Resolver cache stats",
		zap.Int("forward_entries", stats.ForwardEntries),
		zap.Int("reverse_entries", stats.ReverseEntries))
}
