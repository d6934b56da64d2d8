package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// ConsistencyMetrics counts detector findings, corrections and returns.
// All methods are safe on a nil receiver so services may run without metrics.
type ConsistencyMetrics struct {
	correctionsTotal   *Counter
	correctionDuration *Histogram
	findingsTotal      *Counter
	returnsTotal       *Counter
	creditsTotal       *Counter
}

// NewConsistencyMetrics registers the instruments on meter.
func NewConsistencyMetrics(meter metric.Meter) (*ConsistencyMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &ConsistencyMetrics{}
	var err error
	if m.correctionsTotal, err = NewCounter(meter, "consistency_corrections_total",
		"Corrections executed by action and outcome", "{corrections}"); err != nil {
		return nil, err
	}
	if m.correctionDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "consistency_correction_duration_seconds",
		Description: "Correction latency including the unit of work",
		Unit:        "s",
		Boundaries:  OperationDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.findingsTotal, err = NewCounter(meter, "consistency_findings_total",
		"Inconsistencies reported by detector selector", "{findings}"); err != nil {
		return nil, err
	}
	if m.returnsTotal, err = NewCounter(meter, "consistency_returns_total",
		"Processed sales returns by refund type", "{returns}"); err != nil {
		return nil, err
	}
	if m.creditsTotal, err = NewCounter(meter, "consistency_customer_credits_total",
		"Customer credits issued by the refund waterfall", "{credits}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordCorrection records one correction. outcome is APPLIED, ALREADY_APPLIED or the error code.
func (m *ConsistencyMetrics) RecordCorrection(ctx context.Context, action, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.correctionsTotal.Inc(ctx, AttrAction.String(action), AttrOutcome.String(outcome))
	m.correctionDuration.RecordDuration(ctx, elapsed, AttrAction.String(action))
}

// RecordFindings records the number of findings one detector run produced.
func (m *ConsistencyMetrics) RecordFindings(ctx context.Context, selector string, findings int) {
	if m == nil || findings <= 0 {
		return
	}
	m.findingsTotal.Add(ctx, int64(findings), AttrSelector.String(selector))
}

// RecordReturn records a processed return and whether it issued a credit.
func (m *ConsistencyMetrics) RecordReturn(ctx context.Context, refundType string, creditIssued bool) {
	if m == nil {
		return
	}
	m.returnsTotal.Inc(ctx, AttrRefundType.String(refundType))
	if creditIssued {
		m.creditsTotal.Inc(ctx, AttrRefundType.String(refundType))
	}
}

// PoolMetrics samples sql.DB pool statistics into gauges on an interval.
type PoolMetrics struct {
	connections    *Gauge
	connectionsMax *Gauge
	sqlDB          *sql.DB
	interval       time.Duration
	logger         *zap.Logger
	stopCh         chan struct{}
	stopOnce       sync.Once
	wg             sync.WaitGroup
}

// NewPoolMetrics creates pool gauges for sqlDB, sampled every interval (default 15s).
func NewPoolMetrics(meter metric.Meter, sqlDB *sql.DB, interval time.Duration, logger *zap.Logger) (*PoolMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	connections, err := NewGauge(meter, "db_pool_connections", "Connections in the pool by state", "{connection}")
	if err != nil {
		return nil, err
	}
	connectionsMax, err := NewGauge(meter, "db_pool_connections_max", "Maximum open connections", "{connection}")
	if err != nil {
		return nil, err
	}
	return &PoolMetrics{
		connections:    connections,
		connectionsMax: connectionsMax,
		sqlDB:          sqlDB,
		interval:       interval,
		logger:         logger,
		stopCh:         make(chan struct{}),
	}, nil
}

// Start begins sampling in a goroutine until Stop or ctx cancellation.
func (p *PoolMetrics) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.Collect(ctx)
		for {
			select {
			case <-ticker.C:
				p.Collect(ctx)
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Collect records one sample.
func (p *PoolMetrics) Collect(ctx context.Context) {
	stats := p.sqlDB.Stats()
	p.connectionsMax.Record(ctx, int64(stats.MaxOpenConnections))
	p.connections.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	p.connections.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	p.connections.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))
}

// Stop ends sampling. Safe to call more than once.
func (p *PoolMetrics) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		p.wg.Wait()
		p.logger.Debug("Database pool metrics stopped")
	})
}
