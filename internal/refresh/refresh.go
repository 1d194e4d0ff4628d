// Package refresh owns the recompute policy around analytics.Compute: reports
// are memoized by a fingerprint of their inputs, recomputation is bounded to
// a minimum interval, and a cron schedule can keep the latest report warm.
package refresh

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/rustyeddy/tradestats/analytics"
	"github.com/rustyeddy/tradestats/internal/metrics"
	"github.com/rustyeddy/tradestats/pkg/logger"
)

// TradeSource supplies the full trade log on each refresh.
type TradeSource interface {
	ListTrades(ctx context.Context) ([]analytics.Trade, error)
}

// Snapshot is a report together with the exact inputs it was computed from.
type Snapshot struct {
	Report      analytics.MetricsReport
	Trades      []analytics.Trade
	Fingerprint uint64
	ComputedAt  time.Time
}

// DefaultCacheTTL bounds how long a report is reused for unchanged inputs.
const DefaultCacheTTL = 10 * time.Minute

type Options struct {
	Balance     float64
	MinInterval time.Duration  // 0 disables throttling
	CacheTTL    time.Duration  // 0 uses DefaultCacheTTL
	Location    *time.Location // nil keeps each timestamp's own location
	Now         func() time.Time
}

type Refresher struct {
	src  TradeSource
	opts Options
	log  *logger.Logger

	cache   *cache.Cache
	limiter *rate.Limiter

	mu     sync.Mutex
	latest *Snapshot

	cronMu sync.Mutex
	cron   *cron.Cron
}

func New(src TradeSource, opts Options, log *logger.Logger) *Refresher {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}

	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &Refresher{
		src:     src,
		opts:    opts,
		log:     log.With(logger.StringField("component", "refresh")),
		cache:   cache.New(opts.CacheTTL, opts.CacheTTL),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Refresh reloads trades and returns the report for them. Inside the minimum
// interval it returns the previous snapshot without touching the source, and
// when the trades and balance are unchanged the cached report is reused.
func (r *Refresher) Refresh(ctx context.Context) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.limiter.Allow() && r.latest != nil {
		metrics.RefreshThrottled.Inc()
		return *r.latest, nil
	}

	trades, err := r.src.ListTrades(ctx)
	if err != nil {
		metrics.RefreshErrors.Inc()
		return Snapshot{}, fmt.Errorf("load trades: %w", err)
	}
	metrics.TradesLoaded.Set(float64(len(trades)))

	fp := Fingerprint(trades, r.opts.Balance)
	key := strconv.FormatUint(fp, 16)
	if v, ok := r.cache.Get(key); ok {
		if snap, ok := v.(Snapshot); ok {
			metrics.ReportCacheHits.Inc()
			r.latest = &snap
			return snap, nil
		}
	}

	opts := []analytics.Option{analytics.WithNow(r.opts.Now)}
	if r.opts.Location != nil {
		opts = append(opts, analytics.WithLocation(r.opts.Location))
	}

	start := time.Now()
	report, err := analytics.Compute(trades, r.opts.Balance, opts...)
	metrics.ComputeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RefreshErrors.Inc()
		return Snapshot{}, fmt.Errorf("compute report: %w", err)
	}
	metrics.ReportRecomputes.Inc()

	snap := Snapshot{
		Report:      report,
		Trades:      trades,
		Fingerprint: fp,
		ComputedAt:  r.opts.Now(),
	}
	r.cache.Set(key, snap, cache.DefaultExpiration)
	r.latest = &snap

	r.log.InfoContext(ctx, "report computed",
		logger.IntField("trades", len(trades)),
		logger.IntField("closed", report.TotalTrades),
		logger.FloatField("total_pnl", report.TotalPnL),
		logger.StringField("fingerprint", key),
	)
	return snap, nil
}

// Latest returns the most recent snapshot without recomputing.
func (r *Refresher) Latest() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.latest == nil {
		return Snapshot{}, false
	}
	return *r.latest, true
}

// Start runs Refresh on schedule (standard cron syntax or a descriptor such as
// "@every 1m") until Stop is called.
func (r *Refresher) Start(ctx context.Context, schedule string) error {
	r.cronMu.Lock()
	defer r.cronMu.Unlock()

	if r.cron != nil {
		return fmt.Errorf("refresher already started")
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := r.Refresh(ctx); err != nil {
			r.log.ErrorContext(ctx, "scheduled refresh failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule refresh %q: %w", schedule, err)
	}

	c.Start()
	r.cron = c
	r.log.InfoContext(ctx, "refresh scheduled", logger.StringField("schedule", schedule))
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	r.cronMu.Lock()
	c := r.cron
	r.cron = nil
	r.cronMu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
}
