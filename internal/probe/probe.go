package probe

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/teemow/calboard/internal/agenda"
	"github.com/teemow/calboard/internal/instrumentation"
	"github.com/teemow/calboard/internal/logging"
)

// CheckName is the health check the probe reports under.
const CheckName = "calendars"

// Aggregator runs one aggregation over a window. *server.ServerContext
// satisfies it.
type Aggregator interface {
	Aggregate(ctx context.Context, mode string, window agenda.Window) (*agenda.Result, error)
}

// HealthReporter receives probe outcomes. *server.HealthChecker satisfies it.
type HealthReporter interface {
	SetReady(ready bool)
	SetCheck(name, value string)
}

// Probe periodically aggregates a one-day window and reports how many
// calendars answered. The result is only used for health; it is never
// served to clients.
type Probe struct {
	agg    Aggregator
	health HealthReporter
	logger *slog.Logger
	now    func() time.Time

	scheduler *cron.Cron

	mu   sync.Mutex
	last Status
}

// Status is the outcome of the latest probe run.
type Status struct {
	At        time.Time
	Total     int
	Succeeded int
	Err       error
}

// Summary renders s as "<ok>/<total> ok", or the configuration error.
func (s Status) Summary() string {
	if s.Err != nil {
		return s.Err.Error()
	}
	return fmt.Sprintf("%d/%d ok", s.Succeeded, s.Total)
}

// New creates a probe on the given cron schedule (standard five-field expression
// or a descriptor such as "@every 5m").
func New(agg Aggregator, health HealthReporter, schedule string, logger *slog.Logger) (*Probe, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithOperation(logger, "probe")

	cronLogger := logging.NewCronLogger(logger)
	p := &Probe{
		agg:    agg,
		health: health,
		logger: logger,
		now:    time.Now,
		scheduler: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
	}

	if _, err := p.scheduler.AddFunc(schedule, func() { p.Run(context.Background()) }); err != nil {
		return nil, agenda.NewConfigurationError("invalid probe schedule %q: %v", schedule, err)
	}
	return p, nil
}

// Start runs the probe once and then on schedule until Stop.
func (p *Probe) Start(ctx context.Context) {
	p.Run(ctx)
	p.scheduler.Start()
	p.logger.Info("probe scheduled", slog.Int("entries", len(p.scheduler.Entries())))
}

// Stop halts the scheduler and waits for a running probe to finish or ctx
// to expire.
func (p *Probe) Stop(ctx context.Context) {
	select {
	case <-p.scheduler.Stop().Done():
	case <-ctx.Done():
	}
}

// Run performs a single probe and reports it.
func (p *Probe) Run(ctx context.Context) Status {
	window := agenda.FlatWindow(p.now(), agenda.MinDays)
	start := time.Now()

	res, err := p.agg.Aggregate(ctx, instrumentation.ModeProbe, window)
	status := Status{At: start, Err: err}
	if res != nil {
		status.Total = len(res.CalendarsRequested)
		status.Succeeded = len(res.CalendarsSucceeded)
	}

	p.mu.Lock()
	p.last = status
	p.mu.Unlock()

	if p.health != nil {
		// Only a configuration error marks the service not ready.
		p.health.SetReady(!agenda.IsConfigurationError(err))
		p.health.SetCheck(CheckName, status.Summary())
	}

	attrs := []any{
		slog.Int("succeeded", status.Succeeded),
		slog.Int("total", status.Total),
		slog.Duration(logging.KeyDuration, time.Since(start)),
	}
	switch {
	case err != nil:
		p.logger.Error("probe failed", append(attrs, logging.Err(err))...)
	case status.Succeeded < status.Total:
		p.logger.Warn("probe completed with failures", attrs...)
	default:
		p.logger.Debug("probe completed", attrs...)
	}
	return status
}

// Last returns the latest probe status.
func (p *Probe) Last() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
