package job

import (
	"context"
	"errors"
	"log"
	"time"

	"signal-desk/internal/domain"
	"signal-desk/internal/service"

	"go.opentelemetry.io/otel/trace"
)

type Sweeper interface {
	Sweep(ctx context.Context) (domain.SweepReport, error)
}

// AutoClosePoller runs periodic auto-close sweeps over the open trades.
type AutoClosePoller struct {
	tracer   trace.Tracer
	sweeper  Sweeper
	interval time.Duration
}

func NewAutoClosePoller(tracer trace.Tracer, sweeper Sweeper, pollSecs int) *AutoClosePoller {
	if pollSecs <= 0 {
		pollSecs = 60
	}
	return &AutoClosePoller{
		tracer:   tracer,
		sweeper:  sweeper,
		interval: time.Duration(pollSecs) * time.Second,
	}
}

// Start sweeps once immediately, then on every tick. Blocks until ctx is
// cancelled.
func (p *AutoClosePoller) Start(ctx context.Context) {
	if p.sweeper == nil {
		log.Println("Auto-close poller disabled: no sweeper")
		<-ctx.Done()
		return
	}

	log.Println("Auto-close poller starting...")
	p.sweep(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Auto-close poller stopped")
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *AutoClosePoller) sweep(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "auto-close-poller.sweep")
	defer span.End()

	report, err := p.sweeper.Sweep(ctx)
	if err != nil {
		if errors.Is(err, service.ErrSweepInProgress) {
			log.Println("auto-close sweep skipped: previous sweep still running")
			return
		}
		log.Printf("auto-close sweep error: %v", err)
		return
	}
	if report.Closed > 0 || len(report.Skipped) > 0 {
		log.Printf("auto-close sweep: checked=%d closed=%d skipped=%d",
			report.Checked, report.Closed, len(report.Skipped))
	}
}
