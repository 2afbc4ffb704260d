package tickets

import (
	"context"
	"time"

	"skyfare/pkg/logger"
)

// JobProcessor periodically sweeps overdue holds. The per-ticket
// timers handle expiry with second precision; the sweep catches
// timers lost to a process restart.
type JobProcessor struct {
	service  Service
	interval time.Duration
	log      *logger.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewJobProcessor(service Service, interval time.Duration) *JobProcessor {
	return &JobProcessor{
		service:  service,
		interval: interval,
		log:      logger.GetDefault(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called.
func (jp *JobProcessor) Start(ctx context.Context) {
	go jp.run(ctx)
	jp.log.Info("hold expiry sweeper started", "interval", jp.interval.String())
}

func (jp *JobProcessor) Stop() {
	close(jp.stopCh)
	<-jp.doneCh
	jp.log.Info("hold expiry sweeper stopped")
}

func (jp *JobProcessor) run(ctx context.Context) {
	defer close(jp.doneCh)

	ticker := time.NewTicker(jp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			expired, err := jp.service.ExpireOverdue(ctx)
			if err != nil {
				jp.log.WithError(err).Error("hold expiry sweep failed")
				continue
			}
			if expired > 0 {
				jp.log.Info("hold expiry sweep released seats", "expired", expired)
			}
		case <-jp.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}
