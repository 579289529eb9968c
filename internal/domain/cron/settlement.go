package cron

import (
	"context"
	"time"

	"github.com/trackpredict/backend/internal/domain/settle"
	"github.com/trackpredict/backend/pkg/xcontext"
)

// SettlementCronJob drives the settlement engine over all predictions whose
// window has elapsed. An interrupted run leaves its predictions unprocessed
// and the next run picks them up again.
type SettlementCronJob struct {
	engine   *settle.Engine
	interval time.Duration
}

func NewSettlementCronJob(engine *settle.Engine, interval time.Duration) *SettlementCronJob {
	return &SettlementCronJob{engine: engine, interval: interval}
}

func (job *SettlementCronJob) Do(ctx context.Context) {
	if err := job.engine.ProcessExpired(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot scan for expired predictions: %v", err)
	}
}

func (job *SettlementCronJob) RunNow() bool {
	return true
}

func (job *SettlementCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
