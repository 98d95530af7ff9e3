package duel

import (
	"context"

	"github.com/osse101/DuelBot_Go/internal/logger"
)

// JudgeRetryJob settles duels stuck ACTIVE after a judge outage. It runs on
// the worker pool via the scheduler.
type JudgeRetryJob struct {
	svc Service
}

func NewJudgeRetryJob(svc Service) *JudgeRetryJob {
	return &JudgeRetryJob{svc: svc}
}

// Process implements worker.Job
func (j *JudgeRetryJob) Process(ctx context.Context) error {
	settled, err := j.svc.JudgeAwaiting(ctx)
	if settled > 0 {
		logger.FromContext(ctx).Info(LogMsgAwaitingSettled, "count", settled)
	}
	return err
}
