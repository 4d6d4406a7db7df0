package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ejoheza/backend/pkg/email"
	"github.com/ejoheza/backend/pkg/queue"
)

// dequeueBackoff is the pause after a failed dequeue (e.g. Redis unreachable).
const dequeueBackoff = 2 * time.Second

// JobSource hands out jobs and takes back the ones that failed.
type JobSource interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	DeadLetter(ctx context.Context, job *queue.Job, cause error) error
}

// EmailProcessor delivers queued email jobs.
type EmailProcessor struct {
	jobs   JobSource
	sender email.Sender
	logger *zap.Logger
}

// NewEmailProcessor creates an email job processor.
func NewEmailProcessor(jobs JobSource, sender email.Sender, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{jobs: jobs, sender: sender, logger: logger}
}

// Process sends the email carried by one job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	res, err := p.sender.Send(ctx, email.Message{
		To:      payload.To,
		Subject: payload.Subject,
		HTML:    payload.HTML,
		ReplyTo: payload.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("send %s email: %w", payload.Kind, err)
	}
	p.logger.Info("email sent", zap.String("job_id", job.ID), zap.String("kind", payload.Kind), zap.String("message_id", res.MessageID))
	return nil
}

// Run dequeues and processes jobs until ctx is cancelled. A failed job goes
// straight to the dead-letter list; nothing is retried.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(dequeueBackoff):
			}
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if dlqErr := p.jobs.DeadLetter(ctx, job, err); dlqErr != nil {
				p.logger.Error("dead-letter failed", zap.String("job_id", job.ID), zap.Error(dlqErr))
			}
		}
	}
}
