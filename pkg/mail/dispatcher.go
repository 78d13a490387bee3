package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorhub-api/pkg/jobs"
)

const jobKind = "mail"

// Delivery outcomes reported to the DeliveryRecorder.
const (
	OutcomeSent    = "sent"
	OutcomeRetried = "retried"
	OutcomeFailed  = "failed"
	OutcomeDropped = "dropped"
)

// DeliveryRecorder observes delivery outcomes.
type DeliveryRecorder interface {
	RecordMailDelivery(outcome string)
}

// DispatcherConfig configures the background delivery pool.
type DispatcherConfig struct {
	Workers     int
	Retries     int
	RetryDelay  time.Duration
	SendTimeout time.Duration
	Logger      *zap.Logger
	Recorder    DeliveryRecorder
}

// Dispatcher queues messages for background delivery through a Mailer.
type Dispatcher struct {
	mailer   Mailer
	queue    *jobs.Queue
	logger   *zap.Logger
	recorder DeliveryRecorder
}

// NewDispatcher builds a dispatcher. Call Start before dispatching.
func NewDispatcher(mailer Mailer, cfg DispatcherConfig) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	d := &Dispatcher{mailer: mailer, logger: cfg.Logger, recorder: cfg.Recorder}
	d.queue = jobs.NewQueue(jobKind, d.handle, jobs.QueueConfig{
		Workers:        cfg.Workers,
		Retries:        cfg.Retries,
		Backoff:        cfg.RetryDelay,
		AttemptTimeout: cfg.SendTimeout,
		OnGiveUp:       d.abandon,
		Logger:         cfg.Logger,
	})
	return d
}

// Start launches the delivery workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop delivers what is still queued and waits for the workers to exit.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
}

// Dispatch enqueues the message. It never fails the caller.
func (d *Dispatcher) Dispatch(msg Message) {
	if err := d.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Kind: jobKind, Payload: msg}); err != nil {
		d.logger.Warn("mail dropped", zap.String("to", msg.To), zap.String("subject", msg.Subject), zap.Error(err))
		d.record(OutcomeDropped)
	}
}

func (d *Dispatcher) handle(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(Message)
	if !ok {
		d.record(OutcomeDropped)
		d.logger.Error("unexpected mail payload", zap.String("job_id", job.ID))
		return nil
	}
	if job.Attempts > 1 {
		d.record(OutcomeRetried)
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("deliver mail to %s: %w", msg.To, err)
	}
	d.record(OutcomeSent)
	return nil
}

// abandon is called once per message that will not be retried.
func (d *Dispatcher) abandon(job jobs.Job, err error) {
	if errors.Is(err, jobs.ErrQueueClosed) || errors.Is(err, jobs.ErrQueueFull) {
		d.record(OutcomeDropped)
		return
	}
	d.record(OutcomeFailed)
}

func (d *Dispatcher) record(outcome string) {
	if d.recorder != nil {
		d.recorder.RecordMailDelivery(outcome)
	}
}
