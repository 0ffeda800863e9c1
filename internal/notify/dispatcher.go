package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/events"
	"github.com/crewdesk/crewdesk-api/internal/jobs"
	"github.com/crewdesk/crewdesk-api/internal/platform/logger"
	"github.com/crewdesk/crewdesk-api/internal/platform/metrics"
	"github.com/crewdesk/crewdesk-api/internal/redact"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

// JobType identifies notification jobs on the job queue.
const JobType = "telegram_notification"

// DefaultSendTimeout bounds one send when DispatcherConfig leaves it unset.
const DefaultSendTimeout = 10 * time.Second

// ErrSendFailed wraps the reason reported by the Sender for a failed delivery.
var ErrSendFailed = errors.New("telegram notification failed")

// DispatcherConfig tunes the Dispatcher.
type DispatcherConfig struct {
	SendTimeout time.Duration
}

// Dispatcher turns task events into notification jobs. It implements
// events.EventHandler and never blocks the emitter: when the queue is full
// the notification is dropped.
type Dispatcher struct {
	scopes      store.Scopes
	sender      Sender
	queue       jobs.QueueWriter
	metrics     *metrics.Metrics
	sendTimeout time.Duration
	logger      *slog.Logger
}

var _ events.EventHandler = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher. metrics may be nil.
func NewDispatcher(
	scopes store.Scopes,
	sender Sender,
	queue jobs.QueueWriter,
	config DispatcherConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*Dispatcher, error) {
	if scopes == nil {
		return nil, domain.NewValidationError("scopes", "cannot be nil")
	}
	if sender == nil {
		return nil, domain.NewValidationError("sender", "cannot be nil")
	}
	if queue == nil {
		return nil, domain.NewValidationError("queue", "cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	timeout := config.SendTimeout
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}

	return &Dispatcher{
		scopes:      scopes,
		sender:      sender,
		queue:       queue,
		metrics:     m,
		sendTimeout: timeout,
		logger:      logger.With(slog.String("component", "notify_dispatcher")),
	}, nil
}

// HandleEvent implements events.EventHandler. Events other than task
// creation and completion are ignored.
func (d *Dispatcher) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeTaskCreated && event.Type != events.TypeTaskCompleted {
		return nil
	}

	log := logger.FromContextOrDefault(ctx, d.logger)

	var task domain.Task
	if err := event.UnmarshalPayload(&task); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
	}

	job := &notificationJob{
		id:         uuid.New(),
		eventType:  event.Type,
		ownerID:    event.OwnerID,
		task:       task,
		dispatcher: d,
	}
	if err := d.queue.Enqueue(job); err != nil {
		d.metrics.RecordNotification(event.Type, metrics.OutcomeDropped)
		log.Warn("notification dropped",
			slog.String("event_type", event.Type),
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return nil
	}

	log.Debug("notification queued",
		slog.String("event_type", event.Type),
		slog.String("task_id", task.ID.String()),
		slog.String("job_id", job.id.String()))
	return nil
}

// Message renders the notification text for an event type.
func Message(eventType string, task *domain.Task) (string, bool) {
	switch eventType {
	case events.TypeTaskCreated:
		return NewTaskMessage(task), true
	case events.TypeTaskCompleted:
		return CompletedTaskMessage(task), true
	default:
		return "", false
	}
}

type notificationJob struct {
	id         uuid.UUID
	eventType  string
	ownerID    uuid.UUID
	task       domain.Task
	dispatcher *Dispatcher
}

var _ jobs.Job = (*notificationJob)(nil)

func (j *notificationJob) ID() uuid.UUID { return j.id }
func (j *notificationJob) Type() string  { return JobType }

// Execute loads the owner's credentials and makes one send attempt. Missing
// credentials are not an error.
func (j *notificationJob) Execute(ctx context.Context) error {
	d := j.dispatcher
	log := d.logger.With(
		slog.String("event_type", j.eventType),
		slog.String("task_id", j.task.ID.String()),
		slog.String("owner_id", j.ownerID.String()),
	)

	cfg, err := d.scopes.ForOwner(j.ownerID).Config().Find(ctx)
	if err != nil && !errors.Is(err, store.ErrConfigNotFound) {
		return fmt.Errorf("failed to load notification config: %w", err)
	}
	if !cfg.Configured() {
		d.metrics.RecordNotification(j.eventType, metrics.OutcomeSkipped)
		log.Debug("notifications not configured, skipping")
		return nil
	}

	text, ok := Message(j.eventType, &j.task)
	if !ok {
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	result := d.sender.Send(sendCtx, cfg.BotToken, cfg.ChatID, text)
	if !result.Success {
		d.metrics.RecordNotification(j.eventType, metrics.OutcomeFailed)
		return fmt.Errorf("%w: %s", ErrSendFailed, redact.BotToken(result.Error))
	}

	d.metrics.RecordNotification(j.eventType, metrics.OutcomeSent)
	log.Info("notification sent")
	return nil
}
