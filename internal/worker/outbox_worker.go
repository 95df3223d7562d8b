package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Ledger mirrors bookings into an external spreadsheet.
type Ledger interface {
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error
	DeleteBookingRow(ctx context.Context, bookingID int64) error
}

// Notifier tells humans about booking events.
type Notifier interface {
	NotifyBooking(ctx context.Context, eventType string, event events.BookingEventPayload) error
}

// taskPayload is persisted in SyncTask.Payload as JSON.
type taskPayload struct {
	BookingID int64                       `json:"booking_id"`
	Booking   *models.Booking             `json:"booking,omitempty"`
	Status    string                      `json:"status,omitempty"`
	EventType string                      `json:"event_type,omitempty"`
	Event     *events.BookingEventPayload `json:"event,omitempty"`
}

type Options struct {
	QueueKey      string
	DeadLetterKey string
	PollInterval  time.Duration
	BatchSize     int
}

// OutboxWorker delivers sync_queue tasks to the ledger and the notifier.
// Tasks are always persisted first; Redis or the in-memory channel only
// shorten the delay before the polling loop would find them.
type OutboxWorker struct {
	db            *database.DB
	ledger        Ledger
	notifier      Notifier
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.SyncTask
	queueKey      string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	logger        *zerolog.Logger
}

// FromConfig turns the worker section of the config into a retry policy and options.
func FromConfig(cfg config.WorkerConfig) (RetryPolicy, Options, error) {
	policy := RetryPolicy{MaxRetries: cfg.MaxRetries}
	opts := Options{QueueKey: cfg.QueueKey, DeadLetterKey: cfg.DeadLetterKey}

	for _, d := range []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"initial_delay", cfg.InitialDelay, &policy.InitialDelay},
		{"max_delay", cfg.MaxDelay, &policy.MaxDelay},
		{"poll_interval", cfg.PollInterval, &opts.PollInterval},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return policy, opts, fmt.Errorf("worker %s: %w", d.name, err)
		}
		*d.dst = v
	}
	return policy, opts, nil
}

func NewOutboxWorker(db *database.DB, ledger Ledger, notifier Notifier, redisClient *redis.Client, retry RetryPolicy, opts Options, logger *zerolog.Logger) *OutboxWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if opts.QueueKey == "" {
		opts.QueueKey = "shareit:outbox"
	}
	if opts.DeadLetterKey == "" {
		opts.DeadLetterKey = "shareit:outbox:deadletter"
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &OutboxWorker{
		db:            db,
		ledger:        ledger,
		notifier:      notifier,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan models.SyncTask, 128),
		queueKey:      opts.QueueKey,
		deadLetterKey: opts.DeadLetterKey,
		pollInterval:  opts.PollInterval,
		batchSize:     opts.BatchSize,
		logger:        logger,
	}
}

// EnqueueTask schedules a ledger task for a booking.
func (w *OutboxWorker) EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking, status string) error {
	if taskType == "" {
		return errors.New("task type is required")
	}
	if bookingID == 0 && booking != nil {
		bookingID = booking.ID
	}
	if bookingID == 0 {
		return errors.New("booking id is required")
	}
	return w.enqueue(ctx, taskType, taskPayload{BookingID: bookingID, Booking: booking, Status: status})
}

// SubscribeNotifications turns every booking event on the bus into a notify task.
func (w *OutboxWorker) SubscribeNotifications(bus *events.EventBus) {
	for _, eventType := range events.BookingEvents {
		bus.Subscribe(eventType, func(e *events.Event) error {
			var p events.BookingEventPayload
			if err := e.Decode(&p); err != nil {
				return fmt.Errorf("decode %s: %w", e.Type, err)
			}
			return w.enqueue(context.Background(), models.TaskNotify, taskPayload{
				BookingID: p.BookingID,
				EventType: e.Type,
				Event:     &p,
			})
		})
	}
}

func (w *OutboxWorker) enqueue(ctx context.Context, taskType string, payload taskPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	task := models.SyncTask{
		TaskType:  taskType,
		BookingID: payload.BookingID,
		Payload:   string(raw),
		Status:    models.SyncStatusPending,
	}
	if err := w.db.CreateSyncTask(ctx, &task); err != nil {
		return fmt.Errorf("persist sync task: %w", err)
	}

	if w.redis != nil {
		err := w.pushRedis(ctx, w.queueKey, &task)
		if err == nil {
			return nil
		}
		w.logger.Warn().Err(err).Int64("task_id", task.ID).Msg("redis push failed, using memory queue")
	}

	select {
	case w.queue <- task:
	default:
		w.logger.Warn().Int64("task_id", task.ID).Msg("memory queue full, task left to polling")
	}
	return nil
}

// Start runs the delivery loop until ctx is done.
func (w *OutboxWorker) Start(ctx context.Context) {
	w.logger.Info().Bool("redis", w.redis != nil).Msg("outbox worker started")
	defer w.logger.Info().Msg("outbox worker stopped")

	for ctx.Err() == nil {
		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}
		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		tasks, err := w.db.GetPendingSyncTasks(ctx, w.batchSize)
		if err != nil && ctx.Err() == nil {
			w.logger.Error().Err(err).Msg("fetch pending tasks")
		}
		if len(tasks) == 0 {
			w.sleep(ctx)
			continue
		}
		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

func (w *OutboxWorker) sleep(ctx context.Context) {
	timer := time.NewTimer(w.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (w *OutboxWorker) tryLocalQueue() (models.SyncTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.SyncTask{}, false
	}
}

func (w *OutboxWorker) tryRedis(ctx context.Context) (models.SyncTask, bool) {
	if w.redis == nil {
		return models.SyncTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.queueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.logger.Warn().Err(err).Msg("redis BRPOP failed")
		}
		return models.SyncTask{}, false
	}
	if len(res) != 2 {
		return models.SyncTask{}, false
	}
	var task models.SyncTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("decode redis task")
		return models.SyncTask{}, false
	}
	return task, true
}

// processTask delivers one task. The stored row is authoritative: a task
// already finished through another path is skipped.
func (w *OutboxWorker) processTask(ctx context.Context, queued *models.SyncTask) {
	task, err := w.db.GetSyncTask(ctx, queued.ID)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", queued.ID).Msg("load task")
		return
	}
	if task.Status == models.SyncStatusCompleted || task.Status == models.SyncStatusFailed {
		return
	}

	log := w.logger.With().Int64("task_id", task.ID).Str("type", task.TaskType).Int64("booking_id", task.BookingID).Logger()

	var payload taskPayload
	if err := json.Unmarshal([]byte(task.Payload), &payload); err != nil {
		w.fail(ctx, task, fmt.Errorf("decode payload: %w", err))
		return
	}

	if err := w.handle(ctx, task.TaskType, payload); err != nil {
		log.Warn().Err(err).Int("retry_count", task.RetryCount).Msg("task delivery failed")
		w.retryOrFail(ctx, task, err)
		return
	}

	if err := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusCompleted, "", nil); err != nil {
		log.Error().Err(err).Msg("mark completed")
	}
	metrics.IncOutboxTask(task.TaskType, models.SyncStatusCompleted)
	log.Debug().Msg("task completed")
}

func (w *OutboxWorker) handle(ctx context.Context, taskType string, p taskPayload) error {
	switch taskType {
	case models.TaskUpsert:
		if p.Booking == nil {
			return errors.New("booking payload missing")
		}
		if w.ledger == nil {
			return nil
		}
		return w.ledger.UpsertBooking(ctx, p.Booking)
	case models.TaskUpdateStatus:
		if p.BookingID == 0 || p.Status == "" {
			return errors.New("booking id or status missing")
		}
		if w.ledger == nil {
			return nil
		}
		return w.ledger.UpdateBookingStatus(ctx, p.BookingID, p.Status)
	case models.TaskDelete:
		if p.BookingID == 0 {
			return errors.New("booking id missing")
		}
		if w.ledger == nil {
			return nil
		}
		return w.ledger.DeleteBookingRow(ctx, p.BookingID)
	case models.TaskNotify:
		if p.Event == nil {
			return errors.New("event payload missing")
		}
		if w.notifier == nil {
			return nil
		}
		return w.notifier.NotifyBooking(ctx, p.EventType, *p.Event)
	default:
		return fmt.Errorf("unknown task type: %s", taskType)
	}
}

func (w *OutboxWorker) retryOrFail(ctx context.Context, task *models.SyncTask, cause error) {
	attempt := task.RetryCount + 1
	if w.retryPolicy.Exhausted(attempt) {
		w.fail(ctx, task, cause)
		return
	}

	next := time.Now().Add(w.retryPolicy.NextDelay(attempt))
	if err := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusRetry, cause.Error(), &next); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark retry")
	}
	metrics.IncOutboxTask(task.TaskType, models.SyncStatusRetry)
}

func (w *OutboxWorker) fail(ctx context.Context, task *models.SyncTask, cause error) {
	if err := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusFailed, cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark failed")
	}
	metrics.IncOutboxTask(task.TaskType, models.SyncStatusFailed)
	w.logger.Error().Err(cause).Int64("task_id", task.ID).Str("type", task.TaskType).Msg("task moved to dead letter")

	if w.redis == nil {
		return
	}
	if err := w.pushRedis(ctx, w.deadLetterKey, task); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("dead letter push failed")
	}
}

func (w *OutboxWorker) pushRedis(ctx context.Context, key string, task *models.SyncTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, key, data).Err()
}
