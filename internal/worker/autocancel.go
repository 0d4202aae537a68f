// Package worker runs the durable attendance-deadline machinery on a
// redis-backed task queue.  Tasks survive process restarts and retry
// with backoff, so a booking whose member never shows up is cancelled
// even across crashes.
package worker

import (
    "context"
    "encoding/json"
    "errors"
    "time"

    "github.com/hibiken/asynq"
)

const (
    // TypeAttendanceDeadline is the task type for auto-cancel wake-ups.
    TypeAttendanceDeadline = "attendance:deadline"

    deadlineQueue = "deadlines"
)

type deadlinePayload struct {
    BookingID uint64 `json:"booking_id"`
}

// Deadlines schedules and cancels attendance-deadline tasks.  It
// satisfies the booking service's scheduler dependency.
type Deadlines struct {
    client    *asynq.Client
    inspector *asynq.Inspector
}

// NewDeadlines builds a scheduler on the given redis connection.
func NewDeadlines(opt asynq.RedisClientOpt) *Deadlines {
    return &Deadlines{
        client:    asynq.NewClient(opt),
        inspector: asynq.NewInspector(opt),
    }
}

// Schedule enqueues a deadline task that fires at the given instant and
// returns its task id.  An instant already in the past enqueues for
// immediate processing, which is what the startup recovery scan relies
// on for overdue bookings.
func (d *Deadlines) Schedule(ctx context.Context, bookingID uint64, at time.Time) (string, error) {
    body, err := json.Marshal(deadlinePayload{BookingID: bookingID})
    if err != nil {
        return "", err
    }
    opts := []asynq.Option{
        asynq.Queue(deadlineQueue),
        asynq.MaxRetry(10),
        asynq.Timeout(time.Minute),
    }
    if at.After(time.Now()) {
        opts = append(opts, asynq.ProcessAt(at))
    }
    info, err := d.client.EnqueueContext(ctx, asynq.NewTask(TypeAttendanceDeadline, body), opts...)
    if err != nil {
        return "", err
    }
    return info.ID, nil
}

// Cancel removes a scheduled deadline task.  Tasks that already fired
// or were never enqueued are not an error.
func (d *Deadlines) Cancel(_ context.Context, taskID string) error {
    err := d.inspector.DeleteTask(deadlineQueue, taskID)
    if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
        return nil
    }
    return err
}

// Close releases the underlying redis connections.
func (d *Deadlines) Close() error {
    if err := d.client.Close(); err != nil {
        return err
    }
    return d.inspector.Close()
}

// DeadlineEvaluator decides what happens when a deadline task fires.
type DeadlineEvaluator interface {
    EvaluateDeadline(ctx context.Context, bookingID uint64) error
}

// Run starts the task server and blocks until it stops.  Handler errors
// make asynq retry the task with exponential backoff.
func Run(opt asynq.RedisClientOpt, evaluator DeadlineEvaluator) error {
    srv := asynq.NewServer(opt, asynq.Config{
        Concurrency: 5,
        Queues:      map[string]int{deadlineQueue: 1},
    })

    mux := asynq.NewServeMux()
    mux.HandleFunc(TypeAttendanceDeadline, func(ctx context.Context, t *asynq.Task) error {
        var p deadlinePayload
        if err := json.Unmarshal(t.Payload(), &p); err != nil {
            return err
        }
        return evaluator.EvaluateDeadline(ctx, p.BookingID)
    })

    return srv.Run(mux)
}
