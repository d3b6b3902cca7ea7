// Package dispatcher implements the periodic batch job that delivers due
// notifications. It is a plain callable, independent of its trigger: the
// HTTP endpoint, the interval ticker and the tests all invoke Run the
// same way.
package dispatcher

import (
	"context"
	"sync"
	"time"

	"tutorhub/internal/notifications/gateway"
	"tutorhub/internal/notifications/repository"
	"tutorhub/pkg/config"
	"tutorhub/pkg/model"
)

type DispatchError struct {
	NotificationID string `json:"notification_id"`
	Error          string `json:"error"`
}

// RunResult aggregates one dispatch run: Processed counts successful
// sends, Total the selected batch size.
type RunResult struct {
	Processed int             `json:"processed"`
	Total     int             `json:"total"`
	Errors    []DispatchError `json:"errors"`
}

type Dispatcher struct {
	repo    repository.NotificationRepository
	gateway gateway.Gateway
	cfg     *config.Config
	now     func() time.Time
}

func NewDispatcher(repo repository.NotificationRepository, gw gateway.Gateway, cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		repo:    repo,
		gateway: gw,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one dispatch cycle: select a bounded batch of due records,
// send each through the gateway with bounded parallelism, and mark the
// successes. A record's failure is recorded and never aborts the rest of
// the batch; failed records stay unsent and are retried next run, which
// yields at-least-once delivery.
func (d *Dispatcher) Run(ctx context.Context) (*RunResult, error) {
	due, err := d.repo.FindDue(ctx, d.now(), d.cfg.DispatchBatchSize)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		Total:  len(due),
		Errors: []DispatchError{},
	}
	if len(due) == 0 {
		return result, nil
	}

	workers := d.cfg.DispatchWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(due) {
		workers = len(due)
	}

	jobs := make(chan *model.NotificationRecord)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range jobs {
				if err := d.dispatchOne(ctx, record); err != nil {
					mu.Lock()
					result.Errors = append(result.Errors, DispatchError{
						NotificationID: record.ID,
						Error:          err.Error(),
					})
					mu.Unlock()
					continue
				}
				mu.Lock()
				result.Processed++
				mu.Unlock()
			}
		}()
	}

	for _, record := range due {
		jobs <- record
	}
	close(jobs)
	wg.Wait()

	d.cfg.Log.Info("Dispatch run finished",
		"total", result.Total,
		"processed", result.Processed,
		"failed", len(result.Errors),
	)
	return result, nil
}

// dispatchOne renders, sends and marks a single record. Each record is
// fully independent: no state is shared with the rest of the batch.
func (d *Dispatcher) dispatchOne(ctx context.Context, record *model.NotificationRecord) error {
	email := renderEmail(record)

	emailID, err := d.gateway.Send(ctx, record.ID, email)
	if err != nil {
		d.cfg.Log.Error("Notification send failed",
			"notification_id", record.ID,
			"type", record.Type,
			"error", err,
		)
		return err
	}

	if err := d.repo.MarkSent(ctx, record.ID, d.now(), emailID); err != nil {
		// The message went out but the mark failed; the record stays
		// eligible and the next run re-sends. Tolerated under the
		// at-least-once contract.
		d.cfg.Log.Error("Failed to mark notification sent",
			"notification_id", record.ID,
			"email_id", emailID,
			"error", err,
		)
		return err
	}

	d.cfg.Log.Debug("Notification dispatched",
		"notification_id", record.ID,
		"type", record.Type,
		"email_id", emailID,
	)
	return nil
}
