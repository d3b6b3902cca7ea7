package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	notificationserrors "tutorhub/internal/notifications/errors"
	"tutorhub/internal/notifications/gateway"
	"tutorhub/pkg/config"
	"tutorhub/pkg/logger"
	"tutorhub/pkg/model"
)

// fakeNotificationRepository is an in-memory repository honoring the due
// query and the conditional mark-sent semantics.
type fakeNotificationRepository struct {
	mu      sync.Mutex
	records map[string]*model.NotificationRecord
}

func newFakeRepository(records ...*model.NotificationRecord) *fakeNotificationRepository {
	m := make(map[string]*model.NotificationRecord, len(records))
	for _, r := range records {
		m[r.ID] = r
	}
	return &fakeNotificationRepository{records: m}
}

func (f *fakeNotificationRepository) Insert(ctx context.Context, record *model.NotificationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.ID] = record
	return nil
}

func (f *fakeNotificationRepository) FindByID(ctx context.Context, id string) (*model.NotificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.records[id]; ok {
		return r, nil
	}
	return nil, notificationserrors.ErrNotFound
}

func (f *fakeNotificationRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*model.NotificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []*model.NotificationRecord
	for _, r := range f.records {
		if !r.Sent && !r.Cancelled && !r.ScheduledFor.After(now) {
			copied := *r
			due = append(due, &copied)
		}
		if len(due) == limit {
			break
		}
	}
	return due, nil
}

func (f *fakeNotificationRepository) MarkSent(ctx context.Context, id string, sentAt time.Time, emailID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok || r.Sent {
		return notificationserrors.ErrAlreadySent
	}
	r.Sent = true
	r.SentAt = &sentAt
	r.EmailID = emailID
	return nil
}

func (f *fakeNotificationRepository) CancelByBooking(ctx context.Context, bookingID string) (int64, error) {
	return 0, nil
}

type fakeGateway struct {
	mu       sync.Mutex
	failIDs  map[string]bool
	sendLog  []string
	sequence int
}

func (g *fakeGateway) Send(ctx context.Context, notificationID string, email gateway.Email) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sendLog = append(g.sendLog, notificationID)
	if g.failIDs[notificationID] {
		return "", errors.New("gateway unavailable")
	}
	g.sequence++
	return fmt.Sprintf("email-%d", g.sequence), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     logger.ERROR,
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		DispatchBatchSize: 50,
		DispatchWorkers:   4,
	}
}

func dueRecord(id string) *model.NotificationRecord {
	return &model.NotificationRecord{
		ID:           id,
		Type:         model.NotificationReminder24h,
		BookingID:    "b-1",
		UserID:       "s-1",
		UserEmail:    "jordan@example.com",
		ScheduledFor: time.Date(2024, 6, 9, 10, 0, 0, 0, time.UTC),
		Data: map[string]string{
			"teacher_name": "Ms. Rivera",
			"student_name": "Jordan Lee",
			"subject":      "Algebra",
			"date":         "2024-06-10",
			"time":         "10:00",
			"duration_min": "60",
		},
	}
}

func newTestDispatcher(repo *fakeNotificationRepository, gw *fakeGateway, now time.Time) *Dispatcher {
	return &Dispatcher{
		repo:    repo,
		gateway: gw,
		cfg:     testConfig(),
		now:     func() time.Time { return now },
	}
}

func TestRun_BatchIsolation(t *testing.T) {
	repo := newFakeRepository(
		dueRecord("n-1"), dueRecord("n-2"), dueRecord("n-3"),
		dueRecord("n-4"), dueRecord("n-5"),
	)
	gw := &fakeGateway{failIDs: map[string]bool{"n-3": true}}
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	d := newTestDispatcher(repo, gw, now)

	result, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Total)
	}
	if result.Processed != 4 {
		t.Errorf("expected processed 4, got %d", result.Processed)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error entry, got %d", len(result.Errors))
	}
	if result.Errors[0].NotificationID != "n-3" {
		t.Errorf("expected error for n-3, got %s", result.Errors[0].NotificationID)
	}

	for _, id := range []string{"n-1", "n-2", "n-4", "n-5"} {
		record, _ := repo.FindByID(context.Background(), id)
		if !record.Sent {
			t.Errorf("record %s should be marked sent", id)
		}
		if record.EmailID == "" {
			t.Errorf("record %s should carry the gateway delivery id", id)
		}
	}
	failed, _ := repo.FindByID(context.Background(), "n-3")
	if failed.Sent {
		t.Error("failed record n-3 must stay unsent for retry")
	}
}

func TestRun_IdempotentMarking(t *testing.T) {
	repo := newFakeRepository(dueRecord("n-1"))
	gw := &fakeGateway{}
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	d := newTestDispatcher(repo, gw, now)

	first, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Processed != 1 || first.Total != 1 {
		t.Fatalf("first run: processed=%d total=%d", first.Processed, first.Total)
	}

	second, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Total != 0 {
		t.Errorf("second run must not re-select the sent record, total=%d", second.Total)
	}
	if len(gw.sendLog) != 1 {
		t.Errorf("expected exactly one gateway send, got %d", len(gw.sendLog))
	}

	record, _ := repo.FindByID(context.Background(), "n-1")
	if !record.Sent || record.EmailID != "email-1" {
		t.Errorf("record should be sent once with the first delivery id, got sent=%v email_id=%s", record.Sent, record.EmailID)
	}
}

func TestRun_FailedRecordRetriedNextRun(t *testing.T) {
	repo := newFakeRepository(dueRecord("n-1"))
	gw := &fakeGateway{failIDs: map[string]bool{"n-1": true}}
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	d := newTestDispatcher(repo, gw, now)

	first, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Processed != 0 || len(first.Errors) != 1 {
		t.Fatalf("first run: processed=%d errors=%d", first.Processed, len(first.Errors))
	}

	// Gateway recovers.
	gw.mu.Lock()
	gw.failIDs = nil
	gw.mu.Unlock()

	second, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Processed != 1 {
		t.Errorf("recovered record should be processed, got %d", second.Processed)
	}
}

func TestRun_EmptyBatch(t *testing.T) {
	repo := newFakeRepository()
	d := newTestDispatcher(repo, &fakeGateway{}, time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC))

	result, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 0 || result.Processed != 0 || len(result.Errors) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestRun_FutureRecordsNotSelected(t *testing.T) {
	future := dueRecord("n-future")
	future.ScheduledFor = time.Date(2024, 6, 11, 10, 0, 0, 0, time.UTC)
	cancelled := dueRecord("n-cancelled")
	cancelled.Cancelled = true
	repo := newFakeRepository(dueRecord("n-due"), future, cancelled)
	gw := &fakeGateway{}
	d := newTestDispatcher(repo, gw, time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC))

	result, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 || result.Processed != 1 {
		t.Errorf("only the due record should be selected, got %+v", result)
	}
	if len(gw.sendLog) != 1 || gw.sendLog[0] != "n-due" {
		t.Errorf("expected single send for n-due, got %v", gw.sendLog)
	}
}
