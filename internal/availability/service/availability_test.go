package service

import (
	"context"
	"fmt"
	"testing"

	availabilityerrors "tutorhub/internal/availability/errors"
	"tutorhub/internal/availability/validator"
	"tutorhub/pkg/config"
	"tutorhub/pkg/logger"
	"tutorhub/pkg/model"

	mongotx "tutorhub/pkg/db/mongo"
)

type mockAvailabilityRepository struct {
	existing *model.TeacherAvailability
	upserted *model.TeacherAvailability
}

func (m *mockAvailabilityRepository) FindByTeacherID(ctx context.Context, teacherID string) (*model.TeacherAvailability, error) {
	if m.existing != nil {
		return m.existing, nil
	}
	return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrNotFound, teacherID)
}

func (m *mockAvailabilityRepository) Upsert(ctx context.Context, av *model.TeacherAvailability) error {
	m.upserted = av
	return nil
}

func (m *mockAvailabilityRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return nil
}

func newTestAvailabilityService(repo *mockAvailabilityRepository) *availabilityService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   logger.ERROR,
			Format:  logger.JSON,
			Service: "test",
		}),
		DefaultSlotDurationMin: 60,
		DefaultBufferTimeMin:   15,
		DefaultStartOfDay:      "09:00",
		DefaultEndOfDay:        "17:00",
		DefaultMinAdvanceDays:  1,
		DefaultMaxAdvanceDays:  30,
		DefaultDeadlineHours:   24,
	}
	return &availabilityService{
		repo:      repo,
		validator: validator.NewAvailabilityValidator(cfg.Log),
		cfg:       cfg,
	}
}

func TestUpdate_CanonicalizesUnpaddedIntervals(t *testing.T) {
	repo := &mockAvailabilityRepository{}
	svc := newTestAvailabilityService(repo)

	av := &model.TeacherAvailability{
		TeacherID: "t-1",
		WeeklySchedule: map[model.Weekday][]model.TimeInterval{
			model.Monday: {{Start: "9:00", End: "12:00"}},
		},
		SlotDurationMin:           60,
		BufferTimeMin:             15,
		MinAdvanceBookingDays:     1,
		MaxAdvanceBookingDays:     30,
		AllowCancellation:         true,
		CancellationDeadlineHours: 24,
		AllowRescheduling:         true,
		ReschedulingDeadlineHours: 24,
	}

	if _, err := svc.Update(context.Background(), "t-1", av); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.upserted == nil {
		t.Fatal("expected availability to reach the repository")
	}
	interval := repo.upserted.WeeklySchedule[model.Monday][0]
	if interval.Start != "09:00" {
		t.Errorf("expected interval start 09:00, got %q", interval.Start)
	}
	if interval.End != "12:00" {
		t.Errorf("expected interval end 12:00, got %q", interval.End)
	}
}
