package service

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/acadialab/appointbook/internal/entity"
	"github.com/acadialab/appointbook/internal/live"
	"github.com/acadialab/appointbook/internal/modules/appointment/dto"
	"github.com/acadialab/appointbook/internal/modules/appointment/repository"
	"github.com/acadialab/appointbook/pkg/apperror"
	"github.com/google/uuid"
)

type AppointmentService interface {
	Book(ctx context.Context, student *entity.Profile, input dto.BookInput) (*entity.Appointment, error)
	SetStatus(ctx context.Context, id string, status string) error
	WatchByStudent(ctx context.Context, studentID string) (*Watch, error)
	WatchByTeacher(ctx context.Context, teacherID string) (*Watch, error)
}

type appointmentService struct {
	repo repository.AppointmentRepository
	feed live.Feed
}

func NewAppointmentService(repo repository.AppointmentRepository, feed live.Feed) AppointmentService {
	return &appointmentService{repo: repo, feed: feed}
}

// dateTimeLayouts accepts RFC3339 and the value an HTML datetime-local input
// submits, which is what the booking form sends.
var dateTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04"}

// Book validates locally before any store call: a booking without a selected
// teacher or a parsable date never reaches the repository.
func (s *appointmentService) Book(ctx context.Context, student *entity.Profile, input dto.BookInput) (*entity.Appointment, error) {
	if input.TeacherID == "" {
		return nil, apperror.New(400, "please select a teacher from the search results", apperror.ErrInvalidInput)
	}

	dateTime, err := parseDateTime(input.DateTime)
	if err != nil {
		return nil, apperror.New(400, "please select a date and time", apperror.ErrInvalidInput)
	}

	appointment := &entity.Appointment{
		StudentID:   student.UID,
		StudentName: student.Name,
		TeacherID:   input.TeacherID,
		TeacherName: input.TeacherName,
		DateTime:    dateTime,
		Purpose:     input.Purpose,
		Status:      entity.AppointmentPending,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, err
	}

	return appointment, nil
}

func parseDateTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// SetStatus forwards the write unconditionally; the repository does not guard
// the current state, so re-deciding a terminal appointment rewrites the field.
func (s *appointmentService) SetStatus(ctx context.Context, id string, status string) error {
	appointmentID, err := uuid.Parse(id)
	if err != nil {
		return apperror.ErrInvalidInput
	}

	if status != entity.AppointmentApproved && status != entity.AppointmentCancelled {
		return apperror.ErrInvalidInput
	}

	return s.repo.UpdateStatus(ctx, appointmentID, status)
}

// Watch is a live view over one party's appointments. Every delivery carries
// the full matching set sorted by dateTime descending; the sort is reapplied
// on every delivery because the store guarantees no order.
type Watch struct {
	C      <-chan []entity.Appointment
	cancel context.CancelFunc
	sub    *live.Subscription
}

func (w *Watch) Close() {
	w.cancel()
	w.sub.Close()
}

func (s *appointmentService) WatchByStudent(ctx context.Context, studentID string) (*Watch, error) {
	return s.watch(ctx, func(ctx context.Context) ([]entity.Appointment, error) {
		return s.repo.FindByStudent(ctx, studentID)
	})
}

func (s *appointmentService) WatchByTeacher(ctx context.Context, teacherID string) (*Watch, error) {
	return s.watch(ctx, func(ctx context.Context) ([]entity.Appointment, error) {
		return s.repo.FindByTeacher(ctx, teacherID)
	})
}

func (s *appointmentService) watch(ctx context.Context, query func(context.Context) ([]entity.Appointment, error)) (*Watch, error) {
	sub, err := s.feed.Subscribe(ctx, live.CollectionAppointments)
	if err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	ch := make(chan []entity.Appointment, 1)

	deliver := func() {
		snapshot, err := query(watchCtx)
		if err != nil {
			log.Printf("appointment watch: query failed: %v", err)
			return
		}
		SortByDateDesc(snapshot)
		pushLatest(ch, snapshot)
	}

	go func() {
		defer close(ch)
		deliver()

		for {
			select {
			case _, ok := <-sub.C:
				if !ok {
					return
				}
				deliver()
			case <-watchCtx.Done():
				return
			}
		}
	}()

	return &Watch{C: ch, cancel: cancel, sub: sub}, nil
}

// SortByDateDesc orders appointments newest first. Teacher and student views
// must apply the identical sort for consistent display.
func SortByDateDesc(appointments []entity.Appointment) {
	sort.Slice(appointments, func(i, j int) bool {
		return appointments[i].DateTime.After(appointments[j].DateTime)
	})
}

func pushLatest(ch chan []entity.Appointment, snapshot []entity.Appointment) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
