package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/acadialab/appointbook/internal/entity"
	"github.com/acadialab/appointbook/internal/live"
	"github.com/acadialab/appointbook/internal/modules/appointment/dto"
	"github.com/acadialab/appointbook/pkg/apperror"
	"github.com/google/uuid"
)

// stubRepo is an in-memory AppointmentRepository that mimics the real one,
// including publishing a change event on every mutation.
type stubRepo struct {
	mu            sync.Mutex
	appointments  []entity.Appointment
	feed          live.Feed
	createCalls   int
	statusUpdates []string
}

func (r *stubRepo) Create(ctx context.Context, a *entity.Appointment) error {
	r.mu.Lock()
	r.createCalls++
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.appointments = append(r.appointments, *a)
	r.mu.Unlock()
	if r.feed != nil {
		r.feed.Publish(ctx, live.Event{Collection: live.CollectionAppointments, Key: a.ID.String(), Kind: live.KindAdded})
	}
	return nil
}

func (r *stubRepo) seed(a entity.Appointment) {
	r.mu.Lock()
	r.appointments = append(r.appointments, a)
	r.mu.Unlock()
}

func (r *stubRepo) FindByStudent(ctx context.Context, studentID string) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.appointments {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubRepo) FindByTeacher(ctx context.Context, teacherID string) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.appointments {
		if a.TeacherID == teacherID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	r.statusUpdates = append(r.statusUpdates, status)
	for i := range r.appointments {
		if r.appointments[i].ID == id {
			r.appointments[i].Status = status
		}
	}
	r.mu.Unlock()
	if r.feed != nil {
		r.feed.Publish(ctx, live.Event{Collection: live.CollectionAppointments, Key: id.String(), Kind: live.KindModified})
	}
	return nil
}

var student = &entity.Profile{UID: "s1", Name: "Ana", Role: entity.RoleStudent, Status: entity.StatusApproved}

func TestBookValidatesBeforeAnyStoreCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		teacherID string
		dateTime  string
	}{
		{"no teacher selected", "", "2025-01-01T10:00"},
		{"missing date", "T1", ""},
		{"unparsable date", "T1", "next tuesday"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := &stubRepo{}
			svc := NewAppointmentService(repo, live.NewMemoryFeed())

			_, err := svc.Book(context.Background(), student, bookInput(tt.teacherID, tt.dateTime))
			if !errors.Is(err, apperror.ErrInvalidInput) {
				t.Fatalf("Book() error = %v, want ErrInvalidInput", err)
			}
			if repo.createCalls != 0 {
				t.Errorf("repository was called %d times for an invalid booking", repo.createCalls)
			}
		})
	}
}

func TestBookCreatesPendingAppointment(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc := NewAppointmentService(repo, live.NewMemoryFeed())

	appt, err := svc.Book(context.Background(), student, bookInput("T1", "2025-01-01T10:00"))
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	if appt.Status != entity.AppointmentPending {
		t.Errorf("new appointment status = %q, want pending", appt.Status)
	}
	if appt.StudentID != "s1" || appt.StudentName != "Ana" {
		t.Errorf("student snapshot not denormalized: %+v", appt)
	}
	want := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	if !appt.DateTime.Equal(want) {
		t.Errorf("DateTime = %v, want %v", appt.DateTime, want)
	}
}

func TestBookAcceptsRFC3339(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc := NewAppointmentService(repo, live.NewMemoryFeed())

	if _, err := svc.Book(context.Background(), student, bookInput("T1", "2025-01-01T10:00:00Z")); err != nil {
		t.Fatalf("Book() with RFC3339 date error: %v", err)
	}
}

func TestSetStatusRejectsUnknownTargets(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc := NewAppointmentService(repo, live.NewMemoryFeed())

	id := uuid.New().String()
	for _, status := range []string{"pending", "done", ""} {
		if err := svc.SetStatus(context.Background(), id, status); !errors.Is(err, apperror.ErrInvalidInput) {
			t.Errorf("SetStatus(%q) error = %v, want ErrInvalidInput", status, err)
		}
	}
	if len(repo.statusUpdates) != 0 {
		t.Errorf("repository saw %v for invalid targets", repo.statusUpdates)
	}
}

// The repository layer performs no state guard: approving an appointment that
// is already cancelled is accepted. That permissiveness is documented
// behavior, not an accident this test should "fix".
func TestSetStatusIsPermissiveAboutCurrentState(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc := NewAppointmentService(repo, live.NewMemoryFeed())

	appt, err := svc.Book(context.Background(), student, bookInput("T1", "2025-01-01T10:00"))
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	if err := svc.SetStatus(context.Background(), appt.ID.String(), entity.AppointmentCancelled); err != nil {
		t.Fatalf("cancel error: %v", err)
	}
	if err := svc.SetStatus(context.Background(), appt.ID.String(), entity.AppointmentApproved); err != nil {
		t.Fatalf("approve-after-cancel error: %v, want acceptance", err)
	}

	if len(repo.statusUpdates) != 2 || repo.statusUpdates[1] != entity.AppointmentApproved {
		t.Errorf("status updates = %v, want [cancelled approved]", repo.statusUpdates)
	}
}

func TestSortByDateDesc(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	appointments := []entity.Appointment{
		{Purpose: "middle", DateTime: base.Add(time.Hour)},
		{Purpose: "oldest", DateTime: base},
		{Purpose: "newest", DateTime: base.Add(48 * time.Hour)},
	}

	SortByDateDesc(appointments)

	want := []string{"newest", "middle", "oldest"}
	for i, a := range appointments {
		if a.Purpose != want[i] {
			t.Fatalf("order = %v, want %v", purposes(appointments), want)
		}
	}
}

func TestWatchResortsOnEveryDelivery(t *testing.T) {
	t.Parallel()

	feed := live.NewMemoryFeed()
	repo := &stubRepo{feed: feed}
	svc := NewAppointmentService(repo, feed)

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	seed := []struct {
		purpose string
		offset  time.Duration
	}{
		{"first booked", 24 * time.Hour},
		{"second booked", 72 * time.Hour},
		{"third booked", 0},
	}
	for _, s := range seed {
		repo.seed(entity.Appointment{
			ID: uuid.New(), TeacherID: "T1", Purpose: s.purpose, DateTime: base.Add(s.offset),
			Status: entity.AppointmentPending,
		})
	}

	watch, err := svc.WatchByTeacher(context.Background(), "T1")
	if err != nil {
		t.Fatalf("WatchByTeacher() error: %v", err)
	}
	defer watch.Close()

	snapshot := receiveSnapshot(t, watch)
	assertDescending(t, snapshot)

	// A change to an unrelated document must still re-deliver the full set,
	// sorted again.
	other := entity.Appointment{ID: uuid.New(), TeacherID: "T2", DateTime: base, Status: entity.AppointmentPending}
	if err := repo.Create(context.Background(), &other); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	snapshot = receiveSnapshot(t, watch)
	assertDescending(t, snapshot)
	if len(snapshot) != 3 {
		t.Fatalf("re-delivered set has %d appointments, want 3", len(snapshot))
	}
}

func TestWatchStopsAfterClose(t *testing.T) {
	t.Parallel()

	feed := live.NewMemoryFeed()
	repo := &stubRepo{feed: feed}
	svc := NewAppointmentService(repo, feed)

	watch, err := svc.WatchByStudent(context.Background(), "s1")
	if err != nil {
		t.Fatalf("WatchByStudent() error: %v", err)
	}

	receiveSnapshot(t, watch)
	watch.Close()

	// The channel must close; further mutations may race with the final
	// teardown but can never block.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-watch.C:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("watch channel not closed after Close()")
		}
	}
}

func bookInput(teacherID, dateTime string) dto.BookInput {
	return dto.BookInput{
		TeacherID:   teacherID,
		TeacherName: "Dr. T",
		DateTime:    dateTime,
		Purpose:     "help",
	}
}

func receiveSnapshot(t *testing.T, watch *Watch) []entity.Appointment {
	t.Helper()
	select {
	case snapshot, ok := <-watch.C:
		if !ok {
			t.Fatal("watch channel closed unexpectedly")
		}
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot delivery")
		return nil
	}
}

func assertDescending(t *testing.T, appointments []entity.Appointment) {
	t.Helper()
	for i := 1; i < len(appointments); i++ {
		if appointments[i].DateTime.After(appointments[i-1].DateTime) {
			t.Fatalf("delivery not sorted dateTime-descending: %v", purposes(appointments))
		}
	}
}

func purposes(appointments []entity.Appointment) []string {
	out := make([]string, len(appointments))
	for i, a := range appointments {
		out[i] = a.Purpose
	}
	return out
}
