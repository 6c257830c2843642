package repository

import (
	"context"

	"github.com/acadialab/appointbook/internal/entity"
	"github.com/acadialab/appointbook/internal/live"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	FindByStudent(ctx context.Context, studentID string) ([]entity.Appointment, error)
	FindByTeacher(ctx context.Context, teacherID string) ([]entity.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type appointmentRepository struct {
	db   *gorm.DB
	feed live.Feed
}

func NewAppointmentRepository(db *gorm.DB, feed live.Feed) AppointmentRepository {
	return &appointmentRepository{db: db, feed: feed}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	if err := r.db.WithContext(ctx).Create(appointment).Error; err != nil {
		return err
	}

	r.publish(ctx, appointment.ID.String(), live.KindAdded)
	return nil
}

// FindByStudent and FindByTeacher return the set in store order; callers that
// display appointments sort by dateTime themselves, on every delivery.
func (r *appointmentRepository) FindByStudent(ctx context.Context, studentID string) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Find(&appointments).Error; err != nil {
		return nil, err
	}

	return appointments, nil
}

func (r *appointmentRepository) FindByTeacher(ctx context.Context, teacherID string) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	if err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Find(&appointments).Error; err != nil {
		return nil, err
	}

	return appointments, nil
}

// UpdateStatus writes the status field unconditionally. The repository does
// not guard the current state; which transitions a caller may request is
// policy enforced at the HTTP surface.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if err := r.db.WithContext(ctx).
		Model(&entity.Appointment{}).
		Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return err
	}

	r.publish(ctx, id.String(), live.KindModified)
	return nil
}

func (r *appointmentRepository) publish(ctx context.Context, key string, kind string) {
	if r.feed == nil {
		return
	}

	_ = r.feed.Publish(ctx, live.Event{
		Collection: live.CollectionAppointments,
		Key:        key,
		Kind:       kind,
	})
}
