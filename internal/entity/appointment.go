package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AppointmentPending   = "pending"
	AppointmentApproved  = "approved"
	AppointmentCancelled = "cancelled"
)

// Appointment keeps studentName/teacherName denormalized at creation time so
// the record stays readable after a teacher profile is deleted. There is no
// cascade in either direction.
type Appointment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID   string    `gorm:"size:64;not null;index" json:"student_id"`
	StudentName string    `gorm:"size:100;not null" json:"student_name"`
	TeacherID   string    `gorm:"size:64;not null;index" json:"teacher_id"`
	TeacherName string    `gorm:"size:100;not null" json:"teacher_name"`
	DateTime    time.Time `gorm:"not null" json:"date_time"`
	Purpose     string    `gorm:"type:text" json:"purpose"`
	Status      string    `gorm:"size:20;not null" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
