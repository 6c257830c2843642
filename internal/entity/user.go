package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// Account is the identity-provider record: the thing a password signs into.
// It is separate from Profile so that a valid session with no profile is
// representable (that combination forces a sign-out).
type Account struct {
	UID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"uid"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.UID == uuid.Nil {
		a.UID = uuid.New()
	}
	return nil
}

// Profile is addressed by the account uid, never by a generated key.
// Status is only meaningful for students; Department/Subject only for teachers.
type Profile struct {
	UID        string    `gorm:"size:64;primaryKey" json:"uid"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:100;not null" json:"email"`
	Role       string    `gorm:"size:20;not null;index" json:"role"`
	Status     string    `gorm:"size:20;index" json:"status,omitempty"`
	Department *string   `gorm:"size:100" json:"department,omitempty"`
	Subject    *string   `gorm:"size:100" json:"subject,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
