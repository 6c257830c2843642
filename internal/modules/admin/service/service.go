package service

import (
	"context"
	"errors"
	"strings"

	"github.com/acadialab/appointbook/internal/entity"
	"github.com/acadialab/appointbook/internal/modules/admin/dto"
	profileRepo "github.com/acadialab/appointbook/internal/modules/profile/repository"
	"github.com/acadialab/appointbook/pkg/apperror"
	"gorm.io/gorm"
)

type AdminService interface {
	ApproveStudent(ctx context.Context, uid string) error
	CreateTeacher(ctx context.Context, input dto.CreateTeacherInput) (*entity.Profile, error)
	DeleteTeacher(ctx context.Context, uid string) error
	PendingStudents(ctx context.Context) ([]entity.Profile, error)
	Teachers(ctx context.Context) ([]entity.Profile, error)
}

type adminService struct {
	profiles profileRepo.ProfileRepository
}

func NewAdminService(profiles profileRepo.ProfileRepository) AdminService {
	return &adminService{profiles: profiles}
}

// ApproveStudent does not re-validate the current status: the admin acts from
// a live pending list, and the write is a single-field update to approved, so
// a concurrent double-approval rewrites the same value.
func (s *adminService) ApproveStudent(ctx context.Context, uid string) error {
	return s.profiles.UpdateStatus(ctx, uid, entity.StatusApproved)
}

func (s *adminService) CreateTeacher(ctx context.Context, input dto.CreateTeacherInput) (*entity.Profile, error) {
	uid := strings.TrimSpace(input.UID)
	if uid == "" {
		return nil, apperror.ErrInvalidInput
	}

	// Read-before-write existence check, as racy as it sounds; the primary
	// key on uid keeps the race loser from overwriting anything.
	if _, err := s.profiles.FindByUID(ctx, uid); err == nil {
		return nil, apperror.ErrAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile := &entity.Profile{
		UID:        uid,
		Name:       input.Name,
		Email:      input.Email,
		Role:       entity.RoleTeacher,
		Department: &input.Department,
		Subject:    &input.Subject,
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.ErrAlreadyExists
		}
		return nil, err
	}

	return profile, nil
}

// DeleteTeacher removes only the profile document. Appointments keep their
// denormalized teacher name and id snapshot.
func (s *adminService) DeleteTeacher(ctx context.Context, uid string) error {
	return s.profiles.Delete(ctx, uid)
}

func (s *adminService) PendingStudents(ctx context.Context) ([]entity.Profile, error) {
	return s.profiles.FindPendingStudents(ctx)
}

func (s *adminService) Teachers(ctx context.Context) ([]entity.Profile, error) {
	return s.profiles.FindTeachers(ctx)
}
