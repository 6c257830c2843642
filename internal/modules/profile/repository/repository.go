package repository

import (
	"context"

	"github.com/acadialab/appointbook/internal/entity"
	"github.com/acadialab/appointbook/internal/live"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *entity.Profile) error
	FindByUID(ctx context.Context, uid string) (*entity.Profile, error)
	UpdateStatus(ctx context.Context, uid string, status string) error
	Delete(ctx context.Context, uid string) error
	FindPendingStudents(ctx context.Context) ([]entity.Profile, error)
	FindTeachers(ctx context.Context) ([]entity.Profile, error)
}

type profileRepository struct {
	db   *gorm.DB
	feed live.Feed
}

func NewProfileRepository(db *gorm.DB, feed live.Feed) ProfileRepository {
	return &profileRepository{db: db, feed: feed}
}

func (r *profileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return err
	}

	r.publish(ctx, profile.UID, live.KindAdded)
	return nil
}

func (r *profileRepository) FindByUID(ctx context.Context, uid string) (*entity.Profile, error) {
	var profile entity.Profile
	if err := r.db.WithContext(ctx).
		Where("uid = ?", uid).
		First(&profile).Error; err != nil {
		return nil, err
	}

	return &profile, nil
}

// UpdateStatus writes only the status column. Rewriting an already-approved
// student to approved is a harmless no-op, which is what makes admin approval
// idempotent without any cross-session locking.
func (r *profileRepository) UpdateStatus(ctx context.Context, uid string, status string) error {
	if err := r.db.WithContext(ctx).
		Model(&entity.Profile{}).
		Where("uid = ?", uid).
		Update("status", status).Error; err != nil {
		return err
	}

	r.publish(ctx, uid, live.KindModified)
	return nil
}

func (r *profileRepository) Delete(ctx context.Context, uid string) error {
	if err := r.db.WithContext(ctx).
		Delete(&entity.Profile{}, "uid = ?", uid).Error; err != nil {
		return err
	}

	r.publish(ctx, uid, live.KindRemoved)
	return nil
}

func (r *profileRepository) FindPendingStudents(ctx context.Context) ([]entity.Profile, error) {
	var profiles []entity.Profile
	if err := r.db.WithContext(ctx).
		Where("role = ? AND status = ?", entity.RoleStudent, entity.StatusPending).
		Find(&profiles).Error; err != nil {
		return nil, err
	}

	return profiles, nil
}

func (r *profileRepository) FindTeachers(ctx context.Context) ([]entity.Profile, error) {
	var profiles []entity.Profile
	if err := r.db.WithContext(ctx).
		Where("role = ?", entity.RoleTeacher).
		Find(&profiles).Error; err != nil {
		return nil, err
	}

	return profiles, nil
}

func (r *profileRepository) publish(ctx context.Context, uid string, kind string) {
	if r.feed == nil {
		return
	}

	// A lost event only delays the next snapshot until the following change;
	// the store itself is already consistent.
	_ = r.feed.Publish(ctx, live.Event{
		Collection: live.CollectionProfiles,
		Key:        uid,
		Kind:       kind,
	})
}
