package service

import (
	"context"
	"errors"
	"log"

	"github.com/acadialab/appointbook/internal/entity"
	"github.com/acadialab/appointbook/internal/live"
	"github.com/acadialab/appointbook/internal/modules/profile/repository"
	"github.com/acadialab/appointbook/pkg/apperror"
	"gorm.io/gorm"
)

type ProfileService interface {
	FetchProfile(ctx context.Context, uid string) (*entity.Profile, error)
	RegisterStudent(ctx context.Context, uid, name, email string) (*entity.Profile, error)
	WatchPendingStudents(ctx context.Context) (*Watch, error)
	WatchTeachers(ctx context.Context) (*Watch, error)
}

type profileService struct {
	repo repository.ProfileRepository
	feed live.Feed
}

func NewProfileService(repo repository.ProfileRepository, feed live.Feed) ProfileService {
	return &profileService{repo: repo, feed: feed}
}

func (s *profileService) FetchProfile(ctx context.Context, uid string) (*entity.Profile, error) {
	profile, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	return profile, nil
}

// RegisterStudent creates the pending profile for a freshly signed-up student.
// The existence check is a read before the write, so two concurrent callers
// for the same uid can both pass it; the loser then fails on the primary key
// and is reported as AlreadyExists as well.
func (s *profileService) RegisterStudent(ctx context.Context, uid, name, email string) (*entity.Profile, error) {
	if _, err := s.repo.FindByUID(ctx, uid); err == nil {
		return nil, apperror.ErrAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile := &entity.Profile{
		UID:    uid,
		Name:   name,
		Email:  email,
		Role:   entity.RoleStudent,
		Status: entity.StatusPending,
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.ErrAlreadyExists
		}
		return nil, err
	}

	return profile, nil
}

// Watch is a live view over a filtered profile query. Every matching change
// re-delivers the full current set; only the latest undelivered snapshot is
// kept, so a slow consumer converges on current state instead of replaying
// history.
type Watch struct {
	C      <-chan []entity.Profile
	cancel context.CancelFunc
	sub    *live.Subscription
}

func (w *Watch) Close() {
	w.cancel()
	w.sub.Close()
}

func (s *profileService) WatchPendingStudents(ctx context.Context) (*Watch, error) {
	return s.watch(ctx, s.repo.FindPendingStudents)
}

func (s *profileService) WatchTeachers(ctx context.Context) (*Watch, error) {
	return s.watch(ctx, s.repo.FindTeachers)
}

func (s *profileService) watch(ctx context.Context, query func(context.Context) ([]entity.Profile, error)) (*Watch, error) {
	sub, err := s.feed.Subscribe(ctx, live.CollectionProfiles)
	if err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	ch := make(chan []entity.Profile, 1)

	deliver := func() {
		snapshot, err := query(watchCtx)
		if err != nil {
			// Live-query errors are logged only; the view simply stops
			// updating until the next change comes through.
			log.Printf("profile watch: query failed: %v", err)
			return
		}
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

// pushLatest replaces any undelivered snapshot with the newer one.
func pushLatest(ch chan []entity.Profile, snapshot []entity.Profile) {
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
