// Package search holds the teacher lookup used by the booking form. The index
// is a point-in-time snapshot taken when a student dashboard is entered; it is
// not refreshed while the dashboard stays open, so a teacher added afterwards
// is invisible until the dashboard is reloaded. That staleness is part of the
// contract, not an oversight.
package search

import (
	"context"
	"strings"
	"sync"

	"github.com/acadialab/appointbook/internal/entity"
)

// TeacherSource is the one-shot read the index loads from.
type TeacherSource interface {
	FindTeachers(ctx context.Context) ([]entity.Profile, error)
}

type Index struct {
	mu       sync.RWMutex
	teachers []entity.Profile
}

func NewIndex() *Index {
	return &Index{}
}

// Load takes the snapshot. Calling it again replaces the snapshot wholesale;
// the dashboard only does that on re-entry.
func (i *Index) Load(ctx context.Context, source TeacherSource) error {
	teachers, err := source.FindTeachers(ctx)
	if err != nil {
		return err
	}

	i.mu.Lock()
	i.teachers = teachers
	i.mu.Unlock()
	return nil
}

// Search matches the query as a case-insensitive substring of a teacher's
// name or subject. Queries shorter than two characters return nothing, so the
// first keystroke doesn't flood the results. A teacher without a subject can
// still match by name.
func (i *Index) Search(query string) []entity.Profile {
	if len([]rune(query)) < 2 {
		return nil
	}

	needle := strings.ToLower(query)

	i.mu.RLock()
	defer i.mu.RUnlock()

	var results []entity.Profile
	for _, teacher := range i.teachers {
		nameMatches := strings.Contains(strings.ToLower(teacher.Name), needle)
		subjectMatches := teacher.Subject != nil && strings.Contains(strings.ToLower(*teacher.Subject), needle)

		if nameMatches || subjectMatches {
			results = append(results, teacher)
		}
	}

	return results
}
