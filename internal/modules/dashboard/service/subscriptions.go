package service

import "sync"

// Handle is a cancellable live-query subscription.
type Handle interface {
	Close()
}

// Manager owns every live-query handle for the currently routed role, in
// three role-scoped bags. At most one set of bags is populated at a time;
// routing to a new role must call DetachAll before attaching anything, which
// is what keeps a former role's listeners from mutating view state after the
// user has left it.
type Manager struct {
	mu      sync.Mutex
	admin   []Handle
	teacher []Handle
	student []Handle
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) AttachAdmin(h Handle) {
	m.mu.Lock()
	m.admin = append(m.admin, h)
	m.mu.Unlock()
}

func (m *Manager) AttachTeacher(h Handle) {
	m.mu.Lock()
	m.teacher = append(m.teacher, h)
	m.mu.Unlock()
}

func (m *Manager) AttachStudent(h Handle) {
	m.mu.Lock()
	m.student = append(m.student, h)
	m.mu.Unlock()
}

// DetachAll cancels every handle in all three bags and empties them. Safe to
// call any number of times, including when the bags are already empty.
func (m *Manager) DetachAll() {
	m.mu.Lock()
	handles := make([]Handle, 0, len(m.admin)+len(m.teacher)+len(m.student))
	handles = append(handles, m.admin...)
	handles = append(handles, m.teacher...)
	handles = append(handles, m.student...)
	m.admin = nil
	m.teacher = nil
	m.student = nil
	m.mu.Unlock()

	for _, h := range handles {
		h.Close()
	}
}

// Active reports whether any bag still holds a handle.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.admin)+len(m.teacher)+len(m.student) > 0
}
