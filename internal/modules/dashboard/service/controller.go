package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/acadialab/appointbook/internal/entity"
	appointmentService "github.com/acadialab/appointbook/internal/modules/appointment/service"
	profileService "github.com/acadialab/appointbook/internal/modules/profile/service"
	"github.com/acadialab/appointbook/internal/modules/search"
	"github.com/acadialab/appointbook/pkg/apperror"
)

// Views pushed over the dashboard stream.
const (
	ViewPendingStudents     = "pendingStudents"
	ViewTeachers            = "teachers"
	ViewTeacherAppointments = "teacherAppointments"
	ViewStudentAppointments = "studentAppointments"
)

// Sink receives everything the controller emits towards the client. The
// WebSocket delivery implements it; tests implement it in memory.
type Sink interface {
	SendState(state State)
	SendSnapshot(view string, data any)
	SendError(message string)
}

// Controller is the per-session synchronization core: it tracks the session's
// authentication state, routes the resolved profile to a dashboard, and owns
// the live subscriptions for that dashboard through the Manager. Every
// session transition tears all subscriptions down before acting on the new
// state, so a stale role can never keep listening.
type Controller struct {
	profiles     profileService.ProfileService
	appointments appointmentService.AppointmentService
	teachers     search.TeacherSource

	manager *Manager
	sink    Sink
	ctx     context.Context

	mu      sync.Mutex
	state   State
	current *entity.Profile
	index   *search.Index
}

func NewController(
	ctx context.Context,
	profiles profileService.ProfileService,
	appointments appointmentService.AppointmentService,
	teachers search.TeacherSource,
	sink Sink,
) *Controller {
	c := &Controller{
		profiles:     profiles,
		appointments: appointments,
		teachers:     teachers,
		manager:      NewManager(),
		sink:         sink,
		ctx:          ctx,
		state:        StateLoading,
	}

	sink.SendState(StateLoading)
	return c
}

// HandleAuthenticated processes an Authenticated(subject) session event.
func (c *Controller) HandleAuthenticated(uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Teardown comes first, before the new profile is even fetched.
	c.teardownLocked()
	c.setStateLocked(StateLoading)

	profile, err := c.profiles.FetchProfile(c.ctx, uid)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// Valid session, no profile: force sign-out and tell the user
			// to contact an admin.
			c.sink.SendError(apperror.ErrProfileMissing.Error())
		} else {
			log.Printf("dashboard: profile fetch failed: %v", err)
			c.sink.SendError("error fetching user data")
		}
		c.current = nil
		c.setStateLocked(StateUnauthenticated)
		return
	}

	c.current = profile
	state := RouteProfile(profile)
	c.setStateLocked(state)

	switch state {
	case StateAdmin:
		c.enterAdminLocked()
	case StateTeacher:
		c.enterTeacherLocked(profile.UID)
	case StateStudent:
		c.enterStudentLocked(profile.UID)
	}
}

// HandleUnauthenticated processes a sign-out, whether user-initiated or
// provider-forced.
func (c *Controller) HandleUnauthenticated() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardownLocked()
	c.current = nil
	c.setStateLocked(StateUnauthenticated)
}

// Search answers teacher lookups against the session's index snapshot. It
// returns nothing outside the student dashboard, where no index exists.
func (c *Controller) Search(query string) []entity.Profile {
	c.mu.Lock()
	index := c.index
	c.mu.Unlock()

	if index == nil {
		return nil
	}
	return index.Search(query)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close tears down the session; called when the connection goes away.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
}

func (c *Controller) setStateLocked(state State) {
	c.state = state
	c.sink.SendState(state)
}

func (c *Controller) teardownLocked() {
	c.manager.DetachAll()
	c.index = nil
}

func (c *Controller) enterAdminLocked() {
	pending, err := c.profiles.WatchPendingStudents(c.ctx)
	if err != nil {
		log.Printf("dashboard: pending-students watch failed: %v", err)
	} else {
		c.manager.AttachAdmin(pending)
		go c.forwardProfiles(ViewPendingStudents, pending.C)
	}

	teachers, err := c.profiles.WatchTeachers(c.ctx)
	if err != nil {
		log.Printf("dashboard: teachers watch failed: %v", err)
	} else {
		c.manager.AttachAdmin(teachers)
		go c.forwardProfiles(ViewTeachers, teachers.C)
	}
}

func (c *Controller) enterTeacherLocked(uid string) {
	watch, err := c.appointments.WatchByTeacher(c.ctx, uid)
	if err != nil {
		log.Printf("dashboard: teacher-appointments watch failed: %v", err)
		return
	}

	c.manager.AttachTeacher(watch)
	go c.forwardAppointments(ViewTeacherAppointments, watch.C)
}

func (c *Controller) enterStudentLocked(uid string) {
	watch, err := c.appointments.WatchByStudent(c.ctx, uid)
	if err != nil {
		log.Printf("dashboard: student-appointments watch failed: %v", err)
	} else {
		c.manager.AttachStudent(watch)
		go c.forwardAppointments(ViewStudentAppointments, watch.C)
	}

	// One-shot load; the index stays as-is until the dashboard is re-entered.
	index := search.NewIndex()
	if err := index.Load(c.ctx, c.teachers); err != nil {
		log.Printf("dashboard: teacher index load failed: %v", err)
	}
	c.index = index
}

func (c *Controller) forwardProfiles(view string, ch <-chan []entity.Profile) {
	for snapshot := range ch {
		c.sink.SendSnapshot(view, snapshot)
	}
}

func (c *Controller) forwardAppointments(view string, ch <-chan []entity.Appointment) {
	for snapshot := range ch {
		c.sink.SendSnapshot(view, snapshot)
	}
}
