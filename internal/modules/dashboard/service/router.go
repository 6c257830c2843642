package service

import "github.com/acadialab/appointbook/internal/entity"

// State is the set of dashboards a session can be routed to.
type State string

const (
	StateLoading         State = "loading"
	StateUnauthenticated State = "unauthenticated"
	StatePendingApproval State = "pending-approval"
	StateAdmin           State = "admin"
	StateTeacher         State = "teacher"
	StateStudent         State = "student"
)

// RouteProfile decides the dashboard purely from (role, status). Anything
// unrecognized falls back to unauthenticated; that branch is defensive and not
// reachable through normal profile creation.
func RouteProfile(profile *entity.Profile) State {
	if profile == nil {
		return StateUnauthenticated
	}

	switch profile.Role {
	case entity.RoleAdmin:
		return StateAdmin
	case entity.RoleTeacher:
		return StateTeacher
	case entity.RoleStudent:
		switch profile.Status {
		case entity.StatusPending:
			return StatePendingApproval
		case entity.StatusApproved:
			return StateStudent
		}
	}

	return StateUnauthenticated
}
