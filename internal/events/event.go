// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"orgmanagement_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Hierarchy Domain Events
// =============================================================================

// OrganizationCreated is published when a tenant bootstraps itself.
type OrganizationCreated struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	Name           string    `json:"name"`
}

func (e OrganizationCreated) EventName() string { return "hierarchy.organization.created" }

// OrganizationDeleted is published when an organization and its subtree are removed.
type OrganizationDeleted struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
}

func (e OrganizationDeleted) EventName() string { return "hierarchy.organization.deleted" }

// DepartmentDeleted is published after a department delete, which cascades
// to its teams and all of their membership sets.
type DepartmentDeleted struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	DepartmentID   uuid.UUID `json:"departmentId"`
}

func (e DepartmentDeleted) EventName() string { return "hierarchy.department.deleted" }

// MemberAssigned is published when a user or survey is added to a
// department or team membership set.
type MemberAssigned struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	HostKind       string    `json:"hostKind"`   // "department" | "team"
	HostID         uuid.UUID `json:"hostId"`
	MemberKind     string    `json:"memberKind"` // "user" | "survey"
	MemberID       uuid.UUID `json:"memberId"`
}

func (e MemberAssigned) EventName() string { return "hierarchy.member.assigned" }

// MemberRemoved is the counterpart of MemberAssigned.
type MemberRemoved struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	HostKind       string    `json:"hostKind"`
	HostID         uuid.UUID `json:"hostId"`
	MemberKind     string    `json:"memberKind"`
	MemberID       uuid.UUID `json:"memberId"`
}

func (e MemberRemoved) EventName() string { return "hierarchy.member.removed" }
