// Package remote holds the thin HTTP clients for the two external
// collaborators: the user-service and the survey-service. Existence probes
// return a three-valued result so callers can distinguish "the service said
// no" from "the service could not answer".
package remote

import "github.com/google/uuid"

// ProbeResult is the outcome of a remote existence probe.
type ProbeResult int

const (
	// ProbeUnknown covers any transport-level failure: timeout, connection
	// refused, non-200 status, unparseable body.
	ProbeUnknown ProbeResult = iota
	// ProbePresent means the remote service confirmed the ID exists.
	ProbePresent
	// ProbeAbsent means the remote service confirmed the ID does not exist.
	ProbeAbsent
)

func (r ProbeResult) String() string {
	switch r {
	case ProbePresent:
		return "present"
	case ProbeAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// AssignmentKind distinguishes the two placement targets in outbound
// user-service assignment records.
type AssignmentKind string

const (
	AssignmentDepartment AssignmentKind = "DEPARTMENT"
	AssignmentTeam       AssignmentKind = "TEAM"
)

// Assignment is the record dispatched to the user-service when a user is
// placed in (or removed from) a slot in the hierarchy. TeamID is nil for
// department placements.
type Assignment struct {
	DepartmentID uuid.UUID      `json:"departmentId"`
	TeamID       *uuid.UUID     `json:"teamId"`
	Kind         AssignmentKind `json:"assignmentType"`
}

// DepartmentAssignment builds a DEPARTMENT placement record.
func DepartmentAssignment(departmentID uuid.UUID) Assignment {
	return Assignment{DepartmentID: departmentID, Kind: AssignmentDepartment}
}

// TeamAssignment builds a TEAM placement record carrying the team's parent.
func TeamAssignment(departmentID, teamID uuid.UUID) Assignment {
	return Assignment{DepartmentID: departmentID, TeamID: &teamID, Kind: AssignmentTeam}
}
