package transport

import "github.com/google/uuid"

// CreateOrganizationRequest bootstraps a new tenant.
type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required"`
}

// UpdateOrganizationRequest renames an organization.
type UpdateOrganizationRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateDepartmentRequest creates a department. OrganizationID is required
// for root admins and ignored for tenant callers.
type CreateDepartmentRequest struct {
	Name           string     `json:"name" validate:"required"`
	OrganizationID *uuid.UUID `json:"organizationId,omitempty"`
}

// UpdateDepartmentRequest renames a department. Root admins may additionally
// move it to another organization via OrganizationID.
type UpdateDepartmentRequest struct {
	Name           string     `json:"name" validate:"required"`
	OrganizationID *uuid.UUID `json:"organizationId,omitempty"`
}

// CreateTeamRequest creates a team under a department.
type CreateTeamRequest struct {
	Name         string     `json:"name" validate:"required"`
	DepartmentID *uuid.UUID `json:"departmentId" validate:"required"`
}

// UpdateTeamRequest renames a team and possibly re-parents it to another
// department within the same organization.
type UpdateTeamRequest struct {
	Name         string     `json:"name" validate:"required"`
	DepartmentID *uuid.UUID `json:"departmentId" validate:"required"`
}

// OrganizationResponse represents an organization in API responses.
type OrganizationResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// DepartmentResponse embeds the owning organization's summary.
type DepartmentResponse struct {
	ID           uuid.UUID            `json:"id"`
	Name         string               `json:"name"`
	Organization OrganizationResponse `json:"organization"`
}

// TeamResponse embeds the owning department's summary.
type TeamResponse struct {
	ID         uuid.UUID         `json:"id"`
	Name       string            `json:"name"`
	Department DepartmentSummary `json:"department"`
}

// DepartmentSummary is the shallow department view embedded in teams.
type DepartmentSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ChildrenResponse is the flattened, denormalized subtree of an
// organization: its departments and all teams beneath them.
type ChildrenResponse struct {
	Departments []DepartmentResponse `json:"departments"`
	Teams       []TeamResponse       `json:"teams"`
}
