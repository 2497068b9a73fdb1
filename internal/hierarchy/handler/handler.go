// Package handler exposes the hierarchy HTTP surface.
package handler

import (
	"net/http"

	"orgmanagement_backend/internal/hierarchy/service"
	"orgmanagement_backend/internal/hierarchy/transport"
	"orgmanagement_backend/internal/http/middleware"
	"orgmanagement_backend/internal/tenancy"
	"orgmanagement_backend/platform/httpkit"
	"orgmanagement_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterPublicRoutes mounts the unauthenticated surface: tenant
// bootstrap and the existence probe peer services poll.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/organizations", h.CreateOrganization)
	rg.GET("/organizations/:id/exists", h.OrganizationExists)
}

// RegisterProtectedRoutes mounts the authenticated surface. Every route
// carries its authority requirement; root admins pass all of them.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	read := middleware.RequireAuthority(tenancy.AuthorityRead)
	create := middleware.RequireAuthority(tenancy.AuthorityCreate)
	update := middleware.RequireAuthority(tenancy.AuthorityUpdate)
	del := middleware.RequireAuthority(tenancy.AuthorityDelete)

	orgs := rg.Group("/organizations")
	orgs.GET("", read, h.ListOrganizations)
	orgs.GET("/:id", read, h.GetOrganization)
	orgs.PUT("/:id", update, h.UpdateOrganization)
	orgs.DELETE("/:id", del, h.DeleteOrganization)
	orgs.GET("/:id/children", read, h.GetChildren)

	orgs.POST("/:id/departments/:departmentId/assign-user/:userId", update, h.AssignUserToDepartment)
	orgs.DELETE("/:id/departments/:departmentId/remove-user/:userId", del, h.RemoveUserFromDepartment)
	orgs.POST("/:id/departments/:departmentId/assign-survey/:surveyId", update, h.AssignSurveyToDepartment)
	orgs.DELETE("/:id/departments/:departmentId/remove-survey/:surveyId", del, h.RemoveSurveyFromDepartment)
	orgs.POST("/:id/teams/:teamId/assign-user/:userId", update, h.AssignUserToTeam)
	orgs.DELETE("/:id/teams/:teamId/remove-user/:userId", del, h.RemoveUserFromTeam)
	orgs.POST("/:id/teams/:teamId/assign-survey/:surveyId", update, h.AssignSurveyToTeam)
	orgs.DELETE("/:id/teams/:teamId/remove-survey/:surveyId", del, h.RemoveSurveyFromTeam)

	depts := rg.Group("/departments")
	depts.GET("", read, h.ListDepartments)
	depts.POST("", create, h.CreateDepartment)
	depts.GET("/:id", read, h.GetDepartment)
	depts.PUT("/:id", update, h.UpdateDepartment)
	depts.DELETE("/:id", del, h.DeleteDepartment)

	teams := rg.Group("/teams")
	teams.GET("", read, h.ListTeams)
	teams.GET("/department/:departmentId", read, h.ListTeamsByDepartment)
	teams.POST("", create, h.CreateTeam)
	teams.GET("/:id", read, h.GetTeam)
	teams.PUT("/:id", update, h.UpdateTeam)
	teams.DELETE("/:id", del, h.DeleteTeam)
}

// =============================================================================
// Organization handlers
// =============================================================================

func (h *Handler) ListOrganizations(c *gin.Context) {
	caller, ok := middleware.MustGetCaller(c)
	if !ok {
		return
	}

	orgs, err := h.svc.ListOrganizations(c.Request.Context(), caller)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, orgs)
}

func (h *Handler) CreateOrganization(c *gin.Context) {
	var req transport.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed)
		return
	}

	org, err := h.svc.CreateOrganization(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, org)
}

func (h *Handler) GetOrganization(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	caller, ok := middleware.MustGetCaller(c)
	if !ok {
		return
	}

	org, err := h.svc.GetOrganization(c.Request.Context(), caller, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, org)
}

func (h *Handler) OrganizationExists(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	exists, err := h.svc.OrganizationExists(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, exists)
}

func (h *Handler) UpdateOrganization(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	var req transport.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed)
		return
	}
	caller, ok := middleware.MustGetCaller(c)
	if !ok {
		return
	}

	org, err := h.svc.UpdateOrganization(c.Request.Context(), caller, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, org)
}

func (h *Handler) DeleteOrganization(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	caller, ok := middleware.MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteOrganization(c.Request.Context(), caller, id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) GetChildren(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	caller, ok := middleware.MustGetCaller(c)
	if !ok {
		return
	}

	children, err := h.svc.GetChildren(c.Request.Context(), caller, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, children)
}
