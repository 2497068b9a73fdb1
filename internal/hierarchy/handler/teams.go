package handler

import (
	"net/http"

	"orgmanagement_backend/internal/hierarchy/transport"
	"orgmanagement_backend/internal/http/middleware"
	"orgmanagement_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) ListTeams(c *gin.Context) {
	caller, ok := middleware.MustGetCaller(c)
	if !ok {
		return
	}

	teams, err := h.svc.ListTeams(c.Request.Context(), caller)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, teams)
}

func (h *Handler) ListTeamsByDepartment(c *gin.Context) {
	departmentID, err := uuid.Parse(c.Param("departmentId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	caller, ok := middleware.MustGetCaller(c)
	if !ok {
		return
	}

	teams, err := h.svc.ListTeamsByDepartment(c.Request.Context(), caller, departmentID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, teams)
}

func (h *Handler) CreateTeam(c *gin.Context) {
	var req transport.CreateTeamRequest
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

	team, err := h.svc.CreateTeam(c.Request.Context(), caller, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, team)
}

func (h *Handler) GetTeam(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	caller, ok := middleware.MustGetCaller(c)
	if !ok {
		return
	}

	team, err := h.svc.GetTeam(c.Request.Context(), caller, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, team)
}

func (h *Handler) UpdateTeam(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	var req transport.UpdateTeamRequest
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

	team, err := h.svc.UpdateTeam(c.Request.Context(), caller, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, team)
}

func (h *Handler) DeleteTeam(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	caller, ok := middleware.MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteTeam(c.Request.Context(), caller, id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}
