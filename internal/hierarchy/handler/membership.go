package handler

import (
	"net/http"

	"orgmanagement_backend/internal/hierarchy/repository"
	"orgmanagement_backend/internal/http/middleware"
	"orgmanagement_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// membershipParams are the three identifiers every membership route
// carries: organization, host, member.
type membershipParams struct {
	orgID    uuid.UUID
	hostID   uuid.UUID
	memberID uuid.UUID
}

func parseMembershipParams(c *gin.Context, hostParam, memberParam string) (membershipParams, bool) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return membershipParams{}, false
	}
	hostID, err := uuid.Parse(c.Param(hostParam))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return membershipParams{}, false
	}
	memberID, err := uuid.Parse(c.Param(memberParam))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return membershipParams{}, false
	}
	return membershipParams{orgID: orgID, hostID: hostID, memberID: memberID}, true
}

func (h *Handler) assign(c *gin.Context, host repository.HostKind, member repository.MemberKind, hostParam, memberParam string) {
	p, ok := parseMembershipParams(c, hostParam, memberParam)
	if !ok {
		return
	}
	caller, ok := middleware.MustGetCaller(c)
	if !ok {
		return
	}

	err := h.svc.AssignMember(c.Request.Context(), caller, host, member, p.orgID, p.hostID, p.memberID)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) remove(c *gin.Context, host repository.HostKind, member repository.MemberKind, hostParam, memberParam string) {
	p, ok := parseMembershipParams(c, hostParam, memberParam)
	if !ok {
		return
	}
	caller, ok := middleware.MustGetCaller(c)
	if !ok {
		return
	}

	err := h.svc.RemoveMember(c.Request.Context(), caller, host, member, p.orgID, p.hostID, p.memberID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) AssignUserToDepartment(c *gin.Context) {
	h.assign(c, repository.HostDepartment, repository.MemberUser, "departmentId", "userId")
}

func (h *Handler) RemoveUserFromDepartment(c *gin.Context) {
	h.remove(c, repository.HostDepartment, repository.MemberUser, "departmentId", "userId")
}

func (h *Handler) AssignSurveyToDepartment(c *gin.Context) {
	h.assign(c, repository.HostDepartment, repository.MemberSurvey, "departmentId", "surveyId")
}

func (h *Handler) RemoveSurveyFromDepartment(c *gin.Context) {
	h.remove(c, repository.HostDepartment, repository.MemberSurvey, "departmentId", "surveyId")
}

func (h *Handler) AssignUserToTeam(c *gin.Context) {
	h.assign(c, repository.HostTeam, repository.MemberUser, "teamId", "userId")
}

func (h *Handler) RemoveUserFromTeam(c *gin.Context) {
	h.remove(c, repository.HostTeam, repository.MemberUser, "teamId", "userId")
}

func (h *Handler) AssignSurveyToTeam(c *gin.Context) {
	h.assign(c, repository.HostTeam, repository.MemberSurvey, "teamId", "surveyId")
}

func (h *Handler) RemoveSurveyFromTeam(c *gin.Context) {
	h.remove(c, repository.HostTeam, repository.MemberSurvey, "teamId", "surveyId")
}
