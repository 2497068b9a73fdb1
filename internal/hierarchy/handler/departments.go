package handler

import (
	"net/http"

	"orgmanagement_backend/internal/hierarchy/transport"
	"orgmanagement_backend/internal/http/middleware"
	"orgmanagement_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) ListDepartments(c *gin.Context) {
	caller, ok := middleware.MustGetCaller(c)
	if !ok {
		return
	}

	depts, err := h.svc.ListDepartments(c.Request.Context(), caller)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, depts)
}

func (h *Handler) CreateDepartment(c *gin.Context) {
	var req transport.CreateDepartmentRequest
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

	dept, err := h.svc.CreateDepartment(c.Request.Context(), caller, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, dept)
}

func (h *Handler) GetDepartment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	caller, ok := middleware.MustGetCaller(c)
	if !ok {
		return
	}

	dept, err := h.svc.GetDepartment(c.Request.Context(), caller, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, dept)
}

func (h *Handler) UpdateDepartment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	var req transport.UpdateDepartmentRequest
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

	dept, err := h.svc.UpdateDepartment(c.Request.Context(), caller, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, dept)
}

func (h *Handler) DeleteDepartment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	caller, ok := middleware.MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteDepartment(c.Request.Context(), caller, id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}
