package handler

import (
	"net/http"

	"cafebook/internal/dto"
	"cafebook/internal/middleware"
	"cafebook/internal/service"

	"github.com/gin-gonic/gin"
)

type EmployeesHandler struct{ svc service.EmployeeService }

func NewEmployeesHandler(svc service.EmployeeService) *EmployeesHandler {
	return &EmployeesHandler{svc: svc}
}

// Register godoc
// @Summary Đăng ký nhân viên mới
// @Tags employees
// @Accept json
// @Produce json
// @Param body body dto.RegisterEmployeeRequest true "Nhân viên"
// @Success 201 {object} dto.EmployeeResponse
// @Router /v1/employees [post]
func (h *EmployeesHandler) Register(c *gin.Context) {
	var req dto.RegisterEmployeeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *EmployeesHandler) List(c *gin.Context) {
	var filter dto.EmployeeFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EmployeesHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated employee's profile.
func (h *EmployeesHandler) Me(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetClaims(c).EmployeeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EmployeesHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateEmployeeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EmployeesHandler) Roles(c *gin.Context) {
	resp, err := h.svc.ListRoles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
