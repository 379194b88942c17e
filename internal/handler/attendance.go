package handler

import (
	"net/http"

	"cafebook/internal/dto"
	"cafebook/internal/middleware"
	"cafebook/internal/service"

	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct{ svc service.AttendanceService }

func NewAttendanceHandler(svc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{svc: svc}
}

// CheckIn records the caller's check-in at the posted coordinates.
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req dto.CheckInRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CheckIn(c.Request.Context(), middleware.GetClaims(c).EmployeeID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AttendanceHandler) List(c *gin.Context) {
	var f dto.AttendanceFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
