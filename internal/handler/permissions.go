package handler

import (
	"net/http"

	"cafebook/internal/dto"
	"cafebook/internal/middleware"
	"cafebook/internal/service"

	"github.com/gin-gonic/gin"
)

type PermissionsHandler struct{ svc service.PermissionService }

func NewPermissionsHandler(svc service.PermissionService) *PermissionsHandler {
	return &PermissionsHandler{svc: svc}
}

// Check answers whether a role holds a permission code. Clients use it to
// hide actions the user cannot perform.
func (h *PermissionsHandler) Check(c *gin.Context) {
	var req dto.CheckPermissionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ok, err := h.svc.Check(c.Request.Context(), req.RoleID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CheckPermissionResponse{Access: ok})
}

// Mine lists the caller's permission codes.
func (h *PermissionsHandler) Mine(c *gin.Context) {
	codes, err := h.svc.Codes(c.Request.Context(), middleware.GetClaims(c).RoleID)
	if err != nil {
		respondError(c, err)
		return
	}
	if codes == nil {
		codes = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"codes": codes})
}
