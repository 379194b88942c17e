package dto

type CheckPermissionRequest struct {
	RoleID uint   `json:"role_id" validate:"required"`
	Code   string `json:"code"    validate:"required,max=45"`
}

type CheckPermissionResponse struct {
	Access bool `json:"access"`
}
