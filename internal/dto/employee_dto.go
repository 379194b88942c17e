package dto

// EmployeeFilter is bound from query string of GET /v1/employees.
type EmployeeFilter struct {
	Search string `form:"search"` // name or phone fragment
	RoleID uint   `form:"role_id"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type RegisterEmployeeRequest struct {
	Phone      string  `json:"phone"       validate:"required,numeric,min=9,max=15"`
	Name       string  `json:"name"        validate:"required,min=2,max=255"`
	NationalID string  `json:"national_id" validate:"required,numeric,min=9,max=20"`
	Email      *string `json:"email"       validate:"omitempty,email"`
	RoleID     uint    `json:"role_id"     validate:"required"`
	Password   string  `json:"password"    validate:"required,min=6"`
}

type UpdateEmployeeRequest struct {
	Name   string  `json:"name"    validate:"omitempty,min=2,max=255"`
	Email  *string `json:"email"   validate:"omitempty,email"`
	RoleID *uint   `json:"role_id" validate:"omitempty,min=1"`
	Active *bool   `json:"active"`
}

type EmployeeResponse struct {
	ID         uint    `json:"id"`
	Phone      string  `json:"phone"`
	Name       string  `json:"name"`
	NationalID string  `json:"national_id"`
	Email      *string `json:"email"`
	RoleID     uint    `json:"role_id"`
	Role       string  `json:"role"`
	Active     bool    `json:"active"`
}

type EmployeeListResponse struct {
	Data  []EmployeeResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type RoleResponse struct {
	ID   uint   `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
