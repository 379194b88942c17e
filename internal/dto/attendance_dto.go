package dto

import "time"

type CheckInRequest struct {
	Latitude  *float64 `json:"latitude"  validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

// AttendanceFilter is bound from query string of GET /v1/attendance.
type AttendanceFilter struct {
	EmployeeID uint   `form:"employee_id"`
	From       string `form:"from"` // YYYY-MM-DD inclusive
	To         string `form:"to"`   // YYYY-MM-DD inclusive
}

type AttendanceResponse struct {
	ID             uint      `json:"id"`
	EmployeeID     uint      `json:"employee_id"`
	EmployeeName   string    `json:"employee_name,omitempty"`
	CheckedInAt    time.Time `json:"checked_in_at"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	DistanceMeters float64   `json:"distance_meters"`
	Status         string    `json:"status"`
}
