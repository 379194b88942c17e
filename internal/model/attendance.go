package model

import "time"

const (
	AttendanceOnTime     = "on_time"
	AttendanceLate       = "late"
	AttendanceOutOfRange = "out_of_range"
)

// Attendance is one check-in. Status is derived at check-in time from the
// distance to the office and the shift start.
type Attendance struct {
	ID             uint      `gorm:"primaryKey"`
	EmployeeID     uint      `gorm:"not null;index"`
	CheckedInAt    time.Time `gorm:"not null;index"`
	Latitude       float64   `gorm:"not null"`
	Longitude      float64   `gorm:"not null"`
	DistanceMeters float64   `gorm:"not null"`
	Status         string    `gorm:"type:varchar(20);not null"`

	Employee Employee `gorm:"foreignKey:EmployeeID"`
}
