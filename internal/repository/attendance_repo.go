package repository

import (
	"context"
	"time"

	"cafebook/internal/model"

	"gorm.io/gorm"
)

type AttendanceFilter struct {
	EmployeeID uint
	From, To   *time.Time // [From, To)
}

type AttendanceRepository interface {
	Create(ctx context.Context, a *model.Attendance) error
	List(ctx context.Context, filter AttendanceFilter) ([]model.Attendance, error)
}

type attendanceRepo struct{ db *gorm.DB }

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository { return &attendanceRepo{db: db} }

func (r *attendanceRepo) Create(ctx context.Context, a *model.Attendance) error {
	return r.db.WithContext(ctx).Omit("Employee").Create(a).Error
}

func (r *attendanceRepo) List(ctx context.Context, filter AttendanceFilter) ([]model.Attendance, error) {
	var out []model.Attendance
	q := r.db.WithContext(ctx).Preload("Employee")
	if filter.EmployeeID != 0 {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.From != nil {
		q = q.Where("checked_in_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("checked_in_at < ?", filter.To.UTC())
	}
	err := q.Order("checked_in_at DESC").Find(&out).Error
	return out, err
}
