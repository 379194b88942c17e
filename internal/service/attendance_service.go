package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"cafebook/internal/apierror"
	"cafebook/internal/dto"
	"cafebook/internal/model"
	"cafebook/internal/repository"

	"github.com/rs/zerolog/log"
)

const earthRadiusMeters = 6371000.0

// AttendancePolicy locates the office and the shift window.
type AttendancePolicy struct {
	OfficeLat    float64
	OfficeLng    float64
	RadiusMeters float64
	ShiftStart   string // HH:MM in Location
	LateGrace    time.Duration
	Location     *time.Location
}

type AttendanceService interface {
	CheckIn(ctx context.Context, employeeID uint, req dto.CheckInRequest) (*dto.AttendanceResponse, error)
	List(ctx context.Context, filter dto.AttendanceFilter) ([]dto.AttendanceResponse, error)
}

type attendanceService struct {
	repo      repository.AttendanceRepository
	policy    AttendancePolicy
	shiftHour int
	shiftMin  int
	now       func() time.Time
}

func NewAttendanceService(repo repository.AttendanceRepository, policy AttendancePolicy) (AttendanceService, error) {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	start, err := time.Parse("15:04", policy.ShiftStart)
	if err != nil {
		return nil, fmt.Errorf("attendance: shift start %q: %w", policy.ShiftStart, err)
	}
	return &attendanceService{
		repo:      repo,
		policy:    policy,
		shiftHour: start.Hour(),
		shiftMin:  start.Minute(),
		now:       time.Now,
	}, nil
}

// CheckIn records a check-in at the reported position. Being outside the
// radius wins over being late.
func (s *attendanceService) CheckIn(ctx context.Context, employeeID uint, req dto.CheckInRequest) (*dto.AttendanceResponse, error) {
	if req.Latitude == nil || req.Longitude == nil {
		return nil, apierror.Invalid(apierror.BadInput, "latitude", "Thiếu tọa độ")
	}
	now := s.now()
	dist := haversine(s.policy.OfficeLat, s.policy.OfficeLng, *req.Latitude, *req.Longitude)

	a := &model.Attendance{
		EmployeeID:     employeeID,
		CheckedInAt:    now.UTC(),
		Latitude:       *req.Latitude,
		Longitude:      *req.Longitude,
		DistanceMeters: math.Round(dist*100) / 100,
		Status:         s.status(now, dist),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("save attendance: %w", err)
	}
	log.Info().Uint("employee_id", employeeID).Str("status", a.Status).Float64("distance_m", a.DistanceMeters).Msg("check-in")

	resp := toAttendanceResponse(a)
	return &resp, nil
}

func (s *attendanceService) status(now time.Time, dist float64) string {
	if dist > s.policy.RadiusMeters {
		return model.AttendanceOutOfRange
	}
	local := now.In(s.policy.Location)
	deadline := time.Date(local.Year(), local.Month(), local.Day(), s.shiftHour, s.shiftMin, 0, 0, s.policy.Location).
		Add(s.policy.LateGrace)
	if local.After(deadline) {
		return model.AttendanceLate
	}
	return model.AttendanceOnTime
}

func (s *attendanceService) List(ctx context.Context, filter dto.AttendanceFilter) ([]dto.AttendanceResponse, error) {
	f := repository.AttendanceFilter{EmployeeID: filter.EmployeeID}
	if filter.From != "" {
		from, err := time.ParseInLocation("2006-01-02", filter.From, s.policy.Location)
		if err != nil {
			return nil, apierror.Invalid(apierror.BadInput, "from", "Ngày không hợp lệ, định dạng YYYY-MM-DD")
		}
		f.From = &from
	}
	if filter.To != "" {
		to, err := time.ParseInLocation("2006-01-02", filter.To, s.policy.Location)
		if err != nil {
			return nil, apierror.Invalid(apierror.BadInput, "to", "Ngày không hợp lệ, định dạng YYYY-MM-DD")
		}
		to = to.AddDate(0, 0, 1)
		f.To = &to
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return nil, apierror.Invalid(apierror.BadDateRange, "to", "Ngày bắt đầu phải trước ngày kết thúc")
	}

	rows, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AttendanceResponse, len(rows))
	for i := range rows {
		out[i] = toAttendanceResponse(&rows[i])
	}
	return out, nil
}

// haversine returns the great-circle distance in meters.
func haversine(lat1, lng1, lat2, lng2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toAttendanceResponse(a *model.Attendance) dto.AttendanceResponse {
	return dto.AttendanceResponse{
		ID:             a.ID,
		EmployeeID:     a.EmployeeID,
		EmployeeName:   a.Employee.Name,
		CheckedInAt:    a.CheckedInAt,
		Latitude:       a.Latitude,
		Longitude:      a.Longitude,
		DistanceMeters: a.DistanceMeters,
		Status:         a.Status,
	}
}
