package service

import (
	"context"
	"fmt"

	"cafebook/internal/apierror"
	"cafebook/internal/dto"
	"cafebook/internal/model"
	"cafebook/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type EmployeeService interface {
	Register(ctx context.Context, req dto.RegisterEmployeeRequest) (*dto.EmployeeResponse, error)
	Get(ctx context.Context, id uint) (*dto.EmployeeResponse, error)
	List(ctx context.Context, filter dto.EmployeeFilter) (*dto.EmployeeListResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error)
	ListRoles(ctx context.Context) ([]dto.RoleResponse, error)
}

type employeeService struct {
	repo repository.EmployeeRepository
}

func NewEmployeeService(repo repository.EmployeeRepository) EmployeeService {
	return &employeeService{repo: repo}
}

func (s *employeeService) Register(ctx context.Context, req dto.RegisterEmployeeRequest) (*dto.EmployeeResponse, error) {
	role, err := s.repo.FindRole(ctx, req.RoleID)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound(apierror.EntityRole, req.RoleID)
	}
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	emp := &model.Employee{
		Phone:      req.Phone,
		Name:       req.Name,
		NationalID: req.NationalID,
		Email:      req.Email,
		RoleID:     role.ID,
		Active:     true,
	}
	if err := s.repo.Create(ctx, emp, string(hash)); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Invalid(apierror.DuplicateName, "phone",
				"Số điện thoại hoặc CCCD đã được đăng ký")
		}
		return nil, fmt.Errorf("create employee: %w", err)
	}
	emp.Role = *role
	log.Info().Uint("employee_id", emp.ID).Str("role", role.Code).Msg("employee registered")

	resp := toEmployeeResponse(emp)
	return &resp, nil
}

func (s *employeeService) Get(ctx context.Context, id uint) (*dto.EmployeeResponse, error) {
	emp, err := s.repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound(apierror.EntityEmployee, id)
	}
	if err != nil {
		return nil, err
	}
	resp := toEmployeeResponse(emp)
	return &resp, nil
}

func (s *employeeService) List(ctx context.Context, filter dto.EmployeeFilter) (*dto.EmployeeListResponse, error) {
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.EmployeeResponse, len(employees))
	for i := range employees {
		data[i] = toEmployeeResponse(&employees[i])
	}
	return &dto.EmployeeListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *employeeService) Update(ctx context.Context, id uint, req dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	emp, err := s.repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound(apierror.EntityEmployee, id)
	}
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		emp.Name = req.Name
	}
	if req.Email != nil {
		emp.Email = req.Email
	}
	if req.Active != nil {
		emp.Active = *req.Active
	}
	if req.RoleID != nil && *req.RoleID != emp.RoleID {
		role, err := s.repo.FindRole(ctx, *req.RoleID)
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound(apierror.EntityRole, *req.RoleID)
		}
		if err != nil {
			return nil, err
		}
		emp.RoleID = role.ID
		emp.Role = *role
	}

	if err := s.repo.Update(ctx, emp); err != nil {
		return nil, err
	}
	resp := toEmployeeResponse(emp)
	return &resp, nil
}

func (s *employeeService) ListRoles(ctx context.Context) ([]dto.RoleResponse, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.RoleResponse, len(roles))
	for i, r := range roles {
		resp[i] = dto.RoleResponse{ID: r.ID, Code: r.Code, Name: r.Name}
	}
	return resp, nil
}

func toEmployeeResponse(e *model.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:         e.ID,
		Phone:      e.Phone,
		Name:       e.Name,
		NationalID: e.NationalID,
		Email:      e.Email,
		RoleID:     e.RoleID,
		Role:       e.Role.Code,
		Active:     e.Active,
	}
}
