package repository

import (
	"context"

	"cafebook/internal/dto"
	"cafebook/internal/model"

	"gorm.io/gorm"
)

type EmployeeRepository interface {
	Create(ctx context.Context, e *model.Employee, passwordHash string) error
	FindByID(ctx context.Context, id uint) (*model.Employee, error)
	FindByPhone(ctx context.Context, phone string) (*model.Employee, error)
	Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	List(ctx context.Context, filter dto.EmployeeFilter) ([]model.Employee, int64, error)
	Update(ctx context.Context, e *model.Employee) error

	FindCredential(ctx context.Context, phone string) (*model.Credential, error)
	UpdatePassword(ctx context.Context, phone, passwordHash string) error

	ListRoles(ctx context.Context) ([]model.Role, error)
	FindRole(ctx context.Context, id uint) (*model.Role, error)
}

type employeeRepo struct{ db *gorm.DB }

func NewEmployeeRepository(db *gorm.DB) EmployeeRepository { return &employeeRepo{db: db} }

// Create inserts the employee and its credential atomically.
func (r *employeeRepo) Create(ctx context.Context, e *model.Employee, passwordHash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Role").Create(e).Error; err != nil {
			return err
		}
		return tx.Create(&model.Credential{Phone: e.Phone, PasswordHash: passwordHash}).Error
	})
}

func (r *employeeRepo) FindByID(ctx context.Context, id uint) (*model.Employee, error) {
	var e model.Employee
	err := r.db.WithContext(ctx).Preload("Role").First(&e, id).Error
	return &e, err
}

func (r *employeeRepo) FindByPhone(ctx context.Context, phone string) (*model.Employee, error) {
	var e model.Employee
	err := r.db.WithContext(ctx).Preload("Role").Where("phone = ?", phone).First(&e).Error
	return &e, err
}

func (r *employeeRepo) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	var n int64
	err := conn(r.db, tx).WithContext(ctx).Model(&model.Employee{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *employeeRepo) List(ctx context.Context, filter dto.EmployeeFilter) ([]model.Employee, int64, error) {
	var (
		employees []model.Employee
		total     int64
	)
	offset, limit := paginate(filter.Page, filter.Limit)

	q := r.db.WithContext(ctx).Model(&model.Employee{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR phone LIKE ?", like, like)
	}
	if filter.RoleID != 0 {
		q = q.Where("role_id = ?", filter.RoleID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Role").Order("id").Offset(offset).Limit(limit).Find(&employees).Error
	return employees, total, err
}

func (r *employeeRepo) Update(ctx context.Context, e *model.Employee) error {
	return r.db.WithContext(ctx).Omit("Role").Save(e).Error
}

func (r *employeeRepo) FindCredential(ctx context.Context, phone string) (*model.Credential, error) {
	var c model.Credential
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&c).Error
	return &c, err
}

func (r *employeeRepo) UpdatePassword(ctx context.Context, phone, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&model.Credential{}).
		Where("phone = ?", phone).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *employeeRepo) ListRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).Order("id").Find(&roles).Error
	return roles, err
}

func (r *employeeRepo) FindRole(ctx context.Context, id uint) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).First(&role, id).Error
	return &role, err
}
