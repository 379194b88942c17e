package model

import "time"

// Role is a job title. The set is small and fixed:
// manager | barista | cashier | server | security | cleaner
type Role struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"type:varchar(20);uniqueIndex;not null"`
	Name string `gorm:"not null"`

	PermissionGroups []PermissionGroup `gorm:"many2many:role_permission_groups;"`
}

// Employee is keyed naturally by Phone. Employees are never hard-deleted
// because invoices and attendance rows reference them.
type Employee struct {
	ID         uint    `gorm:"primaryKey"`
	Phone      string  `gorm:"type:varchar(15);uniqueIndex;not null"`
	Name       string  `gorm:"not null"`
	NationalID string  `gorm:"type:varchar(20);uniqueIndex;not null"`
	Email      *string `gorm:"index"`
	RoleID     uint    `gorm:"not null;index"`
	Active     bool    `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Role Role `gorm:"foreignKey:RoleID"`
}

// Credential holds the bcrypt hash for one employee, joined on phone.
type Credential struct {
	ID           uint   `gorm:"primaryKey"`
	Phone        string `gorm:"type:varchar(15);uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	UpdatedAt    time.Time
}
