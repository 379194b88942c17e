package model

// Permission is one fine-grained action code, e.g. "order.create".
type Permission struct {
	ID     uint   `gorm:"primaryKey"`
	Module string `gorm:"type:varchar(45);not null"`
	Action string `gorm:"type:varchar(45);not null"`
	Code   string `gorm:"type:varchar(45);uniqueIndex;not null"`
}

// PermissionGroup bundles permissions; roles are granted groups, never
// individual permissions.
type PermissionGroup struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"type:varchar(45);uniqueIndex;not null"`
	Description *string `gorm:"type:varchar(255)"`

	Permissions []Permission `gorm:"many2many:permission_group_permissions;"`
}

// Permission codes checked by the HTTP layer.
const (
	PermEmployeeView    = "employee.view"
	PermEmployeeCreate  = "employee.create"
	PermEmployeeUpdate  = "employee.update"
	PermProductView     = "product.view"
	PermProductManage   = "product.manage"
	PermVoucherManage   = "voucher.manage"
	PermOrderCreate     = "order.create"
	PermInvoiceView     = "invoice.view"
	PermStatisticsView  = "statistics.view"
	PermInventoryManage = "inventory.manage"
	PermBookManage      = "book.manage"
	PermAttendanceView  = "attendance.view"
)
