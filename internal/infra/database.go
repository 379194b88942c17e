package infra

import (
	"fmt"

	"cafebook/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (CHECK constraints, partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table. It is driver-agnostic so tests can
// run it against SQLite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Permission{},
		&model.PermissionGroup{},
		&model.Role{},
		&model.Employee{},
		&model.Credential{},
		&model.Product{},
		&model.PriceChange{},
		&model.Voucher{},
		&model.Invoice{},
		&model.InvoiceLine{},
		&model.Ingredient{},
		&model.Genre{},
		&model.Book{},
		&model.Attendance{},
	)
}

// applySchemaPatches runs PostgreSQL-only DDL. Each statement is guarded so
// re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"products price non-negative", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_products_price') THEN
    ALTER TABLE products ADD CONSTRAINT chk_products_price CHECK (price >= 0);
  END IF;
END $$`},
		{"invoice_lines quantity positive", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_invoice_lines_quantity') THEN
    ALTER TABLE invoice_lines ADD CONSTRAINT chk_invoice_lines_quantity CHECK (quantity > 0);
  END IF;
END $$`},
		{"vouchers window and percent", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_vouchers_window') THEN
    ALTER TABLE vouchers ADD CONSTRAINT chk_vouchers_window
      CHECK (starts_at < ends_at AND percent > 0 AND percent <= 100);
  END IF;
END $$`},
		{"ingredients and books quantity non-negative", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_ingredients_quantity') THEN
    ALTER TABLE ingredients ADD CONSTRAINT chk_ingredients_quantity CHECK (quantity >= 0);
  END IF;
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_books_quantity') THEN
    ALTER TABLE books ADD CONSTRAINT chk_books_quantity CHECK (quantity >= 0);
  END IF;
END $$`},
		{"attendance by employee and day", `
CREATE INDEX IF NOT EXISTS idx_attendances_employee_checked_in
    ON attendances (employee_id, checked_in_at DESC)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
