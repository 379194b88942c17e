// cmd/seeduser seeds roles, permission groups and a
// manager account. Safe to run repeatedly.
// Usage: go run ./cmd/seeduser
package main

import (
	"os"
	"strings"

	"cafebook/internal/config"
	"cafebook/internal/infra"
	"cafebook/internal/model"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var roles = []model.Role{
	{Code: "manager", Name: "Quản lý"},
	{Code: "barista", Name: "Pha chế"},
	{Code: "cashier", Name: "Thu ngân"},
	{Code: "server", Name: "Phục vụ"},
	{Code: "security", Name: "Bảo vệ"},
	{Code: "cleaner", Name: "Tạp vụ"},
}

type groupSeed struct {
	name  string
	codes []string
	roles []string
}

var groups = []groupSeed{
	{
		name:  "Bán hàng",
		codes: []string{model.PermProductView, model.PermOrderCreate, model.PermInvoiceView},
		roles: []string{"manager", "barista", "cashier", "server"},
	},
	{
		name:  "Kho",
		codes: []string{model.PermInventoryManage, model.PermBookManage},
		roles: []string{"manager", "barista"},
	},
	{
		name: "Quản trị",
		codes: []string{
			model.PermEmployeeView, model.PermEmployeeCreate, model.PermEmployeeUpdate,
			model.PermProductManage, model.PermVoucherManage,
			model.PermStatisticsView, model.PermAttendanceView,
		},
		roles: []string{"manager"},
	},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	phone := envOr("SEED_PHONE", "0900000000")
	password := envOr("SEED_PASSWORD", "cafebook2026")

	err = db.Transaction(func(tx *gorm.DB) error {
		byCode := map[string]*model.Role{}
		for i := range roles {
			r := roles[i]
			if err := tx.Where(model.Role{Code: r.Code}).Attrs(model.Role{Name: r.Name}).FirstOrCreate(&r).Error; err != nil {
				return err
			}
			byCode[r.Code] = &r
		}

		for _, g := range groups {
			group := model.PermissionGroup{Name: g.name}
			if err := tx.Where(model.PermissionGroup{Name: g.name}).FirstOrCreate(&group).Error; err != nil {
				return err
			}
			perms := make([]model.Permission, 0, len(g.codes))
			for _, code := range g.codes {
				module, action, _ := strings.Cut(code, ".")
				p := model.Permission{}
				if err := tx.Where(model.Permission{Code: code}).
					Attrs(model.Permission{Module: module, Action: action}).
					FirstOrCreate(&p).Error; err != nil {
					return err
				}
				perms = append(perms, p)
			}
			if err := tx.Model(&group).Association("Permissions").Replace(perms); err != nil {
				return err
			}
			for _, code := range g.roles {
				if err := tx.Model(byCode[code]).Association("PermissionGroups").Append(&group); err != nil {
					return err
				}
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
		if err != nil {
			return err
		}
		manager := model.Employee{
			Phone:      phone,
			Name:       "Quản lý cửa hàng",
			NationalID: "000000000000",
			RoleID:     byCode["manager"].ID,
			Active:     true,
		}
		if err := tx.Where(model.Employee{Phone: phone}).Attrs(manager).FirstOrCreate(&manager).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "updated_at"}),
		}).Create(&model.Credential{Phone: phone, PasswordHash: string(hash)}).Error
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Str("phone", phone).Msg("manager account created/updated")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
