package migration

import (
	"github.com/smallbiznis/teamgate/internal/config"
	departmentdomain "github.com/smallbiznis/teamgate/internal/department/domain"
	employeedomain "github.com/smallbiznis/teamgate/internal/employee/domain"
	organizationdomain "github.com/smallbiznis/teamgate/internal/organization/domain"
	"github.com/smallbiznis/teamgate/internal/seed"
	tokendomain "github.com/smallbiznis/teamgate/internal/token/domain"
	userdomain "github.com/smallbiznis/teamgate/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, seeder *seed.Seeder) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql installs rely on gorm's schema builder;
			// the SQL migrations are written for postgres.
			if err := conn.AutoMigrate(
				&organizationdomain.Organization{},
				&userdomain.User{},
				&tokendomain.Token{},
				&departmentdomain.Department{},
				&employeedomain.Employee{},
			); err != nil {
				return err
			}
		}

		return seeder.EnsureDefaults(cfg.Bootstrap)
	}),
)
