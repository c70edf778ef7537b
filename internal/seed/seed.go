// Package seed bootstraps the default organization and owner account so a
// fresh install is usable without a separate signup flow.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/teamgate/internal/config"
	organizationdomain "github.com/smallbiznis/teamgate/internal/organization/domain"
	userdomain "github.com/smallbiznis/teamgate/internal/user/domain"
	"github.com/smallbiznis/teamgate/internal/user/password"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultOrgName       = "Main"
	defaultOwnerEmail    = "owner@teamgate.local"
	defaultOwnerPassword = "changeme!"
)

type Seeder struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func New(db *gorm.DB, log *zap.Logger, genID *snowflake.Node) *Seeder {
	return &Seeder{db: db, log: log.Named("seed"), genID: genID}
}

// EnsureDefaults creates the bootstrap organization and its owner when the
// database holds no organizations yet. Existing installs are untouched.
func (s *Seeder) EnsureDefaults(cfg config.BootstrapConfig) error {
	if s.db == nil {
		return errors.New("seed database handle is required")
	}

	orgName := strings.TrimSpace(cfg.OrgName)
	if orgName == "" {
		orgName = defaultOrgName
	}
	ownerEmail := strings.ToLower(strings.TrimSpace(cfg.OwnerEmail))
	if ownerEmail == "" {
		ownerEmail = defaultOwnerEmail
	}
	ownerPassword := cfg.OwnerPassword
	if ownerPassword == "" {
		ownerPassword = defaultOwnerPassword
	}

	ctx := context.Background()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&organizationdomain.Organization{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		org := &organizationdomain.Organization{
			ID:        s.genID.Generate(),
			Name:      orgName,
			Slug:      slug.Make(orgName),
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(org).Error; err != nil {
			return err
		}

		hashed, err := password.Hash(ownerPassword)
		if err != nil {
			return err
		}
		owner := &userdomain.User{
			ID:            s.genID.Generate(),
			Email:         ownerEmail,
			PasswordHash:  &hashed,
			FirstName:     "Owner",
			Role:          userdomain.RoleOwner,
			OrgID:         org.ID,
			EmailVerified: true,
			Active:        true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.Create(owner).Error; err != nil {
			return err
		}

		s.log.Info("bootstrap defaults seeded",
			zap.String("org_id", org.ID.String()),
			zap.String("owner_email", ownerEmail),
		)
		return nil
	})
}

// Module wires the seeder.
var Module = fx.Module("seed",
	fx.Provide(New),
)
