package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamgate/internal/department/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Upsert(ctx context.Context, dept *domain.Department) (*domain.Department, error) {
	// Insert-or-increment in a single statement. The unique constraint on
	// (org_id, name) is authoritative: two racing calls cannot both insert,
	// the loser lands on the DO UPDATE branch.
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "org_id"}, {Name: "name"}},
		DoUpdates: clause.Assignments(map[string]any{
			"employee_count": gorm.Expr("departments.employee_count + 1"),
			"updated_at":     dept.UpdatedAt,
		}),
	}).Create(dept).Error
	if err != nil {
		return nil, err
	}

	return r.FindByName(ctx, dept.OrgID, dept.Name)
}

func (r *repo) FindByName(ctx context.Context, orgID snowflake.ID, name string) (*domain.Department, error) {
	var dept domain.Department
	err := r.db.WithContext(ctx).Where("org_id = ? AND name = ?", orgID, name).First(&dept).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrDepartmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *repo) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]domain.Department, error) {
	var depts []domain.Department
	err := r.db.WithContext(ctx).Where("org_id = ?", orgID).Order("name ASC").Find(&depts).Error
	if err != nil {
		return nil, err
	}
	return depts, nil
}
