package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamgate/internal/employee/domain"
	dbpkg "github.com/smallbiznis/teamgate/pkg/db"
	"github.com/smallbiznis/teamgate/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, employee *domain.Employee) error {
	if err := r.db.WithContext(ctx).Create(employee).Error; err != nil {
		if dbpkg.IsDuplicateKeyErr(err) {
			return domain.ErrEmployeeExists
		}
		return err
	}
	return nil
}

func (r *repo) FindByEmployeeID(ctx context.Context, orgID snowflake.ID, employeeID string) (*domain.Employee, error) {
	return r.findOne(ctx, "org_id = ? AND employee_id = ?", orgID, employeeID)
}

func (r *repo) FindByEmail(ctx context.Context, orgID snowflake.ID, email string) (*domain.Employee, error) {
	return r.findOne(ctx, "org_id = ? AND email = ?", orgID, email)
}

func (r *repo) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]domain.Employee, error) {
	var employees []domain.Employee
	err := r.db.WithContext(ctx).Where("org_id = ?", orgID).Order("created_at ASC").Find(&employees).Error
	if err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *repo) List(ctx context.Context, orgID snowflake.ID, p pagination.Pagination) ([]domain.Employee, *pagination.PageInfo, error) {
	size := p.PageSize
	if size <= 0 {
		size = 10
	}

	query := r.db.WithContext(ctx).Where("org_id = ?", orgID).Order("id ASC")
	if p.PageToken != "" {
		cursor, err := pagination.DecodeCursor(p.PageToken)
		if err != nil {
			return nil, nil, err
		}
		afterID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, nil, err
		}
		query = query.Where("id > ?", afterID)
	}

	var employees []domain.Employee
	if err := query.Limit(size + 1).Find(&employees).Error; err != nil {
		return nil, nil, err
	}

	info := &pagination.PageInfo{}
	if len(employees) > size {
		employees = employees[:size]
		info.HasMore = true
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: employees[size-1].ID.String()})
		if err != nil {
			return nil, nil, err
		}
		info.NextPageToken = token
	}
	return employees, info, nil
}

func (r *repo) findOne(ctx context.Context, query string, args ...any) (*domain.Employee, error) {
	var employee domain.Employee
	err := r.db.WithContext(ctx).Where(query, args...).First(&employee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &employee, nil
}
