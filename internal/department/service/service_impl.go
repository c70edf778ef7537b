package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamgate/internal/department/domain"
	"go.uber.org/zap"
)

var errEmptyName = errors.New("department name is required")

type service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		log:   log.Named("department.service"),
		repo:  repo,
		genID: genID,
	}
}

func (s *service) Ensure(ctx context.Context, orgID snowflake.ID, name string) (*domain.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errEmptyName
	}

	now := time.Now().UTC()
	dept, err := s.repo.Upsert(ctx, &domain.Department{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		Name:          name,
		EmployeeCount: 1,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("department ensured",
		zap.String("org_id", orgID.String()),
		zap.String("name", name),
		zap.Int64("employee_count", dept.EmployeeCount),
	)
	return dept, nil
}

func (s *service) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]domain.Department, error) {
	return s.repo.ListByOrg(ctx, orgID)
}
