package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamgate/internal/user/domain"
	"github.com/smallbiznis/teamgate/internal/user/password"
	dbpkg "github.com/smallbiznis/teamgate/pkg/db"
	"go.uber.org/zap"
)

const minPasswordLength = 8

type service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		log:   log.Named("user.service"),
		repo:  repo,
		genID: genID,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateRequest) (*domain.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !req.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:            s.genID.Generate(),
		Email:         email,
		PasswordHash:  &hashed,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Role:          req.Role,
		OrgID:         req.OrgID,
		EmailVerified: req.EmailVerified,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// The existence check above races with concurrent creation; the
		// unique index on email is authoritative.
		if dbpkg.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}

	s.log.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.String("org_id", user.OrgID.String()),
	)
	return user, nil
}

func (s *service) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return s.repo.FindByEmail(ctx, normalized)
}

func (s *service) FindByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Authenticate(ctx context.Context, email, pass string) (*domain.User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if strings.TrimSpace(pass) == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == nil || !password.Verify(pass, *user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrUserInactive
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateFields(ctx, user.ID, map[string]any{"last_login_at": now, "updated_at": now}); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	return user, nil
}

func (s *service) VerifyEmail(ctx context.Context, id snowflake.ID) error {
	return s.repo.UpdateFields(ctx, id, map[string]any{"email_verified": true, "updated_at": time.Now().UTC()})
}

func (s *service) ResetPassword(ctx context.Context, id snowflake.ID, pass string) error {
	if len(strings.TrimSpace(pass)) < minPasswordLength {
		return domain.ErrWeakPassword
	}
	hashed, err := password.Hash(pass)
	if err != nil {
		return err
	}
	return s.repo.UpdateFields(ctx, id, map[string]any{"password_hash": hashed, "updated_at": time.Now().UTC()})
}

func (s *service) Deactivate(ctx context.Context, id snowflake.ID) error {
	return s.repo.UpdateFields(ctx, id, map[string]any{"active": false, "updated_at": time.Now().UTC()})
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
