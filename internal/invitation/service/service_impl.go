package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamgate/internal/config"
	"github.com/smallbiznis/teamgate/internal/credentials"
	departmentdomain "github.com/smallbiznis/teamgate/internal/department/domain"
	employeedomain "github.com/smallbiznis/teamgate/internal/employee/domain"
	"github.com/smallbiznis/teamgate/internal/invitation/domain"
	"github.com/smallbiznis/teamgate/internal/providers/email"
	tokendomain "github.com/smallbiznis/teamgate/internal/token/domain"
	userdomain "github.com/smallbiznis/teamgate/internal/user/domain"
	"go.uber.org/zap"
)

type service struct {
	log       *zap.Logger
	cfg       config.Config
	tokens    tokendomain.Service
	users     userdomain.Service
	depts     departmentdomain.Service
	employees employeedomain.Repository
	issuer    *credentials.Issuer
	mailer    email.Provider
	genID     *snowflake.Node
}

func New(
	log *zap.Logger,
	cfg config.Config,
	tokens tokendomain.Service,
	users userdomain.Service,
	depts departmentdomain.Service,
	employees employeedomain.Repository,
	issuer *credentials.Issuer,
	mailer email.Provider,
	genID *snowflake.Node,
) domain.Service {
	return &service{
		log:       log.Named("invitation.service"),
		cfg:       cfg,
		tokens:    tokens,
		users:     users,
		depts:     depts,
		employees: employees,
		issuer:    issuer,
		mailer:    mailer,
		genID:     genID,
	}
}

func (s *service) Issue(ctx context.Context, req domain.IssueRequest) (*domain.PendingInvite, error) {
	target, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidRequest
	}
	if !req.Role.Valid() || req.Role == userdomain.RoleOwner {
		return nil, domain.ErrInvalidRequest
	}

	// Reject before any mutation when the account already exists.
	if _, err := s.users.FindByEmail(ctx, target); err == nil {
		return nil, userdomain.ErrUserExists
	} else if !errors.Is(err, userdomain.ErrUserNotFound) {
		return nil, err
	}

	orgID := req.OrgID
	token, err := s.tokens.Issue(ctx, tokendomain.IssueRequest{
		Kind:    tokendomain.KindInvite,
		TTL:     tokendomain.InviteTTL,
		Email:   target,
		Role:    string(req.Role),
		OrgID:   &orgID,
		Payload: req.Employee,
	})
	if err != nil {
		return nil, err
	}

	dispatchErr := s.mailer.SendTemplate(ctx, []string{target}, email.TemplateInviteMember, map[string]any{
		"first_name":   firstNameOrEmail(req.FirstName, target),
		"inviter_name": req.InviterName,
		"org_name":     req.OrgName,
		"role":         string(req.Role),
		"accept_url":   fmt.Sprintf("%s/accept-invite/%s", s.cfg.FrontendBaseURL, token.Value),
		"expires_at":   token.ExpiresAt.Format(time.RFC1123),
	})
	if dispatchErr != nil {
		// Compensate: a pending invite the invitee can never learn about
		// must not linger.
		if delErr := s.tokens.Delete(ctx, token.Value); delErr != nil {
			s.log.Error("invite compensation failed, orphaned token remains",
				zap.String("email", target),
				zap.Error(delErr),
			)
		} else {
			s.log.Warn("invite dispatch failed, token compensated",
				zap.String("email", target),
				zap.Error(dispatchErr),
			)
		}
		return nil, domain.ErrDispatchFailed
	}

	s.log.Info("invite issued",
		zap.String("email", target),
		zap.String("role", string(req.Role)),
		zap.String("org_id", req.OrgID.String()),
		zap.Time("expires_at", token.ExpiresAt),
	)
	return &domain.PendingInvite{
		Email:     target,
		Role:      string(req.Role),
		ExpiresAt: token.ExpiresAt,
	}, nil
}

func (s *service) Accept(ctx context.Context, req domain.AcceptRequest) (*domain.AcceptResult, error) {
	token, err := s.tokens.ValidateAndConsume(ctx, req.TokenValue, tokendomain.KindInvite)
	if err != nil {
		return nil, err
	}
	if token.OrgID == nil {
		return nil, tokendomain.ErrInvalidOrExpired
	}

	// Re-check: the account may have appeared between issuance and now.
	if _, err := s.users.FindByEmail(ctx, token.Email); err == nil {
		return nil, userdomain.ErrUserExists
	} else if !errors.Is(err, userdomain.ErrUserNotFound) {
		return nil, err
	}

	// From here the token is burnt regardless of outcome; replaying a
	// consumed token is more dangerous than occasionally losing one to a
	// transient failure.
	user, err := s.users.Create(ctx, userdomain.CreateRequest{
		Email:         token.Email,
		Password:      req.Password,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Role:          userdomain.Role(token.Role),
		OrgID:         *token.OrgID,
		EmailVerified: true,
	})
	if err != nil {
		return nil, err
	}

	if err := s.provisionEmployee(ctx, token, user); err != nil {
		return nil, err
	}

	pair, err := s.issuer.IssuePair(user)
	if err != nil {
		return nil, err
	}

	// Best effort: the account is real and usable whether or not the
	// welcome email lands.
	if err := s.mailer.SendTemplate(ctx, []string{user.Email}, email.TemplateWelcome, map[string]any{
		"first_name": firstNameOrEmail(user.FirstName, user.Email),
		"org_name":   "",
		"login_url":  s.cfg.FrontendBaseURL + "/login",
	}); err != nil {
		s.log.Warn("welcome dispatch failed", zap.String("email", user.Email), zap.Error(err))
	}

	s.log.Info("invite accepted",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return &domain.AcceptResult{
		User:        user.ToView(),
		Credentials: pair,
	}, nil
}

func (s *service) provisionEmployee(ctx context.Context, token *tokendomain.Token, user *userdomain.User) error {
	if user.Role != userdomain.RoleEmployee {
		return nil
	}
	payload, err := token.EmployeePayload()
	if err != nil {
		return err
	}
	if payload == nil {
		return nil
	}

	if _, err := s.depts.Ensure(ctx, user.OrgID, payload.Department); err != nil {
		return err
	}

	var hireDate *time.Time
	if parsed, err := time.Parse("2006-01-02", payload.HireDate); err == nil {
		hireDate = &parsed
	}
	var managerID *snowflake.ID
	if payload.ManagerID != nil {
		id := snowflake.ID(*payload.ManagerID)
		managerID = &id
	}

	now := time.Now().UTC()
	userID := user.ID
	return s.employees.Create(ctx, &employeedomain.Employee{
		ID:         s.genID.Generate(),
		OrgID:      user.OrgID,
		EmployeeID: payload.EmployeeID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Phone:      payload.Phone,
		Department: payload.Department,
		Position:   payload.Position,
		HireDate:   hireDate,
		Salary:     payload.Salary,
		Status:     employeedomain.StatusActive,
		ManagerID:  managerID,
		UserID:     &userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (s *service) StateOf(ctx context.Context, tokenValue string) (domain.State, error) {
	token, err := s.tokens.Find(ctx, tokenValue)
	if err != nil {
		return "", err
	}

	_, userErr := s.users.FindByEmail(ctx, token.Email)
	userExists := userErr == nil
	if userErr != nil && !errors.Is(userErr, userdomain.ErrUserNotFound) {
		return "", userErr
	}

	switch {
	case token.Consumed && userExists:
		return domain.StateAccepted, nil
	case userExists:
		return domain.StateSuperseded, nil
	case token.Expired(time.Now().UTC()):
		return domain.StateExpired, nil
	default:
		return domain.StatePending, nil
	}
}

func (s *service) ListPending(ctx context.Context, orgID snowflake.ID) ([]tokendomain.Token, error) {
	return s.tokens.ListPending(ctx, orgID, tokendomain.KindInvite)
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}

func firstNameOrEmail(firstName, email string) string {
	if name := strings.TrimSpace(firstName); name != "" {
		return name
	}
	return email
}
