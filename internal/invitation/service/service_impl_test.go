package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/teamgate/internal/config"
	"github.com/smallbiznis/teamgate/internal/credentials"
	departmentdomain "github.com/smallbiznis/teamgate/internal/department/domain"
	departmentrepo "github.com/smallbiznis/teamgate/internal/department/repository"
	departmentservice "github.com/smallbiznis/teamgate/internal/department/service"
	employeedomain "github.com/smallbiznis/teamgate/internal/employee/domain"
	employeerepo "github.com/smallbiznis/teamgate/internal/employee/repository"
	"github.com/smallbiznis/teamgate/internal/invitation/domain"
	tokendomain "github.com/smallbiznis/teamgate/internal/token/domain"
	tokenrepo "github.com/smallbiznis/teamgate/internal/token/repository"
	tokenservice "github.com/smallbiznis/teamgate/internal/token/service"
	userdomain "github.com/smallbiznis/teamgate/internal/user/domain"
	userrepo "github.com/smallbiznis/teamgate/internal/user/repository"
	userservice "github.com/smallbiznis/teamgate/internal/user/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recordingMailer captures dispatches and can be told to fail.
type recordingMailer struct {
	fail bool
	sent []sentMail
}

type sentMail struct {
	To       string
	Template string
	Data     map[string]any
}

func (m *recordingMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if m.fail {
		return errors.New("smtp unreachable")
	}
	return nil
}

func (m *recordingMailer) SendTemplate(ctx context.Context, to []string, templateName string, data map[string]any) error {
	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.sent = append(m.sent, sentMail{To: to[0], Template: templateName, Data: data})
	return nil
}

type fixture struct {
	svc    domain.Service
	db     *gorm.DB
	mailer *recordingMailer
	orgID  snowflake.ID
	node   *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&tokendomain.Token{},
		&userdomain.User{},
		&departmentdomain.Department{},
		&employeedomain.Employee{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	cfg := config.Config{
		FrontendBaseURL:    "https://app.example.com",
		AccessTokenSecret:  "access-secret-for-tests",
		RefreshTokenSecret: "refresh-secret-for-tests",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    7 * 24 * time.Hour,
	}

	issuer, err := credentials.NewIssuer(cfg)
	require.NoError(t, err)

	mailer := &recordingMailer{}
	svc := New(
		log,
		cfg,
		tokenservice.New(log, tokenrepo.New(conn), node),
		userservice.New(log, userrepo.New(conn), node),
		departmentservice.New(log, departmentrepo.New(conn), node),
		employeerepo.New(conn),
		issuer,
		mailer,
		node,
	)

	return &fixture{
		svc:    svc,
		db:     conn,
		mailer: mailer,
		orgID:  node.Generate(),
		node:   node,
	}
}

func (f *fixture) issueRequest(email string) domain.IssueRequest {
	return domain.IssueRequest{
		InviterID:   f.node.Generate(),
		InviterName: "Olivia Owner",
		OrgID:       f.orgID,
		OrgName:     "Acme",
		Email:       email,
		Role:        userdomain.RoleAdmin,
	}
}

func (f *fixture) tokenFor(t *testing.T, email string) tokendomain.Token {
	t.Helper()
	var token tokendomain.Token
	require.NoError(t, f.db.Where("email = ?", email).First(&token).Error)
	return token
}

func TestIssueSendsInviteWithAcceptLink(t *testing.T) {
	f := newFixture(t)

	invite, err := f.svc.Issue(context.Background(), f.issueRequest("hire@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "hire@example.com", invite.Email)
	assert.Equal(t, "admin", invite.Role)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), invite.ExpiresAt, time.Minute)

	require.Len(t, f.mailer.sent, 1)
	mail := f.mailer.sent[0]
	assert.Equal(t, "hire@example.com", mail.To)
	assert.Equal(t, "invite_member", mail.Template)

	token := f.tokenFor(t, "hire@example.com")
	assert.Contains(t, mail.Data["accept_url"], "/accept-invite/"+token.Value)
	assert.Equal(t, "Acme", mail.Data["org_name"])
	assert.Equal(t, "Olivia Owner", mail.Data["inviter_name"])
}

func TestIssueRejectsExistingAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, f.issueRequest("hire@example.com"))
	require.NoError(t, err)
	accepted, err := f.svc.Accept(ctx, domain.AcceptRequest{
		TokenValue: f.tokenFor(t, "hire@example.com").Value,
		Password:   "strong-password",
		FirstName:  "Harry",
	})
	require.NoError(t, err)
	require.NotNil(t, accepted)

	_, err = f.svc.Issue(ctx, f.issueRequest("hire@example.com"))
	assert.ErrorIs(t, err, userdomain.ErrUserExists)
}

func TestIssueRejectsOwnerRoleAndBadEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.issueRequest("hire@example.com")
	req.Role = userdomain.RoleOwner
	_, err := f.svc.Issue(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = f.svc.Issue(ctx, f.issueRequest("not-an-address"))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestIssueCompensatesTokenOnDispatchFailure(t *testing.T) {
	f := newFixture(t)
	f.mailer.fail = true

	_, err := f.svc.Issue(context.Background(), f.issueRequest("hire@example.com"))
	assert.ErrorIs(t, err, domain.ErrDispatchFailed)

	// The minted token must not survive the failed dispatch.
	var count int64
	require.NoError(t, f.db.Model(&tokendomain.Token{}).Count(&count).Error)
	assert.Zero(t, count)

	// A retry after the outage starts from a clean slate.
	f.mailer.fail = false
	_, err = f.svc.Issue(context.Background(), f.issueRequest("hire@example.com"))
	assert.NoError(t, err)
}

func TestAcceptEndToEndWithEmployeeProvisioning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	salary := 92000.0
	req := f.issueRequest("hire@example.com")
	req.Role = userdomain.RoleEmployee
	req.Employee = &tokendomain.EmployeeProvisioning{
		EmployeeID: "EMP-007",
		Department: "Engineering",
		Position:   "Backend Engineer",
		HireDate:   "2026-09-01",
		Salary:     &salary,
	}
	_, err := f.svc.Issue(ctx, req)
	require.NoError(t, err)

	result, err := f.svc.Accept(ctx, domain.AcceptRequest{
		TokenValue: f.tokenFor(t, "hire@example.com").Value,
		Password:   "strong-password",
		FirstName:  "Harry",
		LastName:   "Hire",
	})
	require.NoError(t, err)

	assert.Equal(t, "hire@example.com", result.User.Email)
	assert.Equal(t, userdomain.RoleEmployee, result.User.Role)
	assert.True(t, result.User.EmailVerified, "invite acceptance implies a verified address")
	require.NotNil(t, result.Credentials)
	assert.NotEmpty(t, result.Credentials.AccessToken)
	assert.NotEmpty(t, result.Credentials.RefreshToken)

	var dept departmentdomain.Department
	require.NoError(t, f.db.Where("org_id = ? AND name = ?", f.orgID, "Engineering").First(&dept).Error)
	assert.Equal(t, int64(1), dept.EmployeeCount)

	var employee employeedomain.Employee
	require.NoError(t, f.db.Where("org_id = ? AND employee_id = ?", f.orgID, "EMP-007").First(&employee).Error)
	assert.Equal(t, "hire@example.com", employee.Email)
	assert.Equal(t, employeedomain.StatusActive, employee.Status)
	require.NotNil(t, employee.UserID)
	assert.Equal(t, result.User.ID, employee.UserID.String())
	require.NotNil(t, employee.HireDate)
	assert.Equal(t, "2026-09-01", employee.HireDate.Format("2006-01-02"))

	// Welcome mail follows the invite mail.
	require.Len(t, f.mailer.sent, 2)
	assert.Equal(t, "welcome", f.mailer.sent[1].Template)
}

func TestAcceptAdminSkipsProvisioning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, f.issueRequest("admin@example.com"))
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, domain.AcceptRequest{
		TokenValue: f.tokenFor(t, "admin@example.com").Value,
		Password:   "strong-password",
	})
	require.NoError(t, err)

	var employees int64
	require.NoError(t, f.db.Model(&employeedomain.Employee{}).Count(&employees).Error)
	assert.Zero(t, employees)

	var departments int64
	require.NoError(t, f.db.Model(&departmentdomain.Department{}).Count(&departments).Error)
	assert.Zero(t, departments)
}

func TestAcceptIsSingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, f.issueRequest("hire@example.com"))
	require.NoError(t, err)
	value := f.tokenFor(t, "hire@example.com").Value

	_, err = f.svc.Accept(ctx, domain.AcceptRequest{
		TokenValue: value,
		Password:   "strong-password",
	})
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, domain.AcceptRequest{
		TokenValue: value,
		Password:   "strong-password",
	})
	assert.ErrorIs(t, err, tokendomain.ErrInvalidOrExpired)
}

func TestAcceptExpiredToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, f.issueRequest("hire@example.com"))
	require.NoError(t, err)

	token := f.tokenFor(t, "hire@example.com")
	require.NoError(t, f.db.Model(&tokendomain.Token{}).
		Where("value = ?", token.Value).
		Update("expires_at", time.Now().UTC().Add(-time.Hour)).Error)

	_, err = f.svc.Accept(ctx, domain.AcceptRequest{
		TokenValue: token.Value,
		Password:   "strong-password",
	})
	assert.ErrorIs(t, err, tokendomain.ErrInvalidOrExpired)
}

func TestAcceptBurnsTokenWhenUserAppeared(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, f.issueRequest("hire@example.com"))
	require.NoError(t, err)
	value := f.tokenFor(t, "hire@example.com").Value

	// The address registers through another path before acceptance.
	require.NoError(t, f.db.Create(&userdomain.User{
		ID:     f.node.Generate(),
		Email:  "hire@example.com",
		Role:   userdomain.RoleEmployee,
		OrgID:  f.orgID,
		Active: true,
	}).Error)

	_, err = f.svc.Accept(ctx, domain.AcceptRequest{
		TokenValue: value,
		Password:   "strong-password",
	})
	assert.ErrorIs(t, err, userdomain.ErrUserExists)

	// Consumption is not rolled back; the burnt token stays burnt.
	token := f.tokenFor(t, "hire@example.com")
	assert.True(t, token.Consumed)
	_, err = f.svc.Accept(ctx, domain.AcceptRequest{
		TokenValue: value,
		Password:   "strong-password",
	})
	assert.ErrorIs(t, err, tokendomain.ErrInvalidOrExpired)
}

func TestAcceptRejectsWeakPasswordAfterBurn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, f.issueRequest("hire@example.com"))
	require.NoError(t, err)
	value := f.tokenFor(t, "hire@example.com").Value

	_, err = f.svc.Accept(ctx, domain.AcceptRequest{
		TokenValue: value,
		Password:   "short",
	})
	assert.ErrorIs(t, err, userdomain.ErrWeakPassword)

	// The token was consumed before validation failed; the invite must be
	// re-issued.
	assert.True(t, f.tokenFor(t, "hire@example.com").Consumed)
}

func TestStateDerivation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, f.issueRequest("pending@example.com"))
	require.NoError(t, err)
	state, err := f.svc.StateOf(ctx, f.tokenFor(t, "pending@example.com").Value)
	require.NoError(t, err)
	assert.Equal(t, domain.StatePending, state)

	_, err = f.svc.Issue(ctx, f.issueRequest("accepted@example.com"))
	require.NoError(t, err)
	acceptedValue := f.tokenFor(t, "accepted@example.com").Value
	_, err = f.svc.Accept(ctx, domain.AcceptRequest{TokenValue: acceptedValue, Password: "strong-password"})
	require.NoError(t, err)
	state, err = f.svc.StateOf(ctx, acceptedValue)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAccepted, state)

	_, err = f.svc.Issue(ctx, f.issueRequest("expired@example.com"))
	require.NoError(t, err)
	expiredValue := f.tokenFor(t, "expired@example.com").Value
	require.NoError(t, f.db.Model(&tokendomain.Token{}).
		Where("value = ?", expiredValue).
		Update("expires_at", time.Now().UTC().Add(-time.Hour)).Error)
	state, err = f.svc.StateOf(ctx, expiredValue)
	require.NoError(t, err)
	assert.Equal(t, domain.StateExpired, state)

	_, err = f.svc.Issue(ctx, f.issueRequest("superseded@example.com"))
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&userdomain.User{
		ID:     f.node.Generate(),
		Email:  "superseded@example.com",
		Role:   userdomain.RoleEmployee,
		OrgID:  f.orgID,
		Active: true,
	}).Error)
	state, err = f.svc.StateOf(ctx, f.tokenFor(t, "superseded@example.com").Value)
	require.NoError(t, err)
	assert.Equal(t, domain.StateSuperseded, state)

	_, err = f.svc.StateOf(ctx, "no-such-token")
	assert.ErrorIs(t, err, tokendomain.ErrInvalidOrExpired)
}

func TestListPendingInvites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, f.issueRequest("one@example.com"))
	require.NoError(t, err)
	_, err = f.svc.Issue(ctx, f.issueRequest("two@example.com"))
	require.NoError(t, err)

	acceptedValue := f.tokenFor(t, "two@example.com").Value
	_, err = f.svc.Accept(ctx, domain.AcceptRequest{TokenValue: acceptedValue, Password: "strong-password"})
	require.NoError(t, err)

	pending, err := f.svc.ListPending(ctx, f.orgID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "one@example.com", pending[0].Email)
}
